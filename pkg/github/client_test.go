package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Timeout:    2 * time.Second,
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return client
}

func TestGetRepositoryMapsMetadata(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/repos/octocat/widget", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "widget",
			"full_name": "octocat/widget",
			"description": "a widget",
			"size": 240,
			"fork": true,
			"stargazers_count": 7,
			"pushed_at": "2024-02-03T10:00:00Z"
		}`))
	}))

	repo, err := client.GetRepository(context.Background(), "octocat", "widget")
	require.NoError(t, err)
	require.Equal(t, "widget", repo.Name)
	require.Equal(t, "octocat/widget", repo.FullName)
	require.Equal(t, 240, repo.SizeKB)
	require.True(t, repo.Fork)
	require.Equal(t, 7, repo.Stars)
	require.Equal(t, 2024, repo.PushedAt.Year())
}

func TestGetRepositoryNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	}))

	_, err := client.GetRepository(context.Background(), "nobody", "nothing")
	require.ErrorIs(t, err, ErrRepositoryNotFound)
}

func TestGetRepositoryWrapsOtherErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "boom"}`, http.StatusInternalServerError)
	}))

	_, err := client.GetRepository(context.Background(), "octocat", "widget")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrRepositoryNotFound)
}

func TestParseRepoLink(t *testing.T) {
	owner, name, ok := ParseRepoLink("https://github.com/octocat/widget")
	require.True(t, ok)
	require.Equal(t, "octocat", owner)
	require.Equal(t, "widget", name)

	owner, name, ok = ParseRepoLink("git clone https://github.com/acme/tool.git")
	require.True(t, ok)
	require.Equal(t, "acme", owner)
	require.Equal(t, "tool", name)

	_, _, ok = ParseRepoLink("https://gitlab.com/octocat/widget")
	require.False(t, ok)
}
