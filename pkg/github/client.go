// Package github wraps the public GitHub read API for repository sanity checks.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/rs/zerolog"
)

// Repository is the subset of repository metadata the validator inspects.
type Repository struct {
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	SizeKB      int       `json:"size_kb"`
	Fork        bool      `json:"fork"`
	Stars       int       `json:"stars"`
	PushedAt    time.Time `json:"pushed_at"`
}

// ErrRepositoryNotFound indicates the repository does not exist or is private.
var ErrRepositoryNotFound = errors.New("repository not found")

// Inspector fetches repository metadata.
type Inspector interface {
	GetRepository(ctx context.Context, owner, name string) (Repository, error)
}

// Client implements Inspector over the unauthenticated GitHub REST API.
type Client struct {
	api     *gh.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// Config customises the client.
type Config struct {
	// HTTPClient is optional; tests inject one pointed at a local server.
	HTTPClient *http.Client
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewClient builds a metadata client. No credentials are needed for public
// repository reads.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	api := gh.NewClient(cfg.HTTPClient)
	if cfg.BaseURL != "" {
		var err error
		api, err = api.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("configure github base url: %w", err)
		}
	}

	return &Client{
		api:     api,
		timeout: cfg.Timeout,
		logger:  cfg.Logger.With().Str("component", "github_client").Logger(),
	}, nil
}

// GetRepository fetches metadata for owner/name with a bounded timeout.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (Repository, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	repo, resp, err := c.api.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return Repository{}, ErrRepositoryNotFound
		}
		return Repository{}, fmt.Errorf("fetch repository %s/%s: %w", owner, name, err)
	}

	result := Repository{
		Owner:       owner,
		Name:        repo.GetName(),
		FullName:    repo.GetFullName(),
		Description: repo.GetDescription(),
		SizeKB:      repo.GetSize(),
		Fork:        repo.GetFork(),
		Stars:       repo.GetStargazersCount(),
	}
	if pushed := repo.GetPushedAt(); !pushed.IsZero() {
		result.PushedAt = pushed.Time
	}
	return result, nil
}

var repoLinkPattern = regexp.MustCompile(`github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)`)

// ParseRepoLink extracts owner and repository name from a GitHub URL. A
// trailing ".git" suffix is stripped.
func ParseRepoLink(link string) (owner, name string, ok bool) {
	matches := repoLinkPattern.FindStringSubmatch(link)
	if matches == nil {
		return "", "", false
	}
	owner = matches[1]
	name = matches[2]
	if len(name) > 4 && name[len(name)-4:] == ".git" {
		name = name[:len(name)-4]
	}
	return owner, name, true
}
