package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skillmatch/eval-api/internal/config"
	"github.com/skillmatch/eval-api/internal/dto"
	"github.com/skillmatch/eval-api/pkg/ai"
	"github.com/skillmatch/eval-api/pkg/github"
)

type stubInspector struct {
	repo  github.Repository
	err   error
	calls int
}

func (s *stubInspector) GetRepository(_ context.Context, owner, name string) (github.Repository, error) {
	s.calls++
	if s.err != nil {
		return github.Repository{}, s.err
	}
	return s.repo, nil
}

type stubCompleter struct {
	text  string
	err   error
	calls int
}

func (s *stubCompleter) Complete(_ context.Context, _, _, _ string) (ai.Completion, error) {
	s.calls++
	if s.err != nil {
		return ai.Completion{}, s.err
	}
	return ai.Completion{Text: s.text}, nil
}

func validationConfig() config.ValidationConfig {
	return config.ValidationConfig{
		PlagiarismIssueThreshold: 80,
		PlagiarismWarnThreshold:  60,
		VideoIssueConfidence:     80,
		VideoWarnConfidence:      60,
		MinTranscriptChars:       50,
		TranscriptPromptBudget:   4000,
		TextPromptBudget:         6000,
		StaleRepoAfter:           365 * 24 * time.Hour,
		JudgeModel:               "gemini-1.5-flash",
	}
}

func newValidationService(inspector github.Inspector, judge ai.Completer, cache *redis.Client) ValidationService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewValidationService(inspector, judge, cache, time.Minute, nil, validate, zerolog.Nop(), validationConfig())
}

func validationPayload() dto.ValidationRequest {
	return dto.ValidationRequest{
		SubmissionID: "sub-7",
		Challenge: dto.ChallengeContext{
			Title:       "Build a URL shortener",
			Description: "Design and implement a URL shortening service.",
			Category:    "backend",
		},
	}
}

func TestValidateEmptySubmissionIsValid(t *testing.T) {
	judge := &stubCompleter{}
	svc := newValidationService(&stubInspector{}, judge, nil)

	resp, err := svc.Validate(context.Background(), validationPayload())
	require.NoError(t, err)
	require.True(t, resp.IsValid)
	require.Empty(t, resp.Issues)
	require.Empty(t, resp.Warnings)
	require.Zero(t, resp.PlagiarismScore)
	require.Equal(t, 90, resp.Confidence)
	require.Zero(t, judge.calls)
}

func TestValidatePlaceholderLinksAlwaysBlock(t *testing.T) {
	judge := &stubCompleter{text: `{"plagiarismScore": 20, "isSuspicious": false, "reasoning": "fine"}`}
	svc := newValidationService(&stubInspector{}, judge, nil)

	for _, link := range []string{"http://localhost:3000/demo", "https://example.com/project"} {
		payload := validationPayload()
		payload.SubmissionLink = link
		payload.SubmissionText = "A perfectly ordinary writeup of the solution approach."

		resp, err := svc.Validate(context.Background(), payload)
		require.NoError(t, err)
		require.False(t, resp.IsValid, "link %s should block", link)
		require.Len(t, resp.Issues, 1)
		require.Equal(t, 40, resp.Confidence)
	}
}

func TestValidateRepositoryNotFoundBlocks(t *testing.T) {
	inspector := &stubInspector{err: github.ErrRepositoryNotFound}
	svc := newValidationService(inspector, &stubCompleter{}, nil)

	payload := validationPayload()
	payload.SubmissionLink = "https://github.com/nobody/ghost-repo"

	resp, err := svc.Validate(context.Background(), payload)
	require.NoError(t, err)
	require.False(t, resp.IsValid)
	require.Contains(t, resp.Issues[0], "not found")
}

func TestValidateRepositoryFetchFailureBlocks(t *testing.T) {
	inspector := &stubInspector{err: fmt.Errorf("connect timeout")}
	svc := newValidationService(inspector, &stubCompleter{}, nil)

	payload := validationPayload()
	payload.SubmissionLink = "https://github.com/octocat/widget"

	resp, err := svc.Validate(context.Background(), payload)
	require.NoError(t, err)
	require.False(t, resp.IsValid)
	require.Contains(t, resp.Issues[0], "could not validate")
}

func TestValidateRepositoryAdvisoryWarnings(t *testing.T) {
	inspector := &stubInspector{repo: github.Repository{
		Name:     "demo-widget",
		FullName: "octocat/demo-widget",
		SizeKB:   3,
		Fork:     true,
		PushedAt: time.Now().Add(-400 * 24 * time.Hour),
	}}
	svc := newValidationService(inspector, &stubCompleter{}, nil)

	payload := validationPayload()
	payload.SubmissionLink = "https://github.com/octocat/demo-widget"

	resp, err := svc.Validate(context.Background(), payload)
	require.NoError(t, err)
	require.True(t, resp.IsValid, "warnings must never block")
	require.Empty(t, resp.Issues)
	require.Len(t, resp.Warnings, 4)
	require.Equal(t, 50, resp.Confidence)
}

func TestValidatePlagiarismThresholds(t *testing.T) {
	cases := []struct {
		score        int
		wantIssues   int
		wantWarnings int
	}{
		{score: 85, wantIssues: 1, wantWarnings: 0},
		{score: 65, wantIssues: 0, wantWarnings: 1},
		{score: 20, wantIssues: 0, wantWarnings: 0},
	}

	for _, tc := range cases {
		judge := &stubCompleter{text: fmt.Sprintf(`{"plagiarismScore": %d, "isSuspicious": %t, "reasoning": "pattern match"}`, tc.score, tc.score > 60)}
		svc := newValidationService(&stubInspector{}, judge, nil)

		payload := validationPayload()
		payload.SubmissionText = "The solution uses consistent hashing to distribute keys."

		resp, err := svc.Validate(context.Background(), payload)
		require.NoError(t, err)
		require.Len(t, resp.Issues, tc.wantIssues, "score %d", tc.score)
		require.Len(t, resp.Warnings, tc.wantWarnings, "score %d", tc.score)
		require.Equal(t, tc.score, resp.PlagiarismScore)
		require.Equal(t, tc.wantIssues == 0, resp.IsValid)
	}
}

func TestValidateShortTranscriptNeverBlocks(t *testing.T) {
	judge := &stubCompleter{}
	svc := newValidationService(&stubInspector{}, judge, nil)

	payload := validationPayload()
	payload.VideoTranscript = "too short to judge"

	resp, err := svc.Validate(context.Background(), payload)
	require.NoError(t, err)
	require.True(t, resp.IsValid)
	require.Empty(t, resp.Issues)
	require.Empty(t, resp.Warnings)
	require.Zero(t, judge.calls, "judge must not be asked about short transcripts")
}

func TestValidateVideoRelevanceThresholds(t *testing.T) {
	transcript := "In this walkthrough I explain how the shortener maps long URLs to compact keys and how redirects are served."

	cases := []struct {
		name         string
		response     string
		wantIssues   int
		wantWarnings int
	}{
		{name: "confident irrelevance blocks", response: `{"isRelevant": false, "confidence": 90, "reason": "talks about cooking"}`, wantIssues: 1},
		{name: "mild irrelevance warns", response: `{"isRelevant": false, "confidence": 65, "reason": "mostly off-topic"}`, wantWarnings: 1},
		{name: "relevant passes", response: `{"isRelevant": true, "confidence": 95, "reason": "matches the challenge"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			judge := &stubCompleter{text: tc.response}
			svc := newValidationService(&stubInspector{}, judge, nil)

			payload := validationPayload()
			payload.VideoTranscript = transcript

			resp, err := svc.Validate(context.Background(), payload)
			require.NoError(t, err)
			require.Len(t, resp.Issues, tc.wantIssues)
			require.Len(t, resp.Warnings, tc.wantWarnings)
			require.Equal(t, 1, judge.calls)
		})
	}
}

func TestValidateJudgeFailureDegradesGracefully(t *testing.T) {
	judge := &stubCompleter{err: errors.New("model unavailable")}
	svc := newValidationService(&stubInspector{}, judge, nil)

	payload := validationPayload()
	payload.SubmissionText = "A full description of the approach with plenty of detail."
	payload.VideoTranscript = "A long enough transcript describing how the solution was designed and implemented end to end."

	resp, err := svc.Validate(context.Background(), payload)
	require.NoError(t, err)
	require.True(t, resp.IsValid)
	require.Empty(t, resp.Issues)
	require.Empty(t, resp.Warnings)
	require.Zero(t, resp.PlagiarismScore)
	require.Equal(t, 90, resp.Confidence)
}

func TestValidateCachesRepositoryMetadata(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	inspector := &stubInspector{repo: github.Repository{Name: "widget", FullName: "octocat/widget", SizeKB: 500, PushedAt: time.Now()}}
	svc := newValidationService(inspector, &stubCompleter{}, cache)

	payload := validationPayload()
	payload.SubmissionLink = "https://github.com/octocat/widget"

	for i := 0; i < 2; i++ {
		resp, err := svc.Validate(context.Background(), payload)
		require.NoError(t, err)
		require.True(t, resp.IsValid)
	}

	require.Equal(t, 1, inspector.calls, "second lookup must be served from cache")
}

func TestValidateRejectsInvalidPayload(t *testing.T) {
	svc := newValidationService(&stubInspector{}, &stubCompleter{}, nil)

	payload := validationPayload()
	payload.SubmissionID = ""

	_, err := svc.Validate(context.Background(), payload)
	require.Error(t, err)

	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))
}
