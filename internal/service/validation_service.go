package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillmatch/eval-api/internal/config"
	"github.com/skillmatch/eval-api/internal/dto"
	"github.com/skillmatch/eval-api/internal/models"
	"github.com/skillmatch/eval-api/internal/observability"
	"github.com/skillmatch/eval-api/internal/repository"
	"github.com/skillmatch/eval-api/pkg/ai"
	"github.com/skillmatch/eval-api/pkg/github"
)

// Confidence aggregation knobs. Confidence starts high, pays a fixed penalty
// per advisory warning and collapses to a fixed low value once anything blocks.
const (
	confidenceBaseline   = 90
	warningPenalty       = 10
	issueConfidence      = 40
	degradedConfidence   = 50
	trivialRepoSizeKB    = 5
	validationCacheSlot  = "repometa"
	repoMetadataCacheTTL = 15 * time.Minute
)

// placeholderDomains always block a submission link when matched.
var placeholderDomains = []string{
	"example.com",
	"example.org",
	"localhost",
	"127.0.0.1",
	"placeholder",
	"fakeurl",
	"fake.com",
}

// placeholderRepoTokens make a repository name look like scaffolding.
var placeholderRepoTokens = []string{"test", "demo", "template", "sample", "tutorial"}

// ValidationService runs the best-effort pre-scoring checks on a submission.
type ValidationService interface {
	Validate(ctx context.Context, payload dto.ValidationRequest) (dto.ValidationResponse, error)
}

type validationService struct {
	inspector  github.Inspector
	judge      ai.Completer
	judgeModel string
	cache      *redis.Client
	cacheTTL   time.Duration
	records    repository.ValidationRecordRepository
	sanitizer  *bluemonday.Policy
	validator  *validator.Validate
	logger     zerolog.Logger
	cfg        config.ValidationConfig
}

// NewValidationService constructs the submission validator. The Redis client,
// record repository and judge are optional: a nil cache falls through to the
// API, a nil judge skips the model-assisted checks, a nil repository disables
// the audit trail.
func NewValidationService(inspector github.Inspector, judge ai.Completer, cache *redis.Client, cacheTTL time.Duration, records repository.ValidationRecordRepository, validate *validator.Validate, logger zerolog.Logger, cfg config.ValidationConfig) ValidationService {
	if cacheTTL <= 0 {
		cacheTTL = repoMetadataCacheTTL
	}

	return &validationService{
		inspector:  inspector,
		judge:      judge,
		judgeModel: cfg.JudgeModel,
		cache:      cache,
		cacheTTL:   cacheTTL,
		records:    records,
		sanitizer:  bluemonday.StrictPolicy(),
		validator:  validate,
		logger:     logger.With().Str("component", "validation_service").Logger(),
		cfg:        cfg,
	}
}

type videoVerdict struct {
	IsRelevant bool   `json:"isRelevant"`
	Confidence int    `json:"confidence"`
	Reason     string `json:"reason"`
}

type plagiarismVerdict struct {
	PlagiarismScore int    `json:"plagiarismScore"`
	IsSuspicious    bool   `json:"isSuspicious"`
	Reasoning       string `json:"reasoning"`
}

// Validate runs every applicable sub-check and aggregates their findings.
// Sub-checks never abort each other: the model-assisted ones degrade to a
// permissive neutral verdict on internal failure, only the link check may
// block on its own error.
func (s *validationService) Validate(ctx context.Context, payload dto.ValidationRequest) (dto.ValidationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ValidationResponse{}, err
	}

	issues := []string{}
	warnings := []string{}

	text := s.sanitizer.Sanitize(payload.SubmissionText)
	transcript := s.sanitizer.Sanitize(payload.VideoTranscript)

	if payload.SubmissionLink != "" {
		linkIssues, linkWarnings := s.checkLink(ctx, payload.SubmissionLink)
		issues = append(issues, linkIssues...)
		warnings = append(warnings, linkWarnings...)
		recordCheck("link", len(linkIssues), len(linkWarnings))
	}

	if transcript != "" {
		verdict := s.checkVideoRelevance(ctx, transcript, payload.Challenge)
		switch {
		case !verdict.IsRelevant && verdict.Confidence >= s.cfg.VideoIssueConfidence:
			issues = append(issues, fmt.Sprintf("video does not appear to explain a solution to this challenge: %s", verdict.Reason))
			recordCheck("video_relevance", 1, 0)
		case !verdict.IsRelevant && verdict.Confidence >= s.cfg.VideoWarnConfidence:
			warnings = append(warnings, fmt.Sprintf("video may not be relevant to this challenge: %s", verdict.Reason))
			recordCheck("video_relevance", 0, 1)
		default:
			recordCheck("video_relevance", 0, 0)
		}
	}

	plagiarismScore := 0
	if text != "" {
		verdict := s.checkPlagiarism(ctx, text, payload.Challenge)
		plagiarismScore = clampPercent(verdict.PlagiarismScore)
		switch {
		case plagiarismScore >= s.cfg.PlagiarismIssueThreshold:
			issues = append(issues, fmt.Sprintf("submission text is likely plagiarized (score %d/100): %s", plagiarismScore, verdict.Reasoning))
			recordCheck("plagiarism", 1, 0)
		case plagiarismScore >= s.cfg.PlagiarismWarnThreshold:
			warnings = append(warnings, fmt.Sprintf("submission text shows signs of copied content (score %d/100)", plagiarismScore))
			recordCheck("plagiarism", 0, 1)
		default:
			recordCheck("plagiarism", 0, 0)
		}
	}

	response := dto.ValidationResponse{
		SubmissionID:    payload.SubmissionID,
		IsValid:         len(issues) == 0,
		Issues:          issues,
		Warnings:        warnings,
		PlagiarismScore: plagiarismScore,
		Confidence:      aggregateConfidence(len(issues), len(warnings)),
	}

	record := s.persist(ctx, response)
	response.ID = record.ID
	return response, nil
}

// checkLink is the one sub-check allowed to block on its own failure: a link
// we cannot verify is treated as a bad link, not as a neutral outcome.
func (s *validationService) checkLink(ctx context.Context, link string) (issues, warnings []string) {
	lowered := strings.ToLower(link)
	for _, domain := range placeholderDomains {
		if strings.Contains(lowered, domain) {
			return []string{fmt.Sprintf("submission link points at a placeholder address (%s)", domain)}, nil
		}
	}

	owner, name, ok := github.ParseRepoLink(link)
	if !ok {
		return nil, nil
	}
	if s.inspector == nil {
		return nil, []string{"repository link could not be checked automatically"}
	}

	repo, err := s.repositoryMetadata(ctx, owner, name)
	if err != nil {
		if errors.Is(err, github.ErrRepositoryNotFound) {
			return []string{fmt.Sprintf("linked repository %s/%s was not found or is private", owner, name)}, nil
		}
		s.logger.Warn().Err(err).Str("repo", owner+"/"+name).Msg("repository metadata fetch failed")
		return []string{"could not validate the linked repository"}, nil
	}

	if repo.SizeKB <= trivialRepoSizeKB {
		warnings = append(warnings, "linked repository appears to be empty or trivial")
	}
	if !repo.PushedAt.IsZero() && time.Since(repo.PushedAt) > s.cfg.StaleRepoAfter {
		warnings = append(warnings, "linked repository has had no activity in the last year")
	}
	if repo.Fork {
		warnings = append(warnings, "linked repository is a fork; verify the submitted work is original")
	}
	loweredName := strings.ToLower(repo.Name)
	for _, token := range placeholderRepoTokens {
		if strings.Contains(loweredName, token) {
			warnings = append(warnings, fmt.Sprintf("repository name contains a placeholder-style token (%q)", token))
			break
		}
	}

	return nil, warnings
}

// repositoryMetadata fetches repo metadata through the Redis cache.
func (s *validationService) repositoryMetadata(ctx context.Context, owner, name string) (github.Repository, error) {
	cacheKey := fmt.Sprintf("%s:%s/%s", validationCacheSlot, owner, name)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var repo github.Repository
			if unmarshalErr := json.Unmarshal([]byte(cached), &repo); unmarshalErr == nil {
				return repo, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read repository metadata cache")
		}
	}

	repo, err := s.inspector.GetRepository(ctx, owner, name)
	if err != nil {
		return github.Repository{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(repo); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store repository metadata cache")
			}
		}
	}

	return repo, nil
}

// checkVideoRelevance asks the judge model whether the transcript plausibly
// explains a solution. Below the minimum length there is nothing to judge.
func (s *validationService) checkVideoRelevance(ctx context.Context, transcript string, challenge dto.ChallengeContext) videoVerdict {
	if len(transcript) < s.cfg.MinTranscriptChars {
		return videoVerdict{IsRelevant: false, Confidence: 0, Reason: "transcript too short to judge"}
	}

	neutral := videoVerdict{IsRelevant: true, Confidence: degradedConfidence, Reason: "relevance check unavailable"}
	return softFail(s.logger, "video_relevance", neutral, func() (videoVerdict, error) {
		if s.judge == nil {
			return videoVerdict{}, errors.New("judge model not configured")
		}

		system := "You review video transcripts for a hiring platform. Respond with a single JSON object: " +
			`{"isRelevant": bool, "confidence": 0-100, "reason": string}.`
		user := fmt.Sprintf(
			"Challenge: %s\nDescription: %s\nCategory: %s\n\nTranscript:\n%s\n\nDoes this transcript plausibly explain a solution to the challenge? Return JSON.",
			challenge.Title, challenge.Description, challenge.Category,
			truncate(transcript, s.cfg.TranscriptPromptBudget),
		)

		completion, err := s.judge.Complete(ctx, s.judgeModel, system, user)
		if err != nil {
			return videoVerdict{}, err
		}

		var verdict videoVerdict
		if err := ai.DecodeLooseJSON(completion.Text, &verdict); err != nil {
			return videoVerdict{}, err
		}
		verdict.Confidence = clampPercent(verdict.Confidence)
		return verdict, nil
	})
}

// checkPlagiarism asks the judge model for a plagiarism likelihood. Internal
// failure degrades to score zero, no opinion.
func (s *validationService) checkPlagiarism(ctx context.Context, text string, challenge dto.ChallengeContext) plagiarismVerdict {
	neutral := plagiarismVerdict{PlagiarismScore: 0, IsSuspicious: false, Reasoning: "plagiarism check unavailable"}
	return softFail(s.logger, "plagiarism", neutral, func() (plagiarismVerdict, error) {
		if s.judge == nil {
			return plagiarismVerdict{}, errors.New("judge model not configured")
		}

		system := "You estimate how likely a text was copied rather than authored by the candidate. Respond with a " +
			`single JSON object: {"plagiarismScore": 0-100, "isSuspicious": bool, "reasoning": string}.`
		user := fmt.Sprintf(
			"Challenge: %s (%s)\n\nSubmission text:\n%s\n\nReturn JSON.",
			challenge.Title, challenge.Category,
			truncate(text, s.cfg.TextPromptBudget),
		)

		completion, err := s.judge.Complete(ctx, s.judgeModel, system, user)
		if err != nil {
			return plagiarismVerdict{}, err
		}

		var verdict plagiarismVerdict
		if err := ai.DecodeLooseJSON(completion.Text, &verdict); err != nil {
			return plagiarismVerdict{}, err
		}
		return verdict, nil
	})
}

func (s *validationService) persist(ctx context.Context, response dto.ValidationResponse) models.ValidationRecord {
	record := models.ValidationRecord{
		SubmissionID:    response.SubmissionID,
		IsValid:         response.IsValid,
		Issues:          response.Issues,
		Warnings:        response.Warnings,
		PlagiarismScore: response.PlagiarismScore,
		Confidence:      response.Confidence,
	}

	if s.records == nil {
		return record
	}
	if err := s.records.Create(ctx, &record); err != nil {
		s.logger.Error().Err(err).Str("submission_id", response.SubmissionID).Msg("failed to persist validation record")
	}
	return record
}

func recordCheck(check string, issueCount, warningCount int) {
	outcome := "ok"
	switch {
	case issueCount > 0:
		outcome = "issue"
	case warningCount > 0:
		outcome = "warning"
	}
	observability.ValidationChecks().WithLabelValues(check, outcome).Inc()
}

// softFail is the single named degrade-gracefully policy: run the check and
// substitute its neutral verdict when it fails internally.
func softFail[T any](logger zerolog.Logger, check string, neutral T, run func() (T, error)) T {
	verdict, err := run()
	if err != nil {
		logger.Warn().Err(err).Str("check", check).Msg("validation check failed, using neutral verdict")
		return neutral
	}
	return verdict
}

func aggregateConfidence(issueCount, warningCount int) int {
	if issueCount > 0 {
		return issueConfidence
	}
	return clampPercent(confidenceBaseline - warningPenalty*warningCount)
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func truncate(s string, budget int) string {
	if budget <= 0 || len(s) <= budget {
		return s
	}
	return s[:budget]
}
