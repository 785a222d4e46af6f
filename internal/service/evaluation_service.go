package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillmatch/eval-api/internal/dto"
	"github.com/skillmatch/eval-api/internal/models"
	"github.com/skillmatch/eval-api/internal/repository"
	"github.com/skillmatch/eval-api/pkg/ai"
)

// ErrEvaluationNotFound indicates no stored evaluation exists for a submission.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// ErrNoEvaluators indicates the service was started without any provider.
var ErrNoEvaluators = errors.New("no evaluators configured")

// EvaluationService routes scoring requests to the configured providers.
type EvaluationService interface {
	Evaluate(ctx context.Context, payload dto.EvaluationRequest) (dto.EvaluationResponse, error)
	Latest(ctx context.Context, submissionID string) (dto.EvaluationResponse, error)
	Estimate(tier, customModel string) dto.CostEstimateResponse
	Catalog() dto.ModelCatalogResponse
}

type evaluationService struct {
	evaluators    map[ai.Provider]ai.Evaluator
	records       repository.EvaluationRecordRepository
	events        *nats.Conn
	eventSubject  string
	fallbackModel string
	validator     *validator.Validate
	logger        zerolog.Logger
}

type evaluationCompletedEvent struct {
	SubmissionID string    `json:"submission_id"`
	ModelUsed    string    `json:"model_used"`
	OverallScore int       `json:"overall_score"`
	CostIncurred float64   `json:"cost_incurred"`
	FellBack     bool      `json:"fell_back"`
	CompletedAt  time.Time `json:"completed_at"`
}

// NewEvaluationService constructs the scoring router. The evaluator table is
// the closed dispatch surface: one entry per configured provider. The NATS
// connection and record repository are optional collaborators; a nil value
// disables that side effect.
func NewEvaluationService(evaluators map[ai.Provider]ai.Evaluator, records repository.EvaluationRecordRepository, events *nats.Conn, eventSubject string, validate *validator.Validate, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		evaluators:    evaluators,
		records:       records,
		events:        events,
		eventSubject:  eventSubject,
		fallbackModel: ai.FallbackModel,
		validator:     validate,
		logger:        logger.With().Str("component", "evaluation_service").Logger(),
	}
}

// Evaluate scores a submission. A failed primary attempt is retried exactly
// once against the fixed free fallback model; a failed fallback propagates.
func (s *evaluationService) Evaluate(ctx context.Context, payload dto.EvaluationRequest) (dto.EvaluationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EvaluationResponse{}, err
	}
	if len(s.evaluators) == 0 {
		return dto.EvaluationResponse{}, ErrNoEvaluators
	}

	request := ai.EvaluationRequest{
		ChallengeTitle:       payload.Challenge.Title,
		ChallengeDescription: payload.Challenge.Description,
		Difficulty:           payload.Challenge.Difficulty,
		Category:             payload.Challenge.Category,
		Tags:                 payload.Challenge.Tags,
		SubmissionText:       payload.SubmissionText,
		SubmissionLink:       payload.SubmissionLink,
		VideoTranscript:      payload.VideoTranscript,
	}

	model := ai.ModelForTier(payload.Tier, payload.Model)

	fellBack := false
	result, err := s.dispatch(ctx, request, model)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("submission_id", payload.SubmissionID).
			Str("model", model).
			Str("fallback_model", s.fallbackModel).
			Msg("primary evaluation failed, retrying with fallback model")

		fellBack = true
		result, err = s.dispatch(ctx, request, s.fallbackModel)
		if err != nil {
			return dto.EvaluationResponse{}, fmt.Errorf("fallback evaluation failed: %w", err)
		}
	}

	record := s.persist(ctx, payload.SubmissionID, model, fellBack, result)
	s.publish(payload.SubmissionID, fellBack, result)

	response := toEvaluationResponse(payload.SubmissionID, result)
	response.ID = record.ID
	response.CreatedAt = record.CreatedAt
	return response, nil
}

// dispatch resolves a model id to its provider's evaluator and runs one
// attempt. An unknown model or unconfigured provider is an attempt failure
// like any network error, so the caller's fallback policy covers it.
func (s *evaluationService) dispatch(ctx context.Context, request ai.EvaluationRequest, model string) (ai.EvaluationResult, error) {
	cfg, ok := ai.LookupModel(model)
	if !ok {
		return ai.EvaluationResult{}, fmt.Errorf("unknown model %q", model)
	}

	evaluator, ok := s.evaluators[cfg.Provider]
	if !ok {
		return ai.EvaluationResult{}, fmt.Errorf("provider %q is not configured", cfg.Provider)
	}

	request.Model = model
	return evaluator.Evaluate(ctx, request)
}

// Latest returns the most recent stored evaluation for a submission.
func (s *evaluationService) Latest(ctx context.Context, submissionID string) (dto.EvaluationResponse, error) {
	if s.records == nil {
		return dto.EvaluationResponse{}, ErrEvaluationNotFound
	}

	record, err := s.records.LatestBySubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	return dto.EvaluationResponse{
		ID:                 record.ID,
		SubmissionID:       record.SubmissionID,
		TechnicalScore:     record.TechnicalScore,
		ClarityScore:       record.ClarityScore,
		CommunicationScore: record.CommunicationScore,
		OverallScore:       record.OverallScore,
		Feedback:           record.Feedback,
		Strengths:          record.Strengths,
		Improvements:       record.Improvements,
		ModelUsed:          record.ModelUsed,
		CostIncurred:       record.CostIncurred,
		CreatedAt:          record.CreatedAt,
	}, nil
}

// Estimate is the pure pre-flight cost lookup used by challenge creation.
func (s *evaluationService) Estimate(tier, customModel string) dto.CostEstimateResponse {
	return dto.CostEstimateResponse{
		Tier:          tier,
		Model:         ai.ModelForTier(tier, customModel),
		EstimatedCost: ai.EstimateCost(tier, customModel),
	}
}

// Catalog lists the supported models.
func (s *evaluationService) Catalog() dto.ModelCatalogResponse {
	return dto.ModelCatalogResponse{Models: ai.Models()}
}

// persist writes the audit row. The scoring result already belongs to the
// caller at this point, so a storage failure is logged and absorbed.
func (s *evaluationService) persist(ctx context.Context, submissionID, requestedModel string, fellBack bool, result ai.EvaluationResult) models.EvaluationRecord {
	record := models.EvaluationRecord{
		SubmissionID:       submissionID,
		RequestedModel:     requestedModel,
		ModelUsed:          result.ModelUsed,
		TechnicalScore:     result.TechnicalScore,
		ClarityScore:       result.ClarityScore,
		CommunicationScore: result.CommunicationScore,
		OverallScore:       result.OverallScore,
		Feedback:           result.Feedback,
		Strengths:          result.Strengths,
		Improvements:       result.Improvements,
		CostIncurred:       result.CostIncurred,
		FellBack:           fellBack,
	}
	if cfg, ok := ai.LookupModel(result.ModelUsed); ok {
		record.Provider = string(cfg.Provider)
	}

	if s.records == nil {
		return record
	}
	if err := s.records.Create(ctx, &record); err != nil {
		s.logger.Error().Err(err).Str("submission_id", submissionID).Msg("failed to persist evaluation record")
	}
	return record
}

func (s *evaluationService) publish(submissionID string, fellBack bool, result ai.EvaluationResult) {
	if s.events == nil || s.eventSubject == "" {
		return
	}

	payload, err := json.Marshal(evaluationCompletedEvent{
		SubmissionID: submissionID,
		ModelUsed:    result.ModelUsed,
		OverallScore: result.OverallScore,
		CostIncurred: result.CostIncurred,
		FellBack:     fellBack,
		CompletedAt:  time.Now().UTC(),
	})
	if err != nil {
		return
	}

	if err := s.events.Publish(s.eventSubject, payload); err != nil {
		s.logger.Warn().Err(err).Str("submission_id", submissionID).Msg("failed to publish evaluation event")
	}
}

func toEvaluationResponse(submissionID string, result ai.EvaluationResult) dto.EvaluationResponse {
	return dto.EvaluationResponse{
		SubmissionID:       submissionID,
		TechnicalScore:     result.TechnicalScore,
		ClarityScore:       result.ClarityScore,
		CommunicationScore: result.CommunicationScore,
		OverallScore:       result.OverallScore,
		Feedback:           result.Feedback,
		Strengths:          result.Strengths,
		Improvements:       result.Improvements,
		ModelUsed:          result.ModelUsed,
		CostIncurred:       result.CostIncurred,
	}
}
