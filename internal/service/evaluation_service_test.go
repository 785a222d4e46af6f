package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skillmatch/eval-api/internal/dto"
	"github.com/skillmatch/eval-api/internal/models"
	"github.com/skillmatch/eval-api/pkg/ai"
)

type stubEvaluator struct {
	raw   string
	cost  float64
	err   error
	calls int
}

func (s *stubEvaluator) Evaluate(_ context.Context, req ai.EvaluationRequest) (ai.EvaluationResult, error) {
	s.calls++
	if s.err != nil {
		return ai.EvaluationResult{}, s.err
	}

	result := ai.NormalizeEvaluation(s.raw)
	result.ModelUsed = req.Model
	result.CostIncurred = s.cost
	return result, nil
}

type stubEvaluationRecords struct {
	created []models.EvaluationRecord
	stored  *models.EvaluationRecord
	err     error
}

func (s *stubEvaluationRecords) Create(_ context.Context, record *models.EvaluationRecord) error {
	if s.err != nil {
		return s.err
	}
	record.ID = uint(len(s.created) + 1)
	s.created = append(s.created, *record)
	return nil
}

func (s *stubEvaluationRecords) LatestBySubmission(_ context.Context, submissionID string) (models.EvaluationRecord, error) {
	if s.stored == nil || s.stored.SubmissionID != submissionID {
		return models.EvaluationRecord{}, gorm.ErrRecordNotFound
	}
	return *s.stored, nil
}

func (s *stubEvaluationRecords) ListRecent(_ context.Context, _ int) ([]models.EvaluationRecord, error) {
	return s.created, nil
}

func evaluationPayload(model, tier string) dto.EvaluationRequest {
	return dto.EvaluationRequest{
		SubmissionID: "sub-42",
		Challenge: dto.ChallengeContext{
			Title:       "Build a URL shortener",
			Description: "Design and implement a URL shortening service.",
		},
		SubmissionText: "I built the service with a hash-based key scheme.",
		Model:          model,
		Tier:           tier,
	}
}

func newEvaluationService(evaluators map[ai.Provider]ai.Evaluator, records *stubEvaluationRecords) EvaluationService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if records == nil {
		return NewEvaluationService(evaluators, nil, nil, "", validate, zerolog.Nop())
	}
	return NewEvaluationService(evaluators, records, nil, "", validate, zerolog.Nop())
}

func TestEvaluateUsesRequestedMeteredModel(t *testing.T) {
	openaiStub := &stubEvaluator{
		raw:  `{"technicalScore": 90, "clarityScore": 85, "communicationScore": 80}`,
		cost: 0.0075,
	}
	records := &stubEvaluationRecords{}
	svc := newEvaluationService(map[ai.Provider]ai.Evaluator{ai.ProviderOpenAI: openaiStub}, records)

	resp, err := svc.Evaluate(context.Background(), evaluationPayload("gpt-4o", ""))
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", resp.ModelUsed)
	require.Equal(t, 85, resp.OverallScore)
	require.Greater(t, resp.CostIncurred, 0.0)
	require.Equal(t, 1, openaiStub.calls)

	require.Len(t, records.created, 1)
	require.Equal(t, "gpt-4o", records.created[0].ModelUsed)
	require.Equal(t, "openai", records.created[0].Provider)
	require.False(t, records.created[0].FellBack)
}

func TestEvaluateFallsBackToFreeModelOnPrimaryFailure(t *testing.T) {
	openaiStub := &stubEvaluator{err: fmt.Errorf("upstream 500")}
	geminiStub := &stubEvaluator{raw: `{"technicalScore": 60, "clarityScore": 60, "communicationScore": 60}`}
	records := &stubEvaluationRecords{}
	svc := newEvaluationService(map[ai.Provider]ai.Evaluator{
		ai.ProviderOpenAI: openaiStub,
		ai.ProviderGemini: geminiStub,
	}, records)

	resp, err := svc.Evaluate(context.Background(), evaluationPayload("gpt-4o", ""))
	require.NoError(t, err)
	require.Equal(t, ai.FallbackModel, resp.ModelUsed)
	require.Zero(t, resp.CostIncurred)
	require.Equal(t, 1, openaiStub.calls)
	require.Equal(t, 1, geminiStub.calls)

	require.Len(t, records.created, 1)
	require.True(t, records.created[0].FellBack)
	require.Equal(t, "gpt-4o", records.created[0].RequestedModel)
}

func TestEvaluateFallbackFailurePropagates(t *testing.T) {
	openaiStub := &stubEvaluator{err: fmt.Errorf("upstream 500")}
	geminiStub := &stubEvaluator{err: fmt.Errorf("quota exhausted")}
	svc := newEvaluationService(map[ai.Provider]ai.Evaluator{
		ai.ProviderOpenAI: openaiStub,
		ai.ProviderGemini: geminiStub,
	}, nil)

	_, err := svc.Evaluate(context.Background(), evaluationPayload("gpt-4o", ""))
	require.Error(t, err)
	require.Equal(t, 1, openaiStub.calls)
	require.Equal(t, 1, geminiStub.calls)
}

func TestEvaluateUnknownModelTriggersFallback(t *testing.T) {
	geminiStub := &stubEvaluator{raw: `{"technicalScore": 55, "clarityScore": 55, "communicationScore": 55}`}
	svc := newEvaluationService(map[ai.Provider]ai.Evaluator{ai.ProviderGemini: geminiStub}, nil)

	resp, err := svc.Evaluate(context.Background(), evaluationPayload("gpt-9000", ""))
	require.NoError(t, err)
	require.Equal(t, ai.FallbackModel, resp.ModelUsed)
	require.Equal(t, 1, geminiStub.calls)
}

func TestEvaluateResolvesTierWhenNoModelGiven(t *testing.T) {
	openaiStub := &stubEvaluator{raw: `{"technicalScore": 70, "clarityScore": 70, "communicationScore": 70}`}
	svc := newEvaluationService(map[ai.Provider]ai.Evaluator{ai.ProviderOpenAI: openaiStub}, nil)

	resp, err := svc.Evaluate(context.Background(), evaluationPayload("", ai.TierBudget))
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", resp.ModelUsed)
}

func TestEvaluateRejectsInvalidPayload(t *testing.T) {
	svc := newEvaluationService(map[ai.Provider]ai.Evaluator{ai.ProviderGemini: &stubEvaluator{}}, nil)

	payload := evaluationPayload("gpt-4o", "")
	payload.SubmissionID = ""
	_, err := svc.Evaluate(context.Background(), payload)
	require.Error(t, err)

	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))
}

func TestEvaluateWithoutEvaluators(t *testing.T) {
	svc := newEvaluationService(map[ai.Provider]ai.Evaluator{}, nil)

	_, err := svc.Evaluate(context.Background(), evaluationPayload("gpt-4o", ""))
	require.ErrorIs(t, err, ErrNoEvaluators)
}

func TestLatestReturnsStoredEvaluation(t *testing.T) {
	records := &stubEvaluationRecords{stored: &models.EvaluationRecord{
		ID:           7,
		SubmissionID: "sub-42",
		ModelUsed:    "gpt-4o",
		OverallScore: 88,
	}}
	svc := newEvaluationService(map[ai.Provider]ai.Evaluator{ai.ProviderGemini: &stubEvaluator{}}, records)

	resp, err := svc.Latest(context.Background(), "sub-42")
	require.NoError(t, err)
	require.Equal(t, uint(7), resp.ID)
	require.Equal(t, 88, resp.OverallScore)

	_, err = svc.Latest(context.Background(), "sub-missing")
	require.ErrorIs(t, err, ErrEvaluationNotFound)
}

func TestEstimateAndCatalog(t *testing.T) {
	svc := newEvaluationService(map[ai.Provider]ai.Evaluator{ai.ProviderGemini: &stubEvaluator{}}, nil)

	estimate := svc.Estimate(ai.TierPremium, "")
	require.Equal(t, "gpt-4o", estimate.Model)
	require.Greater(t, estimate.EstimatedCost, 0.0)

	free := svc.Estimate(ai.TierFree, "")
	require.Zero(t, free.EstimatedCost)

	catalog := svc.Catalog()
	require.NotEmpty(t, catalog.Models)
}
