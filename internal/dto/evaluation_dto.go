package dto

import (
	"time"

	"github.com/skillmatch/eval-api/pkg/ai"
)

// ChallengeContext is the challenge metadata both pipelines score against.
type ChallengeContext struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Difficulty  string   `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// EvaluationRequest is the scoring entry-point payload. Either an explicit
// model or a pricing tier selects the model; both empty falls back to the
// global free default.
type EvaluationRequest struct {
	SubmissionID    string           `json:"submissionId" validate:"required"`
	Challenge       ChallengeContext `json:"challenge" validate:"required"`
	SubmissionText  string           `json:"submissionText"`
	SubmissionLink  string           `json:"submissionLink" validate:"omitempty,url"`
	VideoTranscript string           `json:"videoTranscript"`
	Model           string           `json:"model"`
	Tier            string           `json:"tier" validate:"omitempty,oneof=free budget balanced premium"`
}

// EvaluationResponse is the scoring outcome returned to the application layer.
type EvaluationResponse struct {
	ID                 uint      `json:"id,omitempty"`
	SubmissionID       string    `json:"submissionId"`
	TechnicalScore     int       `json:"technicalScore"`
	ClarityScore       int       `json:"clarityScore"`
	CommunicationScore int       `json:"communicationScore"`
	OverallScore       int       `json:"overallScore"`
	Feedback           string    `json:"feedback"`
	Strengths          []string  `json:"strengths"`
	Improvements       []string  `json:"improvements"`
	ModelUsed          string    `json:"modelUsed"`
	CostIncurred       float64   `json:"costIncurred"`
	CreatedAt          time.Time `json:"createdAt,omitempty"`
}

// ValidationRequest is the pre-scoring validation payload.
type ValidationRequest struct {
	SubmissionID    string           `json:"submissionId" validate:"required"`
	Challenge       ChallengeContext `json:"challenge" validate:"required"`
	SubmissionLink  string           `json:"submissionLink"`
	SubmissionText  string           `json:"submissionText"`
	VideoTranscript string           `json:"videoTranscript"`
}

// ValidationResponse aggregates the sub-check findings. Warnings never block:
// isValid is true exactly when issues is empty.
type ValidationResponse struct {
	ID              uint     `json:"id,omitempty"`
	SubmissionID    string   `json:"submissionId"`
	IsValid         bool     `json:"isValid"`
	Issues          []string `json:"issues"`
	Warnings        []string `json:"warnings"`
	PlagiarismScore int      `json:"plagiarismScore"`
	Confidence      int      `json:"confidence"`
}

// CostEstimateResponse is the pre-flight pricing shown during challenge creation.
type CostEstimateResponse struct {
	Tier          string  `json:"tier,omitempty"`
	Model         string  `json:"model"`
	EstimatedCost float64 `json:"estimatedCost"`
}

// ModelCatalogResponse lists the supported models for the pricing picker.
type ModelCatalogResponse struct {
	Models []ai.ModelConfig `json:"models"`
}

// TranscriptionResponse carries the Whisper transcript for an uploaded recording.
type TranscriptionResponse struct {
	Transcript string `json:"transcript"`
	Characters int    `json:"characters"`
}
