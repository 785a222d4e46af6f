package ai

import "context"

// Provider identifies one of the supported LLM vendors.
type Provider string

// Supported providers. The set is closed: routing happens through a lookup
// table keyed by Provider, never through open-ended string dispatch.
const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderGroq   Provider = "groq"
)

// EvaluationRequest carries the challenge context and submission content for a
// single scoring call. It is constructed fresh per call and never mutated.
type EvaluationRequest struct {
	ChallengeTitle       string
	ChallengeDescription string
	Difficulty           string
	Category             string
	Tags                 []string
	SubmissionText       string
	SubmissionLink       string
	VideoTranscript      string
	Model                string
}

// EvaluationResult is the normalized scoring outcome. ModelUsed may differ
// from the requested model when the router fell back to the free model.
type EvaluationResult struct {
	TechnicalScore     int      `json:"technicalScore"`
	ClarityScore       int      `json:"clarityScore"`
	CommunicationScore int      `json:"communicationScore"`
	OverallScore       int      `json:"overallScore"`
	Feedback           string   `json:"feedback"`
	Strengths          []string `json:"strengths"`
	Improvements       []string `json:"improvements"`
	ModelUsed          string   `json:"modelUsed"`
	CostIncurred       float64  `json:"costIncurred"`
}

// Evaluator scores a submission against a challenge using a single provider.
// Implementations return an error only for transport/provider failures;
// malformed model output is absorbed by the response normalizer.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvaluationRequest) (EvaluationResult, error)
}

// Completion is the raw outcome of a freeform chat completion.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Completer exposes raw chat completions for the model-assisted validation
// checks (video relevance, plagiarism heuristic).
type Completer interface {
	Complete(ctx context.Context, model, system, user string) (Completion, error)
}
