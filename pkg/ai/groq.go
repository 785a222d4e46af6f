package ai

import "github.com/rs/zerolog"

// groqBaseURL is the OpenAI-compatible endpoint exposed by Groq.
const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqConfig configures the Groq evaluator.
type GroqConfig struct {
	APIKey      string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// NewGroqEvaluator builds an evaluator for Groq-hosted models. Groq speaks
// the OpenAI wire protocol, so the adapter is the OpenAI one pointed at the
// Groq endpoint.
func NewGroqEvaluator(cfg GroqConfig) (*OpenAIEvaluator, error) {
	return NewOpenAIEvaluator(OpenAIConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     groqBaseURL,
		Provider:    ProviderGroq,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Logger:      cfg.Logger,
	})
}
