package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIConfig configures the OpenAI evaluator. BaseURL is optional and
// exists so OpenAI-compatible vendors (Groq) can reuse the same adapter.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Provider    Provider
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIEvaluator implements Evaluator and Completer against the OpenAI chat
// completion API.
type OpenAIEvaluator struct {
	client   *openai.Client
	cfg      OpenAIConfig
	provider Provider
	tracer   trace.Tracer
	logger   zerolog.Logger
}

// NewOpenAIEvaluator builds an evaluator from explicit configuration so tests
// can substitute fake transports without touching the process environment.
func NewOpenAIEvaluator(cfg OpenAIConfig) (*OpenAIEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIEvaluator{
		client:   openai.NewClientWithConfig(clientConfig),
		cfg:      cfg,
		provider: cfg.Provider,
		tracer:   otel.Tracer("github.com/skillmatch/eval-api/pkg/ai/openai"),
		logger:   logger.With().Str("component", "evaluator").Str("provider", string(cfg.Provider)).Logger(),
	}, nil
}

// Evaluate sends the scoring prompt and normalizes whatever comes back.
func (e *OpenAIEvaluator) Evaluate(parent context.Context, req EvaluationRequest) (EvaluationResult, error) {
	completion, err := e.Complete(parent, req.Model, evaluationSystemPrompt(), buildEvaluationPrompt(req))
	if err != nil {
		return EvaluationResult{}, err
	}

	result := NormalizeEvaluation(completion.Text)
	result.ModelUsed = req.Model
	if cfg, ok := LookupModel(req.Model); ok {
		result.CostIncurred = cfg.CostFor(completion.PromptTokens, completion.CompletionTokens)
	}
	evaluationCost.WithLabelValues(string(e.provider), req.Model).Add(result.CostIncurred)
	return result, nil
}

// Complete issues a raw chat completion and reports token usage.
func (e *OpenAIEvaluator) Complete(parent context.Context, model, system, user string) (Completion, error) {
	ctx, span := e.tracer.Start(parent, "openai.complete", trace.WithAttributes(
		attribute.String("model", model),
		attribute.String("provider", string(e.provider)),
	))
	defer span.End()

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	evaluationDuration.WithLabelValues(string(e.provider), model).Observe(time.Since(start).Seconds())
	if err != nil {
		evaluationFailures.WithLabelValues(string(e.provider), model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, fmt.Errorf("%s complete: %w", e.provider, err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from %s", e.provider)
		evaluationFailures.WithLabelValues(string(e.provider), model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, err
	}

	return Completion{
		Text:             strings.TrimSpace(resp.Choices[0].Message.Content),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
