package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

// GeminiConfig configures the Gemini evaluator.
type GeminiConfig struct {
	APIKey      string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// GeminiEvaluator implements Evaluator and Completer against the Google
// generative AI API. Gemini models run on the free tier, so cost is always 0.
type GeminiEvaluator struct {
	client *genai.Client
	cfg    GeminiConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGeminiEvaluator builds a Gemini-backed evaluator.
func NewGeminiEvaluator(ctx context.Context, cfg GeminiConfig) (*GeminiEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &GeminiEvaluator{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/skillmatch/eval-api/pkg/ai/gemini"),
		logger: logger.With().Str("component", "evaluator").Str("provider", string(ProviderGemini)).Logger(),
	}, nil
}

// Close releases the underlying API client.
func (e *GeminiEvaluator) Close() error {
	return e.client.Close()
}

// Evaluate sends the scoring prompt and normalizes whatever comes back.
func (e *GeminiEvaluator) Evaluate(parent context.Context, req EvaluationRequest) (EvaluationResult, error) {
	completion, err := e.Complete(parent, req.Model, evaluationSystemPrompt(), buildEvaluationPrompt(req))
	if err != nil {
		return EvaluationResult{}, err
	}

	result := NormalizeEvaluation(completion.Text)
	result.ModelUsed = req.Model
	result.CostIncurred = 0
	return result, nil
}

// Complete issues a raw generation call and reports token usage.
func (e *GeminiEvaluator) Complete(parent context.Context, model, system, user string) (Completion, error) {
	ctx, span := e.tracer.Start(parent, "gemini.complete", trace.WithAttributes(
		attribute.String("model", model),
		attribute.String("provider", string(ProviderGemini)),
	))
	defer span.End()

	generative := e.client.GenerativeModel(model)
	generative.SetTemperature(e.cfg.Temperature)
	generative.SetMaxOutputTokens(int32(e.cfg.MaxTokens))
	generative.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	start := time.Now()
	resp, err := generative.GenerateContent(ctx, genai.Text(user))
	evaluationDuration.WithLabelValues(string(ProviderGemini), model).Observe(time.Since(start).Seconds())
	if err != nil {
		evaluationFailures.WithLabelValues(string(ProviderGemini), model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, fmt.Errorf("gemini complete: %w", err)
	}

	text, ok := firstCandidateText(resp)
	if !ok {
		err := fmt.Errorf("no candidates returned from gemini")
		evaluationFailures.WithLabelValues(string(ProviderGemini), model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, err
	}

	completion := Completion{Text: strings.TrimSpace(text)}
	if resp.UsageMetadata != nil {
		completion.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		completion.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return completion, nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}

	builder := strings.Builder{}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}
	if builder.Len() == 0 {
		return "", false
	}
	return builder.String(), true
}
