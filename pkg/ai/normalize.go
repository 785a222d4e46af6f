package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Fallback texts returned when a provider response cannot be parsed. The
// neutral result must be indistinguishable in shape from a successful parse.
const (
	neutralScore       = 50
	defaultFeedback    = "The evaluation completed but the model did not include written feedback."
	neutralFeedback    = "The submission was received but could not be fully evaluated. A manual review is recommended."
	neutralStrength    = "Submission was received and processed"
	neutralImprovement = "Automatic evaluation was incomplete; the submission may be re-scored later"
)

// parsedEvaluation is the loosely-typed shape we accept from any provider.
// Pointer score fields distinguish "absent" from zero.
type parsedEvaluation struct {
	TechnicalScore     *float64    `json:"technicalScore"`
	ClarityScore       *float64    `json:"clarityScore"`
	CommunicationScore *float64    `json:"communicationScore"`
	OverallScore       *float64    `json:"overallScore"`
	Feedback           string      `json:"feedback"`
	Strengths          interface{} `json:"strengths"`
	Improvements       interface{} `json:"improvements"`
}

// NormalizeEvaluation converts an arbitrary provider response into a valid
// EvaluationResult. It is a total function: markdown fences and surrounding
// prose are tolerated, scores are clamped to [0,100], and any parse failure
// yields a fixed neutral result instead of an error.
func NormalizeEvaluation(raw string) EvaluationResult {
	parsed, err := parseEvaluation(raw)
	if err != nil {
		return neutralEvaluation()
	}

	technical := clampScore(parsed.TechnicalScore)
	clarity := clampScore(parsed.ClarityScore)
	communication := clampScore(parsed.CommunicationScore)

	overall := clampScore(parsed.OverallScore)
	if parsed.OverallScore == nil {
		overall = int(math.Round(float64(technical+clarity+communication) / 3.0))
	}

	feedback := strings.TrimSpace(parsed.Feedback)
	if feedback == "" {
		feedback = defaultFeedback
	}

	return EvaluationResult{
		TechnicalScore:     technical,
		ClarityScore:       clarity,
		CommunicationScore: communication,
		OverallScore:       overall,
		Feedback:           feedback,
		Strengths:          toStringList(parsed.Strengths),
		Improvements:       toStringList(parsed.Improvements),
	}
}

// parseEvaluation is the isolated best-effort parse step. Its tolerance stays
// here: callers only ever see the normalized shape.
func parseEvaluation(raw string) (parsedEvaluation, error) {
	candidate, ok := ExtractJSONObject(raw)
	if !ok {
		return parsedEvaluation{}, fmt.Errorf("no json object in response")
	}

	var parsed parsedEvaluation
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return parsedEvaluation{}, fmt.Errorf("decode evaluation response: %w", err)
	}
	return parsed, nil
}

// ExtractJSONObject strips markdown code fences and returns the outermost
// {...} span of the text, discarding surrounding prose.
func ExtractJSONObject(raw string) (string, bool) {
	cleaned := StripCodeFences(raw)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return cleaned[start : end+1], true
}

// StripCodeFences removes leading/trailing ``` markers (with or without a
// language tag) that chat models habitually wrap JSON in.
func StripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	for _, prefix := range []string{"```json", "```JSON", "```"} {
		cleaned = strings.TrimPrefix(cleaned, prefix)
	}
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// DecodeLooseJSON unmarshals a model response into v after fence stripping
// and brace extraction. Used by the validation checks that expect small fixed
// JSON shapes.
func DecodeLooseJSON(raw string, v interface{}) error {
	candidate, ok := ExtractJSONObject(raw)
	if !ok {
		return fmt.Errorf("no json object in response")
	}
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func neutralEvaluation() EvaluationResult {
	return EvaluationResult{
		TechnicalScore:     neutralScore,
		ClarityScore:       neutralScore,
		CommunicationScore: neutralScore,
		OverallScore:       neutralScore,
		Feedback:           neutralFeedback,
		Strengths:          []string{neutralStrength},
		Improvements:       []string{neutralImprovement},
	}
}

func clampScore(value *float64) int {
	if value == nil {
		return 0
	}
	score := int(math.Round(*value))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func toStringList(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return []string{}
	}

	list := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			list = append(list, s)
		}
	}
	return list
}
