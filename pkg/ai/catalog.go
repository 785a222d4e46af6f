package ai

import (
	"math"
	"sort"
)

// SpeedClass is a coarse latency rating for a model.
type SpeedClass string

// Speed classes used in the catalog.
const (
	SpeedFast   SpeedClass = "fast"
	SpeedMedium SpeedClass = "medium"
	SpeedSlow   SpeedClass = "slow"
)

// ModelConfig is a static catalog entry describing one supported model.
type ModelConfig struct {
	ID              string     `json:"id"`
	Provider        Provider   `json:"provider"`
	CostPer1KTokens float64    `json:"costPer1kTokens"`
	Accuracy        int        `json:"accuracy"`
	Speed           SpeedClass `json:"speed"`
	Free            bool       `json:"free"`
	FreeQuota       string     `json:"freeQuota,omitempty"`
}

// Pricing tiers hide model choice behind a budget level.
const (
	TierFree     = "free"
	TierBudget   = "budget"
	TierBalanced = "balanced"
	TierPremium  = "premium"
)

// FallbackModel is the known-free model every failed evaluation retries
// against, regardless of which provider or tier was requested.
const FallbackModel = "gemini-1.5-flash"

// DefaultModel is used when neither an explicit model nor a known tier is given.
const DefaultModel = FallbackModel

var modelCatalog = map[string]ModelConfig{
	"gpt-4o": {
		ID:              "gpt-4o",
		Provider:        ProviderOpenAI,
		CostPer1KTokens: 0.005,
		Accuracy:        9,
		Speed:           SpeedMedium,
	},
	"gpt-4o-mini": {
		ID:              "gpt-4o-mini",
		Provider:        ProviderOpenAI,
		CostPer1KTokens: 0.00015,
		Accuracy:        7,
		Speed:           SpeedFast,
	},
	"gemini-1.5-pro": {
		ID:        "gemini-1.5-pro",
		Provider:  ProviderGemini,
		Accuracy:  8,
		Speed:     SpeedMedium,
		Free:      true,
		FreeQuota: "2 requests/minute on the free tier",
	},
	"gemini-1.5-flash": {
		ID:        "gemini-1.5-flash",
		Provider:  ProviderGemini,
		Accuracy:  7,
		Speed:     SpeedFast,
		Free:      true,
		FreeQuota: "15 requests/minute on the free tier",
	},
	"llama-3.1-70b-versatile": {
		ID:        "llama-3.1-70b-versatile",
		Provider:  ProviderGroq,
		Accuracy:  8,
		Speed:     SpeedFast,
		Free:      true,
		FreeQuota: "30 requests/minute on the free tier",
	},
	"llama-3.1-8b-instant": {
		ID:        "llama-3.1-8b-instant",
		Provider:  ProviderGroq,
		Accuracy:  6,
		Speed:     SpeedFast,
		Free:      true,
		FreeQuota: "30 requests/minute on the free tier",
	},
}

var tierDefaults = map[string]string{
	TierFree:     "gemini-1.5-flash",
	TierBudget:   "gpt-4o-mini",
	TierBalanced: "llama-3.1-70b-versatile",
	TierPremium:  "gpt-4o",
}

// assumedEvaluationTokens is the fixed token count used for pre-flight cost
// estimates. Display only, never billing.
const assumedEvaluationTokens = 2500

// LookupModel resolves a model id to its catalog entry.
func LookupModel(id string) (ModelConfig, bool) {
	cfg, ok := modelCatalog[id]
	return cfg, ok
}

// Models returns the catalog sorted by id, for pricing display.
func Models() []ModelConfig {
	configs := make([]ModelConfig, 0, len(modelCatalog))
	for _, cfg := range modelCatalog {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].ID < configs[j].ID })
	return configs
}

// ModelForTier resolves a pricing tier and optional explicit override to a
// model id: override wins, then the tier default, then the global default.
func ModelForTier(tier, customModel string) string {
	if customModel != "" {
		return customModel
	}
	if model, ok := tierDefaults[tier]; ok {
		return model
	}
	return DefaultModel
}

// EstimateCost returns the expected cost of one evaluation for pre-flight
// display: zero for free models, otherwise an assumed token count priced at
// the model's rate.
func EstimateCost(tier, customModel string) float64 {
	cfg, ok := LookupModel(ModelForTier(tier, customModel))
	if !ok || cfg.Free {
		return 0
	}
	return round4(assumedEvaluationTokens / 1000.0 * cfg.CostPer1KTokens)
}

// CostFor prices actual token usage: zero for free models, otherwise
// total tokens at the per-1k rate, rounded to 4 decimal places.
func (m ModelConfig) CostFor(promptTokens, completionTokens int) float64 {
	if m.Free {
		return 0
	}
	return round4(float64(promptTokens+completionTokens) / 1000.0 * m.CostPer1KTokens)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
