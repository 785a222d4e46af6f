package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ValidationConfig groups the tunable thresholds of the submission validator.
// The values are tuning knobs, not business invariants: higher means more
// likely to block.
type ValidationConfig struct {
	PlagiarismIssueThreshold int
	PlagiarismWarnThreshold  int
	VideoIssueConfidence     int
	VideoWarnConfidence      int
	MinTranscriptChars       int
	TranscriptPromptBudget   int
	TextPromptBudget         int
	StaleRepoAfter           time.Duration
	JudgeModel               string
}

// Config holds runtime configuration values for the evaluation API.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	DatabaseURL    string
	RedisURL       string
	NATSURL        string
	EventSubject   string
	OpenAIAPIKey   string
	GeminiAPIKey   string
	GroqAPIKey     string
	MaxTokens      int
	Temperature    float32
	RepoTimeout    time.Duration
	RepoCacheTTL   time.Duration
	Validation     ValidationConfig
	MaxUploadBytes int64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an optional
// .env file. Provider credentials stay opaque; a missing key simply disables
// that provider.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SKILLMATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SkillMatch Evaluation API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("event.subject", "skillmatch.evaluation.completed")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.temperature", 0.3)
	v.SetDefault("repo.timeout_ms", 10000)
	v.SetDefault("repo.cache_ttl", "15m")
	v.SetDefault("upload.max_bytes", 25<<20)
	v.SetDefault("validation.plagiarism_issue", 80)
	v.SetDefault("validation.plagiarism_warn", 60)
	v.SetDefault("validation.video_issue_confidence", 80)
	v.SetDefault("validation.video_warn_confidence", 60)
	v.SetDefault("validation.min_transcript_chars", 50)
	v.SetDefault("validation.transcript_budget", 4000)
	v.SetDefault("validation.text_budget", 6000)
	v.SetDefault("validation.stale_repo_days", 365)
	v.SetDefault("validation.judge_model", "gemini-1.5-flash")

	cacheTTL, err := time.ParseDuration(v.GetString("repo.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid repo cache ttl: %w", err)
	}

	timeoutMs := v.GetInt("repo.timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 10000
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		NATSURL:        v.GetString("nats.url"),
		EventSubject:   v.GetString("event.subject"),
		OpenAIAPIKey:   v.GetString("openai_api_key"),
		GeminiAPIKey:   v.GetString("gemini_api_key"),
		GroqAPIKey:     v.GetString("groq_api_key"),
		MaxTokens:      v.GetInt("ai.max_tokens"),
		Temperature:    float32(v.GetFloat64("ai.temperature")),
		RepoTimeout:    time.Duration(timeoutMs) * time.Millisecond,
		RepoCacheTTL:   cacheTTL,
		MaxUploadBytes: v.GetInt64("upload.max_bytes"),
		Validation: ValidationConfig{
			PlagiarismIssueThreshold: v.GetInt("validation.plagiarism_issue"),
			PlagiarismWarnThreshold:  v.GetInt("validation.plagiarism_warn"),
			VideoIssueConfidence:     v.GetInt("validation.video_issue_confidence"),
			VideoWarnConfidence:      v.GetInt("validation.video_warn_confidence"),
			MinTranscriptChars:       v.GetInt("validation.min_transcript_chars"),
			TranscriptPromptBudget:   v.GetInt("validation.transcript_budget"),
			TextPromptBudget:         v.GetInt("validation.text_budget"),
			StaleRepoAfter:           time.Duration(v.GetInt("validation.stale_repo_days")) * 24 * time.Hour,
			JudgeModel:               v.GetString("validation.judge_model"),
		},
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.OpenAIAPIKey == "" && cfg.GeminiAPIKey == "" && cfg.GroqAPIKey == "" {
		return Config{}, fmt.Errorf("at least one provider api key must be provided")
	}

	return cfg, nil
}
