package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillmatch/eval-api/internal/config"
	"github.com/skillmatch/eval-api/internal/database"
	"github.com/skillmatch/eval-api/internal/handler"
	"github.com/skillmatch/eval-api/internal/middleware"
	"github.com/skillmatch/eval-api/internal/models"
	"github.com/skillmatch/eval-api/internal/repository"
	"github.com/skillmatch/eval-api/internal/router"
	"github.com/skillmatch/eval-api/internal/service"
	"github.com/skillmatch/eval-api/pkg/ai"
	"github.com/skillmatch/eval-api/pkg/github"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.EvaluationRecord{}, &models.ValidationRecord{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	evaluators, completers := buildProviders(cfg, logger)
	if len(evaluators) == 0 {
		log.Fatal("no evaluation providers configured")
	}

	inspector, err := github.NewClient(github.Config{Timeout: cfg.RepoTimeout, Logger: logger})
	if err != nil {
		log.Fatalf("failed to create github client: %v", err)
	}

	judge := judgeFor(cfg.Validation.JudgeModel, completers)
	if judge == nil {
		logger.Warn().Str("model", cfg.Validation.JudgeModel).Msg("judge model provider not configured, model-assisted checks will degrade")
	}

	var transcriber ai.Transcriber
	if cfg.OpenAIAPIKey != "" {
		transcriber, err = ai.NewWhisperTranscriber(cfg.OpenAIAPIKey, logger)
		if err != nil {
			log.Fatalf("failed to create transcriber: %v", err)
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	evaluationRepo := repository.NewEvaluationRecordRepository(db)
	validationRepo := repository.NewValidationRecordRepository(db)

	evaluationService := service.NewEvaluationService(evaluators, evaluationRepo, natsConn, cfg.EventSubject, validate, logger)
	validationService := service.NewValidationService(inspector, judge, redisClient, cfg.RepoCacheTTL, validationRepo, validate, logger, cfg.Validation)
	transcriptionService := service.NewTranscriptionService(transcriber, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.MaxUploadBytes) + 1<<20,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler:    handler.NewEvaluationHandler(evaluationService, validate, logger),
		ValidationHandler:    handler.NewValidationHandler(validationService, validate, logger),
		TranscriptionHandler: handler.NewTranscriptionHandler(transcriptionService, cfg.MaxUploadBytes, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// buildProviders creates one adapter per configured provider. Each concrete
// adapter serves both capabilities: scoring (Evaluator) and the raw
// completions used by the validation checks (Completer).
func buildProviders(cfg config.Config, logger zerolog.Logger) (map[ai.Provider]ai.Evaluator, map[ai.Provider]ai.Completer) {
	evaluators := map[ai.Provider]ai.Evaluator{}
	completers := map[ai.Provider]ai.Completer{}

	if cfg.OpenAIAPIKey != "" {
		evaluator, err := ai.NewOpenAIEvaluator(ai.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Logger:      logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai evaluator: %v", err)
		}
		evaluators[ai.ProviderOpenAI] = evaluator
		completers[ai.ProviderOpenAI] = evaluator
	}

	if cfg.GeminiAPIKey != "" {
		evaluator, err := ai.NewGeminiEvaluator(context.Background(), ai.GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Logger:      logger,
		})
		if err != nil {
			log.Fatalf("failed to create gemini evaluator: %v", err)
		}
		evaluators[ai.ProviderGemini] = evaluator
		completers[ai.ProviderGemini] = evaluator
	}

	if cfg.GroqAPIKey != "" {
		evaluator, err := ai.NewGroqEvaluator(ai.GroqConfig{
			APIKey:      cfg.GroqAPIKey,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Logger:      logger,
		})
		if err != nil {
			log.Fatalf("failed to create groq evaluator: %v", err)
		}
		evaluators[ai.ProviderGroq] = evaluator
		completers[ai.ProviderGroq] = evaluator
	}

	return evaluators, completers
}

// judgeFor resolves the judge model to its provider's completer, falling back
// to any configured completer so validation can still run.
func judgeFor(judgeModel string, completers map[ai.Provider]ai.Completer) ai.Completer {
	if cfg, ok := ai.LookupModel(judgeModel); ok {
		if completer, ok := completers[cfg.Provider]; ok {
			return completer
		}
	}
	for _, completer := range completers {
		return completer
	}
	return nil
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
