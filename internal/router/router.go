package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skillmatch/eval-api/internal/config"
	"github.com/skillmatch/eval-api/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluationHandler    *handler.EvaluationHandler
	ValidationHandler    *handler.ValidationHandler
	TranscriptionHandler *handler.TranscriptionHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.Register(api)
	}
	if deps.ValidationHandler != nil {
		deps.ValidationHandler.Register(api)
	}
	if deps.TranscriptionHandler != nil {
		deps.TranscriptionHandler.Register(api)
	}
}
