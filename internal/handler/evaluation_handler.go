package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillmatch/eval-api/internal/dto"
	"github.com/skillmatch/eval-api/internal/service"
	"github.com/skillmatch/eval-api/internal/utils"
)

// EvaluationHandler exposes the scoring pipeline and the pricing lookups.
type EvaluationHandler struct {
	service   service.EvaluationService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEvaluationHandler builds an evaluation handler instance.
func NewEvaluationHandler(service service.EvaluationService, validate *validator.Validate, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("/evaluations", h.evaluate)
	router.Get("/evaluations/:submissionId", h.latest)
	router.Get("/models", h.models)
	router.Get("/models/estimate", h.estimate)
}

func (h *EvaluationHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.EvaluationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Evaluate(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission evaluated", result)
}

func (h *EvaluationHandler) latest(c *fiber.Ctx) error {
	submissionID := c.Params("submissionId")
	if submissionID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "missing submission id")
	}

	result, err := h.service.Latest(c.UserContext(), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluation retrieved", result)
}

func (h *EvaluationHandler) models(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "models retrieved", h.service.Catalog())
}

func (h *EvaluationHandler) estimate(c *fiber.Ctx) error {
	tier := c.Query("tier")
	model := c.Query("model")
	if tier == "" && model == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "tier or model is required")
	}

	return utils.SendSuccess(c, "cost estimated", h.service.Estimate(tier, model))
}

func (h *EvaluationHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEvaluationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "evaluation not found")
	case errors.Is(err, service.ErrNoEvaluators):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "no evaluation providers configured")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("evaluation failed")
		return utils.SendError(c, fiber.StatusBadGateway, "evaluation is temporarily unavailable, retry later")
	}
}
