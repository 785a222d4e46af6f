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

// ValidationHandler exposes the pre-scoring submission checks.
type ValidationHandler struct {
	service   service.ValidationService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewValidationHandler builds a validation handler instance.
func NewValidationHandler(service service.ValidationService, validate *validator.Validate, logger zerolog.Logger) *ValidationHandler {
	return &ValidationHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "validation_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ValidationHandler) Register(router fiber.Router) {
	router.Post("/validations", h.validate)
}

func (h *ValidationHandler) validate(c *fiber.Ctx) error {
	var payload dto.ValidationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Validate(c.UserContext(), payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
		}
		h.logger.Error().Err(err).Msg("validation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission validated", result)
}
