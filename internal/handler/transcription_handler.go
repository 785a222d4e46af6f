package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillmatch/eval-api/internal/service"
	"github.com/skillmatch/eval-api/internal/utils"
)

// TranscriptionHandler exposes the pitch-video transcription endpoint.
type TranscriptionHandler struct {
	service        service.TranscriptionService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewTranscriptionHandler builds a transcription handler instance.
func NewTranscriptionHandler(service service.TranscriptionService, maxUploadBytes int64, logger zerolog.Logger) *TranscriptionHandler {
	return &TranscriptionHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("component", "transcription_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *TranscriptionHandler) Register(router fiber.Router) {
	router.Post("/transcriptions", h.transcribe)
}

func (h *TranscriptionHandler) transcribe(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds the upload limit")
	}

	media, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "could not read uploaded file")
	}
	defer media.Close()

	result, err := h.service.Transcribe(c.UserContext(), file.Filename, media)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedMedia):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, "upload must be an audio or video file")
		case errors.Is(err, service.ErrTranscriberUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "transcription is not configured")
		default:
			h.logger.Error().Err(err).Msg("transcription failed")
			return utils.SendError(c, fiber.StatusBadGateway, "transcription is temporarily unavailable, retry later")
		}
	}

	return utils.SendSuccess(c, "recording transcribed", result)
}
