package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/skillmatch/eval-api/internal/dto"
	"github.com/skillmatch/eval-api/pkg/ai"
)

// ErrTranscriberUnavailable indicates no transcription backend is configured.
var ErrTranscriberUnavailable = errors.New("transcriber unavailable")

// ErrUnsupportedMedia indicates the upload is not an audio or video file.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// TranscriptionService turns uploaded pitch recordings into transcripts for
// the relevance check.
type TranscriptionService interface {
	Transcribe(ctx context.Context, filename string, media io.Reader) (dto.TranscriptionResponse, error)
}

type transcriptionService struct {
	transcriber ai.Transcriber
	logger      zerolog.Logger
}

// NewTranscriptionService constructs the transcription service.
func NewTranscriptionService(transcriber ai.Transcriber, logger zerolog.Logger) TranscriptionService {
	return &transcriptionService{
		transcriber: transcriber,
		logger:      logger.With().Str("component", "transcription_service").Logger(),
	}
}

// Transcribe verifies the upload is audio/video and runs it through the
// transcriber. The handler bounds the upload size before this is called.
func (s *transcriptionService) Transcribe(ctx context.Context, filename string, media io.Reader) (dto.TranscriptionResponse, error) {
	if s.transcriber == nil {
		return dto.TranscriptionResponse{}, ErrTranscriberUnavailable
	}

	data, err := io.ReadAll(media)
	if err != nil {
		return dto.TranscriptionResponse{}, err
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "audio/") && !strings.HasPrefix(detected.String(), "video/") {
		s.logger.Debug().Str("mime", detected.String()).Str("filename", filename).Msg("rejected non-media upload")
		return dto.TranscriptionResponse{}, ErrUnsupportedMedia
	}

	transcript, err := s.transcriber.Transcribe(ctx, filename, bytes.NewReader(data))
	if err != nil {
		return dto.TranscriptionResponse{}, err
	}

	return dto.TranscriptionResponse{
		Transcript: transcript,
		Characters: len(transcript),
	}, nil
}
