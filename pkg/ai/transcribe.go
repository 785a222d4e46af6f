package ai

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Transcriber converts an uploaded audio/video recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// WhisperTranscriber implements Transcriber using the OpenAI Whisper API.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewWhisperTranscriber builds a Whisper-backed transcriber.
func NewWhisperTranscriber(apiKey string, logger zerolog.Logger) (*WhisperTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	return &WhisperTranscriber{
		client: openai.NewClient(apiKey),
		model:  openai.Whisper1,
		logger: logger.With().Str("component", "transcriber").Logger(),
	}, nil
}

// Transcribe sends the recording to Whisper and returns the transcript text.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}
