package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubTranscriber struct {
	transcript string
	err        error
	filename   string
}

func (s *stubTranscriber) Transcribe(_ context.Context, filename string, _ io.Reader) (string, error) {
	s.filename = filename
	return s.transcript, s.err
}

// wavHeader is the minimal RIFF/WAVE preamble the mime sniffer accepts.
func wavHeader() []byte {
	header := []byte("RIFF\x24\x00\x00\x00WAVEfmt ")
	return append(header, bytes.Repeat([]byte{0}, 24)...)
}

func TestTranscribeRequiresConfiguredBackend(t *testing.T) {
	svc := NewTranscriptionService(nil, zerolog.Nop())

	_, err := svc.Transcribe(context.Background(), "pitch.wav", bytes.NewReader(wavHeader()))
	require.ErrorIs(t, err, ErrTranscriberUnavailable)
}

func TestTranscribeRejectsNonMediaUploads(t *testing.T) {
	transcriber := &stubTranscriber{transcript: "should never run"}
	svc := NewTranscriptionService(transcriber, zerolog.Nop())

	_, err := svc.Transcribe(context.Background(), "resume.pdf", bytes.NewReader([]byte("%PDF-1.7 not a recording")))
	require.ErrorIs(t, err, ErrUnsupportedMedia)
	require.Empty(t, transcriber.filename)
}

func TestTranscribeReturnsTranscriptWithLength(t *testing.T) {
	transcriber := &stubTranscriber{transcript: "I walk through the URL shortener design."}
	svc := NewTranscriptionService(transcriber, zerolog.Nop())

	resp, err := svc.Transcribe(context.Background(), "pitch.wav", bytes.NewReader(wavHeader()))
	require.NoError(t, err)
	require.Equal(t, "I walk through the URL shortener design.", resp.Transcript)
	require.Equal(t, len(resp.Transcript), resp.Characters)
	require.Equal(t, "pitch.wav", transcriber.filename)
}
