package transcription

import (
	"context"
	"log/slog"
	"time"

	"reelnotes/domain/transcript"
)

// Service turns audio files into text using a cached transcriber per model size
type Service struct {
	cache    *transcript.Cache
	language string
}

// NewService creates a new transcription service
func NewService(cache *transcript.Cache, language string) *Service {
	return &Service{
		cache:    cache,
		language: language,
	}
}

// Input represents the input for a transcription
type Input struct {
	AudioPath string
	Model     string // Optional, defaults to transcript.DefaultModelSize
}

// Transcribe returns the trimmed transcript of the audio file
func (s *Service) Transcribe(ctx context.Context, input Input) (string, error) {
	req, err := transcript.NewRequest(input.AudioPath, input.Model, s.language)
	if err != nil {
		return "", err
	}

	t, err := s.cache.Get(req.Model)
	if err != nil {
		return "", err
	}

	start := time.Now()
	text, err := t.Transcribe(ctx, req)
	if err != nil {
		return "", err
	}
	slog.Debug("transcription finished",
		slog.String("model", req.Model.String()),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("chars", len(text)))

	if text == "" {
		slog.Warn("transcript is empty", slog.String("audio", input.AudioPath))
	}
	return text, nil
}
