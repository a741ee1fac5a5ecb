package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"reelnotes/domain/transcript"

	goopenai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the hosted speech model used when none is configured
const DefaultModel = goopenai.Whisper1

// ErrMissingAPIKey is returned when no API key is available
var ErrMissingAPIKey = errors.New("OpenAI API key is not set (export OPENAI_API_KEY or add it to .env)")

// AudioClient defines the subset of the OpenAI client used for transcription
// This allows mocking the API in tests
type AudioClient interface {
	CreateTranscription(ctx context.Context, request goopenai.AudioRequest) (goopenai.AudioResponse, error)
}

// Transcriber implements transcript.Transcriber using the OpenAI audio API.
// The hosted service has a single model, so the requested size is only logged.
type Transcriber struct {
	client AudioClient
	model  string
}

// TranscriberOption is a functional option for configuring Transcriber
type TranscriberOption func(*Transcriber)

// WithModel sets the hosted model name
func WithModel(model string) TranscriberOption {
	return func(t *Transcriber) {
		if model != "" {
			t.model = model
		}
	}
}

// WithAudioClient sets a custom API client (for testing)
func WithAudioClient(client AudioClient) TranscriberOption {
	return func(t *Transcriber) {
		t.client = client
	}
}

// NewTranscriber creates a new OpenAI-backed transcriber
func NewTranscriber(apiKey string, opts ...TranscriberOption) (*Transcriber, error) {
	t := &Transcriber{
		model: DefaultModel,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.client == nil {
		if strings.TrimSpace(apiKey) == "" {
			return nil, ErrMissingAPIKey
		}
		t.client = goopenai.NewClient(apiKey)
	}

	return t, nil
}

// Transcribe implements transcript.Transcriber
func (t *Transcriber) Transcribe(ctx context.Context, req *transcript.Request) (string, error) {
	slog.Debug("requesting hosted transcription",
		slog.String("model", t.model),
		slog.String("requested_size", req.Model.String()))

	resp, err := t.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    t.model,
		FilePath: req.AudioPath,
		Language: req.Language,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription failed: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// Ensure Transcriber implements transcript.Transcriber
var _ transcript.Transcriber = (*Transcriber)(nil)
