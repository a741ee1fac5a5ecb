package transcription

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reelnotes/domain/transcript"
)

type mockTranscriber struct {
	req        *transcript.Request
	text       string
	shouldFail bool
	failError  error
}

func (m *mockTranscriber) Transcribe(ctx context.Context, req *transcript.Request) (string, error) {
	m.req = req
	if m.shouldFail {
		return "", m.failError
	}
	return m.text, nil
}

func cacheOf(t transcript.Transcriber, built *[]transcript.ModelSize) *transcript.Cache {
	return transcript.NewCache(func(size transcript.ModelSize) (transcript.Transcriber, error) {
		if built != nil {
			*built = append(*built, size)
		}
		return t, nil
	})
}

func TestService_Transcribe(t *testing.T) {
	mock := &mockTranscriber{text: "hello world"}
	var built []transcript.ModelSize
	svc := NewService(cacheOf(mock, &built), "en")

	got, err := svc.Transcribe(context.Background(), Input{AudioPath: "a.mp3", Model: "Small"})
	if err != nil {
		t.Fatalf("Transcribe() unexpected error: %v", err)
	}
	if got != "hello world" {
		t.Errorf("Transcribe() = %q", got)
	}
	if mock.req.Model != transcript.ModelSmall || mock.req.Language != "en" {
		t.Errorf("request = %+v", mock.req)
	}

	// Same size reuses the loaded model
	if _, err := svc.Transcribe(context.Background(), Input{AudioPath: "b.mp3", Model: "small"}); err != nil {
		t.Fatal(err)
	}
	if len(built) != 1 {
		t.Errorf("model built %d times, want 1", len(built))
	}
}

func TestService_Failures(t *testing.T) {
	tests := []struct {
		name        string
		input       Input
		mock        *mockTranscriber
		errContains string
	}{
		{
			name:        "unknown model",
			input:       Input{AudioPath: "a.mp3", Model: "huge"},
			mock:        &mockTranscriber{},
			errContains: "unknown model size",
		},
		{
			name:        "missing audio path",
			input:       Input{},
			mock:        &mockTranscriber{},
			errContains: "audio path is required",
		},
		{
			name:        "backend fails",
			input:       Input{AudioPath: "a.mp3"},
			mock:        &mockTranscriber{shouldFail: true, failError: errors.New("whisper (model base) failed")},
			errContains: "whisper (model base) failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(cacheOf(tt.mock, nil), "")
			_, err := svc.Transcribe(context.Background(), tt.input)
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Transcribe() error = %v, want containing %q", err, tt.errContains)
			}
		})
	}
}

func TestService_UnknownModelNeverLoads(t *testing.T) {
	var built []transcript.ModelSize
	svc := NewService(cacheOf(&mockTranscriber{}, &built), "")
	_, _ = svc.Transcribe(context.Background(), Input{AudioPath: "a.mp3", Model: "gigantic"})
	if len(built) != 0 {
		t.Errorf("model built for invalid size: %v", built)
	}
}

func TestService_EmptyTranscriptIsNotAnError(t *testing.T) {
	svc := NewService(cacheOf(&mockTranscriber{text: ""}, nil), "")
	got, err := svc.Transcribe(context.Background(), Input{AudioPath: "silence.mp3"})
	if err != nil {
		t.Fatalf("Transcribe() unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("Transcribe() = %q, want empty", got)
	}
}
