package whisper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelnotes/domain/transcript"
	"reelnotes/infrastructure/ffmpeg"
)

// CommandRunner runs an external command; ffmpeg.ExecCommandRunner satisfies it
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Transcriber implements transcript.Transcriber by running the openai-whisper CLI.
// The CLI downloads and caches a model the first time a size is used.
type Transcriber struct {
	whisperPath string
	tempDir     string
	runner      CommandRunner
}

// TranscriberOption is a functional option for configuring Transcriber
type TranscriberOption func(*Transcriber)

// WithWhisperPath sets a custom whisper executable path
func WithWhisperPath(path string) TranscriberOption {
	return func(t *Transcriber) {
		if path != "" {
			t.whisperPath = path
		}
	}
}

// WithTempDir sets the parent directory for whisper's scratch output
func WithTempDir(dir string) TranscriberOption {
	return func(t *Transcriber) {
		t.tempDir = dir
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) TranscriberOption {
	return func(t *Transcriber) {
		t.runner = runner
	}
}

// NewTranscriber creates a new whisper CLI transcriber
func NewTranscriber(opts ...TranscriberOption) *Transcriber {
	t := &Transcriber{
		whisperPath: "whisper",
		runner:      &ffmpeg.ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Args returns the whisper arguments for req writing into outputDir
func (t *Transcriber) Args(req *transcript.Request, outputDir string) []string {
	args := []string{
		req.AudioPath,
		"--model", req.Model.String(),
		"--output_format", "txt",
		"--output_dir", outputDir,
		"--verbose", "False",
	}
	if req.Language != "" {
		args = append(args, "--language", req.Language)
	}
	return args
}

// Transcribe implements transcript.Transcriber
func (t *Transcriber) Transcribe(ctx context.Context, req *transcript.Request) (string, error) {
	outputDir, err := os.MkdirTemp(t.tempDir, "reelnotes-whisper-")
	if err != nil {
		return "", fmt.Errorf("failed to create whisper output directory: %w", err)
	}
	defer os.RemoveAll(outputDir)

	if err := t.runner.Run(ctx, t.whisperPath, t.Args(req, outputDir)...); err != nil {
		return "", fmt.Errorf("whisper (model %s) failed: %w", req.Model, err)
	}

	data, err := os.ReadFile(TranscriptPath(req.AudioPath, outputDir))
	if err != nil {
		return "", fmt.Errorf("whisper produced no transcript: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// TranscriptPath is where the whisper CLI writes the txt transcript for audioPath
func TranscriptPath(audioPath, outputDir string) string {
	base := filepath.Base(audioPath)
	return filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+".txt")
}

// VerifyInstalled checks that the whisper CLI is available
func (t *Transcriber) VerifyInstalled(ctx context.Context) error {
	if _, err := t.runner.Output(ctx, t.whisperPath, "--help"); err != nil {
		return fmt.Errorf("whisper not found or not executable: %w", err)
	}
	return nil
}

// Ensure Transcriber implements transcript.Transcriber
var _ transcript.Transcriber = (*Transcriber)(nil)
