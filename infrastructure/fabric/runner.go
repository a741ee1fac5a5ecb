package fabric

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"reelnotes/domain/pattern"
)

// Runner implements pattern.Runner by piping text through the fabric CLI
type Runner struct {
	fabricPath string
	extraArgs  []string
}

// RunnerOption is a functional option for configuring Runner
type RunnerOption func(*Runner)

// WithFabricPath sets a custom fabric executable path
func WithFabricPath(path string) RunnerOption {
	return func(r *Runner) {
		if path != "" {
			r.fabricPath = path
		}
	}
}

// WithExtraArgs appends arguments after the pattern flag (e.g. --model)
func WithExtraArgs(args ...string) RunnerOption {
	return func(r *Runner) {
		r.extraArgs = append(r.extraArgs, args...)
	}
}

// NewRunner creates a new fabric-backed pattern runner
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		fabricPath: "fabric",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Tool returns the executable name used in diagnostics
func (r *Runner) Tool() string {
	return filepath.Base(r.fabricPath)
}

// Run implements pattern.Runner. The full input is written to fabric's stdin, which is
// then closed; stdout and stderr are read until the process exits.
func (r *Runner) Run(ctx context.Context, req *pattern.Request) (string, error) {
	args := append([]string{"--pattern", req.Name}, r.extraArgs...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.fabricPath, args...)
	cmd.Stdin = strings.NewReader(req.Input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	slog.Debug("fabric finished",
		slog.String("pattern", req.Name),
		slog.Int("input_bytes", len(req.Input)),
		slog.Int("output_bytes", stdout.Len()),
		slog.Duration("elapsed", time.Since(started)))

	if err != nil {
		// A cancelled context kills fabric; that is an interrupt, not a fabric failure
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s interrupted: %w", r.Tool(), ctxErr)
		}
		return "", r.classify(err, stderr.String())
	}
	return stdout.String(), nil
}

func (r *Runner) classify(err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return &pattern.NotFoundError{Tool: r.Tool()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &pattern.ExitError{
			Tool:     r.Tool(),
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr,
		}
	}

	return fmt.Errorf("failed to run %s: %w", r.Tool(), err)
}

// VerifyInstalled checks that fabric can be found on PATH
func (r *Runner) VerifyInstalled(ctx context.Context) error {
	if _, err := exec.LookPath(r.fabricPath); err != nil {
		return &pattern.NotFoundError{Tool: r.Tool()}
	}
	return nil
}

// Ensure Runner implements pattern.Runner
var _ pattern.Runner = (*Runner)(nil)
