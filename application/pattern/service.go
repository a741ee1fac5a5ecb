package pattern

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reelnotes/domain/output"
	"reelnotes/domain/pattern"
)

// Service applies named patterns to text
type Service struct {
	runner pattern.Runner
}

// NewService creates a new pattern service
func NewService(runner pattern.Runner) *Service {
	return &Service{runner: runner}
}

// Apply pipes input through the named pattern. An empty name uses pattern.DefaultName.
func (s *Service) Apply(ctx context.Context, name, input string) (output.Result, error) {
	req, err := pattern.NewRequest(name, input)
	if err != nil {
		return output.Result{Pattern: name}, err
	}

	start := time.Now()
	text, err := s.runner.Run(ctx, req)
	if err != nil {
		return output.Result{Pattern: req.Name}, err
	}
	slog.Debug("pattern applied",
		slog.String("pattern", req.Name),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("input_chars", len(input)),
		slog.Int("output_chars", len(text)))

	return output.Result{Pattern: req.Name, Text: text}, nil
}

// Describe renders a pattern failure as the diagnostic line shown to the user
func Describe(err error) string {
	var notFound *pattern.NotFoundError
	var exitErr *pattern.ExitError
	switch {
	case errors.As(err, &notFound):
		return fmt.Sprintf("Error: %v", notFound)
	case errors.Is(err, pattern.ErrToolNotFound):
		return fmt.Sprintf("Error: %v", err)
	case errors.As(err, &exitErr):
		return fmt.Sprintf("Fabric error: %s", exitErr.Stderr)
	default:
		return fmt.Sprintf("An error occurred running fabric: %v", err)
	}
}
