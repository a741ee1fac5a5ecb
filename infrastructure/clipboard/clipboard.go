package clipboard

import (
	"errors"
	"fmt"

	"reelnotes/domain/output"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available (e.g. xclip on Linux)
var ErrUnsupported = errors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")

// System copies text to the operating system clipboard
type System struct {
	write       func(string) error
	unsupported bool
}

// Option is a functional option for configuring System
type Option func(*System)

// WithWriter replaces the clipboard write function (for testing)
func WithWriter(write func(string) error) Option {
	return func(s *System) {
		s.write = write
		s.unsupported = false
	}
}

// New creates a clipboard adapter backed by github.com/atotto/clipboard
func New(opts ...Option) *System {
	s := &System{
		write:       clipboard.WriteAll,
		unsupported: clipboard.Unsupported,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Copy implements output.Clipboard
func (s *System) Copy(text string) error {
	if s.unsupported {
		return ErrUnsupported
	}
	if err := s.write(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// Ensure System implements output.Clipboard
var _ output.Clipboard = (*System)(nil)
