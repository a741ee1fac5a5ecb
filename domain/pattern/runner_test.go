package pattern

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		wantName string
		wantErr  bool
	}{
		{"default when empty", "", DefaultName, false},
		{"trimmed", "  summarize ", "summarize", false},
		{"flag-like", "--help", "", true},
		{"path separator", "../etc/passwd", "", true},
		{"whitespace", "two words", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.pattern, "text")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewRequest(%q) expected error", tt.pattern)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRequest(%q) unexpected error: %v", tt.pattern, err)
			}
			if req.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", req.Name, tt.wantName)
			}
			if req.Input != "text" {
				t.Errorf("Input = %q, want %q", req.Input, "text")
			}
		})
	}
}

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("run: %w", &NotFoundError{Tool: "fabric"})
	if !errors.Is(err, ErrToolNotFound) {
		t.Error("errors.Is(wrapped NotFoundError, ErrToolNotFound) = false")
	}
	if got := (&NotFoundError{Tool: "fabric"}).Error(); got != "'fabric' command not found. Is it installed and in your PATH?" {
		t.Errorf("Error() = %q", got)
	}
}

func TestExitErrorMessage(t *testing.T) {
	withStderr := &ExitError{Tool: "fabric", ExitCode: 2, Stderr: "pattern not found\n"}
	if got := withStderr.Error(); got != "fabric exited with status 2: pattern not found" {
		t.Errorf("Error() = %q", got)
	}
	bare := &ExitError{Tool: "fabric", ExitCode: 1}
	if got := bare.Error(); got != "fabric exited with status 1" {
		t.Errorf("Error() = %q", got)
	}
}
