package fabric

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"reelnotes/domain/pattern"
)

// fakeFabric writes an executable shell script standing in for the fabric CLI
func fakeFabric(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell script")
	}
	path := filepath.Join(t.TempDir(), "fabric")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("failed to write fake fabric: %v", err)
	}
	return path
}

func newRequest(t *testing.T, name, input string) *pattern.Request {
	t.Helper()
	req, err := pattern.NewRequest(name, input)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestRunner_PipesInputAndReturnsOutput(t *testing.T) {
	// Echo the pattern name, then upper-case stdin
	script := fakeFabric(t, `echo "## $2"
tr 'a-z' 'A-Z'
`)
	r := NewRunner(WithFabricPath(script))

	got, err := r.Run(context.Background(), newRequest(t, "summarize", "hello reel\n"))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if got != "## summarize\nHELLO REEL\n" {
		t.Errorf("Run() = %q", got)
	}
}

func TestRunner_IsDeterministicAcrossInvocations(t *testing.T) {
	script := fakeFabric(t, "sort\n")
	r := NewRunner(WithFabricPath(script))
	req := newRequest(t, pattern.DefaultName, "b\na\nc\n")

	first, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("first Run() unexpected error: %v", err)
	}
	second, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("second Run() unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("outputs differ: %q vs %q", first, second)
	}
	if first != "a\nb\nc\n" {
		t.Errorf("Run() = %q, want sorted lines", first)
	}
}

func TestRunner_NonZeroExitSurfacesStderr(t *testing.T) {
	script := fakeFabric(t, `cat >/dev/null
echo "partial output"
echo "Error: pattern not_a_pattern not found" >&2
exit 4
`)
	r := NewRunner(WithFabricPath(script))

	_, err := r.Run(context.Background(), newRequest(t, "not_a_pattern", "text"))

	var exitErr *pattern.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Run() error = %v, want *pattern.ExitError", err)
	}
	if exitErr.ExitCode != 4 {
		t.Errorf("ExitCode = %d, want 4", exitErr.ExitCode)
	}
	if exitErr.Stderr != "Error: pattern not_a_pattern not found\n" {
		t.Errorf("Stderr = %q, want verbatim diagnostics", exitErr.Stderr)
	}
}

func TestRunner_MissingBinary(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"not on PATH", "fabric-binary-that-does-not-exist"},
		{"absolute path missing", filepath.Join(t.TempDir(), "fabric")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(WithFabricPath(tt.path))
			_, err := r.Run(context.Background(), newRequest(t, "summarize", "text"))
			if !errors.Is(err, pattern.ErrToolNotFound) {
				t.Errorf("Run() error = %v, want ErrToolNotFound", err)
			}
			if err := r.VerifyInstalled(context.Background()); !errors.Is(err, pattern.ErrToolNotFound) {
				t.Errorf("VerifyInstalled() error = %v, want ErrToolNotFound", err)
			}
		})
	}
}

func TestRunner_ExtraArgs(t *testing.T) {
	script := fakeFabric(t, `cat >/dev/null
echo "$@"
`)
	r := NewRunner(WithFabricPath(script), WithExtraArgs("--model", "gpt-4o"))

	got, err := r.Run(context.Background(), newRequest(t, "summarize", ""))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if got != "--pattern summarize --model gpt-4o\n" {
		t.Errorf("Run() = %q", got)
	}
}

func TestRunner_CancelledContextIsNotAFabricError(t *testing.T) {
	script := fakeFabric(t, "exec sleep 5\n")
	r := NewRunner(WithFabricPath(script))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := r.Run(ctx, newRequest(t, "summarize", "x"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	var exitErr *pattern.ExitError
	if errors.As(err, &exitErr) {
		t.Errorf("Run() error = %v, should not be an ExitError", err)
	}
}
