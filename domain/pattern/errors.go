package pattern

import (
	"errors"
	"fmt"
	"strings"
)

// ErrToolNotFound is matched by errors.Is when the transformation binary is not on PATH
var ErrToolNotFound = errors.New("pattern tool not found")

// NotFoundError reports which tool could not be located
type NotFoundError struct {
	Tool string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("'%s' command not found. Is it installed and in your PATH?", e.Tool)
}

// Is lets errors.Is(err, ErrToolNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrToolNotFound
}

// ExitError reports a transformation that ran but exited non-zero
type ExitError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Tool, e.ExitCode, msg)
}
