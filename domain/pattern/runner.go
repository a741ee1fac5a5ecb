package pattern

import (
	"context"
	"fmt"
	"strings"
)

// DefaultName is the pattern applied when none is requested
const DefaultName = "extract_learning_points"

// Runner defines the interface for applying a named text transformation
// This is a port that can be implemented by different infrastructure adapters
type Runner interface {
	// Run pipes req.Input through the pattern and returns the transformed text
	Run(ctx context.Context, req *Request) (string, error)
}

// Request represents a request to transform text with a named pattern
type Request struct {
	Name  string
	Input string
}

// NewRequest creates a new Request with validation. An empty name yields DefaultName.
func NewRequest(name, input string) (*Request, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	return &Request{
		Name:  name,
		Input: input,
	}, nil
}

// ValidateName rejects pattern names the tool could misread as paths or flags
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("pattern name is required")
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("invalid pattern name %q: must not start with '-'", name)
	}
	if strings.ContainsAny(name, " \t\r\n/\\") {
		return fmt.Errorf("invalid pattern name %q: must not contain whitespace or path separators", name)
	}
	return nil
}
