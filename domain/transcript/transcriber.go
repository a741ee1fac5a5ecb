package transcript

import (
	"context"
	"fmt"
)

// Transcriber defines the interface for speech-to-text operations
// This is a port that can be implemented by different infrastructure adapters
type Transcriber interface {
	// Transcribe returns the text spoken in req.AudioPath
	Transcribe(ctx context.Context, req *Request) (string, error)
}

// Request represents a request to transcribe an audio file
type Request struct {
	AudioPath string
	Model     ModelSize
	Language  string // Optional: ISO code; empty lets the model detect it
}

// NewRequest creates a new Request with validation
func NewRequest(audioPath, model, language string) (*Request, error) {
	if audioPath == "" {
		return nil, fmt.Errorf("audio path is required")
	}

	size, err := ParseModelSize(model)
	if err != nil {
		return nil, err
	}

	return &Request{
		AudioPath: audioPath,
		Model:     size,
		Language:  language,
	}, nil
}
