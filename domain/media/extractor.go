package media

import "context"

// AudioExtractor defines the interface for audio extraction operations
// This is a port that can be implemented by different infrastructure adapters
type AudioExtractor interface {
	// Extract writes the audio track of req.SourceVideoPath to req.OutputPath()
	Extract(ctx context.Context, req *AudioExtractionRequest) error
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}

// FileStore extends FileChecker with removal, which artifact cleanup needs
type FileStore interface {
	FileChecker

	// Remove deletes the file at path
	Remove(path string) error
}
