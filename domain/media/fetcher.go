package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultDownloadDirectory is where fetched videos land when no directory is configured
const DefaultDownloadDirectory = "downloads"

// TitleTemplate names downloaded files after the source title
const TitleTemplate = "%(title)s.%(ext)s"

// Fetcher defines the interface for retrieving a remote video
// This is a port that can be implemented by different infrastructure adapters
type Fetcher interface {
	// Fetch downloads the video described by req and returns the local file path
	Fetch(ctx context.Context, req *FetchRequest) (string, error)
}

// FetchRequest represents a request to download a video into a working directory
type FetchRequest struct {
	URL       string
	OutputDir string
	Format    string // Optional: fetcher-specific format selector
}

// NewFetchRequest creates a new FetchRequest with validation
func NewFetchRequest(url, outputDir, format string) (*FetchRequest, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("source URL is required")
	}

	if outputDir == "" {
		outputDir = DefaultDownloadDirectory
	}

	return &FetchRequest{
		URL:       url,
		OutputDir: outputDir,
		Format:    format,
	}, nil
}

// OutputTemplate returns the output path template handed to the downloader
func (r *FetchRequest) OutputTemplate() string {
	return filepath.Join(r.OutputDir, TitleTemplate)
}
