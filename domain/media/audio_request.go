package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultAudioExtension is the container used for extracted audio
const DefaultAudioExtension = "mp3"

// DefaultAudioQuality is the ffmpeg VBR quality for extraction (0 is best)
const DefaultAudioQuality = "0"

// AudioExtractionRequest represents a request to extract the audio track from a video
type AudioExtractionRequest struct {
	SourceVideoPath string
	Extension       string
	Quality         string
}

// NewAudioExtractionRequest creates a new AudioExtractionRequest with validation
func NewAudioExtractionRequest(sourcePath, extension, quality string) (*AudioExtractionRequest, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("source video path is required")
	}

	extension = strings.TrimPrefix(strings.TrimSpace(extension), ".")
	if extension == "" {
		extension = DefaultAudioExtension
	}
	if strings.ContainsAny(extension, `/\`) {
		return nil, fmt.Errorf("invalid audio extension %q", extension)
	}

	if quality == "" {
		quality = DefaultAudioQuality
	}

	req := &AudioExtractionRequest{
		SourceVideoPath: sourcePath,
		Extension:       extension,
		Quality:         quality,
	}

	// ffmpeg cannot read and overwrite the same file
	if req.OutputPath() == sourcePath {
		return nil, fmt.Errorf("source %s already has the .%s extension", sourcePath, extension)
	}

	return req, nil
}

// OutputPath returns the source path with its extension replaced by the audio extension
func (r *AudioExtractionRequest) OutputPath() string {
	return AudioPathFor(r.SourceVideoPath, r.Extension)
}

// AudioPathFor derives the companion audio path for a video path
func AudioPathFor(videoPath, extension string) string {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	return base + "." + strings.TrimPrefix(extension, ".")
}
