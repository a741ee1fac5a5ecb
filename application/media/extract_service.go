package media

import (
	"context"
	"fmt"

	"reelnotes/domain/media"
)

// ExtractResult contains the result of an audio extraction operation
type ExtractResult struct {
	OutputPath string
}

// ExtractService coordinates audio extraction operations
type ExtractService struct {
	extractor   media.AudioExtractor
	fileChecker media.FileChecker
	extension   string
	quality     string
}

// NewExtractService creates a new ExtractService
func NewExtractService(extractor media.AudioExtractor, fileChecker media.FileChecker, extension, quality string) *ExtractService {
	if extension == "" {
		extension = media.DefaultAudioExtension
	}
	if quality == "" {
		quality = media.DefaultAudioQuality
	}
	return &ExtractService{
		extractor:   extractor,
		fileChecker: fileChecker,
		extension:   extension,
		quality:     quality,
	}
}

// ExtractInput represents the input for an audio extraction operation
type ExtractInput struct {
	SourcePath string
	Quality    string // Optional, uses service default if empty
}

// Extract writes the audio track of the source video next to it
func (s *ExtractService) Extract(ctx context.Context, input ExtractInput) (*ExtractResult, error) {
	if !s.fileChecker.Exists(input.SourcePath) {
		return nil, fmt.Errorf("source video does not exist: %s", input.SourcePath)
	}

	quality := input.Quality
	if quality == "" {
		quality = s.quality
	}

	req, err := media.NewAudioExtractionRequest(input.SourcePath, s.extension, quality)
	if err != nil {
		return nil, err
	}

	if err := s.extractor.Extract(ctx, req); err != nil {
		return nil, err
	}

	return &ExtractResult{OutputPath: req.OutputPath()}, nil
}

// OutputPathFor returns where Extract will write the audio for sourcePath
func (s *ExtractService) OutputPathFor(sourcePath string) string {
	return media.AudioPathFor(sourcePath, s.extension)
}
