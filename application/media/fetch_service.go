package media

import (
	"context"
	"fmt"

	"reelnotes/domain/media"
)

// FetchResult contains the result of a download
type FetchResult struct {
	VideoPath string
}

// FetchService coordinates video downloads
type FetchService struct {
	fetcher     media.Fetcher
	downloadDir string
	format      string
}

// NewFetchService creates a new FetchService
func NewFetchService(fetcher media.Fetcher, downloadDir, format string) *FetchService {
	if downloadDir == "" {
		downloadDir = media.DefaultDownloadDirectory
	}
	return &FetchService{
		fetcher:     fetcher,
		downloadDir: downloadDir,
		format:      format,
	}
}

// Fetch downloads the video at url into the download directory
func (s *FetchService) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	req, err := media.NewFetchRequest(url, s.downloadDir, s.format)
	if err != nil {
		return nil, err
	}

	path, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("downloader returned no file for %s", req.URL)
	}

	return &FetchResult{VideoPath: path}, nil
}
