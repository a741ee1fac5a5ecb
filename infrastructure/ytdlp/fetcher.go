package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"reelnotes/domain/media"

	"github.com/lrstanley/go-ytdlp"
)

// DefaultFormat downloads the best video and audio streams, falling back to the best single file
const DefaultFormat = "bestvideo+bestaudio/best"

// Downloader runs yt-dlp for a request and returns the info it printed
// This allows replacing the yt-dlp process in tests
type Downloader interface {
	Download(ctx context.Context, req *media.FetchRequest) ([]*ytdlp.ExtractedInfo, error)
}

// Fetcher implements media.Fetcher using yt-dlp
type Fetcher struct {
	downloader  Downloader
	autoInstall bool
	installed   bool
}

// FetcherOption is a functional option for configuring Fetcher
type FetcherOption func(*Fetcher)

// WithDownloader sets a custom downloader (for testing)
func WithDownloader(d Downloader) FetcherOption {
	return func(f *Fetcher) {
		f.downloader = d
	}
}

// WithExecutable runs a specific yt-dlp binary instead of the one on PATH
func WithExecutable(path string) FetcherOption {
	return func(f *Fetcher) {
		if cli, ok := f.downloader.(*CLIDownloader); ok && path != "" {
			cli.executable = path
		}
	}
}

// WithAutoInstall lets go-ytdlp download a yt-dlp binary when none is found
func WithAutoInstall(enabled bool) FetcherOption {
	return func(f *Fetcher) {
		f.autoInstall = enabled
	}
}

// NewFetcher creates a new yt-dlp backed fetcher
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		downloader: &CLIDownloader{},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch implements media.Fetcher
func (f *Fetcher) Fetch(ctx context.Context, req *media.FetchRequest) (string, error) {
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory %s: %w", req.OutputDir, err)
	}

	if f.autoInstall && !f.installed {
		if _, err := ytdlp.Install(ctx, nil); err != nil {
			return "", fmt.Errorf("failed to install yt-dlp: %w", err)
		}
		f.installed = true
	}

	infos, err := f.downloader.Download(ctx, req)
	if err != nil {
		return "", err
	}

	path, err := downloadedPath(infos)
	if err != nil {
		return "", fmt.Errorf("yt-dlp finished but %w", err)
	}

	slog.Debug("video downloaded", slog.String("url", req.URL), slog.String("path", path))
	return path, nil
}

// downloadedPath picks the file yt-dlp reported for the first (and only) video
func downloadedPath(infos []*ytdlp.ExtractedInfo) (string, error) {
	for _, info := range infos {
		if info != nil && info.Filename != nil && *info.Filename != "" {
			return filepath.Clean(*info.Filename), nil
		}
	}
	return "", errors.New("reported no output file")
}

// CLIDownloader runs the yt-dlp binary through go-ytdlp
type CLIDownloader struct {
	executable string
}

// Download implements Downloader
func (d *CLIDownloader) Download(ctx context.Context, req *media.FetchRequest) ([]*ytdlp.ExtractedInfo, error) {
	format := req.Format
	if format == "" {
		format = DefaultFormat
	}

	dl := ytdlp.New().
		Format(format).
		Output(req.OutputTemplate()).
		NoPlaylist().
		NoWarnings().
		PrintJSON()
	if d.executable != "" {
		dl = dl.SetExecutable(d.executable)
	}

	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp download failed: %w", err)
	}

	infos, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read yt-dlp output: %w", err)
	}
	return infos, nil
}

// VerifyInstalled checks that a yt-dlp binary can be found. With auto-install
// enabled a missing binary is not an error.
func (f *Fetcher) VerifyInstalled(ctx context.Context) error {
	if f.autoInstall {
		return nil
	}

	name := "yt-dlp"
	if cli, ok := f.downloader.(*CLIDownloader); ok && cli.executable != "" {
		name = cli.executable
	}
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("yt-dlp not found (install it or set fetch.auto_install): %w", err)
	}
	return nil
}

// Ensure Fetcher implements media.Fetcher
var _ media.Fetcher = (*Fetcher)(nil)
