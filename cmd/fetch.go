package cmd

import (
	"context"
	"fmt"

	appmedia "reelnotes/application/media"
	"reelnotes/domain/media"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download a video",
	Long: `Download a video with yt-dlp into the configured download directory
and print the local path. The file is named after the video title.

Example:
  reelnotes fetch https://www.instagram.com/reel/abc123`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	return RunFetchWithDependencies(
		cmd.Context(),
		newFetcher(cfg),
		cfg.Paths.DownloadDirectory,
		cfg.Fetch.Format,
		args[0],
		DefaultOutput,
	)
}

// RunFetchWithDependencies runs the fetch command with injected dependencies (for testing)
func RunFetchWithDependencies(
	ctx context.Context,
	fetcher media.Fetcher,
	downloadDir string,
	format string,
	url string,
	output OutputWriter,
) error {
	service := appmedia.NewFetchService(fetcher, downloadDir, format)

	fmt.Fprintf(output, "Downloading %s...\n", url)

	result, err := service.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Fprintf(output, "Successfully downloaded: %s\n", result.VideoPath)
	return nil
}
