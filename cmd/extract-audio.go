package cmd

import (
	"context"
	"fmt"
	"time"

	appmedia "reelnotes/application/media"
	"reelnotes/domain/media"
	"reelnotes/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var (
	extractSourcePath string
	extractQuality    string
)

var extractAudioCmd = &cobra.Command{
	Use:   "extract-audio",
	Short: "Extract audio from a video file",
	Long: `Extract the audio track of a video with ffmpeg.

The audio is written next to the video with the configured extension
(mp3 by default), replacing any existing file.

Example:
  reelnotes extract-audio --source "downloads/My Reel.mp4"
  reelnotes extract-audio --source clip.webm --quality 4`,
	RunE: runExtractAudio,
}

func init() {
	rootCmd.AddCommand(extractAudioCmd)
	extractAudioCmd.Flags().StringVar(&extractSourcePath, "source", "", "Path to source video file (required)")
	extractAudioCmd.Flags().StringVar(&extractQuality, "quality", "", "ffmpeg VBR quality 0-9 (default from config or 0)")
	extractAudioCmd.MarkFlagRequired("source")
}

func runExtractAudio(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	quality := extractQuality
	if quality == "" {
		quality = cfg.Audio.Quality
	}

	return RunExtractAudioWithDependencies(
		cmd.Context(),
		newExtractor(cfg),
		filesystem.NewStore(),
		cfg.Audio.Extension,
		quality,
		extractSourcePath,
		DefaultOutput,
	)
}

// RunExtractAudioWithDependencies runs the extract-audio command with injected dependencies (for testing)
func RunExtractAudioWithDependencies(
	ctx context.Context,
	extractor media.AudioExtractor,
	fileChecker media.FileChecker,
	extension string,
	quality string,
	sourcePath string,
	output OutputWriter,
) error {
	// Verify ffmpeg is available if extractor supports it
	if verifiable, ok := extractor.(interface{ VerifyInstalled(context.Context) error }); ok {
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("ffmpeg verification failed: %w", err)
		}
	}

	service := appmedia.NewExtractService(extractor, fileChecker, extension, quality)

	fmt.Fprintf(output, "Extracting audio from %s...\n", sourcePath)

	result, err := service.Extract(ctx, appmedia.ExtractInput{SourcePath: sourcePath})
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Successfully created: %s\n", result.OutputPath)
	return nil
}
