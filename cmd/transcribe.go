package cmd

import (
	"context"
	"fmt"

	"reelnotes/application/transcription"
	"reelnotes/domain/media"
	"reelnotes/domain/output"
	"reelnotes/domain/transcript"
	"reelnotes/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var (
	transcribeSource  string
	transcribeModel   string
	transcribeBackend string
	transcribeOutput  string
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe an audio file",
	Long: `Transcribe an audio file and print the text, or save it with --output.

The first use of a model size downloads the model.

Example:
  reelnotes transcribe --source "downloads/My Reel.mp3"
  reelnotes transcribe --source talk.mp3 --model small.en --output transcript.txt
  reelnotes transcribe --source talk.mp3 --backend openai`,
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
	transcribeCmd.Flags().StringVar(&transcribeSource, "source", "", "Path to the audio file (required)")
	transcribeCmd.Flags().StringVarP(&transcribeModel, "model", "m", string(transcript.DefaultModelSize), "Whisper model size")
	transcribeCmd.Flags().StringVar(&transcribeBackend, "backend", string(transcript.DefaultBackend), "Transcription backend (whisper or openai)")
	transcribeCmd.Flags().StringVarP(&transcribeOutput, "output", "o", "", "Save the transcript to a file instead of printing it")
	transcribeCmd.MarkFlagRequired("source")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	cache, err := newTranscriberCache(cfg, flagOrConfig(cmd, "backend", transcribeBackend, cfg.Transcription.Backend))
	if err != nil {
		return err
	}

	store := filesystem.NewStore()
	return RunTranscribeWithDependencies(
		cmd.Context(),
		transcription.NewService(cache, cfg.Transcription.Language),
		store,
		store,
		transcribeSource,
		flagOrConfig(cmd, "model", transcribeModel, cfg.Transcription.Model),
		transcribeOutput,
		DefaultOutput,
	)
}

// RunTranscribeWithDependencies runs the transcribe command with injected dependencies (for testing)
func RunTranscribeWithDependencies(
	ctx context.Context,
	service *transcription.Service,
	fileChecker media.FileChecker,
	files output.FileWriter,
	sourcePath string,
	model string,
	outputPath string,
	out OutputWriter,
) error {
	if !fileChecker.Exists(sourcePath) {
		return fmt.Errorf("audio file does not exist: %s", sourcePath)
	}

	text, err := service.Transcribe(ctx, transcription.Input{AudioPath: sourcePath, Model: model})
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	if outputPath == "" {
		fmt.Fprintln(out, text)
		return nil
	}

	if err := files.WriteFile(outputPath, text+"\n"); err != nil {
		return err
	}
	fmt.Fprintf(out, "Transcript saved to %s\n", outputPath)
	return nil
}
