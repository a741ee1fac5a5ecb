package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"reelnotes/application/pipeline"
	"reelnotes/infrastructure/config"
	"reelnotes/infrastructure/console"

	"github.com/spf13/cobra"
)

const programName = "reelnotes"

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
	verbose bool
)

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// DefaultOutput is the writer commands print to
var DefaultOutput OutputWriter = os.Stdout

var rootCmd = &cobra.Command{
	Use:   "reelnotes [url]",
	Short: "Turn a short video into notes with fabric",
	Long: `reelnotes downloads a video, extracts its audio, transcribes it with
whisper and pipes the transcript through a fabric pattern:

  - Download with yt-dlp
  - Extract audio with ffmpeg
  - Transcribe locally with whisper (or the OpenAI API)
  - Apply a fabric pattern and show the result
  - Optionally copy it, save it or upload it to Google Drive

The downloaded video and audio are removed afterwards unless --keep is given.

Example:
  reelnotes https://www.instagram.com/reel/abc123 --pattern summarize -c
  reelnotes https://youtu.be/xyz --model small --output notes.md --keep`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runPipeline,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	// Ctrl-C cancels running subprocesses; the pipeline still cleans up
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// Pipeline failures were already reported as the run went
		var stageErr *pipeline.StageError
		var reported *reportedError
		if !errors.As(err, &stageErr) && !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, console.Failure("Error: "+err.Error()))
		}
		os.Exit(1)
	}
}

// reportedError marks a failure whose diagnostic was already printed
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs to stderr")
	registerPipelineFlags(rootCmd)
}

func initConfig() {
	setupLogging(verbose)

	if err := config.LoadEnv(); err != nil {
		slog.Warn("could not load .env", slog.String("error", err.Error()))
	}

	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	var found bool
	cfg, found, cfgErr = config.LoadOrDefault(cfgFile)
	if cfgErr == nil {
		slog.Debug("configuration loaded", slog.String("path", cfgFile), slog.Bool("found", found))
	}
}

// setupLogging routes slog to stderr, at debug level when verbose
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// GetConfig returns the loaded configuration, or the error that prevented loading it
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}
