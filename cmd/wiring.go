package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	appoutput "reelnotes/application/output"
	"reelnotes/domain/output"
	"reelnotes/domain/transcript"
	"reelnotes/infrastructure/clipboard"
	"reelnotes/infrastructure/config"
	"reelnotes/infrastructure/console"
	"reelnotes/infrastructure/drive"
	"reelnotes/infrastructure/fabric"
	"reelnotes/infrastructure/ffmpeg"
	"reelnotes/infrastructure/openai"
	"reelnotes/infrastructure/whisper"
	"reelnotes/infrastructure/ytdlp"
)

// Production adapters built from configuration

func newFetcher(cfg *config.Config) *ytdlp.Fetcher {
	return ytdlp.NewFetcher(
		ytdlp.WithExecutable(cfg.Fetch.Executable),
		ytdlp.WithAutoInstall(cfg.Fetch.AutoInstall),
	)
}

func newExtractor(cfg *config.Config) *ffmpeg.Extractor {
	return ffmpeg.NewExtractor(ffmpeg.WithFFmpegPath(cfg.Audio.FFmpegPath))
}

func newPatternRunner(cfg *config.Config) *fabric.Runner {
	return fabric.NewRunner(
		fabric.WithFabricPath(cfg.Pattern.FabricPath),
		fabric.WithExtraArgs(strings.Fields(cfg.Pattern.ExtraArgs)...),
	)
}

func newRenderer() *console.Renderer {
	return console.NewRenderer(console.WithMarkdownStyle(console.StyleFor(os.Stdout)))
}

func newClipboard() *clipboard.System {
	return clipboard.New()
}

func newWhisper(cfg *config.Config) *whisper.Transcriber {
	return whisper.NewTranscriber(
		whisper.WithWhisperPath(cfg.Transcription.WhisperPath),
		whisper.WithTempDir(cfg.Transcription.WorkDir),
	)
}

// newTranscriberCache returns a cache that builds transcribers for the chosen backend
func newTranscriberCache(cfg *config.Config, backendName string) (*transcript.Cache, error) {
	backend, err := transcript.ParseBackend(backendName)
	if err != nil {
		return nil, err
	}

	switch backend {
	case transcript.BackendOpenAI:
		return transcript.NewCache(func(size transcript.ModelSize) (transcript.Transcriber, error) {
			return openai.NewTranscriber(cfg.OpenAIKey(), openai.WithModel(cfg.Transcription.OpenAIModel))
		}), nil
	default:
		return transcript.NewCache(func(size transcript.ModelSize) (transcript.Transcriber, error) {
			return newWhisper(cfg), nil
		}), nil
	}
}

// newUploaderFactory defers Drive authentication until an upload happens
func newUploaderFactory(cfg *config.Config, prompt io.Writer) appoutput.UploaderFactory {
	return func(ctx context.Context) (output.Uploader, error) {
		if _, err := os.Stat(cfg.Google.CredentialsFile); err != nil {
			return nil, fmt.Errorf("%w: %v", appoutput.ErrDriveNotConfigured, err)
		}
		return drive.NewUploader(ctx, cfg.Google.CredentialsFile, cfg.Google.TokenFile, prompt)
	}
}
