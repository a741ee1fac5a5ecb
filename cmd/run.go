package cmd

import (
	"context"

	appmedia "reelnotes/application/media"
	appoutput "reelnotes/application/output"
	apppattern "reelnotes/application/pattern"
	"reelnotes/application/pipeline"
	"reelnotes/application/transcription"
	"reelnotes/domain/media"
	"reelnotes/domain/output"
	"reelnotes/domain/pattern"
	"reelnotes/domain/transcript"
	"reelnotes/infrastructure/config"
	"reelnotes/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var (
	runKeep      bool
	runModel     string
	runPattern   string
	runClipboard bool
	runOutput    string
	runDrive     bool
	runBackend   string
)

func registerPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&runKeep, "keep", "k", false, "Keep the downloaded video and audio files")
	cmd.Flags().StringVarP(&runModel, "model", "m", string(transcript.DefaultModelSize), "Whisper model size (tiny, base, small, medium, large, turbo, *.en)")
	cmd.Flags().StringVarP(&runPattern, "pattern", "p", pattern.DefaultName, "Fabric pattern to apply")
	cmd.Flags().BoolVarP(&runClipboard, "clipboard", "c", false, "Copy the result to the clipboard")
	cmd.Flags().StringVarP(&runOutput, "output", "o", "", "Save the result to a file")
	cmd.Flags().BoolVar(&runDrive, "drive", false, "Upload the result to Google Drive")
	cmd.Flags().StringVar(&runBackend, "backend", string(transcript.DefaultBackend), "Transcription backend (whisper or openai)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	input := pipelineInput(cmd, cfg, args[0])

	cache, err := newTranscriberCache(cfg, flagOrConfig(cmd, "backend", runBackend, cfg.Transcription.Backend))
	if err != nil {
		return err
	}

	store := filesystem.NewStore()
	deps := PipelineDependencies{
		Fetcher:      newFetcher(cfg),
		Extractor:    newExtractor(cfg),
		Store:        store,
		Transcribers: cache,
		Runner:       newPatternRunner(cfg),
		Renderer:     newRenderer(),
		Clipboard:    newClipboard(),
		Files:        store,
		Uploader:     newUploaderFactory(cfg, DefaultOutput),
	}

	_, err = RunPipelineWithDependencies(cmd.Context(), deps, cfg, input, DefaultOutput)
	return err
}

// pipelineInput merges flags over config; a flag wins only when set explicitly
func pipelineInput(cmd *cobra.Command, cfg *config.Config, url string) pipeline.Input {
	clip := cfg.Output.Clipboard
	if cmd.Flags().Changed("clipboard") {
		clip = runClipboard
	}

	return pipeline.Input{
		URL:     url,
		Model:   flagOrConfig(cmd, "model", runModel, cfg.Transcription.Model),
		Pattern: flagOrConfig(cmd, "pattern", runPattern, cfg.Pattern.Name),
		Keep:    runKeep,
		Output: appoutput.Options{
			Clipboard:  clip,
			OutputPath: runOutput,
			Drive:      runDrive,
			FolderID:   cfg.Google.FolderID,
		},
	}
}

func flagOrConfig(cmd *cobra.Command, name, flagValue, configValue string) string {
	if cmd.Flags().Changed(name) || configValue == "" {
		return flagValue
	}
	return configValue
}

// PipelineDependencies holds the ports a pipeline run needs
type PipelineDependencies struct {
	Fetcher      media.Fetcher
	Extractor    media.AudioExtractor
	Store        media.FileStore
	Transcribers *transcript.Cache
	Runner       pattern.Runner
	Renderer     output.Renderer
	Clipboard    output.Clipboard
	Files        output.FileWriter
	Uploader     appoutput.UploaderFactory // Optional
}

// RunPipelineWithDependencies runs the full pipeline with injected dependencies (for testing)
func RunPipelineWithDependencies(
	ctx context.Context,
	deps PipelineDependencies,
	cfg *config.Config,
	input pipeline.Input,
	out OutputWriter,
) (*pipeline.Result, error) {
	var deliveryOpts []appoutput.ServiceOption
	if deps.Uploader != nil {
		deliveryOpts = append(deliveryOpts, appoutput.WithUploader(deps.Uploader))
	}

	service := pipeline.NewService(
		appmedia.NewFetchService(deps.Fetcher, cfg.Paths.DownloadDirectory, cfg.Fetch.Format),
		appmedia.NewExtractService(deps.Extractor, deps.Store, cfg.Audio.Extension, cfg.Audio.Quality),
		transcription.NewService(deps.Transcribers, cfg.Transcription.Language),
		apppattern.NewService(deps.Runner),
		appoutput.NewService(deps.Renderer, deps.Clipboard, deps.Files, out, deliveryOpts...),
		deps.Store,
		out,
		pipeline.WithProgramName(programName),
	)

	return service.Run(ctx, input)
}
