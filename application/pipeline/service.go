package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	appmedia "reelnotes/application/media"
	appoutput "reelnotes/application/output"
	apppattern "reelnotes/application/pattern"
	"reelnotes/application/transcription"
	"reelnotes/domain/media"
	"reelnotes/domain/output"
	"reelnotes/domain/pattern"
	"reelnotes/domain/transcript"

	"github.com/google/uuid"
)

const totalSteps = 5

// Input contains all input parameters for a pipeline run
type Input struct {
	URL     string
	Model   string // Whisper model size; empty uses the default
	Pattern string // Pattern name; empty uses pattern.DefaultName
	Keep    bool   // Keep the downloaded video and extracted audio
	Output  appoutput.Options
}

// Result contains everything a run produced, including partial results of a failed run
type Result struct {
	RunID      string
	VideoPath  string
	AudioPath  string
	Transcript string
	Output     output.Result
	PatternErr error
	Delivery   *appoutput.Report
	Cleanup    media.ReleaseResult
}

// Service orchestrates the download, extraction, transcription, pattern and output stages
type Service struct {
	fetcher     *appmedia.FetchService
	extractor   *appmedia.ExtractService
	transcriber *transcription.Service
	patterns    *apppattern.Service
	delivery    *appoutput.Service
	store       media.FileStore
	output      io.Writer
	program     string
	newRunID    func() string
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithProgramName sets the command name used in recovery hints
func WithProgramName(name string) ServiceOption {
	return func(s *Service) {
		if name != "" {
			s.program = name
		}
	}
}

// WithRunID sets the run id generator (for testing)
func WithRunID(gen func() string) ServiceOption {
	return func(s *Service) {
		s.newRunID = gen
	}
}

// NewService creates a new pipeline service
func NewService(
	fetcher *appmedia.FetchService,
	extractor *appmedia.ExtractService,
	transcriber *transcription.Service,
	patterns *apppattern.Service,
	delivery *appoutput.Service,
	store media.FileStore,
	output io.Writer,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		fetcher:     fetcher,
		extractor:   extractor,
		transcriber: transcriber,
		patterns:    patterns,
		delivery:    delivery,
		store:       store,
		output:      output,
		program:     "reelnotes",
		newRunID:    uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes the complete pipeline for one URL. Download, extraction and
// transcription failures are fatal and returned as *StageError, as is an
// interrupt during the pattern stage. Other pattern and output failures are
// reported on the output writer only. Intermediate files
// are released exactly once on every exit path.
func (s *Service) Run(ctx context.Context, input Input) (result *Result, err error) {
	startTime := time.Now()
	result = &Result{RunID: s.newRunID()}
	log := slog.With(slog.String("run_id", result.RunID))

	model, patternName, err := validateInput(input)
	if err != nil {
		s.reportError(err)
		return result, err
	}
	log.Debug("pipeline started",
		slog.String("url", input.URL),
		slog.String("model", model.String()),
		slog.String("pattern", patternName),
		slog.Bool("keep", input.Keep))

	registry := media.NewRegistry(s.store)
	defer func() {
		result.Cleanup = s.cleanup(registry, input.Keep)
		log.Debug("pipeline finished", slog.Duration("elapsed", time.Since(startTime)), slog.Bool("failed", err != nil))
		if err == nil {
			fmt.Fprintf(s.output, "Done! Completed in %s\n", formatDuration(time.Since(startTime)))
		}
	}()

	// Step 1: Download video
	fmt.Fprintf(s.output, "[1/%d] Downloading video...\n", totalSteps)
	fetched, err := s.fetcher.Fetch(ctx, input.URL)
	if err != nil {
		return result, s.fail(StageDownload, err, input, result)
	}
	registry.Register(media.KindVideo, fetched.VideoPath)
	result.VideoPath = fetched.VideoPath
	fmt.Fprintf(s.output, "      Downloaded: %s\n\n", fetched.VideoPath)

	// Step 2: Extract audio
	fmt.Fprintf(s.output, "[2/%d] Extracting audio...\n", totalSteps)
	registry.Register(media.KindAudio, s.extractor.OutputPathFor(fetched.VideoPath))
	extracted, err := s.extractor.Extract(ctx, appmedia.ExtractInput{SourcePath: fetched.VideoPath})
	if err != nil {
		return result, s.fail(StageExtract, err, input, result)
	}
	registry.Register(media.KindAudio, extracted.OutputPath)
	result.AudioPath = extracted.OutputPath
	fmt.Fprintf(s.output, "      Created: %s\n\n", extracted.OutputPath)

	// Step 3: Transcribe
	fmt.Fprintf(s.output, "[3/%d] Transcribing audio (model: %s)...\n", totalSteps, model)
	text, err := s.transcriber.Transcribe(ctx, transcription.Input{AudioPath: extracted.OutputPath, Model: model.String()})
	if err != nil {
		return result, s.fail(StageTranscribe, err, input, result)
	}
	result.Transcript = text
	fmt.Fprintf(s.output, "      Transcribed %d characters\n\n", len(text))

	// Step 4: Apply pattern
	fmt.Fprintf(s.output, "[4/%d] Applying pattern...\n", totalSteps)
	s.delivery.Banner(fmt.Sprintf("Running fabric with pattern: %s", patternName))
	result.Output, result.PatternErr = s.patterns.Apply(ctx, patternName, text)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, s.fail(StagePattern, ctxErr, input, result)
	}
	if result.PatternErr != nil {
		log.Debug("pattern failed", slog.String("error", result.PatternErr.Error()))
		fmt.Fprintln(s.output, apppattern.Describe(result.PatternErr))
	}
	fmt.Fprintln(s.output)

	// Step 5: Handle output
	fmt.Fprintf(s.output, "[5/%d] Handling output...\n", totalSteps)
	if result.Output.Empty() {
		fmt.Fprintln(s.output, "      No output to handle")
	} else {
		result.Delivery = s.delivery.Deliver(ctx, result.Output, input.Output)
	}
	fmt.Fprintln(s.output)

	return result, nil
}

func validateInput(input Input) (transcript.ModelSize, string, error) {
	model, err := transcript.ParseModelSize(input.Model)
	if err != nil {
		return "", "", &StageError{Stage: StageInput, Err: err}
	}

	name := input.Pattern
	if name == "" {
		name = pattern.DefaultName
	}
	if err := pattern.ValidateName(name); err != nil {
		return "", "", &StageError{Stage: StageInput, Err: err}
	}

	return model, name, nil
}

func (s *Service) fail(stage Stage, err error, input Input, result *Result) error {
	stageErr := &StageError{Stage: stage, Err: err}
	s.reportError(stageErr)
	s.showRecoveryCommands(stage, input, result)
	return stageErr
}

func (s *Service) reportError(err error) {
	fmt.Fprintf(s.output, "An error occurred: %v\n", err)
}

// cleanup releases the run's artifacts and reports what happened
func (s *Service) cleanup(registry *media.Registry, keep bool) media.ReleaseResult {
	released := registry.Release(keep)

	if len(released.Kept) > 0 {
		fmt.Fprintln(s.output, "Files kept at:")
		for _, a := range released.Kept {
			fmt.Fprintf(s.output, "  %s: %s\n", a.Kind, a.Path)
		}
		fmt.Fprintln(s.output)
	}

	if len(released.Removed) > 0 || len(released.Errors) > 0 {
		fmt.Fprintln(s.output, "Cleaning up...")
		for _, a := range released.Removed {
			fmt.Fprintf(s.output, "      Removed: %s\n", a.Path)
		}
		for _, e := range released.Errors {
			fmt.Fprintf(s.output, "      Warning: %v\n", e)
		}
		fmt.Fprintln(s.output)
	}

	return released
}

func (s *Service) showRecoveryCommands(failed Stage, input Input, result *Result) {
	// Without --keep the intermediate files are removed on exit, so a manual
	// retry has to start from the download.
	from := failed
	if !input.Keep {
		from = StageDownload
	}

	videoPath := result.VideoPath
	if videoPath == "" {
		videoPath = "<video>"
	}
	audioPath := result.AudioPath
	if audioPath == "" {
		audioPath = s.extractor.OutputPathFor(videoPath)
	}
	model := input.Model
	if model == "" {
		model = transcript.DefaultModelSize.String()
	}
	patternName := input.Pattern
	if patternName == "" {
		patternName = pattern.DefaultName
	}

	fmt.Fprintln(s.output)
	fmt.Fprintln(s.output, "To complete manually:")

	step := 1
	if from == StageDownload {
		fmt.Fprintf(s.output, "  %d. Download:   %s fetch %q\n", step, s.program, input.URL)
		step++
	}
	if from == StageDownload || from == StageExtract {
		fmt.Fprintf(s.output, "  %d. Extract:    %s extract-audio --source %q\n", step, s.program, videoPath)
		step++
	}
	fmt.Fprintf(s.output, "  %d. Transcribe: %s transcribe --source %q --model %s --output transcript.txt\n", step, s.program, audioPath, model)
	step++
	fmt.Fprintf(s.output, "  %d. Apply:      %s apply --pattern %s --input transcript.txt\n", step, s.program, patternName)
	if !input.Keep && failed != StageDownload {
		fmt.Fprintf(s.output, "  (rerun with --keep to retain intermediate files)\n")
	}
	fmt.Fprintln(s.output)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
