//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	appoutput "reelnotes/application/output"
	"reelnotes/application/pipeline"
	"reelnotes/cmd"
	"reelnotes/domain/media"
	"reelnotes/domain/transcript"
	"reelnotes/infrastructure/config"
	"reelnotes/infrastructure/console"
	"reelnotes/infrastructure/fabric"
	"reelnotes/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

// fakeFetcher writes a placeholder video named after the registered title
type fakeFetcher struct {
	titles   map[string]string
	rejected map[string]string
}

func (f *fakeFetcher) Fetch(ctx context.Context, req *media.FetchRequest) (string, error) {
	if msg, ok := f.rejected[req.URL]; ok {
		return "", errors.New(msg)
	}
	title, ok := f.titles[req.URL]
	if !ok {
		return "", fmt.Errorf("ERROR: Unsupported URL: %s", req.URL)
	}
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(req.OutputDir, title+".mp4")
	return path, os.WriteFile(path, []byte("video"), 0644)
}

// fakeExtractor writes a placeholder audio file at the requested output path
type fakeExtractor struct {
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, req *media.AudioExtractionRequest) error {
	f.calls++
	return os.WriteFile(req.OutputPath(), []byte("audio"), 0644)
}

// fakeTranscriber returns a fixed transcript
type fakeTranscriber struct {
	text  string
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req *transcript.Request) (string, error) {
	f.calls++
	return f.text, nil
}

// recordingClipboard remembers copied text
type recordingClipboard struct {
	copied []string
}

func (r *recordingClipboard) Copy(text string) error {
	r.copied = append(r.copied, text)
	return nil
}

// pipelineContext holds test state for pipeline scenarios
type pipelineContext struct {
	tempDir     string
	fabricPath  string
	fetcher     *fakeFetcher
	extractor   *fakeExtractor
	transcriber *fakeTranscriber
	clipboard   *recordingClipboard
	output      *bytes.Buffer
	result      *pipeline.Result
	results     []*pipeline.Result
	saved       []string
	err         error
}

// SharedPipelineContext is reset before each scenario via Before hook
var SharedPipelineContext *pipelineContext

func getPipelineContext() *pipelineContext {
	return SharedPipelineContext
}

func InitializePipelineScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "pipeline-test-*")
		if err != nil {
			return c, err
		}
		SharedPipelineContext = &pipelineContext{
			tempDir:     tempDir,
			fabricPath:  filepath.Join(tempDir, "bin", "fabric"),
			fetcher:     &fakeFetcher{titles: make(map[string]string), rejected: make(map[string]string)},
			extractor:   &fakeExtractor{},
			transcriber: &fakeTranscriber{},
			clipboard:   &recordingClipboard{},
			output:      &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if p := getPipelineContext(); p != nil && p.tempDir != "" {
			os.RemoveAll(p.tempDir)
		}
		SharedPipelineContext = nil
		return c, nil
	})

	ctx.Step(`^a video at "([^"]*)" titled "([^"]*)"$`, aVideoAtTitled)
	ctx.Step(`^the video source rejects "([^"]*)" with "([^"]*)"$`, theVideoSourceRejectsWith)
	ctx.Step(`^the audio transcribes to "([^"]*)"$`, theAudioTranscribesTo)
	ctx.Step(`^fabric uppercases its input$`, fabricUppercasesItsInput)
	ctx.Step(`^fabric is not installed$`, fabricIsNotInstalled)
	ctx.Step(`^fabric fails with "([^"]*)"$`, fabricFailsWith)
	ctx.Step(`^I run the pipeline for "([^"]*)"$`, iRunThePipelineFor)
	ctx.Step(`^I run the pipeline for "([^"]*)" with options:$`, iRunThePipelineForWithOptions)
	ctx.Step(`^I run the pipeline for "([^"]*)" twice saving to "([^"]*)"$`, iRunThePipelineTwiceSavingTo)
	ctx.Step(`^the run should succeed$`, theRunShouldSucceed)
	ctx.Step(`^the run should fail at the "([^"]*)" stage$`, theRunShouldFailAtTheStage)
	ctx.Step(`^the downloaded video should (not )?exist$`, theDownloadedVideoShouldExist)
	ctx.Step(`^the extracted audio should (not )?exist$`, theExtractedAudioShouldExist)
	ctx.Step(`^nothing should have been extracted or transcribed$`, nothingShouldHaveBeenExtractedOrTranscribed)
	ctx.Step(`^the pipeline output should contain "([^"]*)"$`, thePipelineOutputShouldContain)
	ctx.Step(`^the pipeline output should list the kept files$`, thePipelineOutputShouldListTheKeptFiles)
	ctx.Step(`^the clipboard should contain "([^"]*)"$`, theClipboardShouldContain)
	ctx.Step(`^the clipboard should be empty$`, theClipboardShouldBeEmpty)
	ctx.Step(`^the result file "([^"]*)" should contain "([^"]*)"$`, theResultFileShouldContain)
	ctx.Step(`^the result file "([^"]*)" should not exist$`, theResultFileShouldNotExist)
	ctx.Step(`^both runs should produce identical output$`, bothRunsShouldProduceIdenticalOutput)
}

func aVideoAtTitled(url, title string) error {
	getPipelineContext().fetcher.titles[url] = title
	return nil
}

func theVideoSourceRejectsWith(url, msg string) error {
	getPipelineContext().fetcher.rejected[url] = msg
	return nil
}

func theAudioTranscribesTo(text string) error {
	getPipelineContext().transcriber.text = text
	return nil
}

// writeScript installs a shell script that plays the part of an external tool
func writeScript(path, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755)
}

const (
	uppercaseScript = "tr '[:lower:]' '[:upper:]'"
	silentScript    = "cat >/dev/null"
)

func failingScript(msg string) string {
	return fmt.Sprintf("cat >/dev/null\necho %q >&2\nexit 1", msg)
}

func fabricUppercasesItsInput() error {
	return writeScript(getPipelineContext().fabricPath, uppercaseScript)
}

func fabricIsNotInstalled() error {
	err := os.Remove(getPipelineContext().fabricPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func fabricFailsWith(msg string) error {
	return writeScript(getPipelineContext().fabricPath, failingScript(msg))
}

func (p *pipelineContext) config() *config.Config {
	cfg := config.Default()
	cfg.Paths.DownloadDirectory = filepath.Join(p.tempDir, "downloads")
	return cfg
}

func (p *pipelineContext) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.tempDir, path)
}

func (p *pipelineContext) run(input pipeline.Input) (*pipeline.Result, error) {
	store := filesystem.NewStore()
	deps := cmd.PipelineDependencies{
		Fetcher:   p.fetcher,
		Extractor: p.extractor,
		Store:     store,
		Transcribers: transcript.NewCache(func(size transcript.ModelSize) (transcript.Transcriber, error) {
			return p.transcriber, nil
		}),
		Runner:    fabric.NewRunner(fabric.WithFabricPath(p.fabricPath)),
		Renderer:  console.NewRenderer(console.WithMarkdownStyle(console.StylePlain)),
		Clipboard: p.clipboard,
		Files:     store,
	}
	return cmd.RunPipelineWithDependencies(context.Background(), deps, p.config(), input, p.output)
}

func iRunThePipelineFor(url string) error {
	p := getPipelineContext()
	p.result, p.err = p.run(pipeline.Input{URL: url})
	return nil
}

func iRunThePipelineForWithOptions(url string, table *godog.Table) error {
	p := getPipelineContext()
	input := pipeline.Input{URL: url}

	for _, row := range table.Rows {
		if len(row.Cells) < 2 {
			continue
		}
		key, value := row.Cells[0].Value, row.Cells[1].Value
		switch key {
		case "keep":
			input.Keep, _ = strconv.ParseBool(value)
		case "pattern":
			input.Pattern = value
		case "model":
			input.Model = value
		case "clipboard":
			input.Output.Clipboard, _ = strconv.ParseBool(value)
		case "output":
			input.Output.OutputPath = p.resolve(value)
		case "option":
			// header row
		default:
			return fmt.Errorf("unknown pipeline option %q", key)
		}
	}

	p.result, p.err = p.run(input)
	return nil
}

func iRunThePipelineTwiceSavingTo(url, path string) error {
	p := getPipelineContext()
	for i := 0; i < 2; i++ {
		result, err := p.run(pipeline.Input{URL: url, Output: appoutput.Options{OutputPath: p.resolve(path)}})
		if err != nil {
			return fmt.Errorf("run %d failed: %v", i+1, err)
		}
		content, err := os.ReadFile(p.resolve(path))
		if err != nil {
			return err
		}
		p.results = append(p.results, result)
		p.saved = append(p.saved, string(content))
	}
	return nil
}

func theRunShouldSucceed() error {
	p := getPipelineContext()
	if p.err != nil {
		return fmt.Errorf("expected success, got %v\nOutput:\n%s", p.err, p.output.String())
	}
	return nil
}

func theRunShouldFailAtTheStage(stage string) error {
	p := getPipelineContext()
	var stageErr *pipeline.StageError
	if !errors.As(p.err, &stageErr) {
		return fmt.Errorf("expected a stage error, got %v", p.err)
	}
	if string(stageErr.Stage) != stage {
		return fmt.Errorf("expected failure at %q, got %q", stage, stageErr.Stage)
	}
	return nil
}

func checkExists(path string, negate string) error {
	_, err := os.Stat(path)
	exists := err == nil
	if negate == "" && !exists {
		return fmt.Errorf("expected %s to exist", path)
	}
	if negate != "" && exists {
		return fmt.Errorf("expected %s to be removed", path)
	}
	return nil
}

func theDownloadedVideoShouldExist(negate string) error {
	p := getPipelineContext()
	if p.result == nil || p.result.VideoPath == "" {
		return fmt.Errorf("no video was downloaded")
	}
	return checkExists(p.result.VideoPath, negate)
}

func theExtractedAudioShouldExist(negate string) error {
	p := getPipelineContext()
	if p.result == nil || p.result.AudioPath == "" {
		return fmt.Errorf("no audio was extracted")
	}
	return checkExists(p.result.AudioPath, negate)
}

func nothingShouldHaveBeenExtractedOrTranscribed() error {
	p := getPipelineContext()
	if p.extractor.calls != 0 || p.transcriber.calls != 0 {
		return fmt.Errorf("extractor called %d times, transcriber called %d times", p.extractor.calls, p.transcriber.calls)
	}
	return nil
}

func thePipelineOutputShouldContain(expected string) error {
	p := getPipelineContext()
	if !strings.Contains(p.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, p.output.String())
	}
	return nil
}

func thePipelineOutputShouldListTheKeptFiles() error {
	p := getPipelineContext()
	out := p.output.String()
	for _, want := range []string{"Files kept at:", p.result.VideoPath, p.result.AudioPath} {
		if !strings.Contains(out, want) {
			return fmt.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	return nil
}

func theClipboardShouldContain(expected string) error {
	p := getPipelineContext()
	if len(p.clipboard.copied) == 0 {
		return fmt.Errorf("nothing was copied to the clipboard")
	}
	if got := strings.TrimSpace(p.clipboard.copied[len(p.clipboard.copied)-1]); got != expected {
		return fmt.Errorf("clipboard = %q, want %q", got, expected)
	}
	return nil
}

func theClipboardShouldBeEmpty() error {
	p := getPipelineContext()
	if len(p.clipboard.copied) != 0 {
		return fmt.Errorf("expected empty clipboard, got %q", p.clipboard.copied)
	}
	return nil
}

func theResultFileShouldContain(path, expected string) error {
	p := getPipelineContext()
	content, err := os.ReadFile(p.resolve(path))
	if err != nil {
		return fmt.Errorf("failed to read result file: %w", err)
	}
	if !strings.Contains(string(content), expected) {
		return fmt.Errorf("result file = %q, want containing %q", content, expected)
	}
	return nil
}

func theResultFileShouldNotExist(path string) error {
	return checkExists(getPipelineContext().resolve(path), "not ")
}

func bothRunsShouldProduceIdenticalOutput() error {
	p := getPipelineContext()
	if len(p.results) != 2 {
		return fmt.Errorf("expected 2 runs, got %d", len(p.results))
	}
	a, b := p.results[0], p.results[1]
	if a.Output.Text != b.Output.Text {
		return fmt.Errorf("pattern output differs: %q vs %q", a.Output.Text, b.Output.Text)
	}
	if p.saved[0] != p.saved[1] {
		return fmt.Errorf("saved files differ: %q vs %q", p.saved[0], p.saved[1])
	}
	return nil
}
