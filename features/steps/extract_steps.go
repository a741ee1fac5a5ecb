//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelnotes/cmd"
	"reelnotes/domain/media"
	"reelnotes/infrastructure/ffmpeg"
	"reelnotes/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

// fakeFFmpeg stands in for the ffmpeg binary; it writes the output file named by the last argument
type fakeFFmpeg struct {
	installed bool
	lastArgs  []string
}

func (f *fakeFFmpeg) Run(ctx context.Context, name string, args ...string) error {
	f.lastArgs = args
	if len(args) == 0 {
		return fmt.Errorf("no arguments")
	}
	return os.WriteFile(args[len(args)-1], []byte("audio"), 0644)
}

func (f *fakeFFmpeg) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if !f.installed {
		return nil, fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return []byte("ffmpeg version 7.0"), nil
}

// extractContext holds test state for extraction scenarios
type extractContext struct {
	tempDir    string
	sourcePath string
	ffmpeg     *fakeFFmpeg
	output     *bytes.Buffer
	err        error
}

// SharedExtractContext is reset before each scenario via Before hook
var SharedExtractContext *extractContext

func getExtractContext() *extractContext {
	return SharedExtractContext
}

func InitializeExtractScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "extract-test-*")
		if err != nil {
			return c, err
		}
		SharedExtractContext = &extractContext{
			tempDir: tempDir,
			ffmpeg:  &fakeFFmpeg{installed: true},
			output:  &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if e := getExtractContext(); e != nil && e.tempDir != "" {
			os.RemoveAll(e.tempDir)
		}
		SharedExtractContext = nil
		return c, nil
	})

	ctx.Step(`^a downloaded video "([^"]*)"$`, aDownloadedVideo)
	ctx.Step(`^ffmpeg is not available$`, ffmpegIsNotAvailable)
	ctx.Step(`^I extract audio from "([^"]*)"$`, iExtractAudioFrom)
	ctx.Step(`^I extract audio from "([^"]*)" at quality "([^"]*)"$`, iExtractAudioFromAtQuality)
	ctx.Step(`^the extraction should succeed$`, theExtractionShouldSucceed)
	ctx.Step(`^the extraction should fail with "([^"]*)"$`, theExtractionShouldFailWith)
	ctx.Step(`^the audio file "([^"]*)" should exist$`, theAudioFileShouldExist)
	ctx.Step(`^ffmpeg should have been called with quality "([^"]*)"$`, ffmpegShouldHaveBeenCalledWithQuality)
}

func aDownloadedVideo(name string) error {
	e := getExtractContext()
	e.sourcePath = filepath.Join(e.tempDir, name)
	return os.WriteFile(e.sourcePath, []byte("video"), 0644)
}

func ffmpegIsNotAvailable() error {
	getExtractContext().ffmpeg.installed = false
	return nil
}

func runExtract(name, quality string) {
	e := getExtractContext()
	extractor := ffmpeg.NewExtractor(ffmpeg.WithCommandRunner(e.ffmpeg))
	e.err = cmd.RunExtractAudioWithDependencies(
		context.Background(),
		extractor,
		filesystem.NewStore(),
		media.DefaultAudioExtension,
		quality,
		filepath.Join(e.tempDir, name),
		e.output,
	)
}

func iExtractAudioFrom(name string) error {
	runExtract(name, media.DefaultAudioQuality)
	return nil
}

func iExtractAudioFromAtQuality(name, quality string) error {
	runExtract(name, quality)
	return nil
}

func theExtractionShouldSucceed() error {
	e := getExtractContext()
	if e.err != nil {
		return fmt.Errorf("expected success, got %v", e.err)
	}
	if !strings.Contains(e.output.String(), "Successfully created:") {
		return fmt.Errorf("expected success message, got:\n%s", e.output.String())
	}
	return nil
}

func theExtractionShouldFailWith(expected string) error {
	e := getExtractContext()
	if e.err == nil {
		return fmt.Errorf("expected an error containing %q", expected)
	}
	if !strings.Contains(e.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, e.err.Error())
	}
	return nil
}

func theAudioFileShouldExist(name string) error {
	path := filepath.Join(getExtractContext().tempDir, name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("expected %s to exist: %v", path, err)
	}
	return nil
}

func ffmpegShouldHaveBeenCalledWithQuality(quality string) error {
	args := getExtractContext().ffmpeg.lastArgs
	for i, arg := range args {
		if arg == "-q:a" && i+1 < len(args) {
			if args[i+1] != quality {
				return fmt.Errorf("quality = %q, want %q", args[i+1], quality)
			}
			return nil
		}
	}
	return fmt.Errorf("ffmpeg was not given a quality: %v", args)
}
