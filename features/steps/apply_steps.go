//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	appoutput "reelnotes/application/output"
	"reelnotes/cmd"
	"reelnotes/domain/output"
	"reelnotes/infrastructure/console"
	"reelnotes/infrastructure/drive"
	"reelnotes/infrastructure/fabric"
	"reelnotes/infrastructure/filesystem"

	"github.com/cucumber/godog"
	gdrive "google.golang.org/api/drive/v3"
)

// fakeDrive records files created through the Drive client
type fakeDrive struct {
	files   []*gdrive.File
	content []string
}

func (f *fakeDrive) CreateFile(ctx context.Context, file *gdrive.File, content io.Reader) (*gdrive.File, error) {
	b, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	f.files = append(f.files, file)
	f.content = append(f.content, string(b))
	id := fmt.Sprintf("file-%d", len(f.files))
	return &gdrive.File{
		Id:          id,
		Name:        file.Name,
		WebViewLink: "https://drive.google.com/file/d/" + id + "/view",
		Size:        int64(len(b)),
	}, nil
}

// applyContext holds test state for apply scenarios
type applyContext struct {
	tempDir    string
	fabricPath string
	drive      *fakeDrive
	driveReady bool
	clipboard  *recordingClipboard
	output     *bytes.Buffer
	err        error
}

// SharedApplyContext is reset before each scenario via Before hook
var SharedApplyContext *applyContext

func getApplyContext() *applyContext {
	return SharedApplyContext
}

func InitializeApplyScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "apply-test-*")
		if err != nil {
			return c, err
		}
		SharedApplyContext = &applyContext{
			tempDir:    tempDir,
			fabricPath: filepath.Join(tempDir, "bin", "fabric"),
			drive:      &fakeDrive{},
			clipboard:  &recordingClipboard{},
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if a := getApplyContext(); a != nil && a.tempDir != "" {
			os.RemoveAll(a.tempDir)
		}
		SharedApplyContext = nil
		return c, nil
	})

	ctx.Step(`^fabric echoes its input in upper case$`, fabricEchoesInUpperCase)
	ctx.Step(`^fabric prints nothing$`, fabricPrintsNothing)
	ctx.Step(`^fabric exits with error "([^"]*)"$`, fabricExitsWithError)
	ctx.Step(`^Google Drive is configured$`, googleDriveIsConfigured)
	ctx.Step(`^I apply pattern "([^"]*)" to "([^"]*)"$`, iApplyPatternTo)
	ctx.Step(`^I apply pattern "([^"]*)" to "([^"]*)" uploading to Drive$`, iApplyPatternToUploadingToDrive)
	ctx.Step(`^I apply pattern "([^"]*)" to "([^"]*)" saving to "([^"]*)"$`, iApplyPatternToSavingTo)
	ctx.Step(`^the apply should succeed$`, theApplyShouldSucceed)
	ctx.Step(`^the apply should fail$`, theApplyShouldFail)
	ctx.Step(`^the apply output should contain "([^"]*)"$`, theApplyOutputShouldContain)
	ctx.Step(`^the saved file "([^"]*)" should contain "([^"]*)"$`, theSavedFileShouldContain)
	ctx.Step(`^Drive should have received a file named "([^"]*)" containing "([^"]*)"$`, driveShouldHaveReceived)
	ctx.Step(`^nothing should have been uploaded$`, nothingShouldHaveBeenUploaded)
}

func fabricEchoesInUpperCase() error {
	return writeScript(getApplyContext().fabricPath, uppercaseScript)
}

func fabricPrintsNothing() error {
	return writeScript(getApplyContext().fabricPath, silentScript)
}

func fabricExitsWithError(msg string) error {
	return writeScript(getApplyContext().fabricPath, failingScript(msg))
}

func googleDriveIsConfigured() error {
	getApplyContext().driveReady = true
	return nil
}

func runApply(name, text string, opts appoutput.Options) {
	a := getApplyContext()

	var serviceOpts []appoutput.ServiceOption
	if a.driveReady {
		serviceOpts = append(serviceOpts, appoutput.WithUploader(func(ctx context.Context) (output.Uploader, error) {
			return drive.NewClient(ctx, "", drive.WithDriveService(a.drive))
		}))
	}
	serviceOpts = append(serviceOpts, appoutput.WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	}))

	store := filesystem.NewStore()
	delivery := appoutput.NewService(
		console.NewRenderer(console.WithMarkdownStyle(console.StylePlain)),
		a.clipboard,
		store,
		a.output,
		serviceOpts...,
	)

	a.err = cmd.RunApplyWithDependencies(
		context.Background(),
		fabric.NewRunner(fabric.WithFabricPath(a.fabricPath)),
		delivery,
		name,
		text,
		opts,
		a.output,
	)
}

func iApplyPatternTo(name, text string) error {
	runApply(name, text, appoutput.Options{})
	return nil
}

func iApplyPatternToUploadingToDrive(name, text string) error {
	runApply(name, text, appoutput.Options{Drive: true, FolderID: "folder-123"})
	return nil
}

func iApplyPatternToSavingTo(name, text, path string) error {
	runApply(name, text, appoutput.Options{OutputPath: filepath.Join(getApplyContext().tempDir, path)})
	return nil
}

func theApplyShouldSucceed() error {
	a := getApplyContext()
	if a.err != nil {
		return fmt.Errorf("expected success, got %v\nOutput:\n%s", a.err, a.output.String())
	}
	return nil
}

func theApplyShouldFail() error {
	if getApplyContext().err == nil {
		return fmt.Errorf("expected apply to fail")
	}
	return nil
}

func theApplyOutputShouldContain(expected string) error {
	a := getApplyContext()
	if !strings.Contains(a.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, a.output.String())
	}
	return nil
}

func theSavedFileShouldContain(path, expected string) error {
	content, err := os.ReadFile(filepath.Join(getApplyContext().tempDir, path))
	if err != nil {
		return fmt.Errorf("failed to read saved file: %w", err)
	}
	if !strings.Contains(string(content), expected) {
		return fmt.Errorf("saved file = %q, want containing %q", content, expected)
	}
	return nil
}

func driveShouldHaveReceived(name, expected string) error {
	d := getApplyContext().drive
	if len(d.files) != 1 {
		return fmt.Errorf("expected 1 upload, got %d", len(d.files))
	}
	if d.files[0].Name != name {
		return fmt.Errorf("uploaded name = %q, want %q", d.files[0].Name, name)
	}
	if len(d.files[0].Parents) != 1 || d.files[0].Parents[0] != "folder-123" {
		return fmt.Errorf("uploaded parents = %v, want [folder-123]", d.files[0].Parents)
	}
	if !strings.Contains(d.content[0], expected) {
		return fmt.Errorf("uploaded content = %q, want containing %q", d.content[0], expected)
	}
	return nil
}

func nothingShouldHaveBeenUploaded() error {
	if n := len(getApplyContext().drive.files); n != 0 {
		return fmt.Errorf("expected no uploads, got %d", n)
	}
	return nil
}
