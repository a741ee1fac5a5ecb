package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"reelnotes/domain/output"
)

type mockRenderer struct {
	results    []output.Result
	banners    []string
	shouldFail bool
}

func (m *mockRenderer) Banner(w io.Writer, message string) error {
	m.banners = append(m.banners, message)
	if m.shouldFail {
		return errors.New("render failed")
	}
	_, err := fmt.Fprintf(w, "[%s]\n", message)
	return err
}

func (m *mockRenderer) Result(w io.Writer, r output.Result) error {
	m.results = append(m.results, r)
	if m.shouldFail {
		return errors.New("render failed")
	}
	_, err := fmt.Fprintf(w, "Fabric Output (%s)\n%s\n", r.Pattern, r.Text)
	return err
}

type mockClipboard struct {
	copied     []string
	shouldFail bool
	failError  error
}

func (m *mockClipboard) Copy(text string) error {
	if m.shouldFail {
		return m.failError
	}
	m.copied = append(m.copied, text)
	return nil
}

type mockFileWriter struct {
	files      map[string]string
	shouldFail bool
	failError  error
}

func newMockFileWriter() *mockFileWriter {
	return &mockFileWriter{files: make(map[string]string)}
}

func (m *mockFileWriter) WriteFile(path, text string) error {
	if m.shouldFail {
		return m.failError
	}
	m.files[path] = text
	return nil
}

type mockUploader struct {
	requests   []output.UploadRequest
	shouldFail bool
	failError  error
}

func (m *mockUploader) Upload(ctx context.Context, req output.UploadRequest) (*output.UploadResult, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	m.requests = append(m.requests, req)
	return &output.UploadResult{FileID: "f1", FileName: req.FileName, URL: "https://drive.example/f1"}, nil
}

func factoryFor(u output.Uploader) UploaderFactory {
	return func(ctx context.Context) (output.Uploader, error) {
		return u, nil
	}
}

var fixedNow = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

func TestService_DeliverAllSinks(t *testing.T) {
	var buf bytes.Buffer
	renderer := &mockRenderer{}
	clip := &mockClipboard{}
	files := newMockFileWriter()
	uploader := &mockUploader{}
	svc := NewService(renderer, clip, files, &buf, WithUploader(factoryFor(uploader)), WithClock(fixedNow))

	r := output.Result{Pattern: "summarize", Text: "# Summary\nGo is fun"}
	report := svc.Deliver(context.Background(), r, Options{
		Clipboard:  true,
		OutputPath: "notes/out.md",
		Drive:      true,
		FolderID:   "folder-1",
	})

	if !report.Displayed || !report.Copied || report.SavedTo != "notes/out.md" || report.Uploaded == nil {
		t.Errorf("report = %+v, want every sink done", report)
	}
	if len(report.Errors) != 0 {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
	if len(clip.copied) != 1 || clip.copied[0] != r.Text {
		t.Errorf("clipboard = %q, want raw text", clip.copied)
	}
	if files.files["notes/out.md"] != r.Text {
		t.Errorf("file content = %q", files.files["notes/out.md"])
	}
	if got := uploader.requests[0]; got.FileName != "summarize-2026-03-04-050607.md" || got.FolderID != "folder-1" {
		t.Errorf("upload request = %+v", got)
	}

	out := buf.String()
	for _, want := range []string{"Fabric Output (summarize)", "Output copied to clipboard.", "Output saved to notes/out.md", "Uploaded to Google Drive: https://drive.example/f1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestService_DeliverDisplayOnly(t *testing.T) {
	var buf bytes.Buffer
	renderer := &mockRenderer{}
	clip := &mockClipboard{}
	files := newMockFileWriter()
	svc := NewService(renderer, clip, files, &buf)

	report := svc.Deliver(context.Background(), output.Result{Pattern: "p", Text: "text"}, Options{})

	if !report.Displayed {
		t.Error("result should always be displayed")
	}
	if len(clip.copied) != 0 || len(files.files) != 0 {
		t.Error("no optional sink should run without being requested")
	}
}

func TestService_DeliverEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	renderer := &mockRenderer{}
	clip := &mockClipboard{}
	files := newMockFileWriter()
	svc := NewService(renderer, clip, files, &buf)

	report := svc.Deliver(context.Background(), output.Result{Pattern: "p", Text: "  \n"}, Options{Clipboard: true, OutputPath: "out.md"})

	if report.Displayed || report.Copied || report.SavedTo != "" {
		t.Errorf("report = %+v, want nothing done", report)
	}
	if len(renderer.results) != 0 || len(clip.copied) != 0 || len(files.files) != 0 {
		t.Error("an empty result must not reach any sink")
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestService_SinkFailuresAreIndependent(t *testing.T) {
	var buf bytes.Buffer
	clip := &mockClipboard{shouldFail: true, failError: errors.New("xclip missing")}
	files := newMockFileWriter()
	uploader := &mockUploader{shouldFail: true, failError: errors.New("quota exceeded")}
	svc := NewService(&mockRenderer{}, clip, files, &buf, WithUploader(factoryFor(uploader)))

	report := svc.Deliver(context.Background(), output.Result{Pattern: "p", Text: "x"}, Options{
		Clipboard:  true,
		OutputPath: "out.md",
		Drive:      true,
	})

	if report.Copied {
		t.Error("Copied should be false after clipboard failure")
	}
	if report.SavedTo != "out.md" {
		t.Errorf("file sink should still run, SavedTo = %q", report.SavedTo)
	}
	if len(report.Errors) != 2 {
		t.Errorf("Errors = %v, want 2", report.Errors)
	}
	out := buf.String()
	if !strings.Contains(out, "Warning: Could not copy to clipboard: xclip missing") {
		t.Errorf("missing clipboard warning:\n%s", out)
	}
	if !strings.Contains(out, "Warning: Could not upload to Google Drive: quota exceeded") {
		t.Errorf("missing drive warning:\n%s", out)
	}
}

func TestService_DriveWithoutUploader(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(&mockRenderer{}, &mockClipboard{}, newMockFileWriter(), &buf)

	report := svc.Deliver(context.Background(), output.Result{Pattern: "p", Text: "x"}, Options{Drive: true})
	if len(report.Errors) != 1 || !errors.Is(report.Errors[0], ErrDriveNotConfigured) {
		t.Errorf("Errors = %v, want ErrDriveNotConfigured", report.Errors)
	}
}

func TestService_UploaderFactoryIsLazy(t *testing.T) {
	var buf bytes.Buffer
	created := 0
	factory := func(ctx context.Context) (output.Uploader, error) {
		created++
		return &mockUploader{}, nil
	}
	svc := NewService(&mockRenderer{}, &mockClipboard{}, newMockFileWriter(), &buf, WithUploader(factory))

	svc.Deliver(context.Background(), output.Result{Pattern: "p", Text: "x"}, Options{})
	if created != 0 {
		t.Errorf("uploader created %d times without --drive", created)
	}

	svc.Deliver(context.Background(), output.Result{Pattern: "p", Text: "x"}, Options{Drive: true})
	if created != 1 {
		t.Errorf("uploader created %d times, want 1", created)
	}
}

func TestService_RenderFailureFallsBackToRawText(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(&mockRenderer{shouldFail: true}, &mockClipboard{}, newMockFileWriter(), &buf)

	report := svc.Deliver(context.Background(), output.Result{Pattern: "p", Text: "raw body"}, Options{})
	if !report.Displayed {
		t.Error("Displayed should be true after fallback")
	}
	if !strings.Contains(buf.String(), "raw body") {
		t.Errorf("output = %q, want raw text", buf.String())
	}
}

func TestService_SameResultSamePathIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	files := newMockFileWriter()
	svc := NewService(&mockRenderer{}, &mockClipboard{}, files, &buf)
	r := output.Result{Pattern: "p", Text: "stable"}

	svc.Deliver(context.Background(), r, Options{OutputPath: "o.md"})
	first := files.files["o.md"]
	svc.Deliver(context.Background(), r, Options{OutputPath: "o.md"})

	if files.files["o.md"] != first {
		t.Errorf("second write changed content: %q vs %q", files.files["o.md"], first)
	}
}
