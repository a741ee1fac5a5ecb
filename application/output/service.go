package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"reelnotes/domain/output"
)

// ErrDriveNotConfigured is reported when an upload is requested without a Drive uploader
var ErrDriveNotConfigured = errors.New("Google Drive is not configured (run 'reelnotes setup' or set google.credentials_file)")

// UploaderFactory creates the Drive uploader on first use so that
// authentication only happens when an upload is actually requested
type UploaderFactory func(ctx context.Context) (output.Uploader, error)

// Options selects which sinks receive a result
type Options struct {
	Clipboard  bool
	OutputPath string
	Drive      bool
	FolderID   string
}

// Report describes what happened to each requested sink
type Report struct {
	Displayed bool
	Copied    bool
	SavedTo   string
	Uploaded  *output.UploadResult
	Errors    []error
}

// Service delivers pattern results to the console and optional sinks
type Service struct {
	renderer  output.Renderer
	clipboard output.Clipboard
	files     output.FileWriter
	uploader  UploaderFactory
	out       io.Writer
	now       func() time.Time
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithUploader enables Drive uploads
func WithUploader(factory UploaderFactory) ServiceOption {
	return func(s *Service) {
		s.uploader = factory
	}
}

// WithClock sets the time source used for upload filenames (for testing)
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new output service
func NewService(renderer output.Renderer, clipboard output.Clipboard, files output.FileWriter, out io.Writer, opts ...ServiceOption) *Service {
	s := &Service{
		renderer:  renderer,
		clipboard: clipboard,
		files:     files,
		out:       out,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Banner prints a boxed notice
func (s *Service) Banner(message string) {
	if err := s.renderer.Banner(s.out, message); err != nil {
		fmt.Fprintln(s.out, message)
	}
}

// Deliver displays the result and hands it to every requested sink.
// An empty result is ignored. Sink failures are reported and collected, never returned.
func (s *Service) Deliver(ctx context.Context, r output.Result, opts Options) *Report {
	report := &Report{}
	if r.Empty() {
		return report
	}

	if err := s.renderer.Result(s.out, r); err != nil {
		report.Errors = append(report.Errors, fmt.Errorf("display: %w", err))
		fmt.Fprintln(s.out, r.Text)
	}
	report.Displayed = true

	if opts.Clipboard {
		if err := s.clipboard.Copy(r.Text); err != nil {
			s.warn(report, "Could not copy to clipboard", err)
		} else {
			report.Copied = true
			fmt.Fprintln(s.out, "Output copied to clipboard.")
		}
	}

	if opts.OutputPath != "" {
		if err := s.files.WriteFile(opts.OutputPath, r.Text); err != nil {
			s.warn(report, "Could not save output", err)
		} else {
			report.SavedTo = opts.OutputPath
			fmt.Fprintf(s.out, "Output saved to %s\n", opts.OutputPath)
		}
	}

	if opts.Drive {
		uploaded, err := s.upload(ctx, r, opts.FolderID)
		if err != nil {
			s.warn(report, "Could not upload to Google Drive", err)
		} else {
			report.Uploaded = uploaded
			fmt.Fprintf(s.out, "Uploaded to Google Drive: %s\n", uploaded.URL)
		}
	}

	return report
}

func (s *Service) upload(ctx context.Context, r output.Result, folderID string) (*output.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrDriveNotConfigured
	}

	req, err := output.NewUploadRequest(r, folderID, s.now())
	if err != nil {
		return nil, err
	}

	uploader, err := s.uploader(ctx)
	if err != nil {
		return nil, err
	}
	return uploader.Upload(ctx, req)
}

func (s *Service) warn(report *Report, what string, err error) {
	report.Errors = append(report.Errors, err)
	fmt.Fprintf(s.out, "Warning: %s: %v\n", what, err)
}
