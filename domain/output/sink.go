package output

import (
	"context"
	"io"
	"strings"
)

// Result is the transformed text produced by a pattern
type Result struct {
	Pattern string
	Text    string
}

// Empty reports whether there is nothing worth delivering
func (r Result) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Renderer presents pipeline messages and results to the user
type Renderer interface {
	// Banner prints a boxed notice, e.g. before a long-running stage
	Banner(w io.Writer, message string) error

	// Result prints a result as formatted markdown labeled with its pattern
	Result(w io.Writer, r Result) error
}

// Clipboard copies text to the system clipboard
type Clipboard interface {
	Copy(text string) error
}

// FileWriter persists text to a local path, replacing any existing content
type FileWriter interface {
	WriteFile(path, text string) error
}

// Uploader stores text remotely (e.g. Google Drive) and returns where it went
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}
