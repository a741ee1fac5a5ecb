package output

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// UploadRequest contains the parameters needed to upload a result to remote storage
type UploadRequest struct {
	FileName string // Target filename
	FolderID string // Target folder ID (empty uploads to the root)
	MimeType string // MIME type of the content
	Content  string // Raw text to upload
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	FileID   string // Remote file ID
	FileName string // Name of the uploaded file
	URL      string // Link to view the file
	Size     int64  // Size of the uploaded content in bytes
}

// MimeTypeMarkdown is used for uploaded pattern output
const MimeTypeMarkdown = "text/markdown"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadFileName builds a remote filename from the pattern name and upload time,
// e.g. "extract_learning_points-2026-01-02-150405.md"
func UploadFileName(pattern string, at time.Time) string {
	name := strings.Trim(unsafeNameChars.ReplaceAllString(pattern, "_"), "_")
	if name == "" {
		name = "result"
	}
	return fmt.Sprintf("%s-%s.md", name, at.Format("2006-01-02-150405"))
}

// NewUploadRequest creates an UploadRequest for a pattern result
func NewUploadRequest(r Result, folderID string, at time.Time) (UploadRequest, error) {
	if r.Empty() {
		return UploadRequest{}, fmt.Errorf("nothing to upload: result is empty")
	}
	return UploadRequest{
		FileName: UploadFileName(r.Pattern, at),
		FolderID: folderID,
		MimeType: MimeTypeMarkdown,
		Content:  r.Text,
	}, nil
}
