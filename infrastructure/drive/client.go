package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"reelnotes/domain/output"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// uploadFields are the file fields requested back from Drive after an upload
const uploadFields = "id, name, webViewLink, size"

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	CreateFile(ctx context.Context, file *drive.File, content io.Reader) (*drive.File, error)
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// CreateFile uploads content as a new file
func (s *GoogleDriveService) CreateFile(ctx context.Context, file *drive.File, content io.Reader) (*drive.File, error) {
	return s.service.Files.Create(file).
		Media(content).
		Fields(googleapi.Field(uploadFields)).
		Context(ctx).
		Do()
}

// Client implements output.Uploader using Google Drive API
type Client struct {
	driveService DriveService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// NewClient creates a new Google Drive client authenticated with a service account key
// If no options are provided, it initializes a real Google Drive service
func NewClient(ctx context.Context, credentialsPath string, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.driveService == nil {
		svc, err := newGoogleDriveService(ctx, credentialsPath)
		if err != nil {
			return nil, err
		}
		c.driveService = svc
	}

	return c, nil
}

// newGoogleDriveService creates a production Google Drive service
func newGoogleDriveService(ctx context.Context, credentialsPath string) (*GoogleDriveService, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client := config.Client(ctx)
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &GoogleDriveService{service: srv}, nil
}

// Upload implements output.Uploader
func (c *Client) Upload(ctx context.Context, req output.UploadRequest) (*output.UploadResult, error) {
	file := &drive.File{
		Name:     req.FileName,
		MimeType: req.MimeType,
	}
	if req.FolderID != "" {
		file.Parents = []string{req.FolderID}
	}

	created, err := c.driveService.CreateFile(ctx, file, strings.NewReader(req.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", req.FileName, err)
	}

	return &output.UploadResult{
		FileID:   created.Id,
		FileName: created.Name,
		URL:      created.WebViewLink,
		Size:     created.Size,
	}, nil
}

// Ensure Client implements output.Uploader
var _ output.Uploader = (*Client)(nil)

// IsServiceAccountKey reports whether the credentials file holds a service account key
// rather than an OAuth client definition
func IsServiceAccountKey(credentialsPath string) (bool, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return false, fmt.Errorf("unable to read credentials file: %w", err)
	}

	var key struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &key); err != nil {
		return false, fmt.Errorf("unable to parse credentials: %w", err)
	}
	return key.Type == "service_account", nil
}

// NewUploader picks service account or OAuth authentication based on the credentials file
func NewUploader(ctx context.Context, credentialsPath, tokenPath string, prompt io.Writer) (*Client, error) {
	serviceAccount, err := IsServiceAccountKey(credentialsPath)
	if err != nil {
		return nil, err
	}
	if serviceAccount {
		return NewClient(ctx, credentialsPath)
	}
	return NewClientWithOAuth(ctx, credentialsPath, tokenPath, prompt)
}
