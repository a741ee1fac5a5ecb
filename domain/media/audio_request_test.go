package media

import (
	"strings"
	"testing"
)

func TestNewAudioExtractionRequest(t *testing.T) {
	tests := []struct {
		name          string
		sourcePath    string
		extension     string
		quality       string
		wantExtension string
		wantQuality   string
		wantOutput    string
		wantErr       bool
		errContains   string
	}{
		{
			name:          "defaults applied",
			sourcePath:    "downloads/My Reel.mp4",
			wantExtension: "mp3",
			wantQuality:   "0",
			wantOutput:    "downloads/My Reel.mp3",
		},
		{
			name:          "extension with leading dot",
			sourcePath:    "downloads/clip.webm",
			extension:     ".m4a",
			quality:       "2",
			wantExtension: "m4a",
			wantQuality:   "2",
			wantOutput:    "downloads/clip.m4a",
		},
		{
			name:        "empty source path",
			sourcePath:  "",
			wantErr:     true,
			errContains: "source video path is required",
		},
		{
			name:        "extension with separator",
			sourcePath:  "downloads/clip.mp4",
			extension:   "../mp3",
			wantErr:     true,
			errContains: "invalid audio extension",
		},
		{
			name:        "source already audio",
			sourcePath:  "downloads/podcast.mp3",
			wantErr:     true,
			errContains: "already has the .mp3 extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewAudioExtractionRequest(tt.sourcePath, tt.extension, tt.quality)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewAudioExtractionRequest() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewAudioExtractionRequest() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewAudioExtractionRequest() unexpected error: %v", err)
			}
			if got.Extension != tt.wantExtension {
				t.Errorf("Extension = %q, want %q", got.Extension, tt.wantExtension)
			}
			if got.Quality != tt.wantQuality {
				t.Errorf("Quality = %q, want %q", got.Quality, tt.wantQuality)
			}
			if got.OutputPath() != tt.wantOutput {
				t.Errorf("OutputPath() = %q, want %q", got.OutputPath(), tt.wantOutput)
			}
		})
	}
}

func TestAudioPathFor(t *testing.T) {
	tests := []struct {
		videoPath string
		extension string
		want      string
	}{
		{"downloads/a.mp4", "mp3", "downloads/a.mp3"},
		{"downloads/a.b.webm", "mp3", "downloads/a.b.mp3"},
		{"noext", ".wav", "noext.wav"},
	}

	for _, tt := range tests {
		if got := AudioPathFor(tt.videoPath, tt.extension); got != tt.want {
			t.Errorf("AudioPathFor(%q, %q) = %q, want %q", tt.videoPath, tt.extension, got, tt.want)
		}
	}
}

func TestNewFetchRequest(t *testing.T) {
	req, err := NewFetchRequest("  https://example.com/reel/1  ", "", "")
	if err != nil {
		t.Fatalf("NewFetchRequest() unexpected error: %v", err)
	}
	if req.URL != "https://example.com/reel/1" {
		t.Errorf("URL = %q, want trimmed URL", req.URL)
	}
	if req.OutputDir != DefaultDownloadDirectory {
		t.Errorf("OutputDir = %q, want %q", req.OutputDir, DefaultDownloadDirectory)
	}
	if !strings.HasSuffix(req.OutputTemplate(), TitleTemplate) {
		t.Errorf("OutputTemplate() = %q, want suffix %q", req.OutputTemplate(), TitleTemplate)
	}

	if _, err := NewFetchRequest("   ", "downloads", ""); err == nil {
		t.Error("NewFetchRequest() with blank URL expected error, got nil")
	}
}
