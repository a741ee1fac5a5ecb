package transcript

import (
	"strings"
	"testing"
)

func TestParseModelSize(t *testing.T) {
	tests := []struct {
		input   string
		want    ModelSize
		wantErr bool
	}{
		{"", ModelBase, false},
		{"base", ModelBase, false},
		{"  Medium ", ModelMedium, false},
		{"tiny.en", ModelTinyEN, false},
		{"turbo", ModelTurbo, false},
		{"huge", "", true},
		{"large-v9", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseModelSize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseModelSize(%q) expected error, got %q", tt.input, got)
				}
				if !strings.Contains(err.Error(), "expected one of") {
					t.Errorf("error %q should list valid sizes", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseModelSize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseModelSize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestModelSizesIsACopy(t *testing.T) {
	sizes := ModelSizes()
	sizes[0] = "mutated"
	if ModelSizes()[0] != ModelTiny {
		t.Error("ModelSizes() exposed internal slice")
	}
}

func TestParseBackend(t *testing.T) {
	if b, err := ParseBackend(""); err != nil || b != BackendWhisper {
		t.Errorf("ParseBackend(\"\") = %q, %v; want whisper", b, err)
	}
	if b, err := ParseBackend("OpenAI"); err != nil || b != BackendOpenAI {
		t.Errorf("ParseBackend(\"OpenAI\") = %q, %v; want openai", b, err)
	}
	if _, err := ParseBackend("vosk"); err == nil {
		t.Error("ParseBackend(\"vosk\") expected error")
	}
}

func TestNewRequest(t *testing.T) {
	if _, err := NewRequest("", "base", ""); err == nil {
		t.Error("NewRequest with empty audio path expected error")
	}
	if _, err := NewRequest("a.mp3", "gigantic", ""); err == nil {
		t.Error("NewRequest with unknown model expected error")
	}

	req, err := NewRequest("a.mp3", "", "en")
	if err != nil {
		t.Fatalf("NewRequest unexpected error: %v", err)
	}
	if req.Model != DefaultModelSize || req.Language != "en" {
		t.Errorf("NewRequest = %+v, want default model and language en", req)
	}
}
