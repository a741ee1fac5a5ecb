package transcript

import (
	"fmt"
	"strings"
)

// ModelSize selects the speech model used for transcription
type ModelSize string

const (
	ModelTiny     ModelSize = "tiny"
	ModelTinyEN   ModelSize = "tiny.en"
	ModelBase     ModelSize = "base"
	ModelBaseEN   ModelSize = "base.en"
	ModelSmall    ModelSize = "small"
	ModelSmallEN  ModelSize = "small.en"
	ModelMedium   ModelSize = "medium"
	ModelMediumEN ModelSize = "medium.en"
	ModelLarge    ModelSize = "large"
	ModelTurbo    ModelSize = "turbo"
)

// DefaultModelSize is used when no size is requested
const DefaultModelSize = ModelBase

var modelSizes = []ModelSize{
	ModelTiny, ModelTinyEN,
	ModelBase, ModelBaseEN,
	ModelSmall, ModelSmallEN,
	ModelMedium, ModelMediumEN,
	ModelLarge, ModelTurbo,
}

// ModelSizes returns every supported model size, smallest first
func ModelSizes() []ModelSize {
	out := make([]ModelSize, len(modelSizes))
	copy(out, modelSizes)
	return out
}

// ParseModelSize validates a model size name. Empty input yields the default.
func ParseModelSize(s string) (ModelSize, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultModelSize, nil
	}
	for _, m := range modelSizes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown model size %q (expected one of %s)", s, joinSizes(modelSizes))
}

func (m ModelSize) String() string {
	return string(m)
}

func joinSizes(sizes []ModelSize) string {
	names := make([]string, len(sizes))
	for i, s := range sizes {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Backend selects which speech-to-text implementation runs the model
type Backend string

const (
	BackendWhisper Backend = "whisper"
	BackendOpenAI  Backend = "openai"
)

// DefaultBackend runs the local whisper CLI
const DefaultBackend = BackendWhisper

// ParseBackend validates a backend name. Empty input yields the default.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultBackend, nil
	case BackendWhisper:
		return BackendWhisper, nil
	case BackendOpenAI:
		return BackendOpenAI, nil
	}
	return "", fmt.Errorf("unknown transcription backend %q (expected whisper or openai)", s)
}
