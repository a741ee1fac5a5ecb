package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"reelnotes/domain/media"
	"reelnotes/domain/pattern"
	"reelnotes/domain/transcript"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// ConfigManager provides get/set access to individual config settings by dotted key
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// setting binds a dotted key to a field of Config
type setting struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringSetting(field func(c *Config) *string, validate func(string) error) setting {
	return setting{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			if validate != nil {
				if err := validate(v); err != nil {
					return err
				}
			}
			*field(c) = v
			return nil
		},
	}
}

func boolSetting(field func(c *Config) *bool) setting {
	return setting{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", v)
			}
			*field(c) = b
			return nil
		},
	}
}

func notEmpty(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("value must not be empty")
	}
	return nil
}

var settings = map[string]setting{
	"paths.download_directory": stringSetting(func(c *Config) *string { return &c.Paths.DownloadDirectory }, notEmpty),
	"fetch.format":             stringSetting(func(c *Config) *string { return &c.Fetch.Format }, notEmpty),
	"fetch.executable":         stringSetting(func(c *Config) *string { return &c.Fetch.Executable }, nil),
	"fetch.auto_install":       boolSetting(func(c *Config) *bool { return &c.Fetch.AutoInstall }),
	"audio.extension": stringSetting(func(c *Config) *string { return &c.Audio.Extension }, func(v string) error {
		_, err := media.NewAudioExtractionRequest("sample.mp4", v, "")
		return err
	}),
	"audio.quality":     stringSetting(func(c *Config) *string { return &c.Audio.Quality }, validateQuality),
	"audio.ffmpeg_path": stringSetting(func(c *Config) *string { return &c.Audio.FFmpegPath }, notEmpty),
	"transcription.backend": stringSetting(func(c *Config) *string { return &c.Transcription.Backend }, func(v string) error {
		_, err := transcript.ParseBackend(v)
		return err
	}),
	"transcription.model": stringSetting(func(c *Config) *string { return &c.Transcription.Model }, func(v string) error {
		_, err := transcript.ParseModelSize(v)
		return err
	}),
	"transcription.language":     stringSetting(func(c *Config) *string { return &c.Transcription.Language }, nil),
	"transcription.whisper_path": stringSetting(func(c *Config) *string { return &c.Transcription.WhisperPath }, notEmpty),
	"transcription.work_dir":     stringSetting(func(c *Config) *string { return &c.Transcription.WorkDir }, nil),
	"transcription.openai_model": stringSetting(func(c *Config) *string { return &c.Transcription.OpenAIModel }, notEmpty),
	"pattern.name":               stringSetting(func(c *Config) *string { return &c.Pattern.Name }, pattern.ValidateName),
	"pattern.fabric_path":        stringSetting(func(c *Config) *string { return &c.Pattern.FabricPath }, notEmpty),
	"pattern.extra_args":         stringSetting(func(c *Config) *string { return &c.Pattern.ExtraArgs }, nil),
	"output.clipboard":           boolSetting(func(c *Config) *bool { return &c.Output.Clipboard }),
	"google.credentials_file":    stringSetting(func(c *Config) *string { return &c.Google.CredentialsFile }, notEmpty),
	"google.token_file":          stringSetting(func(c *Config) *string { return &c.Google.TokenFile }, notEmpty),
	"google.folder_id":           stringSetting(func(c *Config) *string { return &c.Google.FolderID }, nil),
}

func validateQuality(v string) error {
	q, err := strconv.Atoi(v)
	if err != nil || q < 0 || q > 9 {
		return fmt.Errorf("audio quality must be an integer from 0 (best) to 9, got %q", v)
	}
	return nil
}

// Keys returns every settable key, sorted
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the current value of key
func (m *ConfigManager) Get(key string) (string, error) {
	s, ok := settings[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return s.get(m.config), nil
}

// Set validates and stores value under key, then saves the config file
func (m *ConfigManager) Set(key, value string) error {
	s, ok := settings[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	value = strings.TrimSpace(value)
	if err := s.set(m.config, value); err != nil {
		return fmt.Errorf("%w for %s: %v", ErrInvalidValue, key, err)
	}

	return Save(m.config, m.configPath)
}

// Entry is a key/value pair for listing
type Entry struct {
	Key   string
	Value string
}

// List returns every setting with its current value, sorted by key
func (m *ConfigManager) List() []Entry {
	keys := Keys()
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: settings[k].get(m.config)})
	}
	return entries
}
