package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"reelnotes/domain/media"
	"reelnotes/domain/pattern"
	"reelnotes/domain/transcript"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked up when --config is not given
const DefaultPath = "config/config.yaml"

// OpenAIKeyEnv is the environment variable holding the OpenAI API key
const OpenAIKeyEnv = "OPENAI_API_KEY"

// Config represents the complete application configuration
type Config struct {
	Paths         PathsConfig         `yaml:"paths"`
	Fetch         FetchConfig         `yaml:"fetch"`
	Audio         AudioConfig         `yaml:"audio"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Pattern       PatternConfig       `yaml:"pattern"`
	Output        OutputConfig        `yaml:"output"`
	Google        GoogleConfig        `yaml:"google"`
}

// PathsConfig contains working directories
type PathsConfig struct {
	DownloadDirectory string `yaml:"download_directory"`
}

// FetchConfig contains video download settings
type FetchConfig struct {
	Format      string `yaml:"format"`
	Executable  string `yaml:"executable,omitempty"`
	AutoInstall bool   `yaml:"auto_install"`
}

// AudioConfig contains audio extraction settings
type AudioConfig struct {
	Extension  string `yaml:"extension"`
	Quality    string `yaml:"quality"`
	FFmpegPath string `yaml:"ffmpeg_path"`
}

// TranscriptionConfig contains speech-to-text settings
type TranscriptionConfig struct {
	Backend     string `yaml:"backend"`
	Model       string `yaml:"model"`
	Language    string `yaml:"language,omitempty"`
	WhisperPath string `yaml:"whisper_path"`
	WorkDir     string `yaml:"work_dir,omitempty"` // Parent of whisper's scratch output; empty uses the system temp dir
	OpenAIModel string `yaml:"openai_model"`
}

// PatternConfig contains text transformation settings
type PatternConfig struct {
	Name       string `yaml:"name"`
	FabricPath string `yaml:"fabric_path"`
	ExtraArgs  string `yaml:"extra_args,omitempty"` // Passed to fabric after --pattern, split on whitespace
}

// OutputConfig contains result delivery defaults
type OutputConfig struct {
	Clipboard bool `yaml:"clipboard"`
}

// GoogleConfig contains Google Drive settings for the optional upload sink
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	FolderID        string `yaml:"folder_id,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DownloadDirectory: media.DefaultDownloadDirectory,
		},
		Fetch: FetchConfig{
			Format: "bestvideo+bestaudio/best",
		},
		Audio: AudioConfig{
			Extension:  media.DefaultAudioExtension,
			Quality:    media.DefaultAudioQuality,
			FFmpegPath: "ffmpeg",
		},
		Transcription: TranscriptionConfig{
			Backend:     string(transcript.DefaultBackend),
			Model:       string(transcript.DefaultModelSize),
			WhisperPath: "whisper",
			OpenAIModel: "whisper-1",
		},
		Pattern: PatternConfig{
			Name:       pattern.DefaultName,
			FabricPath: "fabric",
		},
		Google: GoogleConfig{
			CredentialsFile: "credentials.json",
			TokenFile:       "token.json",
		},
	}
}

// Load reads the YAML file at path and overlays it on Default
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when the file does not exist.
// found reports whether a file was read.
func LoadOrDefault(path string) (cfg *Config, found bool, err error) {
	cfg, err = Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	return nil, false, err
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks enumerated settings so bad values fail before a run starts
func (c *Config) Validate() error {
	if _, err := transcript.ParseBackend(c.Transcription.Backend); err != nil {
		return err
	}
	if _, err := transcript.ParseModelSize(c.Transcription.Model); err != nil {
		return err
	}
	if c.Pattern.Name != "" {
		if err := pattern.ValidateName(c.Pattern.Name); err != nil {
			return err
		}
	}
	return nil
}

// LoadEnv loads KEY=value pairs from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// OpenAIKey returns the OpenAI API key from the environment
func (c *Config) OpenAIKey() string {
	return os.Getenv(OpenAIKeyEnv)
}
