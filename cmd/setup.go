package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelnotes/domain/pattern"
	"reelnotes/domain/transcript"
	"reelnotes/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through choosing the download directory, the
transcription backend and model, the default fabric pattern and the
optional Google Drive upload settings.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, DefaultOutput)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	if configPath == "" {
		configPath = config.DefaultPath
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(fmt.Sprintf("%s already exists. Overwrite?", filepath.Base(configPath)), false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to reelnotes setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}

	if err := promptTranscription(prompter, cfg); err != nil {
		return err
	}

	if err := promptPattern(prompter, cfg); err != nil {
		return err
	}

	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	dir, err := prompter.Input("Where should videos be downloaded?", cfg.Paths.DownloadDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("download directory is required")
	}
	cfg.Paths.DownloadDirectory = dir
	return nil
}

func promptTranscription(prompter Prompter, cfg *config.Config) error {
	backend, err := prompter.Select("Transcription backend?",
		[]string{string(transcript.BackendWhisper), string(transcript.BackendOpenAI)},
		cfg.Transcription.Backend)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Transcription.Backend = backend

	sizes := transcript.ModelSizes()
	options := make([]string, len(sizes))
	for i, s := range sizes {
		options[i] = s.String()
	}
	model, err := prompter.Select("Default whisper model size?", options, cfg.Transcription.Model)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Transcription.Model = model

	language, err := prompter.Input("Spoken language (ISO code, blank to auto-detect)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Transcription.Language = strings.TrimSpace(language)

	return nil
}

func promptPattern(prompter Prompter, cfg *config.Config) error {
	name, err := prompter.Input("Default fabric pattern?", pattern.DefaultName)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = pattern.DefaultName
	}
	if err := pattern.ValidateName(name); err != nil {
		return err
	}
	cfg.Pattern.Name = name

	clip, err := prompter.Confirm("Copy results to the clipboard by default?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Output.Clipboard = clip

	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	enable, err := prompter.Confirm("Configure Google Drive uploads?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !enable {
		return nil
	}

	credentials, err := prompter.Input("Path to Google credentials file?", cfg.Google.CredentialsFile)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials != "" {
		cfg.Google.CredentialsFile = credentials
	}

	folder, err := prompter.Input("Google Drive folder ID for results (blank for My Drive)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Google.FolderID = strings.TrimSpace(folder)

	return nil
}
