package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	appoutput "reelnotes/application/output"
	apppattern "reelnotes/application/pattern"
	"reelnotes/domain/pattern"
	"reelnotes/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var (
	applyPattern   string
	applyInput     string
	applyClipboard bool
	applyOutput    string
	applyDrive     bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Run a fabric pattern on text",
	Long: `Pipe text from a file (or stdin) through a fabric pattern and show the result.

Example:
  reelnotes apply --pattern summarize --input transcript.txt
  cat transcript.txt | reelnotes apply -p extract_wisdom -c -o wisdom.md`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVarP(&applyPattern, "pattern", "p", pattern.DefaultName, "Fabric pattern to apply")
	applyCmd.Flags().StringVar(&applyInput, "input", "", "File to read (default is stdin)")
	applyCmd.Flags().BoolVarP(&applyClipboard, "clipboard", "c", false, "Copy the result to the clipboard")
	applyCmd.Flags().StringVarP(&applyOutput, "output", "o", "", "Save the result to a file")
	applyCmd.Flags().BoolVar(&applyDrive, "drive", false, "Upload the result to Google Drive")
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	text, err := readApplyInput(applyInput, cmd.InOrStdin())
	if err != nil {
		return err
	}

	clip := cfg.Output.Clipboard
	if cmd.Flags().Changed("clipboard") {
		clip = applyClipboard
	}

	store := filesystem.NewStore()
	delivery := appoutput.NewService(newRenderer(), newClipboard(), store, DefaultOutput,
		appoutput.WithUploader(newUploaderFactory(cfg, DefaultOutput)))

	return RunApplyWithDependencies(
		cmd.Context(),
		newPatternRunner(cfg),
		delivery,
		flagOrConfig(cmd, "pattern", applyPattern, cfg.Pattern.Name),
		text,
		appoutput.Options{
			Clipboard:  clip,
			OutputPath: applyOutput,
			Drive:      applyDrive,
			FolderID:   cfg.Google.FolderID,
		},
		DefaultOutput,
	)
}

func readApplyInput(path string, stdin io.Reader) (string, error) {
	if path == "" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(b), nil
}

// RunApplyWithDependencies runs the apply command with injected dependencies (for testing)
func RunApplyWithDependencies(
	ctx context.Context,
	runner pattern.Runner,
	delivery *appoutput.Service,
	name string,
	text string,
	opts appoutput.Options,
	out OutputWriter,
) error {
	service := apppattern.NewService(runner)

	delivery.Banner(fmt.Sprintf("Running fabric with pattern: %s", name))
	result, err := service.Apply(ctx, name, text)
	if err != nil {
		fmt.Fprintln(out, apppattern.Describe(err))
		return &reportedError{err: fmt.Errorf("pattern %s failed: %w", result.Pattern, err)}
	}

	if result.Empty() {
		fmt.Fprintln(out, "Pattern produced no output")
		return nil
	}

	delivery.Deliver(ctx, result, opts)
	return nil
}
