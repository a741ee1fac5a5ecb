package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"reelnotes/domain/transcript"
	"reelnotes/infrastructure/config"
	"reelnotes/infrastructure/console"

	"github.com/spf13/cobra"
)

// Verifier is implemented by adapters that can check their external tool
type Verifier interface {
	VerifyInstalled(ctx context.Context) error
}

// Check is a named dependency check
type Check struct {
	Name     string
	Verifier Verifier
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the external tools are installed",
	Long: `Check that yt-dlp, ffmpeg, the transcription backend and fabric are available.

Example:
  reelnotes doctor`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	return RunDoctorWithDependencies(cmd.Context(), doctorChecks(cfg), DefaultOutput)
}

func doctorChecks(cfg *config.Config) []Check {
	checks := []Check{
		{Name: "yt-dlp", Verifier: newFetcher(cfg)},
		{Name: "ffmpeg", Verifier: newExtractor(cfg)},
	}

	if backend, _ := transcript.ParseBackend(cfg.Transcription.Backend); backend == transcript.BackendOpenAI {
		checks = append(checks, Check{Name: "OpenAI API key", Verifier: envVerifier(config.OpenAIKeyEnv)})
	} else {
		checks = append(checks, Check{Name: "whisper", Verifier: newWhisper(cfg)})
	}

	return append(checks, Check{Name: "fabric", Verifier: newPatternRunner(cfg)})
}

// envVerifier checks that an environment variable is set
type envVerifier string

func (e envVerifier) VerifyInstalled(ctx context.Context) error {
	if os.Getenv(string(e)) == "" {
		return fmt.Errorf("%s is not set (export it or add it to .env)", string(e))
	}
	return nil
}

// RunDoctorWithDependencies runs every check with a 5 second timeout each (for testing)
func RunDoctorWithDependencies(ctx context.Context, checks []Check, out OutputWriter) error {
	failed := 0
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := c.Verifier.VerifyInstalled(checkCtx)
		cancel()

		if err != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %s\n", console.Failure("✗"), c.Name, console.Muted(err.Error()))
			continue
		}
		fmt.Fprintf(out, "%s %s\n", console.Success("✓"), c.Name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	fmt.Fprintln(out, "All tools found.")
	return nil
}
