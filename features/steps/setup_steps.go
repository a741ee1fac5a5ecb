//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"reelnotes/cmd"
	"reelnotes/infrastructure/config"

	"github.com/cucumber/godog"
)

// MockPrompter implements cmd.Prompter for testing. Answers are matched to
// prompts by substring; unanswered prompts take their default.
type MockPrompter struct {
	answers map[string]string
	asked   []string
}

func NewMockPrompter(answers map[string]string) *MockPrompter {
	return &MockPrompter{answers: answers}
}

func (m *MockPrompter) answer(message string) (string, bool) {
	m.asked = append(m.asked, message)
	for prompt, answer := range m.answers {
		if strings.Contains(message, prompt) {
			return answer, true
		}
	}
	return "", false
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if a, ok := m.answer(message); ok {
		return a, nil
	}
	return defaultValue, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	a, ok := m.answer(message)
	if !ok {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(a)
	if err != nil {
		return false, fmt.Errorf("bad confirm answer %q for %q", a, message)
	}
	return b, nil
}

func (m *MockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	a, ok := m.answer(message)
	if !ok {
		return defaultValue, nil
	}
	for _, o := range options {
		if o == a {
			return a, nil
		}
	}
	return "", fmt.Errorf("%q is not one of %v", a, options)
}

// setupContext holds test state for setup scenarios
type setupContext struct {
	tempDir         string
	configPath      string
	originalContent string
	output          *bytes.Buffer
	err             error
}

// SharedSetupContext is reset before each scenario via Before hook
var SharedSetupContext *setupContext

func getSetupContext() *setupContext {
	return SharedSetupContext
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		SharedSetupContext = &setupContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if s := getSetupContext(); s != nil && s.tempDir != "" {
			os.RemoveAll(s.tempDir)
		}
		SharedSetupContext = nil
		return c, nil
	})

	ctx.Step(`^an existing config file$`, anExistingConfigFile)
	ctx.Step(`^I run setup answering:$`, iRunSetupAnswering)
	ctx.Step(`^setup should succeed$`, setupShouldSucceed)
	ctx.Step(`^setup should fail with "([^"]*)"$`, setupShouldFailWith)
	ctx.Step(`^setup should report "([^"]*)"$`, setupShouldReport)
	ctx.Step(`^the config file should be unchanged$`, theConfigFileShouldBeUnchanged)
	ctx.Step(`^the created config should have:$`, theCreatedConfigShouldHave)
}

func anExistingConfigFile() error {
	s := getSetupContext()
	content := "paths:\n  download_directory: old-downloads\n"
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func iRunSetupAnswering(table *godog.Table) error {
	s := getSetupContext()
	answers := make(map[string]string)
	for i, row := range table.Rows {
		if i == 0 || len(row.Cells) < 2 {
			continue
		}
		answers[row.Cells[0].Value] = row.Cells[1].Value
	}
	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(answers), s.configPath, s.output)
	return nil
}

func setupShouldSucceed() error {
	if err := getSetupContext().err; err != nil {
		return fmt.Errorf("expected setup to succeed, got %v", err)
	}
	return nil
}

func setupShouldFailWith(expected string) error {
	err := getSetupContext().err
	if err == nil {
		return fmt.Errorf("expected setup to fail with %q", expected)
	}
	if !strings.Contains(err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, err.Error())
	}
	return nil
}

func setupShouldReport(expected string) error {
	out := getSetupContext().output.String()
	if !strings.Contains(out, expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, out)
	}
	return nil
}

func theConfigFileShouldBeUnchanged() error {
	s := getSetupContext()
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config file changed:\n%s", content)
	}
	return nil
}

func theCreatedConfigShouldHave(table *godog.Table) error {
	s := getSetupContext()
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to load created config: %w", err)
	}
	mgr := config.NewConfigManager(cfg, s.configPath)

	for i, row := range table.Rows {
		if i == 0 || len(row.Cells) < 2 {
			continue
		}
		key, want := row.Cells[0].Value, row.Cells[1].Value
		got, err := mgr.Get(key)
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	return nil
}
