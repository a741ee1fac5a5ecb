//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelnotes/cmd"
	"reelnotes/infrastructure/config"

	"github.com/cucumber/godog"
)

// configContext holds test state for config scenarios
type configContext struct {
	tempDir    string
	configPath string
	output     *bytes.Buffer
	err        error
}

// SharedConfigContext is reset before each scenario via Before hook
var SharedConfigContext *configContext

func getConfigContext() *configContext {
	return SharedConfigContext
}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		SharedConfigContext = &configContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if cc := getConfigContext(); cc != nil && cc.tempDir != "" {
			os.RemoveAll(cc.tempDir)
		}
		SharedConfigContext = nil
		return c, nil
	})

	ctx.Step(`^a config file with:$`, aConfigFileWith)
	ctx.Step(`^no config file exists$`, noConfigFileExists)
	ctx.Step(`^I run config list$`, iRunConfigList)
	ctx.Step(`^I run config get "([^"]*)"$`, iRunConfigGet)
	ctx.Step(`^I run config set "([^"]*)" to "([^"]*)"$`, iRunConfigSet)
	ctx.Step(`^the config command should succeed$`, theConfigCommandShouldSucceed)
	ctx.Step(`^the config command should fail with "([^"]*)"$`, theConfigCommandShouldFailWith)
	ctx.Step(`^the config output should contain "([^"]*)"$`, theConfigOutputShouldContain)
	ctx.Step(`^the config output should be "([^"]*)"$`, theConfigOutputShouldBe)
	ctx.Step(`^the saved config should have "([^"]*)" set to "([^"]*)"$`, theSavedConfigShouldHave)
}

func aConfigFileWith(doc *godog.DocString) error {
	cc := getConfigContext()
	if err := os.MkdirAll(filepath.Dir(cc.configPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(cc.configPath, []byte(doc.Content), 0644)
}

func noConfigFileExists() error {
	err := os.Remove(getConfigContext().configPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func loadScenarioConfig() (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(getConfigContext().configPath)
	return cfg, err
}

func iRunConfigList() error {
	cc := getConfigContext()
	cfg, err := loadScenarioConfig()
	if err != nil {
		return err
	}
	cc.err = cmd.RunConfigListWithDependencies(cfg, cc.configPath, cc.output)
	return nil
}

func iRunConfigGet(key string) error {
	cc := getConfigContext()
	cfg, err := loadScenarioConfig()
	if err != nil {
		return err
	}
	cc.err = cmd.RunConfigGetWithDependencies(cfg, cc.configPath, key, cc.output)
	return nil
}

func iRunConfigSet(key, value string) error {
	cc := getConfigContext()
	cfg, err := loadScenarioConfig()
	if err != nil {
		return err
	}
	cc.err = cmd.RunConfigSetWithDependencies(cfg, cc.configPath, key, value, cc.output)
	return nil
}

func theConfigCommandShouldSucceed() error {
	if err := getConfigContext().err; err != nil {
		return fmt.Errorf("expected success, got %v", err)
	}
	return nil
}

func theConfigCommandShouldFailWith(expected string) error {
	err := getConfigContext().err
	if err == nil {
		return fmt.Errorf("expected an error containing %q", expected)
	}
	if !strings.Contains(err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, err.Error())
	}
	return nil
}

func theConfigOutputShouldContain(expected string) error {
	out := getConfigContext().output.String()
	if !strings.Contains(out, expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, out)
	}
	return nil
}

func theConfigOutputShouldBe(expected string) error {
	out := strings.TrimSpace(getConfigContext().output.String())
	if out != expected {
		return fmt.Errorf("output = %q, want %q", out, expected)
	}
	return nil
}

func theSavedConfigShouldHave(key, expected string) error {
	cfg, err := config.Load(getConfigContext().configPath)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	got, err := config.NewConfigManager(cfg, getConfigContext().configPath).Get(key)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("%s = %q, want %q", key, got, expected)
	}
	return nil
}
