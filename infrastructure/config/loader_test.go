package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Workflow.TargetAttribute != "safety" {
		t.Errorf("TargetAttribute = %q, want %q", cfg.Workflow.TargetAttribute, "safety")
	}
	if cfg.Workflow.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Workflow.MaxAttempts)
	}
	if cfg.Project.RawDir != filepath.Join("data", "01_raw") {
		t.Errorf("RawDir = %q", cfg.Project.RawDir)
	}
	if cfg.Workflow.InputDir != cfg.Project.RawDir {
		t.Errorf("InputDir = %q, want raw dir %q", cfg.Workflow.InputDir, cfg.Project.RawDir)
	}
	if cfg.Backends.Replicate.BaselineModel == "" {
		t.Error("BaselineModel default is empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoaderLoadString(t *testing.T) {
	loader := NewLoader()
	cfg, err := loader.LoadString(`
project:
  data_root: /tmp/study
workflow:
  target_attribute: greenery
  max_attempts: 5
  mock: true
backends:
  replicate:
    retry_base_delay: 2s
logging:
  level: debug
`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}

	if cfg.Workflow.TargetAttribute != "greenery" {
		t.Errorf("TargetAttribute = %q, want %q", cfg.Workflow.TargetAttribute, "greenery")
	}
	if cfg.Workflow.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Workflow.MaxAttempts)
	}
	if cfg.Backends.Replicate.RetryBaseDelay.Duration() != 2*time.Second {
		t.Errorf("RetryBaseDelay = %v, want 2s", cfg.Backends.Replicate.RetryBaseDelay)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want %q", cfg.Logging.Level, "debug")
	}

	// Derived defaults follow the overridden data root.
	want := filepath.Join("/tmp/study", "02_masks")
	if cfg.Project.MaskDir != want {
		t.Errorf("MaskDir = %q, want %q", cfg.Project.MaskDir, want)
	}
}

func TestLoaderEnvExpansion(t *testing.T) {
	t.Setenv("CF_TEST_TOKEN", "secret-token")

	loader := NewLoader()
	cfg, err := loader.LoadString(`
workflow:
  mock: true
backends:
  replicate:
    api_token: ${CF_TEST_TOKEN}
  openai:
    model: ${CF_TEST_UNSET_MODEL:-gpt-5.2}
`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if cfg.Backends.Replicate.APIToken != "secret-token" {
		t.Errorf("APIToken = %q, want expanded env value", cfg.Backends.Replicate.APIToken)
	}
	if cfg.Backends.OpenAI.Model != "gpt-5.2" {
		t.Errorf("Model = %q, want default fallback", cfg.Backends.OpenAI.Model)
	}
}

func TestLoaderValidation(t *testing.T) {
	loader := NewLoader()
	_, err := loader.LoadString("workflow:\n  max_attempts: -2\n  mock: true\n")
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("error = %v, want ErrValidationFailed", err)
	}
}

func TestValidateRequiresModelsForLiveRuns(t *testing.T) {
	cfg := Default()
	cfg.Backends.Replicate.BaselineModel = ""
	if err := cfg.Validate(); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("error = %v, want ErrValidationFailed", err)
	}

	cfg = Default()
	cfg.Workflow.Mock = true
	cfg.Backends.Replicate.BaselineModel = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("mock run should not require backend models, got %v", err)
	}

	cfg = Default()
	cfg.Workflow.UseMasked = true
	cfg.Backends.Replicate.InpaintModel = ""
	if err := cfg.Validate(); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("error = %v, want ErrValidationFailed", err)
	}
}

func TestLoaderLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("workflow:\n  target_attribute: wealth\n  mock: true\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	loader := NewLoader()
	cfg, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Workflow.TargetAttribute != "wealth" {
		t.Errorf("TargetAttribute = %q, want %q", cfg.Workflow.TargetAttribute, "wealth")
	}

	if _, err := loader.LoadFile(filepath.Join(dir, "missing.yaml")); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("missing file error = %v, want ErrConfigNotFound", err)
	}
	txt := filepath.Join(dir, "config.txt")
	if err := os.WriteFile(txt, content, 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := loader.LoadFile(txt); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unsupported format error = %v, want ErrUnsupportedFormat", err)
	}
}
