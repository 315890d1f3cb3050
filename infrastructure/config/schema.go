// Package config provides configuration loading and parsing for the
// counterfactual generation runtime.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Config errors.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidFormat     = errors.New("invalid config format")
	ErrValidationFailed  = errors.New("config validation failed")
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// Duration is a time.Duration that supports YAML string representation
// ("2s", "500ms").
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// ProjectConfig names the artifact directories of a run.
type ProjectConfig struct {
	DataRoot          string `yaml:"data_root"`
	RawDir            string `yaml:"raw_dir"`
	MaskDir           string `yaml:"mask_dir"`
	CounterfactualDir string `yaml:"counterfactual_dir"`
	EvalDir           string `yaml:"eval_dir"`
	BaselineDir       string `yaml:"baseline_dir"`
}

// WorkflowConfig controls the generation loop.
type WorkflowConfig struct {
	TargetAttribute string `yaml:"target_attribute"`
	InputDir        string `yaml:"input_dir"`
	MaxAttempts     int    `yaml:"max_attempts"`
	Concurrency     int    `yaml:"concurrency"`
	Mock            bool   `yaml:"mock"`
	UseMasked       bool   `yaml:"use_masked"`

	// RealismThreshold is reserved for score-based critics.
	RealismThreshold float64 `yaml:"realism_threshold"`
}

// AgentsConfig carries prompt overrides. Empty fields use the built-in
// prompts.
type AgentsConfig struct {
	PlannerPrompt      string `yaml:"planner_prompt"`
	CriticPrompt       string `yaml:"critic_prompt"`
	BaselineEditPrompt string `yaml:"baseline_edit_prompt"`
}

// OpenAIConfig configures the vision-language provider.
type OpenAIConfig struct {
	APIKey         string   `yaml:"api_key"`
	BaseURL        string   `yaml:"base_url"`
	Model          string   `yaml:"model"`
	RequestTimeout Duration `yaml:"request_timeout"`
}

// ReplicateConfig configures the image model backends.
type ReplicateConfig struct {
	APIToken        string   `yaml:"api_token"`
	BaseURL         string   `yaml:"base_url"`
	BaselineModel   string   `yaml:"baseline_model"`
	DinoModel       string   `yaml:"dino_model"`
	SamModel        string   `yaml:"sam_model"`
	InpaintModel    string   `yaml:"inpaint_model"`
	MaxRetries      int      `yaml:"max_retries"`
	RetryBaseDelay  Duration `yaml:"retry_base_delay"`
	RequestTimeout  Duration `yaml:"request_timeout"`
	DownloadTimeout Duration `yaml:"download_timeout"`
}

// BackendsConfig groups the external model providers.
type BackendsConfig struct {
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Replicate ReplicateConfig `yaml:"replicate"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root configuration document.
type AppConfig struct {
	Project  ProjectConfig  `yaml:"project"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Agents   AgentsConfig   `yaml:"agents"`
	Backends BackendsConfig `yaml:"backends"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero-valued fields after decoding.
func (c *AppConfig) applyDefaults() {
	if c.Project.DataRoot == "" {
		c.Project.DataRoot = "data"
	}
	root := c.Project.DataRoot
	if c.Project.RawDir == "" {
		c.Project.RawDir = filepath.Join(root, "01_raw")
	}
	if c.Project.MaskDir == "" {
		c.Project.MaskDir = filepath.Join(root, "02_masks")
	}
	if c.Project.CounterfactualDir == "" {
		c.Project.CounterfactualDir = filepath.Join(root, "03_counterfactuals")
	}
	if c.Project.EvalDir == "" {
		c.Project.EvalDir = filepath.Join(root, "04_eval_results")
	}
	if c.Project.BaselineDir == "" {
		c.Project.BaselineDir = filepath.Join(root, "05_baseline_edits")
	}

	if c.Workflow.TargetAttribute == "" {
		c.Workflow.TargetAttribute = "safety"
	}
	if c.Workflow.InputDir == "" {
		c.Workflow.InputDir = c.Project.RawDir
	}
	if c.Workflow.MaxAttempts == 0 {
		c.Workflow.MaxAttempts = 3
	}
	if c.Workflow.Concurrency <= 0 {
		c.Workflow.Concurrency = 4
	}

	if c.Backends.OpenAI.Model == "" {
		c.Backends.OpenAI.Model = "gpt-5.2"
	}
	if c.Backends.Replicate.BaselineModel == "" {
		c.Backends.Replicate.BaselineModel = "google/nano-banana-pro"
	}
	if c.Backends.Replicate.DinoModel == "" {
		c.Backends.Replicate.DinoModel = "adirik/grounding-dino"
	}
	if c.Backends.Replicate.SamModel == "" {
		c.Backends.Replicate.SamModel = "meta/sam-2"
	}
	if c.Backends.Replicate.InpaintModel == "" {
		c.Backends.Replicate.InpaintModel = "black-forest-labs/flux-fill-pro"
	}
	if c.Backends.Replicate.MaxRetries == 0 {
		c.Backends.Replicate.MaxRetries = 3
	}
	if c.Backends.Replicate.RetryBaseDelay == 0 {
		c.Backends.Replicate.RetryBaseDelay = Duration(time.Second)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate checks invariants the loop depends on.
func (c *AppConfig) Validate() error {
	var errs []error

	if c.Workflow.TargetAttribute == "" {
		errs = append(errs, errors.New("workflow.target_attribute must not be empty"))
	}
	if c.Workflow.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("workflow.max_attempts must not be negative, got %d", c.Workflow.MaxAttempts))
	}
	if c.Workflow.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("workflow.concurrency must be at least 1, got %d", c.Workflow.Concurrency))
	}
	if !c.Workflow.Mock {
		if c.Backends.Replicate.BaselineModel == "" {
			errs = append(errs, errors.New("backends.replicate.baseline_model must not be empty"))
		}
		if c.Workflow.UseMasked && c.Backends.Replicate.InpaintModel == "" {
			errs = append(errs, errors.New("backends.replicate.inpaint_model required for masked runs"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrValidationFailed, errors.Join(errs...))
	}
	return nil
}
