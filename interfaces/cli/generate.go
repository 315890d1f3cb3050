package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/urbanlens/counterfact/application"
	"github.com/urbanlens/counterfact/infrastructure/config"
	"github.com/urbanlens/counterfact/infrastructure/editor"
	"github.com/urbanlens/counterfact/infrastructure/logging"
	"github.com/urbanlens/counterfact/infrastructure/planner"
	"github.com/urbanlens/counterfact/infrastructure/storage/filesystem"
	"github.com/urbanlens/counterfact/infrastructure/telemetry"
	"github.com/urbanlens/counterfact/interfaces/report"
)

// generateOptions holds options for the generate command.
type generateOptions struct {
	configPath      string
	inputDir        string
	targetAttribute string
	model           string
	maxAttempts     int
	concurrency     int
	csvPath         string
	mock            bool
	masked          bool
	verbose         bool
}

// newGenerateCmd creates the generate command.
func (a *App) newGenerateCmd() *cobra.Command {
	opts := &generateOptions{maxAttempts: -1, concurrency: -1}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate counterfactual edits for every image in a directory",
		Long: `Generate runs the plan/edit/critique loop over every image in the input
directory and writes one CSV row per image.

Examples:
  # Generate safety counterfactuals with the default backend
  counterfact generate -c config.yaml --target-attribute safety

  # Offline smoke run without any backend calls
  counterfact generate --input-dir data/01_raw --mock

  # Masked variant: segment the target object, then inpaint
  counterfact generate -c config.yaml --masked`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&opts.inputDir, "input-dir", "", "Input image directory (overrides config)")
	cmd.Flags().StringVar(&opts.targetAttribute, "target-attribute", "", "Perceptual attribute to increase (overrides config)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Baseline editing model (overrides config)")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", -1, "Loop iteration bound (overrides config)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", -1, "Concurrent images (overrides config)")
	cmd.Flags().StringVar(&opts.csvPath, "csv-path", "", "Result CSV path")
	cmd.Flags().BoolVar(&opts.mock, "mock", false, "Run without backend calls, producing passthrough edits")
	cmd.Flags().BoolVar(&opts.masked, "masked", false, "Use the segment-then-inpaint variant")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// loadGenerateConfig resolves the effective configuration from file and
// flag overrides.
func loadGenerateConfig(opts *generateOptions) (*config.AppConfig, error) {
	var cfg *config.AppConfig
	if opts.configPath != "" {
		loaded, err := config.NewLoader().LoadFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if opts.inputDir != "" {
		cfg.Workflow.InputDir = opts.inputDir
	}
	if opts.targetAttribute != "" {
		cfg.Workflow.TargetAttribute = opts.targetAttribute
	}
	if opts.model != "" {
		cfg.Backends.Replicate.BaselineModel = opts.model
	}
	if opts.maxAttempts >= 0 {
		cfg.Workflow.MaxAttempts = opts.maxAttempts
	}
	if opts.concurrency > 0 {
		cfg.Workflow.Concurrency = opts.concurrency
	}
	if opts.mock {
		cfg.Workflow.Mock = true
	}
	if opts.masked {
		cfg.Workflow.UseMasked = true
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	if cfg.Backends.OpenAI.APIKey == "" {
		cfg.Backends.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Backends.Replicate.APIToken == "" {
		cfg.Backends.Replicate.APIToken = os.Getenv("REPLICATE_API_TOKEN")
	}
	return cfg, cfg.Validate()
}

// runGenerate wires the engine from configuration and executes the batch.
func (a *App) runGenerate(ctx context.Context, opts *generateOptions) error {
	cfg, err := loadGenerateConfig(opts)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})

	metrics, err := telemetry.NewMetrics(telemetry.DefaultMetricsConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	outputDir := cfg.Project.BaselineDir
	if cfg.Workflow.UseMasked {
		outputDir = cfg.Project.CounterfactualDir
	}
	outputStore := filesystem.NewStore(outputDir)
	maskStore := filesystem.NewStore(cfg.Project.MaskDir)

	engineConfig := application.EngineConfig{
		UseMasked:   cfg.Workflow.UseMasked,
		MaxAttempts: cfg.Workflow.MaxAttempts,
		Metrics:     metrics,
	}

	if cfg.Workflow.Mock {
		engineConfig.Planner = planner.NewMockPlanner()
		mock := editor.NewMockClient(outputStore, maskStore)
		engineConfig.Editor = mock
		engineConfig.Segmenter = mock
		engineConfig.Inpainter = mock
	} else {
		provider := planner.NewOpenAIProvider(planner.OpenAIConfig{
			APIKey:  cfg.Backends.OpenAI.APIKey,
			BaseURL: cfg.Backends.OpenAI.BaseURL,
			Model:   cfg.Backends.OpenAI.Model,
			Timeout: int(cfg.Backends.OpenAI.RequestTimeout.Duration() / time.Second),
		})
		engineConfig.Planner = planner.NewLLMPlanner(planner.LLMPlannerConfig{
			Provider:      provider,
			Model:         cfg.Backends.OpenAI.Model,
			PlannerPrompt: cfg.Agents.PlannerPrompt,
			CriticPrompt:  cfg.Agents.CriticPrompt,
		})

		backend, err := editor.ParseBackend(cfg.Backends.Replicate.BaselineModel)
		if err != nil {
			return err
		}
		client, err := editor.NewClient(editor.Config{
			APIToken:        cfg.Backends.Replicate.APIToken,
			BaseURL:         cfg.Backends.Replicate.BaseURL,
			Backend:         backend,
			DinoModel:       cfg.Backends.Replicate.DinoModel,
			SamModel:        cfg.Backends.Replicate.SamModel,
			InpaintModel:    cfg.Backends.Replicate.InpaintModel,
			OutputStore:     outputStore,
			MaskStore:       maskStore,
			EditPrompt:      cfg.Agents.BaselineEditPrompt,
			MaxRetries:      cfg.Backends.Replicate.MaxRetries,
			RetryBaseDelay:  cfg.Backends.Replicate.RetryBaseDelay.Duration(),
			RequestTimeout:  cfg.Backends.Replicate.RequestTimeout.Duration(),
			DownloadTimeout: cfg.Backends.Replicate.DownloadTimeout.Duration(),
			Metrics:         metrics,
		})
		if err != nil {
			return err
		}
		engineConfig.Editor = client
		engineConfig.Segmenter = client
		engineConfig.Inpainter = client
	}

	engine, err := application.NewEngine(engineConfig)
	if err != nil {
		return err
	}

	rows, err := application.NewBatchRunner(engine, cfg.Workflow.Concurrency).
		Run(ctx, cfg.Workflow.InputDir, cfg.Workflow.TargetAttribute)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintf(a.stdout, "No input images found in %s\n", cfg.Workflow.InputDir)
		return nil
	}

	csvPath := opts.csvPath
	if csvPath == "" {
		name := fmt.Sprintf("counterfactual_results_%s.csv", sanitizeFileStem(cfg.Workflow.TargetAttribute))
		csvPath = filepath.Join(cfg.Project.EvalDir, name)
	}
	if err := report.WriteCSV(csvPath, rows); err != nil {
		return err
	}

	summary := application.Summarize(rows)
	fmt.Fprintf(a.stdout, "Processed %d images: %d accepted, %d failed\n",
		summary.Total, summary.Accepted, summary.Failed)
	fmt.Fprintf(a.stdout, "Results written to %s\n", csvPath)
	return nil
}

// sanitizeFileStem makes an attribute safe to embed in a filename.
func sanitizeFileStem(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
