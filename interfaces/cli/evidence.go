package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/urbanlens/counterfact/interfaces/report"
)

// evidenceOptions holds options for the evidence command.
type evidenceOptions struct {
	csvPaths    []string
	csvGlobs    []string
	projectRoot string
	outputDir   string
}

// newEvidenceCmd creates the evidence command.
func (a *App) newEvidenceCmd() *cobra.Command {
	opts := &evidenceOptions{}

	cmd := &cobra.Command{
		Use:   "evidence",
		Short: "Build HTML evidence packs from result CSVs",
		Long: `Evidence renders a self-contained HTML review page per result CSV,
pairing each input image with its edited output alongside the edit plan
and critic verdict.

Examples:
  counterfact evidence --csv data/04_eval_results/counterfactual_results_safety.csv
  counterfact evidence --csv-glob "data/04_eval_results/*.csv" --output-dir data/06_evidence`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEvidence(opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.csvPaths, "csv", nil, "CSV file path (repeatable)")
	cmd.Flags().StringArrayVar(&opts.csvGlobs, "csv-glob", nil, "Glob pattern for CSV files (repeatable)")
	cmd.Flags().StringVar(&opts.projectRoot, "project-root", ".", "Root for resolving relative image paths")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "data/06_evidence", "Output directory for packs")

	return cmd
}

func (a *App) runEvidence(opts *evidenceOptions) error {
	csvPaths, err := collectCSVPaths(opts)
	if err != nil {
		return err
	}
	if len(csvPaths) == 0 {
		return fmt.Errorf("no CSV files provided; use --csv or --csv-glob")
	}

	outputDir := opts.outputDir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(opts.projectRoot, outputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	pack := &report.EvidencePack{
		ProjectRoot: opts.projectRoot,
		OutputDir:   outputDir,
	}

	var packPaths []string
	for _, csvPath := range csvPaths {
		indexPath, err := pack.Build(csvPath)
		if err != nil {
			return fmt.Errorf("failed to build pack for %s: %w", csvPath, err)
		}
		fmt.Fprintf(a.stdout, "Wrote evidence pack: %s\n", indexPath)
		packPaths = append(packPaths, indexPath)
	}

	indexPath, err := pack.Index(packPaths)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Wrote index: %s\n", indexPath)
	return nil
}

// collectCSVPaths resolves explicit paths and glob patterns, dropping
// duplicates while preserving order.
func collectCSVPaths(opts *evidenceOptions) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	for _, path := range opts.csvPaths {
		add(path)
	}
	for _, pattern := range opts.csvGlobs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			add(match)
		}
	}
	return paths, nil
}
