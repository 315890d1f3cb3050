package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/urbanlens/counterfact/domain/counterfactual"
	"github.com/urbanlens/counterfact/infrastructure/logging"
)

// imageSuffixes are the input formats the batch runner accepts.
var imageSuffixes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// BatchRunner executes the loop over every image in a directory with
// bounded concurrency. Failures are isolated per image: a failed run
// yields an error row and never aborts the rest of the batch.
type BatchRunner struct {
	engine      *Engine
	concurrency int
}

// NewBatchRunner creates a batch runner. concurrency values below 1 are
// treated as 1.
func NewBatchRunner(engine *Engine, concurrency int) *BatchRunner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchRunner{engine: engine, concurrency: concurrency}
}

// CollectImages lists the supported image files directly under dir in
// lexical order.
func CollectImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input dir %s: %w", dir, err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageSuffixes[strings.ToLower(filepath.Ext(entry.Name()))] {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}

// Run processes every image in inputDir and returns one result row per
// image, in input order. The returned error is reserved for conditions
// that prevent the batch itself from running, such as an unreadable
// input directory or a canceled context.
func (b *BatchRunner) Run(ctx context.Context, inputDir, targetAttribute string) ([]counterfactual.ResultRow, error) {
	images, err := CollectImages(inputDir)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		logging.Warn().
			Add(logging.Str("input_dir", inputDir)).
			Msg("no input images found")
		return nil, nil
	}

	logging.Info().
		Add(logging.Str("input_dir", inputDir)).
		Add(logging.TargetAttribute(targetAttribute)).
		Add(logging.Str("images", fmt.Sprintf("%d", len(images)))).
		Msg("batch started")

	rows := make([]counterfactual.ResultRow, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, imagePath := range images {
		g.Go(func() error {
			run, err := b.engine.Run(gctx, imagePath, targetAttribute)
			if err != nil {
				// Isolate the failure; everything else keeps going.
				rows[i] = counterfactual.ErrorRow(imagePath, err)
				return nil
			}
			rows[i] = counterfactual.RowFromRun(run)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rows, err
	}
	if err := ctx.Err(); err != nil {
		return rows, err
	}
	return rows, nil
}

// Summary condenses a batch result for end-of-run reporting.
type Summary struct {
	Total    int
	Accepted int
	Failed   int
}

// Summarize counts accepted and failed rows.
func Summarize(rows []counterfactual.ResultRow) Summary {
	s := Summary{Total: len(rows)}
	for _, row := range rows {
		switch {
		case strings.HasPrefix(row.CriticNotes, "ERROR:"):
			s.Failed++
		case row.CriticIsRealistic && row.CriticIsMinimalEdit:
			s.Accepted++
		}
	}
	return s
}
