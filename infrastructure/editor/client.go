package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/urbanlens/counterfact/domain/counterfactual"
	"github.com/urbanlens/counterfact/infrastructure/imaging"
	"github.com/urbanlens/counterfact/infrastructure/logging"
	"github.com/urbanlens/counterfact/infrastructure/storage/filesystem"
	"github.com/urbanlens/counterfact/infrastructure/telemetry"
)

// DefaultEditPrompt constrains the baseline editor to a minimal
// localized change. {target_object} and {edit_plan} are substituted per
// request.
const DefaultEditPrompt = "Use the provided image as the base. Do NOT generate a new scene. " +
	"Preserve the exact camera viewpoint, geometry, lighting, color, and all objects. " +
	"Only edit the target object and only as much as required by the plan. " +
	"Follow the edit plan literally; do not embellish or add extra elements. " +
	"Do not add or remove any other objects, signs, markings, people, vehicles, or text. " +
	"If the plan mentions repainting existing markings, keep their layout, spacing, and color; " +
	"only adjust brightness/texture/width subtly. " +
	"If the plan mentions adding a marking, add only that marking and nothing else. " +
	"Keep everything else pixel-identical outside the target area. " +
	"Object: {target_object}. Edit plan: {edit_plan}"

// baselineStem names baseline edit artifacts.
const baselineStem = "image_edit_baseline"

// Config configures the backend client.
type Config struct {
	APIToken string
	BaseURL  string // Default: https://api.replicate.com

	// Backend is the baseline editing model.
	Backend Backend

	// Segmentation and inpainting model slugs (masked variant).
	DinoModel    string
	SamModel     string
	InpaintModel string

	// OutputStore receives edited images; MaskStore receives masks.
	OutputStore *filesystem.Store
	MaskStore   *filesystem.Store

	// EditPrompt overrides the baseline prompt template.
	EditPrompt string

	// MaxRetries bounds baseline edit attempts (default 3).
	MaxRetries int

	// RetryBaseDelay is the first backoff delay; each subsequent retry
	// doubles it (default 1s).
	RetryBaseDelay time.Duration

	RequestTimeout  time.Duration
	DownloadTimeout time.Duration

	// SkipSizeMatch disables normalizing baseline output to the input
	// image's dimensions.
	SkipSizeMatch bool

	Metrics *telemetry.Metrics
}

// Client calls Replicate-style model backends for baseline edits,
// segmentation and inpainting. It implements counterfactual.Editor,
// counterfactual.Segmenter and counterfactual.Inpainter.
//
// Baseline edits never fail: transient backend errors are retried with
// exponential backoff and exhaustion degrades to a deterministic mock
// passthrough marked UsedMock.
type Client struct {
	api         *apiClient
	config      Config
	prompt      string
	retrier     retry.Retry[json.RawMessage]
	outputStore *filesystem.Store
	maskStore   *filesystem.Store
	metrics     *telemetry.Metrics
}

// NewClient creates a backend client.
func NewClient(config Config) (*Client, error) {
	if config.Backend != "" {
		if _, err := ParseBackend(string(config.Backend)); err != nil {
			return nil, err
		}
	}
	if config.OutputStore == nil {
		return nil, fmt.Errorf("output store is required")
	}

	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = time.Second
	}
	prompt := config.EditPrompt
	if prompt == "" {
		prompt = DefaultEditPrompt
	}

	return &Client{
		api:    newAPIClient(config.APIToken, config.BaseURL, config.RequestTimeout, config.DownloadTimeout),
		config: config,
		prompt: prompt,
		retrier: retry.New[json.RawMessage](retry.Config{
			MaxAttempts:   config.MaxRetries,
			InitialDelay:  config.RetryBaseDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    2.0,
		}),
		outputStore: config.OutputStore,
		maskStore:   config.MaskStore,
		metrics:     config.Metrics,
	}, nil
}

// EditBaseline implements counterfactual.Editor.
func (c *Client) EditBaseline(ctx context.Context, imagePath, editPlan, targetObject string) (counterfactual.EditResult, error) {
	prompt := strings.NewReplacer(
		"{target_object}", targetObject,
		"{edit_plan}", editPlan,
	).Replace(c.prompt)

	image, err := imageDataURI(imagePath)
	if err != nil {
		return counterfactual.EditResult{}, err
	}

	attempt := 0
	output, err := c.retrier.Do(ctx, func(ctx context.Context) (json.RawMessage, error) {
		attempt++
		if attempt > 1 {
			c.metrics.RecordEditRetry(ctx, string(c.config.Backend))
		}

		// gpt-image rejects its documented input key on some
		// deployments; switch to the alternate key after the first
		// failure.
		useAlt := c.config.Backend == BackendGPTImage && attempt > 1
		payload, _, err := buildBaselinePayload(c.config.Backend, image, prompt, useAlt)
		if err != nil {
			return nil, err
		}

		logging.Info().
			Add(logging.Model(string(c.config.Backend))).
			Add(logging.ImagePath(imagePath)).
			Add(logging.Attempt(attempt)).
			Msg("baseline edit request")

		return c.api.run(ctx, string(c.config.Backend), payload)
	})
	if err != nil {
		logging.Warn().
			Add(logging.Model(string(c.config.Backend))).
			Add(logging.ErrorField(err)).
			Msg("baseline edit exhausted retries, falling back to mock image")
		return c.mockEdit(ctx, imagePath)
	}

	url, err := outputURL(output)
	if err != nil {
		logging.Warn().
			Add(logging.Model(string(c.config.Backend))).
			Add(logging.ErrorField(err)).
			Msg("invalid baseline edit output, falling back to mock image")
		return c.mockEdit(ctx, imagePath)
	}

	_, format, _ := buildBaselinePayload(c.config.Backend, image, prompt, false)
	outputPath, err := c.outputStore.TimestampedPath(baselineStem, suffixFromFormat(format))
	if err != nil {
		return counterfactual.EditResult{}, err
	}
	if err := c.api.fetch(ctx, url, outputPath); err != nil {
		logging.Warn().
			Add(logging.Model(string(c.config.Backend))).
			Add(logging.ErrorField(err)).
			Msg("baseline edit download failed, falling back to mock image")
		return c.mockEdit(ctx, imagePath)
	}

	if !c.config.SkipSizeMatch {
		if err := imaging.MatchSize(outputPath, imagePath); err != nil {
			// Non-fatal: the unscaled output is still usable.
			logging.Warn().
				Add(logging.ImagePath(outputPath)).
				Add(logging.ErrorField(err)).
				Msg("failed to resize baseline output to match input")
		}
	}

	c.metrics.RecordEdit(ctx, string(c.config.Backend), false)
	return counterfactual.EditResult{Path: outputPath}, nil
}

// mockEdit writes a pixel-identical copy of the input as the edit result.
func (c *Client) mockEdit(ctx context.Context, imagePath string) (counterfactual.EditResult, error) {
	outputPath, err := c.outputStore.TimestampedPath(filesystem.Stem(imagePath), ".png")
	if err != nil {
		return counterfactual.EditResult{}, err
	}
	if err := imaging.Copy(imagePath, outputPath); err != nil {
		return counterfactual.EditResult{}, fmt.Errorf("mock fallback failed: %w", err)
	}
	c.metrics.RecordEdit(ctx, string(c.config.Backend), true)
	return counterfactual.EditResult{Path: outputPath, UsedMock: true}, nil
}

// SegmentObject implements counterfactual.Segmenter. Backend failure
// degrades to a full-coverage mock mask rather than failing the run.
func (c *Client) SegmentObject(ctx context.Context, imagePath, objectPrompt string) (string, error) {
	maskPath, err := c.segment(ctx, imagePath, objectPrompt)
	if err != nil {
		logging.Warn().
			Add(logging.ImagePath(imagePath)).
			Add(logging.TargetObject(objectPrompt)).
			Add(logging.ErrorField(err)).
			Msg("segmentation failed, falling back to mock mask")
		return c.mockMask(imagePath)
	}
	return maskPath, nil
}

func (c *Client) segment(ctx context.Context, imagePath, objectPrompt string) (string, error) {
	image, err := imageDataURI(imagePath)
	if err != nil {
		return "", err
	}

	// Single-model grounded segmentation path.
	if strings.Contains(c.config.SamModel, "grounded_sam") {
		output, err := c.api.run(ctx, c.config.SamModel, map[string]any{
			"image":                image,
			"mask_prompt":          objectPrompt,
			"negative_mask_prompt": "",
			"adjustment_factor":    0,
		})
		if err != nil {
			return "", err
		}
		return c.downloadMask(ctx, imagePath, output)
	}

	// Two-stage path: grounding boxes, then mask from merged box.
	bboxRaw, err := c.api.run(ctx, c.config.DinoModel, map[string]any{
		"image":  image,
		"prompt": objectPrompt,
	})
	if err != nil {
		return "", err
	}
	boxes := normalizeBoxes(bboxRaw)
	if len(boxes) == 0 {
		return "", fmt.Errorf("grounding model returned no boxes for %q", objectPrompt)
	}

	box := mergeBoxes(boxes)
	maskOutput, err := c.api.run(ctx, c.config.SamModel, map[string]any{
		"image": image,
		"box":   box[:],
	})
	if err != nil {
		return "", err
	}
	return c.downloadMask(ctx, imagePath, maskOutput)
}

func (c *Client) downloadMask(ctx context.Context, imagePath string, output json.RawMessage) (string, error) {
	url, err := outputURL(output)
	if err != nil {
		return "", err
	}
	maskPath, err := c.maskStore.TimestampedPath(filesystem.Stem(imagePath), ".png")
	if err != nil {
		return "", err
	}
	if err := c.api.fetch(ctx, url, maskPath); err != nil {
		return "", err
	}
	return maskPath, nil
}

func (c *Client) mockMask(imagePath string) (string, error) {
	maskPath, err := c.maskStore.TimestampedPath(filesystem.Stem(imagePath), ".png")
	if err != nil {
		return "", err
	}
	if err := imaging.WriteMockMask(imagePath, maskPath); err != nil {
		return "", fmt.Errorf("mock mask failed: %w", err)
	}
	return maskPath, nil
}

// Inpaint implements counterfactual.Inpainter. Backend failure degrades
// to a mock passthrough copy marked UsedMock.
func (c *Client) Inpaint(ctx context.Context, imagePath, maskPath, prompt string) (counterfactual.EditResult, error) {
	result, err := c.inpaint(ctx, imagePath, maskPath, prompt)
	if err != nil {
		logging.Warn().
			Add(logging.Model(c.config.InpaintModel)).
			Add(logging.ErrorField(err)).
			Msg("inpainting failed, falling back to mock image")
		return c.mockEdit(ctx, imagePath)
	}
	return result, nil
}

func (c *Client) inpaint(ctx context.Context, imagePath, maskPath, prompt string) (counterfactual.EditResult, error) {
	image, err := imageDataURI(imagePath)
	if err != nil {
		return counterfactual.EditResult{}, err
	}
	mask, err := imageDataURI(maskPath)
	if err != nil {
		return counterfactual.EditResult{}, err
	}

	output, err := c.api.run(ctx, c.config.InpaintModel, map[string]any{
		"image":  image,
		"mask":   mask,
		"prompt": prompt,
	})
	if err != nil {
		return counterfactual.EditResult{}, err
	}

	url, err := outputURL(output)
	if err != nil {
		return counterfactual.EditResult{}, err
	}
	outputPath, err := c.outputStore.TimestampedPath(filesystem.Stem(imagePath), ".png")
	if err != nil {
		return counterfactual.EditResult{}, err
	}
	if err := c.api.fetch(ctx, url, outputPath); err != nil {
		return counterfactual.EditResult{}, err
	}

	c.metrics.RecordEdit(ctx, c.config.InpaintModel, false)
	return counterfactual.EditResult{Path: outputPath}, nil
}
