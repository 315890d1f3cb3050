package editor

import (
	"fmt"

	"github.com/urbanlens/counterfact/domain/counterfactual"
)

// buildBaselinePayload assembles the model-specific input payload for a
// baseline edit and reports the declared output format (png/jpg/empty).
// image is a data URI of the input image. useAlt switches gpt-image to
// its alternate input key on retry, matching observed backend drift.
func buildBaselinePayload(backend Backend, image, prompt string, useAlt bool) (map[string]any, string, error) {
	switch backend {
	case BackendNanoBanana:
		return map[string]any{
			"prompt":              prompt,
			"resolution":          "2K",
			"image_input":         []string{image},
			"aspect_ratio":        "match_input_image",
			"output_format":       "png",
			"safety_filter_level": "block_only_high",
		}, "png", nil

	case BackendSeedream:
		return map[string]any{
			"size":                         "2K",
			"width":                        2048,
			"height":                       2048,
			"prompt":                       prompt,
			"max_images":                   1,
			"image_input":                  []string{image},
			"aspect_ratio":                 "match_input_image",
			"enhance_prompt":               true,
			"sequential_image_generation": "disabled",
		}, "", nil

	case BackendGPTImage:
		imageKey := "input_images"
		if useAlt {
			imageKey = "image"
		}
		return map[string]any{
			"prompt":             prompt,
			"quality":            "high",
			"background":         "auto",
			"moderation":         "auto",
			"aspect_ratio":       "match_input_image",
			"output_format":      "png",
			"input_fidelity":     "high",
			"number_of_images":   1,
			"output_compression": 90,
			imageKey:             []string{image},
		}, "png", nil

	case BackendFluxKontext:
		return map[string]any{
			"prompt":      prompt,
			"input_image": image,
		}, "", nil

	default:
		return nil, "", fmt.Errorf("%w: %s", counterfactual.ErrUnsupportedBackend, backend)
	}
}

// suffixFromFormat maps a declared output format to a file suffix,
// defaulting to png.
func suffixFromFormat(format string) string {
	switch format {
	case "jpg", "jpeg":
		return ".jpg"
	default:
		return ".png"
	}
}
