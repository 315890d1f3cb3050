// Package editor provides the Replicate-backed image editing,
// segmentation and inpainting clients, including the retry-with-backoff
// and mock-fallback policy for baseline edits.
package editor

import (
	"fmt"

	"github.com/urbanlens/counterfact/domain/counterfactual"
)

// Backend identifies a supported baseline image-editing model.
type Backend string

// Supported baseline editing backends.
const (
	BackendNanoBanana  Backend = "google/nano-banana-pro"
	BackendSeedream    Backend = "bytedance/seedream-4"
	BackendGPTImage    Backend = "openai/gpt-image-1.5"
	BackendFluxKontext Backend = "black-forest-labs/flux-kontext-max"
)

// AllBackends returns the supported baseline editing backends.
func AllBackends() []Backend {
	return []Backend{BackendNanoBanana, BackendSeedream, BackendGPTImage, BackendFluxKontext}
}

// ParseBackend validates a model slug.
func ParseBackend(slug string) (Backend, error) {
	for _, b := range AllBackends() {
		if string(b) == slug {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %s", counterfactual.ErrUnsupportedBackend, slug)
}

// String returns the model slug.
func (b Backend) String() string {
	return string(b)
}
