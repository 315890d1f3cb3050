package editor

import (
	"errors"
	"testing"

	"github.com/urbanlens/counterfact/domain/counterfactual"
)

func TestBuildBaselinePayload(t *testing.T) {
	const image = "data:image/png;base64,AAAA"
	const prompt = "repair the streetlight"

	tests := []struct {
		name       string
		backend    Backend
		useAlt     bool
		wantFormat string
		wantKeys   []string
		absentKeys []string
	}{
		{
			name:       "nano banana",
			backend:    BackendNanoBanana,
			wantFormat: "png",
			wantKeys:   []string{"prompt", "image_input", "aspect_ratio", "safety_filter_level"},
		},
		{
			name:       "seedream",
			backend:    BackendSeedream,
			wantFormat: "",
			wantKeys:   []string{"prompt", "image_input", "size", "sequential_image_generation"},
		},
		{
			name:       "gpt image primary key",
			backend:    BackendGPTImage,
			wantFormat: "png",
			wantKeys:   []string{"prompt", "input_images", "input_fidelity"},
			absentKeys: []string{"image"},
		},
		{
			name:       "gpt image alternate key",
			backend:    BackendGPTImage,
			useAlt:     true,
			wantFormat: "png",
			wantKeys:   []string{"prompt", "image"},
			absentKeys: []string{"input_images"},
		},
		{
			name:       "flux kontext",
			backend:    BackendFluxKontext,
			wantFormat: "",
			wantKeys:   []string{"prompt", "input_image"},
			absentKeys: []string{"image_input"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, format, err := buildBaselinePayload(tt.backend, image, prompt, tt.useAlt)
			if err != nil {
				t.Fatalf("buildBaselinePayload() error = %v", err)
			}
			if format != tt.wantFormat {
				t.Errorf("format = %q, want %q", format, tt.wantFormat)
			}
			if got := payload["prompt"]; got != prompt {
				t.Errorf("prompt = %v, want %q", got, prompt)
			}
			for _, key := range tt.wantKeys {
				if _, ok := payload[key]; !ok {
					t.Errorf("payload missing key %q", key)
				}
			}
			for _, key := range tt.absentKeys {
				if _, ok := payload[key]; ok {
					t.Errorf("payload unexpectedly has key %q", key)
				}
			}
		})
	}
}

func TestBuildBaselinePayloadUnknownBackend(t *testing.T) {
	_, _, err := buildBaselinePayload(Backend("nonexistent/model"), "img", "prompt", false)
	if !errors.Is(err, counterfactual.ErrUnsupportedBackend) {
		t.Errorf("error = %v, want ErrUnsupportedBackend", err)
	}
}

func TestSuffixFromFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"png", ".png"},
		{"jpg", ".jpg"},
		{"jpeg", ".jpg"},
		{"", ".png"},
		{"webp", ".png"},
	}
	for _, tt := range tests {
		if got := suffixFromFormat(tt.format); got != tt.want {
			t.Errorf("suffixFromFormat(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
