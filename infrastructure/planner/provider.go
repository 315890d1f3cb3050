// Package planner provides LLM-backed planning and critique for the
// counterfactual runtime.
package planner

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urbanlens/counterfact/domain/counterfactual"
)

// Provider defines the interface for multimodal LLM providers.
type Provider interface {
	// Complete sends a chat completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// Name returns the provider name for logging.
	Name() string
}

// CompletionRequest represents a chat completion request.
type CompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`

	// JSONResponse requests a structured JSON object response.
	JSONResponse bool `json:"-"`

	MaxTokens int `json:"max_tokens,omitempty"`
}

// Message represents a chat message with text and image content parts.
type Message struct {
	Role  string        `json:"role"` // system, user, assistant
	Parts []ContentPart `json:"parts"`
}

// ContentPart is one block of message content.
type ContentPart struct {
	Type     string `json:"type"` // "text" or "image_url"
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart builds an image content part from a data URL.
func ImagePart(dataURL string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: dataURL}
}

// SystemMessage builds a system message from plain text.
func SystemMessage(text string) Message {
	return Message{Role: "system", Parts: []ContentPart{TextPart(text)}}
}

// CompletionResponse represents a chat completion response.
type CompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Usage contains token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ImageDataURL encodes an image file as a base64 data URL for a vision
// prompt. Supported suffixes: png, jpg, jpeg, webp.
func ImageDataURL(path string) (string, error) {
	var mime string
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "jpg", "jpeg":
		mime = "image/jpeg"
	case "png":
		mime = "image/png"
	case "webp":
		mime = "image/webp"
	default:
		return "", fmt.Errorf("%w: %s", counterfactual.ErrUnsupportedImageFormat, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
