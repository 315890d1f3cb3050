package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible
// chat completion endpoints with vision support.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey  string // Required: OpenAI API key
	BaseURL string // Default: https://api.openai.com
	Model   string // e.g., "gpt-4o"
	Timeout int    // Timeout in seconds (default: 120)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(config OpenAIConfig) *OpenAIProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 120
	}

	return &OpenAIProvider{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		model:   config.Model,
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// openAIChatRequest represents the OpenAI chat completions API request.
type openAIChatRequest struct {
	Model          string           `json:"model"`
	Messages       []openAIMessage  `json:"messages"`
	MaxTokens      int              `json:"max_tokens,omitempty"`
	ResponseFormat *openAIRespFmt   `json:"response_format,omitempty"`
}

type openAIRespFmt struct {
	Type string `json:"type"`
}

type openAIMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

// openAIChatResponse represents the OpenAI chat completions API response.
type openAIChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Complete implements the Provider interface.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	messages, err := toOpenAIMessages(req.Messages)
	if err != nil {
		return CompletionResponse{}, err
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	openAIReq := openAIChatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
	if req.JSONResponse {
		openAIReq.ResponseFormat = &openAIRespFmt{Type: "json_object"}
	}

	body, err := json.Marshal(openAIReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return CompletionResponse{}, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var openAIResp openAIChatResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if openAIResp.Error != nil {
		return CompletionResponse{}, fmt.Errorf("openai error: %s: %s", openAIResp.Error.Type, openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("no choices in response")
	}

	return CompletionResponse{
		ID:      openAIResp.ID,
		Model:   openAIResp.Model,
		Content: openAIResp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     openAIResp.Usage.PromptTokens,
			CompletionTokens: openAIResp.Usage.CompletionTokens,
			TotalTokens:      openAIResp.Usage.TotalTokens,
		},
	}, nil
}

// toOpenAIMessages converts provider-neutral messages to the OpenAI wire
// format. Text-only messages use a plain string content; messages with
// images use the content-part array form.
func toOpenAIMessages(messages []Message) ([]openAIMessage, error) {
	out := make([]openAIMessage, len(messages))
	for i, msg := range messages {
		textOnly := true
		for _, part := range msg.Parts {
			if part.Type != "text" {
				textOnly = false
				break
			}
		}

		var content any
		if textOnly && len(msg.Parts) == 1 {
			content = msg.Parts[0].Text
		} else {
			parts := make([]openAIContentPart, len(msg.Parts))
			for j, part := range msg.Parts {
				switch part.Type {
				case "text":
					parts[j] = openAIContentPart{Type: "text", Text: part.Text}
				case "image_url":
					parts[j] = openAIContentPart{Type: "image_url", ImageURL: &openAIImageURL{URL: part.ImageURL}}
				default:
					return nil, fmt.Errorf("unknown content part type: %s", part.Type)
				}
			}
			content = parts
		}

		raw, err := json.Marshal(content)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message content: %w", err)
		}
		out[i] = openAIMessage{Role: msg.Role, Content: raw}
	}
	return out, nil
}
