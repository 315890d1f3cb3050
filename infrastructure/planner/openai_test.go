package planner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIProvider_Complete(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "gpt-4o",
			"choices": [{"message": {"role": "assistant", "content": "{\"edit_plan\":\"x\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4o"})

	resp, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			SystemMessage("be terse"),
			{Role: "user", Parts: []ContentPart{
				TextPart("plan an edit"),
				ImagePart("data:image/png;base64,AAAA"),
			}},
		},
		JSONResponse: true,
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if resp.Content != `{"edit_plan":"x"}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d, want 15", resp.Usage.TotalTokens)
	}

	if rf, ok := gotBody["response_format"].(map[string]any); !ok || rf["type"] != "json_object" {
		t.Errorf("response_format = %v, want json_object", gotBody["response_format"])
	}
	messages, _ := gotBody["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("wire messages = %d, want 2", len(messages))
	}
	// System message serializes as a plain string, vision message as parts.
	sys := messages[0].(map[string]any)
	if _, isString := sys["content"].(string); !isString {
		t.Errorf("system content should be a plain string, got %T", sys["content"])
	}
	user := messages[1].(map[string]any)
	parts, ok := user["content"].([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("user content = %v, want 2 content parts", user["content"])
	}
}

func TestOpenAIProvider_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit"}}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o"})
	_, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{SystemMessage("x")},
	})
	if err == nil {
		t.Fatal("expected error on 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error = %v, want status code in message", err)
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o"})
	if _, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{SystemMessage("x")},
	}); err == nil {
		t.Fatal("expected error on empty choices")
	}
}
