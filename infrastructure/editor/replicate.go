package editor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// apiClient is a thin transport for a Replicate-style prediction API.
// Predictions are created with the blocking "Prefer: wait" mode, so a
// single call covers submit and completion.
type apiClient struct {
	token    string
	baseURL  string
	http     *http.Client
	download *http.Client
}

func newAPIClient(token, baseURL string, requestTimeout, downloadTimeout time.Duration) *apiClient {
	if baseURL == "" {
		baseURL = "https://api.replicate.com"
	}
	if requestTimeout <= 0 {
		requestTimeout = 120 * time.Second
	}
	if downloadTimeout <= 0 {
		downloadTimeout = 120 * time.Second
	}
	return &apiClient{
		token:    token,
		baseURL:  baseURL,
		http:     &http.Client{Timeout: requestTimeout},
		download: &http.Client{Timeout: downloadTimeout},
	}
}

type predictionRequest struct {
	Input map[string]any `json:"input"`
}

type predictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  *string         `json:"error"`
}

// run executes a model and returns its raw output.
func (c *apiClient) run(ctx context.Context, model string, input map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(predictionRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction input: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s/predictions", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Prefer", "wait")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read prediction response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var pred predictionResponse
	if err := json.Unmarshal(respBody, &pred); err != nil {
		return nil, fmt.Errorf("failed to parse prediction response: %w", err)
	}
	if pred.Error != nil && *pred.Error != "" {
		return nil, fmt.Errorf("model error: %s", *pred.Error)
	}
	if pred.Status == "failed" || pred.Status == "canceled" {
		return nil, fmt.Errorf("prediction %s: status %s", pred.ID, pred.Status)
	}
	return pred.Output, nil
}

// outputURL extracts the first artifact URL from a model output, which
// may be a bare string or a list of strings.
func outputURL(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("empty model output")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 && list[0] != "" {
		return list[0], nil
	}

	return "", fmt.Errorf("unsupported model output: %s", truncate(string(raw), 120))
}

// fetch downloads an artifact URL to dest.
func (c *apiClient) fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.download.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed (status %d): %s", resp.StatusCode, url)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create download file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("failed to write download: %w", err)
	}
	return nil
}

// imageDataURI encodes a local image file as a data URI for a model
// input field.
func imageDataURI(path string) (string, error) {
	var mime string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".webp":
		mime = "image/webp"
	default:
		mime = "image/png"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
