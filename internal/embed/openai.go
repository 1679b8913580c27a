// Package embed provides the embedding client used by the vector store for
// both chunk upserts and query-time similarity search.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ragchat/internal/core"
	"ragchat/internal/logger"
)

// Client is an OpenAI-compatible embeddings client. It implements
// core.EmbedService.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Config configures the embeddings client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// EmbedQuery returns an embedding vector for the given text.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	url := c.baseURL + "/embeddings"

	jsonData, err := json.Marshal(embeddingRequest{Input: text, Model: c.model})
	if err != nil {
		return nil, &core.ProviderError{Op: "embed", Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &core.ProviderError{Op: "embed", Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if core.IsCancellation(ctx.Err()) {
			return nil, ctx.Err()
		}
		return nil, &core.ProviderError{Op: "embed", Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.ProviderError{Op: "embed", Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &core.ProviderError{Op: "embed", Err: fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)}
	}

	if parsed.Error != nil && parsed.Error.Message != "" {
		return nil, &core.ProviderError{Op: "embed", Err: fmt.Errorf("embeddings API error: %s", parsed.Error.Message)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &core.ProviderError{Op: "embed", Err: fmt.Errorf("embeddings API HTTP error (status %d): %s", resp.StatusCode, string(body))}
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, &core.ProviderError{Op: "embed", Err: fmt.Errorf("embeddings API returned no vector")}
	}

	logger.Debug("Created embedding vector with dimension %d", len(parsed.Data[0].Embedding))
	return parsed.Data[0].Embedding, nil
}
