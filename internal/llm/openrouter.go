// Package llm contains the chat completion client and the prompt assembly
// used to ground answers in retrieved document chunks.
package llm

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

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterService implements chat completions against the OpenRouter API.
type OpenRouterService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// OpenRouterError represents an error response from the OpenRouter API.
type OpenRouterError struct {
	Error struct {
		Message  string `json:"message"`
		Code     int    `json:"code"`
		Metadata struct {
			Raw          string `json:"raw"`
			ProviderName string `json:"provider_name"`
		} `json:"metadata"`
	} `json:"error"`
}

// chatRequest represents a request to the chat completion API.
type chatRequest struct {
	Model    string             `json:"model"`
	Messages []core.ChatMessage `json:"messages"`
}

// chatResponse represents a successful chat completion response.
type chatResponse struct {
	Choices []struct {
		FinishReason string           `json:"finish_reason"`
		Message      core.ChatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// NewOpenRouterService creates a new instance of OpenRouterService.
func NewOpenRouterService(apiKey, model string) *OpenRouterService {
	return &OpenRouterService{
		apiKey:  apiKey,
		model:   model,
		baseURL: openRouterURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // Set a generous timeout for LLM responses
		},
	}
}

// WithBaseURL overrides the completions endpoint, used for tests.
func (s *OpenRouterService) WithBaseURL(url string) *OpenRouterService {
	s.baseURL = url
	return s
}

// Complete sends a chat completion request to OpenRouter and returns the
// reply text. Provider failures of any kind come back as ProviderError so
// the conversation loop can report them and carry on.
func (s *OpenRouterService) Complete(ctx context.Context, messages []core.ChatMessage) (string, error) {
	jsonData, err := json.Marshal(chatRequest{Model: s.model, Messages: messages})
	if err != nil {
		return "", &core.ProviderError{Op: "complete", Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	logger.Debug("Sending request to LLM '%s' with %d messages", s.model, len(messages))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &core.ProviderError{Op: "complete", Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if core.IsCancellation(ctx.Err()) {
			return "", ctx.Err()
		}
		return "", &core.ProviderError{Op: "complete", Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &core.ProviderError{Op: "complete", Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	// OpenRouter can return an error envelope with a 200 status, so check
	// the body before the status code.
	var apiErr OpenRouterError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		msg := fmt.Sprintf("OpenRouter API error: %s (code: %d)", apiErr.Error.Message, apiErr.Error.Code)
		if apiErr.Error.Metadata.ProviderName != "" {
			msg = fmt.Sprintf("OpenRouter API error (%s): %s", apiErr.Error.Metadata.ProviderName, apiErr.Error.Message)
		}
		return "", &core.ProviderError{Op: "complete", Err: fmt.Errorf("%s", msg)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &core.ProviderError{Op: "complete", Err: fmt.Errorf("OpenRouter API HTTP error (status %d): %s", resp.StatusCode, string(body))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &core.ProviderError{Op: "complete", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(parsed.Choices) == 0 {
		return "", &core.ProviderError{Op: "complete", Err: fmt.Errorf("OpenRouter API returned no choices")}
	}

	if parsed.Usage.TotalTokens > 0 {
		logger.Debug("LLM usage - prompt: %d, completion: %d, total: %d tokens, finish reason: %s",
			parsed.Usage.PromptTokens, parsed.Usage.CompletionTokens, parsed.Usage.TotalTokens,
			parsed.Choices[0].FinishReason)
	}

	return parsed.Choices[0].Message.Content, nil
}
