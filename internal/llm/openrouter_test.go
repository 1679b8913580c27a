package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/core"
)

func TestComplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, core.RoleSystem, req.Messages[0].Role)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": "the answer"}},
			},
		})
	}))
	defer srv.Close()

	svc := NewOpenRouterService("key", "test-model").WithBaseURL(srv.URL)
	answer, err := svc.Complete(context.Background(), BuildMessages("sys", "", "q"))
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
}

func TestComplete_ErrorEnvelopeWithOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited", "code": 429},
		})
	}))
	defer srv.Close()

	svc := NewOpenRouterService("key", "m").WithBaseURL(srv.URL)
	_, err := svc.Complete(context.Background(), nil)
	require.Error(t, err)

	var provErr *core.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, provErr.Error(), "rate limited")
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []map[string]any{}})
	}))
	defer srv.Close()

	svc := NewOpenRouterService("key", "m").WithBaseURL(srv.URL)
	_, err := svc.Complete(context.Background(), nil)
	var provErr *core.ProviderError
	require.ErrorAs(t, err, &provErr)
}

func TestComplete_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewOpenRouterService("key", "m").WithBaseURL(srv.URL)
	_, err := svc.Complete(context.Background(), nil)
	var provErr *core.ProviderError
	require.ErrorAs(t, err, &provErr)
}
