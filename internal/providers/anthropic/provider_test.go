package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarian/librarian-backend/internal/config"
	"github.com/librarian/librarian-backend/internal/llm"
)

func TestNewProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewProvider("anthropic", config.ProviderConfig{})
	assert.Error(t, err)
}

func TestProvider_Send(t *testing.T) {
	var gotBody map[string]any
	var gotHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"stop_reason": "tool_use",
			"content": [
				{"type": "text", "text": "Let me check."},
				{"type": "tool_use", "id": "tu_1", "name": "search_documentation", "input": {"query": "fiber"}}
			],
			"usage": {
				"input_tokens": 1000,
				"cache_creation_input_tokens": 250,
				"cache_read_input_tokens": 5000,
				"output_tokens": 200
			}
		}`))
	}))
	defer server.Close()

	provider, err := NewProvider("anthropic", config.ProviderConfig{
		Name:      "Anthropic",
		APIKey:    "test-key",
		BaseURL:   server.URL,
		MaxTokens: 2048,
	})
	require.NoError(t, err)

	system := llm.TextBlock("you are the librarian")
	system.CacheControl = llm.EphemeralCache()
	req := llm.AssembledRequest{
		System: []llm.ContentBlock{system},
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: []llm.ContentBlock{llm.TextBlock("hello")}},
		},
	}

	resp, err := provider.Send(context.Background(), req, "claude-sonnet-4-20250514")
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotHeaders.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, gotHeaders.Get("anthropic-version"))

	assert.Equal(t, "claude-sonnet-4-20250514", gotBody["model"])
	assert.Equal(t, float64(2048), gotBody["max_tokens"])

	// The cache breakpoint must survive serialization.
	systemBlocks := gotBody["system"].([]any)
	first := systemBlocks[0].(map[string]any)
	cacheControl := first["cache_control"].(map[string]any)
	assert.Equal(t, "ephemeral", cacheControl["type"])

	assert.Equal(t, "Let me check.", resp.Text)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "search_documentation", resp.ToolCalls[0].Name)

	assert.Equal(t, 1000, resp.Usage.InputTokens)
	assert.Equal(t, 250, resp.Usage.CacheWriteTokens)
	assert.Equal(t, 5000, resp.Usage.CacheReadTokens)
	assert.Equal(t, 200, resp.Usage.OutputTokens)
	assert.True(t, resp.Usage.CacheHit())
}

func TestProvider_SendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	provider, err := NewProvider("anthropic", config.ProviderConfig{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = provider.Send(context.Background(), llm.AssembledRequest{}, "claude-sonnet-4-20250514")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_error")
}
