// Package anthropic implements the Anthropic Messages API provider with
// prompt-caching support: cache_control annotations pass through on the
// wire, and the cache token categories come back in the usage record.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/librarian/librarian-backend/internal/config"
	"github.com/librarian/librarian-backend/internal/llm"
)

const (
	anthropicAPIURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 4096
)

// Provider implements the Anthropic provider.
type Provider struct {
	id     string
	config config.ProviderConfig
	client *http.Client
}

// anthropicRequest is the Messages API request body. The llm block and
// message shapes serialize directly to the wire format, cache_control
// included.
type anthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []llm.Message      `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
	System    []llm.ContentBlock `json:"system,omitempty"`
}

type anthropicContent struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason,omitempty"`
	Usage      anthropicUsage     `json:"usage"`
}

type anthropicUsage struct {
	InputTokens              int `json:"input_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	OutputTokens             int `json:"output_tokens"`
}

// NewProvider creates a new Anthropic provider.
func NewProvider(id string, cfg config.ProviderConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	return &Provider{
		id:     id,
		config: cfg,
		client: &http.Client{},
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.config.Name
}

// Send performs a non-streaming message call. Transport and API errors are
// returned unchanged; the caller owns retry policy.
func (p *Provider) Send(ctx context.Context, req llm.AssembledRequest, model string) (*llm.Response, error) {
	maxTokens := p.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     model,
		Messages:  req.Messages,
		MaxTokens: maxTokens,
		System:    req.System,
	})
	if err != nil {
		return nil, err
	}

	url := p.config.BaseURL
	if url == "" {
		url = anthropicAPIURL
	}
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	p.setHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Anthropic API error: %s - %s", resp.Status, string(bodyBytes))
	}

	var anthropicResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&anthropicResp); err != nil {
		return nil, err
	}

	return convertResponse(&anthropicResp), nil
}

// setHeaders sets the required headers for the Anthropic API.
func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.config.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

// convertResponse converts the wire response to the internal response.
func convertResponse(resp *anthropicResponse) *llm.Response {
	var text strings.Builder
	var toolCalls []llm.ToolCall

	for _, content := range resp.Content {
		switch content.Type {
		case "text":
			text.WriteString(content.Text)
		case "tool_use":
			toolCalls = append(toolCalls, llm.ToolCall{
				ID:    content.ID,
				Name:  content.Name,
				Input: content.Input,
			})
		}
	}

	return &llm.Response{
		Text:       text.String(),
		ToolCalls:  toolCalls,
		Model:      resp.Model,
		StopReason: resp.StopReason,
		Usage: llm.Usage{
			InputTokens:      resp.Usage.InputTokens,
			CacheWriteTokens: resp.Usage.CacheCreationInputTokens,
			CacheReadTokens:  resp.Usage.CacheReadInputTokens,
			OutputTokens:     resp.Usage.OutputTokens,
		},
	}
}
