// Package openai implements an OpenAI-compatible provider. It flattens the
// assembled block sequence into plain chat messages: cache breakpoints are
// advisory and simply dropped for providers without prefix caching.
package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/librarian/librarian-backend/internal/config"
	"github.com/librarian/librarian-backend/internal/llm"
)

// Provider implements an OpenAI-compatible provider.
type Provider struct {
	id     string
	config config.ProviderConfig
	client *openai.Client
}

// NewProvider creates a new OpenAI-compatible provider. BaseURL selects a
// compatible endpoint (e.g. a local server); empty means api.openai.com.
func NewProvider(id string, cfg config.ProviderConfig) (*Provider, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		id:     id,
		config: cfg,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.config.Name
}

// Send performs a non-streaming chat completion.
func (p *Provider) Send(ctx context.Context, req llm.AssembledRequest, model string) (*llm.Response, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: flatten(req),
	})
	if err != nil {
		return nil, err
	}

	out := &llm.Response{
		Model: resp.Model,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
		out.StopReason = string(resp.Choices[0].FinishReason)
	}
	return out, nil
}

// flatten joins each message's text blocks and prepends the system blocks
// as a single system message.
func flatten(req llm.AssembledRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)

	if len(req.System) > 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: joinBlocks(req.System),
		})
	}

	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: joinBlocks(msg.Content),
		})
	}
	return messages
}

func joinBlocks(blocks []llm.ContentBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
