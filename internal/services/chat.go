package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/librarian/librarian-backend/internal/analytics"
	"github.com/librarian/librarian-backend/internal/conversation"
	"github.com/librarian/librarian-backend/internal/cost"
	"github.com/librarian/librarian-backend/internal/llm"
	"github.com/librarian/librarian-backend/internal/providers"
	"github.com/librarian/librarian-backend/internal/retrieval"
	"github.com/librarian/librarian-backend/internal/skills"
)

// ChatRequest is one inbound user message for a session.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
}

// ChatResponse is the completed turn as returned to clients.
type ChatResponse struct {
	SessionID  string         `json:"session_id"`
	Response   string         `json:"response"`
	ToolCalls  []llm.ToolCall `json:"tool_calls,omitempty"`
	SkillsUsed []string       `json:"skills_used,omitempty"`
	Model      string         `json:"model"`
	Usage      llm.Usage      `json:"usage"`
	Cost       cost.Breakdown `json:"cost"`
}

// ChatDeps are the collaborators a ChatService needs.
type ChatDeps struct {
	Orchestrator    *conversation.Orchestrator
	Providers       *providers.Registry
	Analytics       *analytics.Service
	Skills          *skills.Manager
	Documents       retrieval.Store
	DefaultProvider string
	DefaultModel    string
	Log             *logrus.Logger
}

// ChatService runs one full chat turn: request assembly, the model call, and
// turn completion with accounting.
type ChatService struct {
	deps ChatDeps
	now  func() time.Time
}

// NewChatService creates a chat service.
func NewChatService(deps ChatDeps) *ChatService {
	return &ChatService{deps: deps, now: time.Now}
}

// Send processes one user message. Session state is only mutated once the
// model call succeeds; a failed call leaves the session exactly as it was, so
// the client can retry.
func (s *ChatService) Send(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Message == "" {
		return nil, fmt.Errorf("message is required")
	}

	providerID := req.Provider
	if providerID == "" {
		providerID = s.deps.DefaultProvider
	}
	provider := s.deps.Providers.Get(providerID)
	if provider == nil {
		return nil, fmt.Errorf("unknown provider: %s", providerID)
	}

	model := req.Model
	if model == "" {
		model = s.deps.DefaultModel
	}

	var retriever conversation.Retriever
	if s.deps.Documents != nil {
		retriever = s.deps.Documents
	}

	pending, err := s.deps.Orchestrator.HandleTurn(ctx, req.SessionID, req.Message, s.deps.Skills.SystemPrompt(), s.deps.Skills, retriever)
	if err != nil {
		return nil, err
	}

	start := s.now()
	resp, err := provider.Send(ctx, pending.Request, model)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", providerID, err)
	}
	elapsed := s.now().Sub(start).Seconds()

	result, err := pending.Complete(resp.Usage, resp.Text, resp.ToolCalls, pending.CapabilityTags)
	if err != nil {
		return nil, err
	}

	s.deps.Analytics.Record(analytics.Interaction{
		SessionID:    req.SessionID,
		Tokens:       resp.Usage.InputTokens + resp.Usage.CacheWriteTokens + resp.Usage.CacheReadTokens + resp.Usage.OutputTokens,
		Cost:         result.Cost.Total,
		Savings:      result.Cost.Savings,
		ResponseTime: elapsed,
		CacheHit:     resp.Usage.CacheHit(),
		SkillsUsed:   pending.CapabilityTags,
	})

	return &ChatResponse{
		SessionID:  req.SessionID,
		Response:   resp.Text,
		ToolCalls:  resp.ToolCalls,
		SkillsUsed: pending.CapabilityTags,
		Model:      resp.Model,
		Usage:      resp.Usage,
		Cost:       result.Cost,
	}, nil
}
