package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/librarian/librarian-backend/internal/cost"
	"github.com/librarian/librarian-backend/internal/llm"
	"github.com/librarian/librarian-backend/internal/prompt"
)

// sideDataKey is the side-cache key for retrieved reference documentation.
const sideDataKey = "docs"

// CapabilityProvider detects which capability contexts apply to a message
// and renders them as a single context block.
type CapabilityProvider interface {
	Detect(message string) []string
	Context(tags []string) string
}

// Retriever fetches side data for a query. ok reports whether anything was
// found; errors are treated as "no side data" by the orchestrator.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (text string, ok bool, err error)
}

// Orchestrator is the core's surface to the transport layer: it owns the
// per-request flow of boundary selection, request assembly, and turn
// completion.
type Orchestrator struct {
	manager *Manager
	turns   *TurnStore
	cache   *SideCache
	ledger  *cost.Ledger
	log     *logrus.Logger

	// freshnessWindow is the boundary selector's k: how many trailing
	// turns are always re-sent fresh.
	freshnessWindow int

	now func() time.Time
}

// NewOrchestrator wires the conversation core together.
func NewOrchestrator(manager *Manager, turns *TurnStore, cache *SideCache, ledger *cost.Ledger, freshnessWindow int, log *logrus.Logger) *Orchestrator {
	if freshnessWindow < 0 {
		freshnessWindow = 0
	}
	return &Orchestrator{
		manager:         manager,
		turns:           turns,
		cache:           cache,
		ledger:          ledger,
		log:             log,
		freshnessWindow: freshnessWindow,
		now:             time.Now,
	}
}

// CreateSession registers a new session and returns its record.
func (o *Orchestrator) CreateSession() Session {
	return o.manager.Create()
}

// History returns the full ordered turn history. Unknown sessions yield an
// empty history, never an error: read paths are total.
func (o *Orchestrator) History(sessionID string) []Turn {
	return o.turns.All(sessionID)
}

// DeleteSession removes a session and its state. Idempotent.
func (o *Orchestrator) DeleteSession(sessionID string) {
	o.manager.Delete(sessionID)
}

// Reap removes sessions idle longer than maxIdle and returns the count.
func (o *Orchestrator) Reap(maxIdle time.Duration) int {
	return o.manager.Reap(maxIdle)
}

// TurnResult is what a completed turn produces: the appended record and the
// priced usage for the request that produced it.
type TurnResult struct {
	Turn Turn           `json:"turn"`
	Cost cost.Breakdown `json:"cost"`
}

// PendingTurn is a prepared request plus the right to complete it. If the
// model call fails or is cancelled, the caller simply never completes; no
// session state has been mutated, and retrying with the same history
// produces an identical request.
type PendingTurn struct {
	Request        llm.AssembledRequest
	CapabilityTags []string

	orchestrator *Orchestrator
	sessionID    string
	userMessage  string
}

// HandleTurn assembles the outbound request for a new user message. The
// session's turn history is snapshotted and partitioned under the session
// lock, so a concurrent request for the same session cannot mutate it
// mid-computation. Unknown sessions are a usage error.
//
// Capability context and side data are best-effort enrichments: a retrieval
// failure degrades to omitting the block, never to blocking assembly.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, userMessage, systemInstructions string, capabilities CapabilityProvider, retriever Retriever) (*PendingTurn, error) {
	st, err := o.manager.acquire(sessionID)
	if err != nil {
		return nil, fmt.Errorf("handle turn: %w", err)
	}

	history := o.turns.All(sessionID)
	boundary := SplitHistory(history, o.freshnessWindow)
	st.mu.Unlock()

	var tags []string
	var capabilityContext string
	if capabilities != nil {
		tags = capabilities.Detect(userMessage)
		capabilityContext = capabilities.Context(tags)
	}

	sideData := o.sideData(ctx, sessionID, userMessage, retriever)

	req := prompt.Assemble(prompt.Input{
		System:            systemInstructions,
		CapabilityContext: capabilityContext,
		SideData:          sideData,
		Prefix:            toExchanges(boundary.Prefix),
		Suffix:            toExchanges(boundary.Suffix),
		UserMessage:       userMessage,
	})

	o.log.WithFields(logrus.Fields{
		"session_id":     sessionID,
		"history_turns":  len(history),
		"boundary_point": boundary.Point,
		"tags":           tags,
	}).Debug("assembled turn request")

	return &PendingTurn{
		Request:        req,
		CapabilityTags: tags,
		orchestrator:   o,
		sessionID:      sessionID,
		userMessage:    userMessage,
	}, nil
}

// Complete records the model's response: the turn is appended exactly once
// and the usage is priced. The append and the activity update happen under
// the session lock, so concurrent completions for the same session serialize
// without losing or duplicating turns.
func (p *PendingTurn) Complete(usage llm.Usage, assistantResponse string, toolCalls []llm.ToolCall, capabilityTags []string) (TurnResult, error) {
	o := p.orchestrator

	st, err := o.manager.acquire(p.sessionID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("complete turn: %w", err)
	}

	now := o.now()
	turn := Turn{
		Timestamp:         now,
		UserMessage:       p.userMessage,
		AssistantResponse: assistantResponse,
		ToolCalls:         toolCalls,
		CapabilityTags:    capabilityTags,
	}
	o.turns.Append(p.sessionID, turn)
	st.recordTurn(now)
	st.mu.Unlock()

	breakdown := o.ledger.Compute(usage)

	o.log.WithFields(logrus.Fields{
		"session_id": p.sessionID,
		"cost_usd":   breakdown.Total,
		"savings":    breakdown.Savings,
		"cache_hit":  usage.CacheHit(),
	}).Info("turn completed")

	return TurnResult{Turn: turn, Cost: breakdown}, nil
}

// sideData returns reference documentation for the message, consulting the
// session side-cache first and writing retrieval results back on a miss.
func (o *Orchestrator) sideData(ctx context.Context, sessionID, query string, retriever Retriever) string {
	if cached, ok := o.cache.Get(sessionID, sideDataKey); ok {
		if text, ok := cached.(string); ok {
			return text
		}
	}

	if retriever == nil {
		return ""
	}
	text, found, err := retriever.Retrieve(ctx, query)
	if err != nil {
		o.log.WithError(err).WithField("session_id", sessionID).Warn("side-data retrieval failed, omitting block")
		return ""
	}
	if !found || text == "" {
		return ""
	}

	o.cache.Set(sessionID, sideDataKey, text)
	return text
}

func toExchanges(turns []Turn) []prompt.Exchange {
	exchanges := make([]prompt.Exchange, len(turns))
	for i, t := range turns {
		exchanges[i] = prompt.Exchange{User: t.UserMessage, Assistant: t.AssistantResponse}
	}
	return exchanges
}
