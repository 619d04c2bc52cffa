// Package conversation implements per-session conversation state: the turn
// log, the session side-cache, cache-boundary selection, and the session
// lifecycle that ties them together.
package conversation

import (
	"sync"
	"time"

	"github.com/librarian/librarian-backend/internal/llm"
)

// Turn is one user/assistant exchange. Immutable once appended; ordering is
// insertion order and is significant for boundary selection.
type Turn struct {
	Timestamp         time.Time      `json:"timestamp"`
	UserMessage       string         `json:"user_message"`
	AssistantResponse string         `json:"assistant_response"`
	ToolCalls         []llm.ToolCall `json:"tool_calls,omitempty"`
	CapabilityTags    []string       `json:"capability_tags,omitempty"`
}

// TurnStore is an append-only per-session turn log.
type TurnStore struct {
	mu    sync.RWMutex
	turns map[string][]Turn
}

// NewTurnStore creates an empty turn store.
func NewTurnStore() *TurnStore {
	return &TurnStore{
		turns: make(map[string][]Turn),
	}
}

// Append adds a turn at the end of the session's history. It never fails.
func (s *TurnStore) Append(sessionID string, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns[sessionID] = append(s.turns[sessionID], turn)
}

// All returns the full ordered history for a session. Unknown sessions yield
// an empty slice, not an error: absence is empty history.
func (s *TurnStore) All(sessionID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[sessionID]
	copied := make([]Turn, len(turns))
	copy(copied, turns)
	return copied
}

// LastN returns the last min(n, len) turns in order.
func (s *TurnStore) LastN(sessionID string, n int) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[sessionID]
	if n < 0 {
		n = 0
	}
	if n > len(turns) {
		n = len(turns)
	}
	copied := make([]Turn, n)
	copy(copied, turns[len(turns)-n:])
	return copied
}

// Count returns the number of turns recorded for a session.
func (s *TurnStore) Count(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.turns[sessionID])
}

// Drop removes a session's entire history. Used only by lifecycle reaping;
// individual turns are never deleted.
func (s *TurnStore) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.turns, sessionID)
}
