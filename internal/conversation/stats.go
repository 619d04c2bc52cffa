package conversation

import (
	"time"
)

// SessionStats summarizes one session's activity.
type SessionStats struct {
	SessionID        string    `json:"session_id"`
	TurnCount        int       `json:"turn_count"`
	ToolCallCount    int       `json:"tool_call_count"`
	CapabilityTags   []string  `json:"capability_tags"`
	DurationSeconds  float64   `json:"duration_seconds"`
	CacheKeys        []string  `json:"cache_keys"`
	FirstMessageTime time.Time `json:"first_message_time,omitempty"`
	LastMessageTime  time.Time `json:"last_message_time,omitempty"`
}

// Stats computes summary statistics for a session. Unknown sessions are an
// error: unlike history reads, stats are meaningless without a lifecycle
// record to measure duration against.
func (o *Orchestrator) Stats(sessionID string) (SessionStats, error) {
	session, ok := o.manager.Get(sessionID)
	if !ok {
		return SessionStats{}, ErrSessionNotFound
	}

	turns := o.turns.All(sessionID)

	stats := SessionStats{
		SessionID:       sessionID,
		TurnCount:       len(turns),
		DurationSeconds: o.now().Sub(session.CreatedAt).Seconds(),
		CacheKeys:       o.cache.Keys(sessionID),
	}

	seen := make(map[string]bool)
	for _, turn := range turns {
		stats.ToolCallCount += len(turn.ToolCalls)
		for _, tag := range turn.CapabilityTags {
			if !seen[tag] {
				seen[tag] = true
				stats.CapabilityTags = append(stats.CapabilityTags, tag)
			}
		}
	}

	if len(turns) > 0 {
		stats.FirstMessageTime = turns[0].Timestamp
		stats.LastMessageTime = turns[len(turns)-1].Timestamp
	}

	return stats, nil
}
