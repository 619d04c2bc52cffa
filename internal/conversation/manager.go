package conversation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrSessionNotFound is returned when an operation that requires an existing
// session is invoked with an unknown id.
var ErrSessionNotFound = errors.New("session not found")

// Session is the lifecycle record for one conversational context.
type Session struct {
	ID           string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	TurnCount    int       `json:"turn_count"`
}

// sessionState pairs a session record with its per-session lock. The lock
// serializes boundary selection, appends, and reaping for one session while
// leaving all other sessions independent.
type sessionState struct {
	mu      sync.Mutex
	session Session
	removed bool
}

// Manager owns session identity and lifecycle. It is the single owner of the
// turn store and side-cache namespaces: deleting a session removes all three
// atomically under that session's lock.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*sessionState

	turns *TurnStore
	cache *SideCache
	log   *logrus.Logger

	now func() time.Time
}

// NewManager creates a session manager over the given stores.
func NewManager(turns *TurnStore, cache *SideCache, log *logrus.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*sessionState),
		turns:    turns,
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
}

// Create registers a new session with a fresh id and empty state.
func (m *Manager) Create() Session {
	now := m.now()
	session := Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
	}

	m.mu.Lock()
	m.sessions[session.ID] = &sessionState{session: session}
	m.mu.Unlock()

	m.log.WithField("session_id", session.ID).Info("session created")
	return session
}

// Get returns a snapshot of the session record.
func (m *Manager) Get(sessionID string) (Session, bool) {
	st, err := m.acquire(sessionID)
	if err != nil {
		return Session{}, false
	}
	defer st.mu.Unlock()

	return st.session, true
}

// Touch updates the session's last-activity time.
func (m *Manager) Touch(sessionID string) error {
	st, err := m.acquire(sessionID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	st.session.LastActivity = m.now()
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// IDs returns the ids of all live sessions.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Delete removes a session and its turn and cache state. Idempotent:
// deleting an unknown or already-deleted session is a no-op.
func (m *Manager) Delete(sessionID string) {
	st, err := m.acquire(sessionID)
	if err != nil {
		return
	}
	m.remove(st)
	st.mu.Unlock()

	m.log.WithField("session_id", sessionID).Info("session deleted")
}

// Reap removes every session idle strictly longer than maxIdle and returns
// the count removed. A session whose idle time equals maxIdle exactly is
// retained. Each candidate is re-checked under its own lock, so a session
// being served by an in-flight request is never pulled out from under it.
func (m *Manager) Reap(maxIdle time.Duration) int {
	removed := 0
	for _, id := range m.IDs() {
		st, err := m.acquire(id)
		if err != nil {
			continue
		}
		if m.now().Sub(st.session.LastActivity) > maxIdle {
			m.remove(st)
			removed++
		}
		st.mu.Unlock()
	}

	if removed > 0 {
		m.log.WithFields(logrus.Fields{
			"removed":  removed,
			"max_idle": maxIdle.String(),
		}).Info("reaped idle sessions")
	}
	return removed
}

// acquire locks the session for exclusive use. The caller must unlock
// st.mu when done. The registry lock is never held while waiting on a
// session lock, and vice versa.
func (m *Manager) acquire(sessionID string) (*sessionState, error) {
	m.mu.Lock()
	st, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	st.mu.Lock()
	if st.removed {
		st.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return st, nil
}

// remove drops the session's stores and record. Caller holds st.mu.
func (m *Manager) remove(st *sessionState) {
	st.removed = true
	m.turns.Drop(st.session.ID)
	m.cache.Clear(st.session.ID)

	m.mu.Lock()
	delete(m.sessions, st.session.ID)
	m.mu.Unlock()
}

// recordTurn bumps the turn count and activity time after an append.
// Caller holds st.mu.
func (st *sessionState) recordTurn(now time.Time) {
	st.session.TurnCount++
	st.session.LastActivity = now
}
