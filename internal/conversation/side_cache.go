package conversation

import (
	"sync"
	"time"
)

// SideCache stores session-scoped side data (retrieved documents, detected
// capability context) with a process-wide TTL measured from write time.
// There is no sliding expiry: a cached value goes stale at a fixed wall-clock
// point regardless of reads, because the underlying knowledge base may have
// changed since it was retrieved.
//
// Eviction is lazy: reading an expired entry deletes it and reports absence.
// A background sweep could replace this policy without changing callers.
type SideCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]map[string]sideEntry

	now func() time.Time
}

type sideEntry struct {
	value     any
	writtenAt time.Time
}

// NewSideCache creates a side-cache with the given TTL.
func NewSideCache(ttl time.Duration) *SideCache {
	return &SideCache{
		ttl:     ttl,
		entries: make(map[string]map[string]sideEntry),
		now:     time.Now,
	}
}

// Set stores a value under (sessionID, key), overwriting any prior entry and
// restarting its TTL from now.
func (c *SideCache) Set(sessionID, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.entries[sessionID]
	if !ok {
		bucket = make(map[string]sideEntry)
		c.entries[sessionID] = bucket
	}
	bucket[key] = sideEntry{value: value, writtenAt: c.now()}
}

// Get returns the value for (sessionID, key) if present and unexpired. An
// expired entry is deleted as a side effect and reported absent; deleting an
// already-removed entry is a no-op, so concurrent reads are safe.
func (c *SideCache) Get(sessionID, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.entries[sessionID]
	if !ok {
		return nil, false
	}
	entry, ok := bucket[key]
	if !ok {
		return nil, false
	}

	if c.now().Sub(entry.writtenAt) > c.ttl {
		delete(bucket, key)
		if len(bucket) == 0 {
			delete(c.entries, sessionID)
		}
		return nil, false
	}

	return entry.value, true
}

// Keys returns the cache keys currently stored for a session, expired or
// not. Used for session stats only.
func (c *SideCache) Keys(sessionID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket := c.entries[sessionID]
	keys := make([]string, 0, len(bucket))
	for k := range bucket {
		keys = append(keys, k)
	}
	return keys
}

// Clear removes all entries for a session. Used on lifecycle reaping.
func (c *SideCache) Clear(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, sessionID)
}
