package retrieval

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory document store used when no database is
// configured, and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Retrieve finds documents whose title or content contains the query,
// case-insensitively, newest first.
func (s *MemoryStore) Retrieve(_ context.Context, query string) (string, bool, error) {
	lower := strings.ToLower(query)

	s.mu.RLock()
	var matched []Document
	for _, doc := range s.docs {
		if strings.Contains(strings.ToLower(doc.Title), lower) ||
			strings.Contains(strings.ToLower(doc.Content), lower) {
			matched = append(matched, doc)
		}
	}
	s.mu.RUnlock()

	if len(matched) == 0 {
		return "", false, nil
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if len(matched) > maxResults {
		matched = matched[:maxResults]
	}
	return FormatContext(matched), true, nil
}

// Add stores a document and returns its id.
func (s *MemoryStore) Add(_ context.Context, doc Document) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	s.mu.Lock()
	s.docs = append(s.docs, doc)
	s.mu.Unlock()

	return doc.ID, nil
}

// List returns the most recently added documents.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, len(s.docs))
	copy(docs, s.docs)
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}
