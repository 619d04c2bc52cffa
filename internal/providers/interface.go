// Package providers defines the model-call collaborators: clients that send
// an assembled request to a hosted model API and return its response with
// usage accounting.
package providers

import (
	"context"
	"sync"

	"github.com/librarian/librarian-backend/internal/llm"
)

// Provider sends an assembled request to a model API. Transport failures
// are returned unchanged; the caller decides whether to retry. Providers
// must not mutate the request.
type Provider interface {
	Name() string
	Send(ctx context.Context, req llm.AssembledRequest, model string) (*llm.Response, error)
}

// Registry manages available providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider under an id, replacing any existing entry.
func (r *Registry) Register(id string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[id] = provider
}

// Get retrieves a provider by id, or nil if unknown.
func (r *Registry) Get(id string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.providers[id]
}

// List returns all registered provider ids.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}
