package server

import (
	"sync"
	"time"

	"github.com/corvid-labs/jsbridge/internal/engine"
	"github.com/corvid-labs/jsbridge/internal/shared/id"
)

type contextEntry struct {
	ctx     *engine.Context
	created time.Time
}

// Registry tracks long-lived contexts created through the API, keyed by
// prefixed ULID. Removal is the single release point: a context leaves
// the registry and is disposed in the same step.
type Registry struct {
	mu      sync.RWMutex
	entries map[id.ContextID]*contextEntry
}

// NewRegistry creates an empty context registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[id.ContextID]*contextEntry)}
}

// Add registers a context and returns its new ID.
func (r *Registry) Add(ctx *engine.Context) id.ContextID {
	cid := id.NewContextID()

	r.mu.Lock()
	r.entries[cid] = &contextEntry{ctx: ctx, created: time.Now()}
	r.mu.Unlock()

	return cid
}

// Get looks up a registered context.
func (r *Registry) Get(cid id.ContextID) (*engine.Context, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[cid]
	if !ok {
		return nil, false
	}
	return entry.ctx, true
}

// Remove deregisters and disposes a context.
func (r *Registry) Remove(cid id.ContextID) bool {
	r.mu.Lock()
	entry, ok := r.entries[cid]
	if ok {
		delete(r.entries, cid)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	entry.ctx.Dispose()
	return true
}

// Count returns the number of registered contexts.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// CloseAll disposes every registered context. Used at shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for cid, entry := range r.entries {
		entry.ctx.Dispose()
		delete(r.entries, cid)
	}
}
