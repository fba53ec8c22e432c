package memory

import "sync"

// Registry maps user ids to their conversation contexts. Contexts are
// created lazily on first contact and live for the process lifetime.
type Registry struct {
	mu         sync.Mutex
	maxHistory int
	contexts   map[string]*Context
}

// NewRegistry creates a Registry whose contexts use the given history
// capacity (DefaultMaxHistory when <= 0).
func NewRegistry(maxHistory int) *Registry {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Registry{
		maxHistory: maxHistory,
		contexts:   make(map[string]*Context),
	}
}

// GetOrCreate returns the context for userID, creating it on first access.
// The mutex makes concurrent first-access for the same new user id yield a
// single context.
func (r *Registry) GetOrCreate(userID string) *Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx, ok := r.contexts[userID]
	if !ok {
		ctx = NewContext(r.maxHistory)
		r.contexts[userID] = ctx
	}
	return ctx
}

// Len returns the number of known contexts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contexts)
}

// Reset drops all contexts. Intended for tests and operational resets;
// there is no per-context expiry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts = make(map[string]*Context)
}
