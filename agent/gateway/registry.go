package gateway

import "sync"

// Registry tracks which backends reported quota exhaustion. It is the only
// state shared across concurrent sessions, so every access is guarded; two
// sessions racing to mark the same backend converge to one outcome.
type Registry struct {
	mu        sync.RWMutex
	exhausted map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{exhausted: make(map[string]struct{})}
}

// Exhausted reports whether name has been retired for this process lifetime.
func (r *Registry) Exhausted(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.exhausted[name]
	return ok
}

// MarkExhausted retires name. Marking twice is a no-op.
func (r *Registry) MarkExhausted(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exhausted[name] = struct{}{}
}

// Count returns how many backends are currently retired.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.exhausted)
}
