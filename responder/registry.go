package responder

import (
	"fmt"
	"sync"

	"github.com/maravaman/intent-orchestra-nexus/core"
)

// Registry holds the live responder set, keyed by descriptor ID. It is
// constructed at process start and passed in wherever responders are
// needed; there is no ambient global set. Insertion order is preserved and
// serves as the router's final tie-break, so registration order is part of
// the routing contract.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]Responder
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Responder)}
}

// Register adds a responder. Duplicate IDs are rejected.
func (r *Registry) Register(resp Responder) error {
	id := resp.Descriptor().ID
	if id == "" {
		return fmt.Errorf("responder has empty ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("responder %q already registered", id)
	}
	r.byID[id] = resp
	r.order = append(r.order, id)
	return nil
}

// Get returns the responder with the given ID.
func (r *Registry) Get(id string) (Responder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, ok := r.byID[id]
	return resp, ok
}

// Enabled returns the enabled responders in insertion order.
func (r *Registry) Enabled() []Responder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Responder
	for _, id := range r.order {
		resp := r.byID[id]
		if resp.Descriptor().Enabled {
			out = append(out, resp)
		}
	}
	return out
}

// Descriptors returns every registered descriptor in insertion order,
// enabled or not.
func (r *Registry) Descriptors() []core.ResponderDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.ResponderDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Descriptor())
	}
	return out
}

// Len returns the number of registered responders.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
