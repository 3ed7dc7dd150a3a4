package providers

import (
	"sort"
	"sync"
)

// Registry maps provider names to adapter instances. It is constructed once
// at startup from the adapters whose credentials are configured and passed
// explicitly to the importer, reconciler and dispatcher.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a registry pre-populated with the given adapters.
func NewRegistry(provs ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range provs {
		r.providers[p.Name()] = p
	}
	return r
}

// Register adds or replaces an adapter.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the adapter for name, or a typed unconfigured error when no
// adapter registered under that name (missing credentials at startup).
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, NewError(name, KindUnconfigured, "provider not configured", nil)
	}
	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
