package contract

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a fresh contract instance
type Factory func() SmartContract

// Registry maps code names to contract implementations
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

func (r *Registry) Lookup(name string) (SmartContract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("no contract code named %q", name)
	}
	return f(), nil
}

func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
