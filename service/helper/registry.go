package helper

import (
	"sync"

	"ironbank/core"
)

// Registry users authorizing helpers to act on their behalf
type Registry struct {
	mu      sync.RWMutex
	helpers map[string]map[string]bool
}

var _ core.IHelperRegistry = (*Registry)(nil)

// New new registry
func New() *Registry {
	return &Registry{helpers: map[string]map[string]bool{}}
}

// Authorize user allows helper
func (r *Registry) Authorize(user, helper string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.helpers[user] == nil {
		r.helpers[user] = map[string]bool{}
	}

	r.helpers[user][helper] = true
}

// Revoke user disallows helper
func (r *Registry) Revoke(user, helper string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.helpers[user], helper)
}

func (r *Registry) IsHelperAuthorized(user, helper string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.helpers[user][helper]
}
