package guard

import "sync"

// Policy states what a protected operation requires: the entity table it
// guards and, optionally, the minimum role. An empty RequiredRole means mere
// existence of a link suffices.
type Policy struct {
	EntityTable  string
	RequiredRole string
}

// Registry is a statically constructed table mapping operation names to
// policies. It is populated once at registration time and read on every
// dispatch; there is no runtime reflection involved.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

// NewRegistry creates an empty policy registry.
func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]Policy)}
}

// Declare binds a policy to an operation name. Declaring twice for the same
// operation overwrites, which keeps registration order irrelevant.
func (r *Registry) Declare(operation string, p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[operation] = p
}

// Lookup returns the policy declared for the operation, if any.
func (r *Registry) Lookup(operation string) (Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[operation]
	return p, ok
}

// Operations returns the names of all declared operations.
func (r *Registry) Operations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ops := make([]string, 0, len(r.policies))
	for op := range r.policies {
		ops = append(ops, op)
	}
	return ops
}
