package taskloop

import (
	"fmt"
	"slices"
	"sync"
)

// Registry tracks live runner names, enforcing uniqueness among the
// runners created against it.
//
// A registry is optional: runners created without [WithRegistry] are
// unconstrained. When one is used, [New] claims the runner's name for the
// runner's lifetime and fails with [ErrDuplicateRunnerName] if the name
// is already held. The name is released as part of kill teardown, after
// which it may be reused.
//
// There is deliberately no package-level default registry; callers that
// want global uniqueness share a single Registry explicitly.
type Registry struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]struct{}),
	}
}

// acquire claims name, failing if it is already held.
func (x *Registry) acquire(name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.names[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateRunnerName, name)
	}
	x.names[name] = struct{}{}
	return nil
}

// release frees name. Releasing a name that is not held is a no-op.
func (x *Registry) release(name string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.names, name)
}

// Has reports whether name is currently held by a live runner.
func (x *Registry) Has(name string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.names[name]
	return ok
}

// Names returns the currently held names, sorted.
func (x *Registry) Names() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	names := make([]string, 0, len(x.names))
	for name := range x.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
