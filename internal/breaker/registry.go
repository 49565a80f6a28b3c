package breaker

import "sync"

// Registry holds one breaker per named dependency for the process lifetime.
// Breakers are registered once at startup; looking a breaker up never creates
// a new one, since recreating a breaker would discard its failure history.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
}

// NewRegistry creates an empty breaker registry.
func NewRegistry() *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
	}
}

// Register creates and stores a breaker for the named dependency.
// Registering a name twice returns the existing breaker unchanged.
func (r *Registry) Register(name string, cfg Config) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.breakers[name]; ok {
		return existing
	}

	b := New(name, cfg)
	r.breakers[name] = b
	return b
}

// Get returns the breaker registered under the given name.
func (r *Registry) Get(name string) (*Breaker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.breakers[name]
	return b, ok
}

// Snapshots returns the current state of every registered breaker.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(r.breakers))
	for _, b := range r.breakers {
		snapshots = append(snapshots, b.Snapshot())
	}
	return snapshots
}
