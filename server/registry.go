package server

import "sync"

// NewRegistry creates an empty registry. One registry is typically
// constructed at process start and shared; it lives for the life of the
// process and needs no teardown beyond process exit.
func NewRegistry() *Registry {
	return &Registry{servers: make(map[string]*Server)}
}

// Registry deduplicates servers by target: repeated requests for equal
// targets return the same server instance, so its pools and sessions
// are shared. Entries are never removed; a server lives at least as
// long as the registry referencing it.
type Registry struct {
	mu      sync.Mutex
	servers map[string]*Server
}

// GetOrCreate returns the server for target, constructing it with opts
// on first use. The options are ignored when an equal target is already
// registered.
func (r *Registry) GetOrCreate(target *Target, opts ...Option) *Server {
	key := target.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.servers[key]; ok {
		return s
	}

	s := New(target, opts...)
	r.servers[key] = s
	return s
}

// Len gets the number of registered servers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.servers)
}
