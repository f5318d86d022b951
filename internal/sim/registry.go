// internal/sim/registry.go
package sim

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Store manages active sessions keyed by lobby code. It provides thread-safe
// access to create, retrieve, and delete sessions.
type Store interface {
	GetOrCreate(code string) *Session
	Get(code string) (*Session, bool)
	Delete(code string)
	List() map[string]*Session
}

// Registry is the in-memory Store implementation. Sessions are ephemeral;
// deleting a session from the registry is how a lobby is reaped.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     Options
}

// NewRegistry initializes an empty Registry. The options are applied to every
// session it creates.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// GetOrCreate returns the session for a lobby code, creating it on first use.
// Concurrent calls for the same code return the same instance.
func (r *Registry) GetOrCreate(code string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[code]; ok {
		return s
	}
	s := NewSession(code, r.opts)
	r.sessions[code] = s
	log.Infof("Registry: created session %s.", code)
	return s
}

// Get retrieves a session by lobby code without creating one.
func (r *Registry) Get(code string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[code]
	return s, ok
}

// Delete removes a session from the registry. Callers should End the session
// first so connected participants are notified.
func (r *Registry) Delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[code]; ok {
		delete(r.sessions, code)
		log.Infof("Registry: deleted session %s.", code)
	} else {
		log.Warnf("Registry: attempted to delete non-existent session %s.", code)
	}
}

// List returns a copy of the active session map. Returning a copy prevents
// races when the caller iterates while another goroutine modifies the store.
func (r *Registry) List() map[string]*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*Session, len(r.sessions))
	for k, v := range r.sessions {
		out[k] = v
	}
	return out
}
