package gateway

import (
	"sync"

	"go.uber.org/zap"
)

// Registry is the in-memory table of established sessions, keyed by
// connection id. It is written at exactly two points in the lifecycle:
// insert on RoomJoining -> Established, delete on the transition to Closed.
// Reads are introspection only and never sit on the fan-out hot path.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Insert records an established session.
func (r *Registry) Insert(s *Session) {
	r.mu.Lock()
	r.sessions[s.ConnectionID] = s
	r.mu.Unlock()

	r.logger.Info("session registered",
		zap.String("connection_id", s.ConnectionID),
		zap.String("subject_id", s.SubjectID),
		zap.String("tenant_id", s.ResolvedTenantID),
		zap.String("role", s.Role))
}

// Delete removes the session for a connection id. Deleting a connection that
// is not present (duplicate disconnect) is a no-op.
func (r *Registry) Delete(connectionID string) bool {
	r.mu.Lock()
	_, ok := r.sessions[connectionID]
	if ok {
		delete(r.sessions, connectionID)
	}
	r.mu.Unlock()

	if ok {
		r.logger.Info("session removed", zap.String("connection_id", connectionID))
	}
	return ok
}

// Get returns the session for a connection id, if registered.
func (r *Registry) Get(connectionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connectionID]
	if !ok {
		return nil, false
	}
	cp := *s
	return &cp, true
}

// Count returns the number of established sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ListByTenant returns copies of all sessions resolved to a tenant.
func (r *Registry) ListByTenant(tenantID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Session
	for _, s := range r.sessions {
		if s.ResolvedTenantID == tenantID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out
}

// IsConnected reports whether a principal has at least one established
// connection resolved to the given tenant.
func (r *Registry) IsConnected(tenantID, subjectID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sessions {
		if s.ResolvedTenantID == tenantID && s.SubjectID == subjectID {
			return true
		}
	}
	return false
}
