package collab

import (
	"sync"

	"github.com/flowcanvas/backend/internal/model"
)

// Registry tracks each live connection and the identity bound to it.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	byUser   map[string]map[string]struct{}
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*model.Session),
		byUser:   make(map[string]map[string]struct{}),
	}
}

// Add registers a session. Adding an already-registered session ID
// overwrites the previous entry.
func (r *Registry) Add(s *model.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.SessionID] = s
	ids, ok := r.byUser[s.UserID]
	if !ok {
		ids = make(map[string]struct{})
		r.byUser[s.UserID] = ids
	}
	ids[s.SessionID] = struct{}{}
}

// Remove deletes a session. Removing an unknown session is a no-op.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)

	if ids, ok := r.byUser[s.UserID]; ok {
		delete(ids, sessionID)
		if len(ids) == 0 {
			delete(r.byUser, s.UserID)
		}
	}
}

// Get returns the session for the given ID.
func (r *Registry) Get(sessionID string) (*model.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	return s, ok
}

// SessionsOfUser returns the IDs of every live session bound to the user.
func (r *Registry) SessionsOfUser(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byUser[userID]))
	for id := range r.byUser[userID] {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
