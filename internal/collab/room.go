package collab

import "sync"

// Rooms maps each workflow ID to the set of sessions currently viewing it.
// Rooms are created lazily on first join and destroyed when their session
// set becomes empty.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{} // workflowID -> sessionIDs
	joined  map[string]map[string]struct{} // sessionID -> workflowIDs
}

// NewRooms creates an empty room manager.
func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[string]struct{}),
		joined:  make(map[string]map[string]struct{}),
	}
}

// Join adds the session to the workflow's room. It is idempotent: joining a
// room twice is a no-op after the first, reported by added=false.
func (r *Rooms) Join(sessionID, workflowID string) (added bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[workflowID]
	if !ok {
		set = make(map[string]struct{})
		r.members[workflowID] = set
	}
	if _, ok := set[sessionID]; ok {
		return false
	}
	set[sessionID] = struct{}{}

	rooms, ok := r.joined[sessionID]
	if !ok {
		rooms = make(map[string]struct{})
		r.joined[sessionID] = rooms
	}
	rooms[workflowID] = struct{}{}
	return true
}

// Leave removes the session from the workflow's room. Leaving a room the
// session never joined is a no-op (removed=false). empty reports whether
// the room's membership became empty, in which case the room itself is
// torn down.
func (r *Rooms) Leave(sessionID, workflowID string) (removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[workflowID]
	if !ok {
		return false, false
	}
	if _, ok := set[sessionID]; !ok {
		return false, false
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(r.members, workflowID)
		empty = true
	}

	if rooms, ok := r.joined[sessionID]; ok {
		delete(rooms, workflowID)
		if len(rooms) == 0 {
			delete(r.joined, sessionID)
		}
	}
	return true, empty
}

// Members returns the IDs of every session currently in the room.
func (r *Rooms) Members(workflowID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.members[workflowID]))
	for id := range r.members[workflowID] {
		ids = append(ids, id)
	}
	return ids
}

// Contains reports whether the session is a member of the room.
func (r *Rooms) Contains(workflowID, sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[workflowID][sessionID]
	return ok
}

// RoomsOf returns the IDs of every workflow the session has joined.
func (r *Rooms) RoomsOf(sessionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.joined[sessionID]))
	for id := range r.joined[sessionID] {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of non-empty rooms.
func (r *Rooms) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
