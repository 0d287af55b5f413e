package collab

// Coordinator bundles the collaboration state components behind one handle.
// Each component still owns its registry exclusively; the coordinator only
// wires them together and exposes the few operations that span components.
type Coordinator struct {
	Sessions *Registry
	Rooms    *Rooms
	Presence *Presence
	Cursors  *Cursors
	Locks    *Locks
}

// New creates a coordinator with empty state.
func New() *Coordinator {
	sessions := NewRegistry()
	rooms := NewRooms()
	return &Coordinator{
		Sessions: sessions,
		Rooms:    rooms,
		Presence: NewPresence(rooms, sessions),
		Cursors:  NewCursors(),
		Locks:    NewLocks(),
	}
}

// DropRoom tears down the per-room cursor and lock state once the last
// member has left, bounding memory growth.
func (c *Coordinator) DropRoom(workflowID string) {
	c.Cursors.DropRoom(workflowID)
	c.Locks.DropRoom(workflowID)
}

// Stats is a point-in-time view of live collaboration state.
type Stats struct {
	Sessions int `json:"sessions"`
	Rooms    int `json:"rooms"`
	Locks    int `json:"locks"`
}

// Stats returns live counts for the operability endpoint.
func (c *Coordinator) Stats() Stats {
	return Stats{
		Sessions: c.Sessions.Count(),
		Rooms:    c.Rooms.Count(),
		Locks:    c.Locks.Count(),
	}
}
