package collab

import (
	"sort"
	"sync"

	"github.com/flowcanvas/backend/internal/model"
)

// Cursors stores each user's last-known pointer position per workflow.
// Updates are unconditional overwrites: only the most recent position
// observed by the server is kept.
type Cursors struct {
	mu      sync.RWMutex
	entries map[string]map[string]model.CursorEntry // workflowID -> userID
}

// NewCursors creates an empty cursor store.
func NewCursors() *Cursors {
	return &Cursors{entries: make(map[string]map[string]model.CursorEntry)}
}

// Update overwrites the user's cursor entry for the workflow.
func (c *Cursors) Update(workflowID string, entry model.CursorEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.entries[workflowID]
	if !ok {
		room = make(map[string]model.CursorEntry)
		c.entries[workflowID] = room
	}
	room[entry.UserID] = entry
}

// Get returns the user's current cursor entry for the workflow.
func (c *Cursors) Get(workflowID, userID string) (model.CursorEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[workflowID][userID]
	return entry, ok
}

// Remove deletes the user's cursor entry for the workflow.
func (c *Cursors) Remove(workflowID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.entries[workflowID]
	if !ok {
		return
	}
	delete(room, userID)
	if len(room) == 0 {
		delete(c.entries, workflowID)
	}
}

// Snapshot returns the current cursor entries for the workflow, sorted by
// user ID for stable output.
func (c *Cursors) Snapshot(workflowID string) []model.CursorEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]model.CursorEntry, 0, len(c.entries[workflowID]))
	for _, entry := range c.entries[workflowID] {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries
}

// DropRoom removes every cursor entry for the workflow. Called when the
// room's membership becomes empty.
func (c *Cursors) DropRoom(workflowID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, workflowID)
}
