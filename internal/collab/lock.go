package collab

import (
	"sort"
	"sync"

	"github.com/flowcanvas/backend/internal/model"
)

// Locks enforces exclusive per-node editing within each workflow. For a
// given (workflow, node) pair at most one user holds the lock at any time;
// concurrent requests are resolved first-writer-wins by whichever the
// coordinator processes first.
type Locks struct {
	mu     sync.Mutex
	byNode map[string]map[string]model.LockEntry // workflowID -> nodeID
}

// NewLocks creates an empty lock manager.
func NewLocks() *Locks {
	return &Locks{byNode: make(map[string]map[string]model.LockEntry)}
}

// StartResult reports the outcome of a StartEditing call.
type StartResult struct {
	// Granted is true when the requester now holds the node's lock.
	Granted bool
	// Released is the requester's previous lock in the same workflow,
	// implicitly released because a user edits one node at a time.
	Released *model.LockEntry
	// Holder is the current holder when the request was denied.
	Holder model.LockEntry
}

// StartEditing attempts to lock entry.NodeID for entry.UserID. The lock is
// granted when the node is unlocked or already held by the same user;
// otherwise the state is unchanged and the current holder is returned so
// the requester can be told who is editing.
func (l *Locks) StartEditing(workflowID string, entry model.LockEntry) StartResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	nodes, ok := l.byNode[workflowID]
	if !ok {
		nodes = make(map[string]model.LockEntry)
		l.byNode[workflowID] = nodes
	}

	if cur, ok := nodes[entry.NodeID]; ok && cur.UserID != entry.UserID {
		return StartResult{Holder: cur}
	}

	var released *model.LockEntry
	for nodeID, cur := range nodes {
		if cur.UserID == entry.UserID && nodeID != entry.NodeID {
			prev := cur
			released = &prev
			delete(nodes, nodeID)
			break
		}
	}

	nodes[entry.NodeID] = entry
	return StartResult{Granted: true, Released: released}
}

// StopEditing releases the node's lock only if the caller is its current
// holder. A stale stop from a user who no longer holds the lock is a
// no-op and must not release someone else's lock.
func (l *Locks) StopEditing(workflowID, userID, nodeID string) (model.LockEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	nodes, ok := l.byNode[workflowID]
	if !ok {
		return model.LockEntry{}, false
	}
	cur, ok := nodes[nodeID]
	if !ok || cur.UserID != userID {
		return model.LockEntry{}, false
	}
	delete(nodes, nodeID)
	if len(nodes) == 0 {
		delete(l.byNode, workflowID)
	}
	return cur, true
}

// ReleaseAllFor releases every lock the user holds in the workflow and
// returns the released entries, each of which produces its own
// node-unlocked broadcast. Used on leave and disconnect.
func (l *Locks) ReleaseAllFor(workflowID, userID string) []model.LockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	nodes, ok := l.byNode[workflowID]
	if !ok {
		return nil
	}

	var released []model.LockEntry
	for nodeID, cur := range nodes {
		if cur.UserID == userID {
			released = append(released, cur)
			delete(nodes, nodeID)
		}
	}
	if len(nodes) == 0 {
		delete(l.byNode, workflowID)
	}
	sort.Slice(released, func(i, j int) bool { return released[i].NodeID < released[j].NodeID })
	return released
}

// Holder returns the current lock entry for the node, if locked.
func (l *Locks) Holder(workflowID, nodeID string) (model.LockEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.byNode[workflowID][nodeID]
	return entry, ok
}

// Snapshot returns the current lock entries for the workflow, sorted by
// node ID for stable output.
func (l *Locks) Snapshot(workflowID string) []model.LockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]model.LockEntry, 0, len(l.byNode[workflowID]))
	for _, entry := range l.byNode[workflowID] {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].NodeID < entries[j].NodeID })
	return entries
}

// DropRoom removes every lock for the workflow. Called when the room's
// membership becomes empty.
func (l *Locks) DropRoom(workflowID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.byNode, workflowID)
}

// Count returns the total number of held locks across all workflows.
func (l *Locks) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, nodes := range l.byNode {
		total += len(nodes)
	}
	return total
}
