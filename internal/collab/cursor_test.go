package collab

import (
	"testing"
	"time"

	"github.com/flowcanvas/backend/internal/model"
)

func cursorEntry(userID string, x, y float64) model.CursorEntry {
	return model.CursorEntry{
		UserID:    userID,
		Username:  userID,
		Position:  model.Position{X: x, Y: y},
		Timestamp: time.Now(),
	}
}

func TestCursorsLastWriteWins(t *testing.T) {
	cursors := NewCursors()

	cursors.Update("wf-1", cursorEntry("alice", 10, 20))
	cursors.Update("wf-1", cursorEntry("alice", 30, 40))

	entry, ok := cursors.Get("wf-1", "alice")
	if !ok {
		t.Fatal("expected cursor entry for alice")
	}
	if entry.Position.X != 30 || entry.Position.Y != 40 {
		t.Errorf("expected last position (30,40), got (%v,%v)", entry.Position.X, entry.Position.Y)
	}

	if got := len(cursors.Snapshot("wf-1")); got != 1 {
		t.Errorf("expected 1 entry in snapshot, got %d", got)
	}
}

func TestCursorsRemove(t *testing.T) {
	cursors := NewCursors()

	cursors.Update("wf-1", cursorEntry("alice", 1, 2))
	cursors.Update("wf-1", cursorEntry("bob", 3, 4))

	cursors.Remove("wf-1", "alice")
	if _, ok := cursors.Get("wf-1", "alice"); ok {
		t.Error("alice's cursor should be removed")
	}
	if _, ok := cursors.Get("wf-1", "bob"); !ok {
		t.Error("bob's cursor should survive")
	}

	// Removing an absent entry is a no-op.
	cursors.Remove("wf-1", "alice")
	cursors.Remove("wf-none", "alice")
}

func TestCursorsDropRoom(t *testing.T) {
	cursors := NewCursors()

	cursors.Update("wf-1", cursorEntry("alice", 1, 2))
	cursors.Update("wf-2", cursorEntry("alice", 3, 4))

	cursors.DropRoom("wf-1")
	if got := len(cursors.Snapshot("wf-1")); got != 0 {
		t.Errorf("expected empty wf-1 snapshot, got %d entries", got)
	}
	if _, ok := cursors.Get("wf-2", "alice"); !ok {
		t.Error("wf-2 cursor should survive wf-1 teardown")
	}
}
