package collab

import (
	"testing"
	"time"

	"github.com/flowcanvas/backend/internal/model"
)

func lockEntry(userID, nodeID string) model.LockEntry {
	return model.LockEntry{
		UserID:    userID,
		Username:  userID,
		NodeID:    nodeID,
		NodeName:  "Node " + nodeID,
		Timestamp: time.Now(),
	}
}

func TestLocksGrantAndConflict(t *testing.T) {
	locks := NewLocks()

	res := locks.StartEditing("wf-1", lockEntry("alice", "n1"))
	if !res.Granted {
		t.Fatal("expected lock grant on unlocked node")
	}

	// Same user may re-request their own lock.
	res = locks.StartEditing("wf-1", lockEntry("alice", "n1"))
	if !res.Granted {
		t.Error("expected re-grant for current holder")
	}

	// A different user is denied and told who holds the lock.
	res = locks.StartEditing("wf-1", lockEntry("bob", "n1"))
	if res.Granted {
		t.Fatal("expected conflict for locked node")
	}
	if res.Holder.UserID != "alice" {
		t.Errorf("conflict should name alice, got %s", res.Holder.UserID)
	}

	// The denied request must not change the lock state.
	holder, ok := locks.Holder("wf-1", "n1")
	if !ok || holder.UserID != "alice" {
		t.Errorf("lock state changed after denied request: %+v", holder)
	}
}

func TestLocksStopEditing(t *testing.T) {
	locks := NewLocks()
	locks.StartEditing("wf-1", lockEntry("alice", "n1"))

	// A stale stop from a non-holder must not release the lock.
	if _, ok := locks.StopEditing("wf-1", "bob", "n1"); ok {
		t.Error("non-holder stop should be a no-op")
	}
	if _, held := locks.Holder("wf-1", "n1"); !held {
		t.Fatal("lock should survive a stale stop")
	}

	rel, ok := locks.StopEditing("wf-1", "alice", "n1")
	if !ok || rel.NodeID != "n1" {
		t.Fatalf("expected holder stop to release n1, got ok=%v entry=%+v", ok, rel)
	}
	if _, held := locks.Holder("wf-1", "n1"); held {
		t.Error("lock should be released after holder stop")
	}

	// Stopping an unlocked node is a no-op.
	if _, ok := locks.StopEditing("wf-1", "alice", "n1"); ok {
		t.Error("stop on unlocked node should be a no-op")
	}
}

func TestLocksSwitchNodeReleasesPrevious(t *testing.T) {
	locks := NewLocks()
	locks.StartEditing("wf-1", lockEntry("alice", "n1"))

	res := locks.StartEditing("wf-1", lockEntry("alice", "n2"))
	if !res.Granted {
		t.Fatal("expected grant when switching nodes")
	}
	if res.Released == nil || res.Released.NodeID != "n1" {
		t.Fatalf("expected previous n1 lock to be released, got %+v", res.Released)
	}

	if _, held := locks.Holder("wf-1", "n1"); held {
		t.Error("n1 should be unlocked after switch")
	}
	if holder, held := locks.Holder("wf-1", "n2"); !held || holder.UserID != "alice" {
		t.Error("alice should hold n2 after switch")
	}
}

func TestLocksReleaseAllFor(t *testing.T) {
	locks := NewLocks()
	locks.StartEditing("wf-1", lockEntry("alice", "n1"))
	locks.StartEditing("wf-1", lockEntry("bob", "n2"))

	released := locks.ReleaseAllFor("wf-1", "alice")
	if len(released) != 1 || released[0].NodeID != "n1" {
		t.Fatalf("expected alice's n1 lock released, got %+v", released)
	}

	// Bob's lock is untouched.
	if holder, held := locks.Holder("wf-1", "n2"); !held || holder.UserID != "bob" {
		t.Error("bob's lock should survive alice's release")
	}

	if released := locks.ReleaseAllFor("wf-1", "alice"); len(released) != 0 {
		t.Errorf("second release should find nothing, got %+v", released)
	}
}

func TestLocksScopedByWorkflow(t *testing.T) {
	locks := NewLocks()
	locks.StartEditing("wf-1", lockEntry("alice", "n1"))

	// The same node ID in another workflow is an independent lock.
	res := locks.StartEditing("wf-2", lockEntry("bob", "n1"))
	if !res.Granted {
		t.Error("same node ID in a different workflow should be independent")
	}

	if locks.Count() != 2 {
		t.Errorf("expected 2 locks, got %d", locks.Count())
	}

	locks.DropRoom("wf-1")
	if _, held := locks.Holder("wf-1", "n1"); held {
		t.Error("wf-1 locks should be gone after DropRoom")
	}
	if _, held := locks.Holder("wf-2", "n1"); !held {
		t.Error("wf-2 locks should survive wf-1 teardown")
	}
}
