package collab

import (
	"testing"
	"time"

	"github.com/flowcanvas/backend/internal/model"
)

func addSession(reg *Registry, sessionID, userID string) {
	reg.Add(&model.Session{
		SessionID:   sessionID,
		UserID:      userID,
		Username:    userID,
		DisplayName: userID,
		ConnectedAt: time.Now(),
	})
}

func TestPresenceDeduplicatesByUser(t *testing.T) {
	reg := NewRegistry()
	rooms := NewRooms()
	presence := NewPresence(rooms, reg)

	// alice has two tabs in the room, bob one.
	addSession(reg, "s1", "alice")
	addSession(reg, "s2", "alice")
	addSession(reg, "s3", "bob")
	rooms.Join("s1", "wf-1")
	rooms.Join("s2", "wf-1")
	rooms.Join("s3", "wf-1")

	users := presence.ActiveUsers("wf-1")
	if len(users) != 2 {
		t.Fatalf("expected 2 distinct users, got %d", len(users))
	}
	if users[0].UserID != "alice" || users[1].UserID != "bob" {
		t.Errorf("unexpected presence list: %+v", users)
	}

	if got := presence.UserSessionCount("wf-1", "alice"); got != 2 {
		t.Errorf("expected 2 alice sessions, got %d", got)
	}
	if got := presence.UserSessionCount("wf-1", "bob"); got != 1 {
		t.Errorf("expected 1 bob session, got %d", got)
	}
}

func TestPresenceIgnoresUnregisteredSessions(t *testing.T) {
	reg := NewRegistry()
	rooms := NewRooms()
	presence := NewPresence(rooms, reg)

	addSession(reg, "s1", "alice")
	rooms.Join("s1", "wf-1")
	rooms.Join("s-ghost", "wf-1")

	users := presence.ActiveUsers("wf-1")
	if len(users) != 1 || users[0].UserID != "alice" {
		t.Errorf("expected only alice, got %+v", users)
	}
}

func TestPresenceEmptyRoom(t *testing.T) {
	reg := NewRegistry()
	rooms := NewRooms()
	presence := NewPresence(rooms, reg)

	if users := presence.ActiveUsers("wf-none"); len(users) != 0 {
		t.Errorf("expected empty presence for unknown room, got %+v", users)
	}
}

func TestRegistrySessionsOfUser(t *testing.T) {
	reg := NewRegistry()

	addSession(reg, "s1", "alice")
	addSession(reg, "s2", "alice")
	addSession(reg, "s3", "bob")

	if got := len(reg.SessionsOfUser("alice")); got != 2 {
		t.Errorf("expected 2 sessions for alice, got %d", got)
	}

	reg.Remove("s1")
	if got := len(reg.SessionsOfUser("alice")); got != 1 {
		t.Errorf("expected 1 session after removal, got %d", got)
	}

	reg.Remove("s2")
	if got := len(reg.SessionsOfUser("alice")); got != 0 {
		t.Errorf("expected no sessions after removal, got %d", got)
	}

	// Removing an unknown session is a no-op.
	reg.Remove("s-unknown")
	if reg.Count() != 1 {
		t.Errorf("expected 1 remaining session, got %d", reg.Count())
	}
}
