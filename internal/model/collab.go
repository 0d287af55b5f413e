package model

import "time"

// Identity is the verified principal extracted from a signed token.
type Identity struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Session represents one authenticated live connection. A user may hold
// several sessions at once (multiple tabs or devices).
type Session struct {
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// Identity returns the identity bound to the session.
func (s *Session) Identity() Identity {
	return Identity{
		UserID:      s.UserID,
		Username:    s.Username,
		DisplayName: s.DisplayName,
	}
}

// ActiveUser is one entry in a room's presence list, deduplicated by user.
type ActiveUser struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Position is a pointer location on the editor canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CursorEntry is a user's last-reported pointer state within a workflow.
// Last write wins; intermediate positions may be dropped.
type CursorEntry struct {
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Position    Position  `json:"position"`
	NodeID      string    `json:"nodeId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// LockEntry is an exclusive edit claim on one node within one workflow.
type LockEntry struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	NodeID    string    `json:"nodeId"`
	NodeName  string    `json:"nodeName"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityRecord is one row of the persisted per-workflow activity trail.
type ActivityRecord struct {
	ID         int64     `json:"id"`
	WorkflowID string    `json:"workflowId"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	Activity   string    `json:"activity"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
