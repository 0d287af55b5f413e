package ws

import (
	"encoding/json"
	"time"

	"github.com/flowcanvas/backend/internal/model"
)

// EventType identifies a collaboration message on the wire.
type EventType string

const (
	// Client -> Server event types
	EventJoinWorkflow   EventType = "join-workflow"
	EventLeaveWorkflow  EventType = "leave-workflow"
	EventCursorMove     EventType = "cursor-move"
	EventWorkflowUpdate EventType = "workflow-update"
	EventStartEditing   EventType = "start-editing"
	EventStopEditing    EventType = "stop-editing"
	EventTyping         EventType = "typing"
	EventActivity       EventType = "activity"

	// Server -> Client event types
	EventWorkflowJoined       EventType = "workflow-joined"
	EventUserJoined           EventType = "user-joined"
	EventUserLeft             EventType = "user-left"
	EventCursorUpdate         EventType = "cursor-update"
	EventWorkflowChanged      EventType = "workflow-changed"
	EventNodeLocked           EventType = "node-locked"
	EventNodeUnlocked         EventType = "node-unlocked"
	EventEditingConflict      EventType = "editing-conflict"
	EventUserTyping           EventType = "user-typing"
	EventActivityNotification EventType = "activity-notification"
	EventError                EventType = "error"
)

// Message is the wire envelope for all collaboration traffic.
type Message struct {
	Event   EventType       `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode marshals an event and its payload into a wire frame.
func Encode(event EventType, payload interface{}) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return json.Marshal(&Message{Event: event, Payload: raw})
}

// Inbound payloads. Together with the event constants above these form the
// closed set of requests a client may send.

// JoinWorkflowPayload opens membership in a workflow's room.
type JoinWorkflowPayload struct {
	WorkflowID string `json:"workflowId"`
}

// LeaveWorkflowPayload closes membership in a workflow's room.
type LeaveWorkflowPayload struct {
	WorkflowID string `json:"workflowId"`
}

// CursorMovePayload reports the sender's pointer position.
type CursorMovePayload struct {
	WorkflowID string         `json:"workflowId"`
	Position   model.Position `json:"position"`
	NodeID     string         `json:"nodeId,omitempty"`
}

// WorkflowUpdatePayload carries a generic document change (node/edge
// add, update, delete) to be relayed to the rest of the room.
type WorkflowUpdatePayload struct {
	WorkflowID string          `json:"workflowId"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
}

// StartEditingPayload requests the edit lock on a node.
type StartEditingPayload struct {
	WorkflowID string `json:"workflowId"`
	NodeID     string `json:"nodeId"`
	NodeName   string `json:"nodeName"`
}

// StopEditingPayload releases the edit lock on a node.
type StopEditingPayload struct {
	WorkflowID string `json:"workflowId"`
	NodeID     string `json:"nodeId"`
}

// TypingPayload toggles the sender's typing indicator.
type TypingPayload struct {
	WorkflowID string `json:"workflowId"`
	NodeID     string `json:"nodeId,omitempty"`
	IsTyping   bool   `json:"isTyping"`
}

// ActivityPayload is a free-form activity ping for the rest of the room.
type ActivityPayload struct {
	WorkflowID string `json:"workflowId"`
	Activity   string `json:"activity"`
	Message    string `json:"message"`
}

// Outbound payloads.

// WorkflowJoinedPayload is the state snapshot answered to a joiner.
type WorkflowJoinedPayload struct {
	WorkflowID string              `json:"workflowId"`
	Users      []model.ActiveUser  `json:"users"`
	Cursors    []model.CursorEntry `json:"cursors"`
	Locks      []model.LockEntry   `json:"locks"`
}

// UserPresencePayload announces a presence change (user-joined, user-left).
type UserPresencePayload struct {
	WorkflowID string           `json:"workflowId"`
	User       model.ActiveUser `json:"user"`
}

// CursorUpdatePayload announces another user's cursor movement.
type CursorUpdatePayload struct {
	WorkflowID string            `json:"workflowId"`
	Cursor     model.CursorEntry `json:"cursor"`
}

// WorkflowChangedPayload relays a generic document change with the
// originator's identity attached.
type WorkflowChangedPayload struct {
	WorkflowID string          `json:"workflowId"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	UserID     string          `json:"userId"`
	Username   string          `json:"username"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NodeLockedPayload announces a granted edit lock.
type NodeLockedPayload struct {
	WorkflowID string          `json:"workflowId"`
	Lock       model.LockEntry `json:"lock"`
}

// NodeUnlockedPayload announces a released edit lock.
type NodeUnlockedPayload struct {
	WorkflowID string `json:"workflowId"`
	NodeID     string `json:"nodeId"`
	UserID     string `json:"userId"`
}

// EditingConflictPayload tells a requester that the node is already being
// edited, naming the current holder and their lock timestamp.
type EditingConflictPayload struct {
	WorkflowID   string    `json:"workflowId"`
	NodeID       string    `json:"nodeId"`
	LockedBy     string    `json:"lockedBy"`
	LockedByName string    `json:"lockedByName"`
	Timestamp    time.Time `json:"timestamp"`
}

// UserTypingPayload relays a typing indicator.
type UserTypingPayload struct {
	WorkflowID string `json:"workflowId"`
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	NodeID     string `json:"nodeId,omitempty"`
	IsTyping   bool   `json:"isTyping"`
}

// ActivityNotificationPayload relays a free-form activity ping.
type ActivityNotificationPayload struct {
	WorkflowID string    `json:"workflowId"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	Activity   string    `json:"activity"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// ErrorPayload reports a malformed or invalid request to its sender.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
