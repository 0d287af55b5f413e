package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/flowcanvas/backend/internal/auth"
	"github.com/flowcanvas/backend/internal/collab"
	"github.com/flowcanvas/backend/internal/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer. A holder
	// whose connection dies without a clean close fails its read within
	// this window, which triggers disconnect cleanup and releases its
	// locks; there is no separate lock expiry clock.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking in production
		return true
	},
}

// ActivityRecorder receives audit records off the event path. Record must
// never block.
type ActivityRecorder interface {
	Record(rec model.ActivityRecord)
}

// Gateway authenticates incoming connections, binds each to a session,
// dispatches inbound events to the collaboration components, and
// orchestrates cleanup on disconnect.
type Gateway struct {
	verifier *auth.Verifier
	coord    *collab.Coordinator
	router   *Router
	recorder ActivityRecorder
}

// NewGateway creates a gateway over the given coordinator. recorder may be
// nil, in which case activity is not persisted.
func NewGateway(verifier *auth.Verifier, coord *collab.Coordinator, recorder ActivityRecorder) *Gateway {
	return &Gateway{
		verifier: verifier,
		coord:    coord,
		router:   NewRouter(coord.Rooms),
		recorder: recorder,
	}
}

// Router returns the broadcast router.
func (g *Gateway) Router() *Router {
	return g.router
}

// HandleConnection authenticates and upgrades an incoming connection.
// A missing or invalid token refuses the connection before any session
// exists; there is no unauthenticated session state.
func (g *Gateway) HandleConnection(w http.ResponseWriter, r *http.Request) error {
	ident, err := g.verifier.Verify(connectionToken(r))
	if err != nil {
		http.Error(w, "invalid or missing token", http.StatusUnauthorized)
		return nil
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	session := &model.Session{
		SessionID:   uuid.New().String(),
		UserID:      ident.UserID,
		Username:    ident.Username,
		DisplayName: ident.DisplayName,
		ConnectedAt: time.Now(),
	}

	client := NewClient(conn, session)
	g.coord.Sessions.Add(session)
	g.router.Register(client)

	go g.writePump(client)
	go g.readPump(client)

	return nil
}

// connectionToken extracts the handshake token from the Authorization
// header or the token query parameter.
func connectionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// readPump pumps inbound events from the connection into the dispatcher.
// Events for one connection are handled sequentially in arrival order.
func (g *Gateway) readPump(client *Client) {
	defer func() {
		g.Disconnect(client)
		client.Conn().Close()
	}()

	client.Conn().SetReadLimit(maxMessageSize)
	client.Conn().SetReadDeadline(time.Now().Add(pongWait))
	client.Conn().SetPongHandler(func(string) error {
		client.Conn().SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := client.Conn().ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for session %s: %v", client.SessionID(), err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			g.sendError(client, "INVALID_MESSAGE", "message is not valid JSON")
			continue
		}

		g.Dispatch(client, &msg)
	}
}

// writePump pumps queued frames from the client's send channel to the
// connection and keeps the transport liveness pings flowing.
func (g *Gateway) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn().Close()
	}()

	for {
		select {
		case data, ok := <-client.SendChan():
			client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn().WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn().WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

			// Drain queued frames, one WebSocket frame each.
			n := len(client.SendChan())
			for i := 0; i < n; i++ {
				queued := <-client.SendChan()
				client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.Conn().WriteMessage(websocket.TextMessage, queued); err != nil {
					return
				}
			}
		case <-ticker.C:
			client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn().WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Dispatch routes one inbound event to its handler. A panicking handler
// is isolated to that event: it is logged and dropped without corrupting
// other sessions.
func (g *Gateway) Dispatch(client *Client, msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic handling %s for session %s: %v", msg.Event, client.SessionID(), r)
		}
	}()

	switch msg.Event {
	case EventJoinWorkflow:
		g.handleJoin(client, msg.Payload)
	case EventLeaveWorkflow:
		g.handleLeave(client, msg.Payload)
	case EventCursorMove:
		g.handleCursorMove(client, msg.Payload)
	case EventWorkflowUpdate:
		g.handleWorkflowUpdate(client, msg.Payload)
	case EventStartEditing:
		g.handleStartEditing(client, msg.Payload)
	case EventStopEditing:
		g.handleStopEditing(client, msg.Payload)
	case EventTyping:
		g.handleTyping(client, msg.Payload)
	case EventActivity:
		g.handleActivity(client, msg.Payload)
	default:
		g.sendError(client, "UNKNOWN_EVENT", "unknown event: "+string(msg.Event))
	}
}

func (g *Gateway) handleJoin(client *Client, raw json.RawMessage) {
	var p JoinWorkflowPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.WorkflowID == "" {
		g.sendError(client, "VALIDATION_ERROR", "workflowId is required")
		return
	}

	session := client.Session()
	added := g.coord.Rooms.Join(session.SessionID, p.WorkflowID)

	// The joiner is always answered with the current snapshot, even on a
	// repeated join.
	client.SendEvent(EventWorkflowJoined, WorkflowJoinedPayload{
		WorkflowID: p.WorkflowID,
		Users:      g.coord.Presence.ActiveUsers(p.WorkflowID),
		Cursors:    g.coord.Cursors.Snapshot(p.WorkflowID),
		Locks:      g.coord.Locks.Snapshot(p.WorkflowID),
	})

	if !added {
		return
	}

	// Peers learn about the user only when their first session enters the
	// room; extra tabs join silently.
	if g.coord.Presence.UserSessionCount(p.WorkflowID, session.UserID) == 1 {
		g.router.ToRoom(p.WorkflowID, EventUserJoined, UserPresencePayload{
			WorkflowID: p.WorkflowID,
			User: model.ActiveUser{
				UserID:      session.UserID,
				Username:    session.Username,
				DisplayName: session.DisplayName,
			},
		}, session.SessionID)
		g.record(p.WorkflowID, session, "joined", "")
	}
}

func (g *Gateway) handleLeave(client *Client, raw json.RawMessage) {
	var p LeaveWorkflowPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.WorkflowID == "" {
		g.sendError(client, "VALIDATION_ERROR", "workflowId is required")
		return
	}

	g.leaveRoom(client, p.WorkflowID)
}

// leaveRoom reverses one room membership: lock release, cursor removal,
// membership removal, and presence notification, in that order. It is
// idempotent and shared by the leave handler and disconnect cleanup.
func (g *Gateway) leaveRoom(client *Client, workflowID string) {
	session := client.Session()

	removed, empty := g.coord.Rooms.Leave(session.SessionID, workflowID)
	if !removed {
		return
	}

	// Locks and cursors are per-user: release them only when the user's
	// last session has left the room.
	if g.coord.Presence.UserSessionCount(workflowID, session.UserID) == 0 {
		for _, rel := range g.coord.Locks.ReleaseAllFor(workflowID, session.UserID) {
			g.router.ToRoom(workflowID, EventNodeUnlocked, NodeUnlockedPayload{
				WorkflowID: workflowID,
				NodeID:     rel.NodeID,
				UserID:     rel.UserID,
			}, "")
		}
		g.coord.Cursors.Remove(workflowID, session.UserID)

		g.router.ToRoom(workflowID, EventUserLeft, UserPresencePayload{
			WorkflowID: workflowID,
			User: model.ActiveUser{
				UserID:      session.UserID,
				Username:    session.Username,
				DisplayName: session.DisplayName,
			},
		}, session.SessionID)
		g.record(workflowID, session, "left", "")
	}

	if empty {
		g.coord.DropRoom(workflowID)
	}
}

// Disconnect orchestrates cleanup for a closing connection: the client is
// unregistered first so no further event can be routed to it, then every
// room membership is reversed, then the session itself is removed.
func (g *Gateway) Disconnect(client *Client) {
	client.Close()
	g.router.Unregister(client.SessionID())

	for _, workflowID := range g.coord.Rooms.RoomsOf(client.SessionID()) {
		g.leaveRoom(client, workflowID)
	}

	g.coord.Sessions.Remove(client.SessionID())
}

func (g *Gateway) handleCursorMove(client *Client, raw json.RawMessage) {
	var p CursorMovePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.WorkflowID == "" {
		g.sendError(client, "VALIDATION_ERROR", "workflowId is required")
		return
	}
	if !g.requireMembership(client, p.WorkflowID) {
		return
	}

	session := client.Session()
	entry := model.CursorEntry{
		UserID:      session.UserID,
		Username:    session.Username,
		DisplayName: session.DisplayName,
		Position:    p.Position,
		NodeID:      p.NodeID,
		Timestamp:   time.Now(),
	}
	g.coord.Cursors.Update(p.WorkflowID, entry)

	g.router.ToRoom(p.WorkflowID, EventCursorUpdate, CursorUpdatePayload{
		WorkflowID: p.WorkflowID,
		Cursor:     entry,
	}, session.SessionID)
}

func (g *Gateway) handleWorkflowUpdate(client *Client, raw json.RawMessage) {
	var p WorkflowUpdatePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.WorkflowID == "" {
		g.sendError(client, "VALIDATION_ERROR", "workflowId is required")
		return
	}
	if !g.requireMembership(client, p.WorkflowID) {
		return
	}

	session := client.Session()
	g.router.ToRoom(p.WorkflowID, EventWorkflowChanged, WorkflowChangedPayload{
		WorkflowID: p.WorkflowID,
		Type:       p.Type,
		Payload:    p.Payload,
		UserID:     session.UserID,
		Username:   session.Username,
		Timestamp:  time.Now(),
	}, session.SessionID)
}

func (g *Gateway) handleStartEditing(client *Client, raw json.RawMessage) {
	var p StartEditingPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.WorkflowID == "" || p.NodeID == "" {
		g.sendError(client, "VALIDATION_ERROR", "workflowId and nodeId are required")
		return
	}
	if !g.requireMembership(client, p.WorkflowID) {
		return
	}

	session := client.Session()
	entry := model.LockEntry{
		UserID:    session.UserID,
		Username:  session.Username,
		NodeID:    p.NodeID,
		NodeName:  p.NodeName,
		Timestamp: time.Now(),
	}

	res := g.coord.Locks.StartEditing(p.WorkflowID, entry)
	if !res.Granted {
		// Held by someone else: normal business conflict, answered to the
		// requester only, lock state unchanged.
		client.SendEvent(EventEditingConflict, EditingConflictPayload{
			WorkflowID:   p.WorkflowID,
			NodeID:       p.NodeID,
			LockedBy:     res.Holder.UserID,
			LockedByName: res.Holder.Username,
			Timestamp:    res.Holder.Timestamp,
		})
		return
	}

	if res.Released != nil {
		g.router.ToRoom(p.WorkflowID, EventNodeUnlocked, NodeUnlockedPayload{
			WorkflowID: p.WorkflowID,
			NodeID:     res.Released.NodeID,
			UserID:     res.Released.UserID,
		}, "")
	}

	g.router.ToRoom(p.WorkflowID, EventNodeLocked, NodeLockedPayload{
		WorkflowID: p.WorkflowID,
		Lock:       entry,
	}, "")
	g.record(p.WorkflowID, session, "locked", p.NodeName)
}

func (g *Gateway) handleStopEditing(client *Client, raw json.RawMessage) {
	var p StopEditingPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.WorkflowID == "" || p.NodeID == "" {
		g.sendError(client, "VALIDATION_ERROR", "workflowId and nodeId are required")
		return
	}
	if !g.requireMembership(client, p.WorkflowID) {
		return
	}

	session := client.Session()
	if rel, ok := g.coord.Locks.StopEditing(p.WorkflowID, session.UserID, p.NodeID); ok {
		g.router.ToRoom(p.WorkflowID, EventNodeUnlocked, NodeUnlockedPayload{
			WorkflowID: p.WorkflowID,
			NodeID:     rel.NodeID,
			UserID:     rel.UserID,
		}, "")
	}
}

func (g *Gateway) handleTyping(client *Client, raw json.RawMessage) {
	var p TypingPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.WorkflowID == "" {
		g.sendError(client, "VALIDATION_ERROR", "workflowId is required")
		return
	}
	if !g.requireMembership(client, p.WorkflowID) {
		return
	}

	session := client.Session()
	g.router.ToRoom(p.WorkflowID, EventUserTyping, UserTypingPayload{
		WorkflowID: p.WorkflowID,
		UserID:     session.UserID,
		Username:   session.Username,
		NodeID:     p.NodeID,
		IsTyping:   p.IsTyping,
	}, session.SessionID)
}

func (g *Gateway) handleActivity(client *Client, raw json.RawMessage) {
	var p ActivityPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.WorkflowID == "" || p.Activity == "" {
		g.sendError(client, "VALIDATION_ERROR", "workflowId and activity are required")
		return
	}
	if !g.requireMembership(client, p.WorkflowID) {
		return
	}

	session := client.Session()
	g.router.ToRoom(p.WorkflowID, EventActivityNotification, ActivityNotificationPayload{
		WorkflowID: p.WorkflowID,
		UserID:     session.UserID,
		Username:   session.Username,
		Activity:   p.Activity,
		Message:    p.Message,
		Timestamp:  time.Now(),
	}, session.SessionID)
	g.record(p.WorkflowID, session, p.Activity, p.Message)
}

// requireMembership rejects state-mutating events from sessions that have
// not joined the room. Without this, a cursor or lock entry could be
// created in a room the disconnect sweep never visits.
func (g *Gateway) requireMembership(client *Client, workflowID string) bool {
	if g.coord.Rooms.Contains(workflowID, client.SessionID()) {
		return true
	}
	g.sendError(client, "NOT_IN_WORKFLOW", "join-workflow is required before sending events for "+workflowID)
	return false
}

func (g *Gateway) sendError(client *Client, code, message string) {
	client.SendEvent(EventError, ErrorPayload{Code: code, Message: message})
}

func (g *Gateway) record(workflowID string, session *model.Session, activity, message string) {
	if g.recorder == nil {
		return
	}
	g.recorder.Record(model.ActivityRecord{
		WorkflowID: workflowID,
		UserID:     session.UserID,
		Username:   session.Username,
		Activity:   activity,
		Message:    message,
		CreatedAt:  time.Now(),
	})
}

// SetCheckOrigin sets a custom origin checker for the WebSocket upgrader.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}
