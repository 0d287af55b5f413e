package ws

import (
	"log"
	"sync"

	"github.com/flowcanvas/backend/internal/collab"
)

// Router fans collaboration events out to connected clients. Room
// deliveries read the membership set at delivery time, so a session that
// leaves mid-dispatch does not receive events addressed after its
// departure.
type Router struct {
	mu      sync.RWMutex
	clients map[string]*Client // sessionID
	rooms   *collab.Rooms
}

// NewRouter creates a router over the given room manager.
func NewRouter(rooms *collab.Rooms) *Router {
	return &Router{
		clients: make(map[string]*Client),
		rooms:   rooms,
	}
}

// Register adds a client to the routing table.
func (r *Router) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.SessionID()] = c
}

// Unregister removes a client from the routing table. The client stops
// receiving routed events immediately; closing the connection is the
// caller's responsibility.
func (r *Router) Unregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, sessionID)
}

// Get returns the client for the session, or nil if not connected.
func (r *Router) Get(sessionID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[sessionID]
}

// ToRoom delivers an event to every session currently in the room,
// optionally excluding the originator (excludeSessionID may be empty).
func (r *Router) ToRoom(workflowID string, event EventType, payload interface{}, excludeSessionID string) {
	data, err := Encode(event, payload)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", event, err)
		return
	}

	for _, sessionID := range r.rooms.Members(workflowID) {
		if sessionID == excludeSessionID {
			continue
		}
		if c := r.Get(sessionID); c != nil {
			c.Send(data)
		}
	}
}

// ToUser delivers an event to every session currently bound to the user,
// across all rooms.
func (r *Router) ToUser(userID string, event EventType, payload interface{}) {
	data, err := Encode(event, payload)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", event, err)
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if c.Session().UserID == userID {
			c.Send(data)
		}
	}
}

// ClientCount returns the number of connected clients.
func (r *Router) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close closes every connected client and empties the routing table.
func (r *Router) Close() {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.clients = make(map[string]*Client)
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}
