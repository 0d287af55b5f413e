package ws

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/flowcanvas/backend/internal/model"
)

// Client represents one WebSocket connection bound to an authenticated
// session.
type Client struct {
	conn    *websocket.Conn
	session *model.Session
	send    chan []byte
	mu      sync.Mutex
	closed  bool
}

// NewClient creates a client for the given connection and session.
func NewClient(conn *websocket.Conn, session *model.Session) *Client {
	return &Client{
		conn:    conn,
		session: session,
		send:    make(chan []byte, 256),
	}
}

// Send queues a frame to be sent to the client. If the send buffer is
// full the client is closed rather than letting one slow consumer stall
// the room.
func (c *Client) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.closeLocked()
	}
}

// SendEvent marshals and queues an outbound event for the client.
func (c *Client) SendEvent(event EventType, payload interface{}) {
	data, err := Encode(event, payload)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", event, err)
		return
	}
	c.Send(data)
}

// Close closes the client's send channel.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// IsClosed returns true if the client is closed.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Session returns the session bound to this client.
func (c *Client) Session() *model.Session {
	return c.session
}

// SessionID returns the session ID bound to this client.
func (c *Client) SessionID() string {
	return c.session.SessionID
}

// Conn returns the underlying WebSocket connection.
func (c *Client) Conn() *websocket.Conn {
	return c.conn
}

// SendChan returns the send channel for the client.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}
