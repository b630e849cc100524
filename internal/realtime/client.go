package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection timing for the websocket pumps.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// clientFrame is the only message a client sends: joining or leaving an
// event's room.
type clientFrame struct {
	Action  string `json:"action"`
	EventID string `json:"event_id"`
}

// Client is one connected realtime subscriber.
type Client struct {
	ID     string
	UserID string

	conn *websocket.Conn
	send chan Envelope

	mu     sync.Mutex
	closed bool
	rooms  map[string]struct{}
}

// NewClient creates a client for the given connection. The caller starts the
// pumps with Run.
func NewClient(conn *websocket.Conn, userID string, sendBuffer int) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   conn,
		send:   make(chan Envelope, sendBuffer),
		rooms:  make(map[string]struct{}),
	}
}

func (c *Client) joined(eventID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[eventID] = struct{}{}
}

func (c *Client) left(eventID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, eventID)
}

func (c *Client) roomList() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := make([]string, 0, len(c.rooms))
	for eventID := range c.rooms {
		list = append(list, eventID)
	}
	return list
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// trySend queues the envelope without blocking. It returns false only when
// the buffer is full; messages to an already-closed client are silently
// dropped.
func (c *Client) trySend(env Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// close closes the outbound channel, which stops the write pump and closes
// the connection. Safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Run starts the read and write pumps and blocks until the connection drops
// or the hub disconnects the client.
func (c *Client) Run(hub *Hub, logger *slog.Logger) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()
	c.readPump(hub, logger)
	hub.Disconnect(c)
	<-done
}

// readPump consumes join/leave frames until the connection errors out.
func (c *Client) readPump(hub *Hub, logger *slog.Logger) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame clientFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("realtime read error", "client_id", c.ID, "err", err)
			}
			return
		}

		switch frame.Action {
		case "join":
			if frame.EventID != "" {
				hub.Join(c, frame.EventID)
			}
		case "leave":
			if frame.EventID != "" {
				hub.Leave(c, frame.EventID)
			}
		default:
			logger.Debug("unknown realtime action", "client_id", c.ID, "action", frame.Action)
		}
	}
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
