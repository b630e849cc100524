// Package realtime implements the per-event broadcast layer: one room per
// event, multiple tagged message classes multiplexed over a single websocket
// connection per client.
package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventbeacon/internal/domain"
	"eventbeacon/pkg/metrics"
)

// DefaultSendBuffer is the per-client outbound buffer. A client that falls
// this many messages behind is evicted rather than allowed to stall the room.
const DefaultSendBuffer = 64

// Envelope is the wire frame for every server-to-client message. Type tells
// the receiver how to interpret Payload, so one connection carries presence,
// transitions, chat, polls, and broadcasts without separate channels.
type Envelope struct {
	ID      string             `json:"id"`
	Type    domain.MessageType `json:"type"`
	Payload any                `json:"payload"`
	SentAt  time.Time          `json:"sent_at"`
}

// Hub routes messages to event rooms. It is constructed at startup and
// injected wherever publishing is needed; Close tears down every connected
// client. There is no backlog: a broadcast reaches only currently-connected
// members, and scaling beyond one process needs an external backbone.
type Hub struct {
	logger     *slog.Logger
	sendBuffer int

	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	closed bool
}

// HubOption configures NewHub.
type HubOption func(*Hub)

// WithSendBuffer overrides the per-client outbound buffer size.
func WithSendBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// NewHub creates a Hub. Callers own its lifecycle and must Close it on
// shutdown.
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		logger:     logger,
		sendBuffer: DefaultSendBuffer,
		rooms:      make(map[string]map[*Client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Join subscribes the client to the event's room. Joining a room the client
// is already in is a no-op.
func (h *Hub) Join(c *Client, eventID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || c.isClosed() {
		return
	}

	room, ok := h.rooms[eventID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[eventID] = room
	}
	if _, ok := room[c]; ok {
		return
	}
	room[c] = struct{}{}
	c.joined(eventID)
	metrics.SetRoomMembers(eventID, len(room))

	h.logger.Debug("client joined room", "event_id", eventID, "client_id", c.ID, "members", len(room))
}

// Leave unsubscribes the client from the event's room. Leaving a room the
// client is not in is a no-op.
func (h *Hub) Leave(c *Client, eventID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, eventID)
}

func (h *Hub) leaveLocked(c *Client, eventID string) {
	room, ok := h.rooms[eventID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	c.left(eventID)
	if len(room) == 0 {
		delete(h.rooms, eventID)
		metrics.DeleteRoomMembers(eventID)
	} else {
		metrics.SetRoomMembers(eventID, len(room))
	}
}

/// Publish implements domain.RoomPublisher. It never blocks: members whose
// send buffer is full are evicted and the message is dropped for them.
// Publishing into an empty room is a no-op.
func (h *Hub) Publish(eventID string, messageType domain.MessageType, payload any) {
	env := Envelope{
		ID:      uuid.NewString(),
		Type:    messageType,
		Payload: payload,
		SentAt:  time.Now().UTC(),
	}

	h.mu.RLock()
	room := h.rooms[eventID]
	members := make([]*Client, 0, len(room))
	for c := range room {
		members = append(members, c)
	}
	h.mu.RUnlock()

	if len(members) == 0 {
		return
	}
	metrics.RecordBroadcast(string(messageType))

	var evicted []*Client
	for _, c := range members {
		if !c.trySend(env) {
			metrics.RecordBroadcastDropped()
			evicted = append(evicted, c)
		}
	}
	for _, c := range evicted {
		h.logger.Warn("evicting slow realtime client", "client_id", c.ID, "user_id", c.UserID)
		h.Disconnect(c)
	}
}

// Disconnect removes the client from every room it joined and closes its
// outbound channel. Safe to call more than once.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	for _, eventID := range c.roomList() {
		h.leaveLocked(c, eventID)
	}
	h.mu.Unlock()
	c.close()
}

// Close tears the hub down, disconnecting every client. Publishes and joins
// after Close are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var all []*Client
	for eventID, room := range h.rooms {
		for c := range room {
			all = append(all, c)
		}
		delete(h.rooms, eventID)
		metrics.DeleteRoomMembers(eventID)
	}
	h.mu.Unlock()

	for _, c := range all {
		c.close()
	}
}

// RoomSize returns the number of connected members in an event's room.
func (h *Hub) RoomSize(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[eventID])
}
