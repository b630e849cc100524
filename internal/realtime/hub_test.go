package realtime

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"eventbeacon/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(buffer int) *Client {
	return NewClient(nil, "user-1", buffer)
}

func drain(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case env := <-c.send:
		return env
	case <-time.After(time.Second):
		t.Fatal("expected a message")
		return Envelope{}
	}
}

func TestHub_JoinLeaveIdempotent(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()
	c := newTestClient(4)

	hub.Join(c, "ev-1")
	hub.Join(c, "ev-1")
	assert.Equal(t, 1, hub.RoomSize("ev-1"))

	hub.Leave(c, "ev-1")
	assert.Equal(t, 0, hub.RoomSize("ev-1"))

	// Leaving again, or leaving a room never joined, is a no-op.
	hub.Leave(c, "ev-1")
	hub.Leave(c, "ev-other")
	assert.Equal(t, 0, hub.RoomSize("ev-1"))
}

func TestHub_PublishEmptyRoomIsNoOp(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	// Must neither error nor retain the message for later joiners.
	hub.Publish("ev-1", domain.MessageChatMessage, domain.ChatMessagePayload{Body: "early"})

	c := newTestClient(4)
	hub.Join(c, "ev-1")
	select {
	case env := <-c.send:
		t.Fatalf("late joiner must not receive a replay, got %v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PublishReachesAllMembers(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	a := newTestClient(4)
	b := newTestClient(4)
	other := newTestClient(4)
	hub.Join(a, "ev-1")
	hub.Join(b, "ev-1")
	hub.Join(other, "ev-2")

	hub.Publish("ev-1", domain.MessageGeofenceEvent, domain.GeofenceEventPayload{
		UserID: "user-9",
		Status: domain.StatusInside,
	})

	for _, c := range []*Client{a, b} {
		env := drain(t, c)
		assert.Equal(t, domain.MessageGeofenceEvent, env.Type)
		assert.NotEmpty(t, env.ID)
		payload, ok := env.Payload.(domain.GeofenceEventPayload)
		require.True(t, ok)
		assert.Equal(t, "user-9", payload.UserID)
	}

	select {
	case <-other.send:
		t.Fatal("member of a different room must not receive the message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SlowClientIsEvicted(t *testing.T) {
	hub := NewHub(testLogger(), WithSendBuffer(1))
	defer hub.Close()

	slow := newTestClient(1)
	healthy := newTestClient(8)
	hub.Join(slow, "ev-1")
	hub.Join(healthy, "ev-1")

	// First message fills the slow client's buffer; the second overflows it.
	hub.Publish("ev-1", domain.MessageChatMessage, domain.ChatMessagePayload{Body: "one"})
	hub.Publish("ev-1", domain.MessageChatMessage, domain.ChatMessagePayload{Body: "two"})

	assert.Equal(t, 1, hub.RoomSize("ev-1"), "slow client must be evicted")
	assert.True(t, slow.isClosed())

	// The healthy client got both messages.
	assert.Equal(t, "one", drain(t, healthy).Payload.(domain.ChatMessagePayload).Body)
	assert.Equal(t, "two", drain(t, healthy).Payload.(domain.ChatMessagePayload).Body)
}

func TestHub_DisconnectRemovesFromAllRooms(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	c := newTestClient(4)
	hub.Join(c, "ev-1")
	hub.Join(c, "ev-2")

	hub.Disconnect(c)
	assert.Equal(t, 0, hub.RoomSize("ev-1"))
	assert.Equal(t, 0, hub.RoomSize("ev-2"))
	assert.True(t, c.isClosed())

	// Disconnecting twice is safe.
	hub.Disconnect(c)

	// A closed client cannot rejoin.
	hub.Join(c, "ev-1")
	assert.Equal(t, 0, hub.RoomSize("ev-1"))
}

func TestHub_CloseDisconnectsEveryone(t *testing.T) {
	hub := NewHub(testLogger())

	a := newTestClient(4)
	b := newTestClient(4)
	hub.Join(a, "ev-1")
	hub.Join(b, "ev-2")

	hub.Close()
	assert.True(t, a.isClosed())
	assert.True(t, b.isClosed())

	// Publishing after Close is a no-op.
	hub.Publish("ev-1", domain.MessageChatMessage, domain.ChatMessagePayload{Body: "late"})
}
