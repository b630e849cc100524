package domain

import "time"

// MessageType tags a realtime message so receivers can dispatch on a single
// connection without separate channels per feature.
type MessageType string

// Message classes multiplexed over the per-client realtime connection.
const (
	MessageLocationUpdate MessageType = "locationUpdate"
	MessageGeofenceEvent  MessageType = "geofenceEvent"
	MessageChatMessage    MessageType = "chatMessage"
	MessageVotingUpdate   MessageType = "votingUpdate"
	MessagePollCreated    MessageType = "pollCreated"
	MessagePollDeleted    MessageType = "pollDeleted"
	MessageLiveReport     MessageType = "liveReport"
	MessageEventBroadcast MessageType = "eventBroadcast"
	MessageNotification   MessageType = "notification"
)

// LocationUpdatePayload is the payload for locationUpdate messages.
type LocationUpdatePayload struct {
	UserID    string         `json:"user_id"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Status    PresenceStatus `json:"status"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GeofenceEventPayload is the payload for geofenceEvent messages.
type GeofenceEventPayload struct {
	UserID    string         `json:"user_id"`
	Status    PresenceStatus `json:"status"`
	From      PresenceStatus `json:"from"`
	Timestamp time.Time      `json:"timestamp"`
}

// ChatMessagePayload is the payload for chatMessage messages. Chat business
// logic lives elsewhere in the platform; the realtime channel only relays.
type ChatMessagePayload struct {
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

// VotingUpdatePayload is the payload for votingUpdate messages.
type VotingUpdatePayload struct {
	PollID string         `json:"poll_id"`
	Counts map[string]int `json:"counts"`
}

// PollLifecyclePayload is the payload for pollCreated and pollDeleted messages.
type PollLifecyclePayload struct {
	PollID   string `json:"poll_id"`
	Question string `json:"question,omitempty"`
}

// LiveReportPayload is the payload for liveReport messages.
type LiveReportPayload struct {
	ReportID  string    `json:"report_id"`
	UserID    string    `json:"user_id"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// EventBroadcastPayload is the payload for eventBroadcast and notification messages.
type EventBroadcastPayload struct {
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// RoomPublisher publishes a tagged message to every client currently
// subscribed to an event's room. Publishing must never block the caller:
// a slow or absent subscriber is the publisher's concern, not the ingest
// pipeline's. A publish into an empty room is a no-op.
type RoomPublisher interface {
	Publish(eventID string, messageType MessageType, payload any)
}
