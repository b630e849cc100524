package services

import (
	"sync"
	"testing"
	"time"

	"eventbeacon/internal/adapters/email"
	"eventbeacon/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePublisher implements domain.RoomPublisher and records publishes.
type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

type publishedMessage struct {
	eventID     string
	messageType domain.MessageType
	payload     any
}

func (f *fakePublisher) Publish(eventID string, messageType domain.MessageType, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, publishedMessage{eventID: eventID, messageType: messageType, payload: payload})
}

// fakeMailer implements domain.Mailer and records sends.
type fakeMailer struct {
	mu    sync.Mutex
	sent  []string
	err   error
	sendC chan struct{}
}

func (f *fakeMailer) Send(to, subject, _, _ string) error {
	f.mu.Lock()
	f.sent = append(f.sent, to+": "+subject)
	f.mu.Unlock()
	if f.sendC != nil {
		f.sendC <- struct{}{}
	}
	return f.err
}

func TestAlertEmitter_PresenceUpdated(t *testing.T) {
	pub := &fakePublisher{}
	emitter := NewAlertEmitter(pub, &fakeMailer{}, email.NewTemplateRenderer(), testLogger())

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	emitter.PresenceUpdated(&domain.PresenceRecord{
		EventID:   "ev-1",
		UserID:    "user-1",
		Latitude:  0.5,
		Longitude: 0.5,
		Status:    domain.StatusInside,
		UpdatedAt: now,
	})

	require.Len(t, pub.messages, 1)
	assert.Equal(t, "ev-1", pub.messages[0].eventID)
	assert.Equal(t, domain.MessageLocationUpdate, pub.messages[0].messageType)

	payload, ok := pub.messages[0].payload.(domain.LocationUpdatePayload)
	require.True(t, ok)
	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, domain.StatusInside, payload.Status)
}

func TestAlertEmitter_Transitioned(t *testing.T) {
	pub := &fakePublisher{}
	mailer := &fakeMailer{sendC: make(chan struct{}, 1)}
	emitter := NewAlertEmitter(pub, mailer, email.NewTemplateRenderer(), testLogger())

	transition := domain.TransitionEvent{
		EventID:   "ev-1",
		UserID:    "user-1",
		From:      domain.StatusOutside,
		To:        domain.StatusInside,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	event := &domain.Event{ID: "ev-1", Name: "Summit", OwnerEmail: "owner@example.com"}

	emitter.Transitioned(event, transition)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, domain.MessageGeofenceEvent, pub.messages[0].messageType)
	payload, ok := pub.messages[0].payload.(domain.GeofenceEventPayload)
	require.True(t, ok)
	assert.Equal(t, domain.StatusInside, payload.Status)
	assert.Equal(t, domain.StatusOutside, payload.From)

	// The organizer email goes out in the background.
	select {
	case <-mailer.sendC:
	case <-time.After(2 * time.Second):
		t.Fatal("expected organizer email")
	}
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0], "owner@example.com")
	assert.Contains(t, mailer.sent[0], "entered")
}

func TestAlertEmitter_Transitioned_NoOrganizerEmail(t *testing.T) {
	pub := &fakePublisher{}
	mailer := &fakeMailer{}
	emitter := NewAlertEmitter(pub, mailer, email.NewTemplateRenderer(), testLogger())

	emitter.Transitioned(&domain.Event{ID: "ev-1"}, domain.TransitionEvent{
		EventID: "ev-1",
		UserID:  "user-1",
		From:    domain.StatusInside,
		To:      domain.StatusOutside,
	})

	require.Len(t, pub.messages, 1)
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Empty(t, mailer.sent, "no organizer address, no email")
}
