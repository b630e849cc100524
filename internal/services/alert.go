package services

import (
	"log/slog"

	"eventbeacon/internal/domain"
)

// AlertEmitter fans accepted presence updates and geofence transitions out to
// the realtime rooms, and notifies the event organizer of transitions through
// the mailer. All emission is fire-and-forget: a slow subscriber or a failed
// email never blocks or fails the ingest call that triggered it.
type AlertEmitter struct {
	rooms    domain.RoomPublisher
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewAlertEmitter creates an AlertEmitter publishing into rooms and sending
// organizer notifications with mailer. mailer may be a noop implementation.
func NewAlertEmitter(rooms domain.RoomPublisher, mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) *AlertEmitter {
	return &AlertEmitter{
		rooms:    rooms,
		mailer:   mailer,
		renderer: renderer,
		logger:   logger,
	}
}

// PresenceUpdated broadcasts the participant's current location to the
// event's room.
func (e *AlertEmitter) PresenceUpdated(rec *domain.PresenceRecord) {
	e.rooms.Publish(rec.EventID, domain.MessageLocationUpdate, domain.LocationUpdatePayload{
		UserID:    rec.UserID,
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
		Status:    rec.Status,
		UpdatedAt: rec.UpdatedAt,
	})
}

// Transitioned broadcasts a geofence transition to the event's room and
// emails the organizer in the background.
func (e *AlertEmitter) Transitioned(event *domain.Event, transition domain.TransitionEvent) {
	e.rooms.Publish(transition.EventID, domain.MessageGeofenceEvent, domain.GeofenceEventPayload{
		UserID:    transition.UserID,
		Status:    transition.To,
		From:      transition.From,
		Timestamp: transition.Timestamp,
	})

	if event == nil || event.OwnerEmail == "" {
		return
	}
	go e.notifyOrganizer(event, transition)
}

func (e *AlertEmitter) notifyOrganizer(event *domain.Event, transition domain.TransitionEvent) {
	verb := "entered"
	if transition.To == domain.StatusOutside {
		verb = "left"
	}
	subject, html, text, err := e.renderer.Render("geofence_alert", domain.TransitionAlertEmailData{
		EventName: event.Name,
		UserID:    transition.UserID,
		Verb:      verb,
		From:      transition.From,
		To:        transition.To,
		Timestamp: transition.Timestamp,
	})
	if err != nil {
		e.logger.Error("organizer alert render failed",
			"event_id", transition.EventID,
			"user_id", transition.UserID,
			"err", err,
		)
		return
	}
	if err := e.mailer.Send(event.OwnerEmail, subject, html, text); err != nil {
		e.logger.Error("organizer alert email failed",
			"event_id", transition.EventID,
			"user_id", transition.UserID,
			"err", err,
		)
	}
}
