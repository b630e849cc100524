package domain

import (
	"context"
	"time"
)

// PresenceStatus classifies a participant relative to an event's regions.
type PresenceStatus string

// Presence status values. A participant with no accepted reading yet is UNKNOWN.
const (
	StatusUnknown PresenceStatus = "UNKNOWN"
	StatusInside  PresenceStatus = "INSIDE"
	StatusOutside PresenceStatus = "OUTSIDE"
)

// PresenceRecord is the last-known location and status for one participant
// in one event. Keyed by (event_id, user_id); created on first update,
// mutated on every subsequent one, removed when the user leaves the event.
// swagger:model PresenceRecord
type PresenceRecord struct {
	ID        string         `json:"id"`
	EventID   string         `json:"event_id"`
	UserID    string         `json:"user_id"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Status    PresenceStatus `json:"status"`
	UpdatedAt time.Time      `json:"updated_at"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewPresenceRecord returns a new PresenceRecord. ID is typically set by the repository on create.
func NewPresenceRecord(eventID, userID string, lat, lng float64, status PresenceStatus, now time.Time) *PresenceRecord {
	return &PresenceRecord{
		EventID:   eventID,
		UserID:    userID,
		Latitude:  lat,
		Longitude: lng,
		Status:    status,
		UpdatedAt: now,
		CreatedAt: now,
	}
}

// TransitionEvent is a change in presence status for one participant. It is
// produced and consumed in-process and never persisted by this subsystem.
type TransitionEvent struct {
	EventID   string         `json:"event_id"`
	UserID    string         `json:"user_id"`
	From      PresenceStatus `json:"from"`
	To        PresenceStatus `json:"to"`
	Timestamp time.Time      `json:"timestamp"`
}

// PresenceRepository defines storage operations for presence records.
type PresenceRepository interface {
	// Upsert inserts the record or, if one exists for (event_id, user_id),
	// overwrites its coordinates, status, and updated_at. On insert the
	// generated ID and created_at are written back to rec.
	Upsert(ctx context.Context, rec *PresenceRecord) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*PresenceRecord, error)
	ListByEventID(ctx context.Context, eventID string) ([]*PresenceRecord, error)
	Delete(ctx context.Context, eventID, userID string) error
}

// LocationService defines the ingest pipeline for participant coordinate
// updates plus the read-side queries backing the location endpoints.
type LocationService interface {
	// UpdateLocation validates the coordinate, evaluates it against the
	// event's geofence regions, persists the presence record, and returns it
	// together with the resulting status. Updates for the same
	// (user, event) key are serialized; distinct keys proceed in parallel.
	UpdateLocation(ctx context.Context, eventID, userID string, lat, lng float64) (*PresenceRecord, PresenceStatus, error)
	ListEventLocations(ctx context.Context, eventID string) ([]*PresenceRecord, error)
	GetMyLocation(ctx context.Context, eventID, userID string) (*PresenceRecord, error)
	// RemovePresence deletes the participant's presence record when they
	// leave the event. Removing an absent record is not an error.
	RemovePresence(ctx context.Context, eventID, userID string) error
}
