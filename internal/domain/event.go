package domain

import (
	"context"
	"time"
)

// Event is the slice of the event entity this subsystem needs. Event CRUD
// (creation, join codes, ownership management) lives in the platform's event
// service; presence tracking only ever reads it.
// swagger:model Event
type Event struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OwnerID    string    `json:"owner_id"`
	OwnerEmail string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EventRepository is the read-only port to event storage.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
}
