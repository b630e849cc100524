package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventbeacon/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns the read-only EventRepository. The events table
// is owned by the platform's event service; presence tracking only checks
// existence and resolves the organizer for alerting.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT e.id, e.name, e.owner_id, COALESCE(u.email, ''), e.created_at, e.updated_at
		FROM events e
		LEFT JOIN users u ON u.id = e.owner_id
		WHERE e.id = $1
	`
	event := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&event.ID, &event.Name, &event.OwnerID, &event.OwnerEmail, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return event, nil
}
