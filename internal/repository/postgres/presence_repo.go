package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventbeacon/internal/domain"
)

type presenceRepository struct {
	DB *sql.DB
}

// NewPresenceRepository returns a PresenceRepository backed by Postgres.
func NewPresenceRepository(db *sql.DB) domain.PresenceRepository {
	return &presenceRepository{
		DB: db,
	}
}

func (r *presenceRepository) Upsert(ctx context.Context, rec *domain.PresenceRecord) error {
	query := `
		INSERT INTO event_presence (event_id, user_id, latitude, longitude, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	return r.DB.QueryRowContext(ctx, query,
		rec.EventID, rec.UserID, rec.Latitude, rec.Longitude, string(rec.Status), rec.UpdatedAt).
		Scan(&rec.ID, &rec.CreatedAt)
}

func (r *presenceRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.PresenceRecord, error) {
	query := `
		SELECT id, event_id, user_id, latitude, longitude, status, created_at, updated_at
		FROM event_presence
		WHERE event_id = $1 AND user_id = $2
	`
	rec := &domain.PresenceRecord{}
	var status string
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&rec.ID, &rec.EventID, &rec.UserID, &rec.Latitude, &rec.Longitude, &status, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	rec.Status = domain.PresenceStatus(status)
	return rec, nil
}

func (r *presenceRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.PresenceRecord, error) {
	query := `
		SELECT id, event_id, user_id, latitude, longitude, status, created_at, updated_at
		FROM event_presence
		WHERE event_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*domain.PresenceRecord
	for rows.Next() {
		rec := &domain.PresenceRecord{}
		var status string
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.UserID, &rec.Latitude, &rec.Longitude, &status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.Status = domain.PresenceStatus(status)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []*domain.PresenceRecord{}
	}
	return recs, nil
}

func (r *presenceRepository) Delete(ctx context.Context, eventID, userID string) error {
	query := `
		DELETE FROM event_presence
		WHERE event_id = $1 AND user_id = $2
	`
	_, err := r.DB.ExecContext(ctx, query, eventID, userID)
	return err
}
