package postgres

import (
	"context"
	"testing"

	"eventbeacon/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeofenceRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()

	area := `{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]]}`

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "event_id", "name", "color", "area"}).
		AddRow("gf-1", "ev-1", "Main stage", "#ff0000", []byte(area))
	mock.ExpectQuery(`SELECT id, event_id, name, color, area`).
		WithArgs("ev-1").
		WillReturnRows(rows)

	repo := NewGeofenceRepository(db)
	regions, err := repo.ListByEventID(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, regions, 1)

	region := regions[0]
	assert.Equal(t, "gf-1", region.ID)
	assert.Equal(t, "Main stage", region.Name)
	// The duplicate closing vertex is dropped on read.
	assert.Equal(t, []domain.LngLat{
		{Lng: 0, Lat: 0},
		{Lng: 0, Lat: 1},
		{Lng: 1, Lat: 1},
		{Lng: 1, Lat: 0},
	}, region.Ring)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGeofenceRepository_ListByEventID_RejectsNonPolygon(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "event_id", "name", "color", "area"}).
		AddRow("gf-1", "ev-1", "Broken", "#000000", []byte(`{"type":"Point","coordinates":[0,0]}`))
	mock.ExpectQuery(`SELECT id, event_id, name, color, area`).
		WithArgs("ev-1").
		WillReturnRows(rows)

	repo := NewGeofenceRepository(db)
	_, err = repo.ListByEventID(ctx, "ev-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not Polygon")
}

func TestGeoLocator_Inside(t *testing.T) {
	ctx := context.Background()

	regions := []*domain.GeofenceRegion{{ID: "gf-1"}, {ID: "gf-2"}}

	tests := []struct {
		name string
		rows *sqlmock.Rows
		want bool
	}{
		{
			name: "point inside some region",
			rows: sqlmock.NewRows([]string{"exists"}).AddRow(true),
			want: true,
		},
		{
			name: "point outside all regions",
			rows: sqlmock.NewRows([]string{"exists"}).AddRow(false),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			// Longitude is bound before latitude, matching ST_MakePoint(x, y).
			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs(sqlmock.AnyArg(), -74.0060, 40.7128).
				WillReturnRows(tt.rows)

			locator := NewGeoLocator(db)
			inside, err := locator.Inside(ctx, 40.7128, -74.0060, regions)
			require.NoError(t, err)
			assert.Equal(t, tt.want, inside)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGeoLocator_Inside_EmptySnapshot(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	locator := NewGeoLocator(db)
	inside, err := locator.Inside(context.Background(), 1, 2, nil)
	require.NoError(t, err)
	assert.False(t, inside)
}
