package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"eventbeacon/internal/domain"
)

// geoJSONPolygon is the stored shape of a region's area column. The region
// management workflow guarantees type == "Polygon" with closed rings; rows
// that violate that are rejected on read rather than silently misclassified.
type geoJSONPolygon struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

type geofenceRepository struct {
	DB *sql.DB
}

// NewGeofenceRepository returns a GeofenceStore backed by Postgres. Region
// create/update/delete is owned by the event management workflow; this
// repository only reads.
func NewGeofenceRepository(db *sql.DB) domain.GeofenceStore {
	return &geofenceRepository{
		DB: db,
	}
}

func (r *geofenceRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.GeofenceRegion, error) {
	query := `
		SELECT id, event_id, name, color, area
		FROM geofence_regions
		WHERE event_id = $1
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regions []*domain.GeofenceRegion
	for rows.Next() {
		region := &domain.GeofenceRegion{}
		var area []byte
		if err := rows.Scan(&region.ID, &region.EventID, &region.Name, &region.Color, &area); err != nil {
			return nil, err
		}
		ring, err := ringFromArea(area)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", region.ID, err)
		}
		region.Ring = ring
		regions = append(regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if regions == nil {
		regions = []*domain.GeofenceRegion{}
	}
	return regions, nil
}

// ringFromArea parses a stored GeoJSON Polygon and returns its outer ring
// with the duplicate closing vertex dropped.
func ringFromArea(area []byte) ([]domain.LngLat, error) {
	var poly geoJSONPolygon
	if err := json.Unmarshal(area, &poly); err != nil {
		return nil, fmt.Errorf("parse area: %w", err)
	}
	if poly.Type != "Polygon" {
		return nil, fmt.Errorf("area type %q is not Polygon", poly.Type)
	}
	if len(poly.Coordinates) == 0 {
		return nil, fmt.Errorf("area has no rings")
	}

	outer := poly.Coordinates[0]
	ring := make([]domain.LngLat, 0, len(outer))
	for _, pair := range outer {
		if len(pair) < 2 {
			return nil, fmt.Errorf("ring vertex has %d coordinates", len(pair))
		}
		ring = append(ring, domain.LngLat{Lng: pair[0], Lat: pair[1]})
	}
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	return ring, nil
}

// GeoLocator is the spatial-index backend of domain.RegionLocator. It
// delegates containment to PostGIS instead of computing it in-process;
// semantics match the pure backend: inside if inside any of the given regions.
type GeoLocator struct {
	DB *sql.DB
}

// NewGeoLocator returns a RegionLocator that evaluates containment with a
// PostGIS predicate against the geofence_regions geometry column.
func NewGeoLocator(db *sql.DB) *GeoLocator {
	return &GeoLocator{
		DB: db,
	}
}

// Inside implements domain.RegionLocator. The query is restricted to the ids
// in the snapshot so both backends always evaluate the same region set.
func (l *GeoLocator) Inside(ctx context.Context, lat, lng float64, regions []*domain.GeofenceRegion) (bool, error) {
	if len(regions) == 0 {
		return false, nil
	}

	ids := make([]string, 0, len(regions))
	for _, region := range regions {
		ids = append(ids, region.ID)
	}

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM geofence_regions
			WHERE id = ANY($1)
			AND ST_Contains(geom, ST_SetSRID(ST_MakePoint($2, $3), 4326))
		)
	`
	var inside bool
	if err := l.DB.QueryRowContext(ctx, query, pq.Array(ids), lng, lat).Scan(&inside); err != nil {
		return false, fmt.Errorf("geofence containment query failed: %w", err)
	}
	return inside, nil
}
