package domain

import "context"

// LngLat is a single polygon vertex in GeoJSON coordinate order (longitude first).
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// GeofenceRegion is a polygon area tied to an event, used to classify
// participant presence. Regions are created and edited by the event
// management workflow; this subsystem reads immutable snapshots only.
// swagger:model GeofenceRegion
type GeofenceRegion struct {
	ID      string   `json:"id"`
	EventID string   `json:"event_id"`
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	// Ring is the ordered, implicitly-closed polygon ring. A valid region
	// has at least 3 distinct vertices; it need not be convex.
	Ring []LngLat `json:"ring"`
}

// GeofenceStore supplies the current set of regions for an event.
type GeofenceStore interface {
	ListByEventID(ctx context.Context, eventID string) ([]*GeofenceRegion, error)
}

// RegionLocator decides whether a coordinate lies inside an event's regions.
// The contract is "inside if inside ANY region": evaluation order must not
// affect the result. Implementations may compute containment in-process or
// delegate to a spatial index; observable semantics are identical.
type RegionLocator interface {
	Inside(ctx context.Context, lat, lng float64, regions []*GeofenceRegion) (bool, error)
}
