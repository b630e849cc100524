// Package geo implements in-process geometric containment for geofence
// regions. It is the pure-computation backend of domain.RegionLocator; the
// postgres package provides an equivalent backend delegated to PostGIS.
package geo

import (
	"context"

	"eventbeacon/internal/domain"
)

// epsilon guards the edge-intersection division so points lying exactly on a
// horizontal edge resolve the same way on every call.
const epsilon = 1e-9

// Engine tests point membership in polygon rings using even-odd ray casting.
type Engine struct{}

// NewEngine returns a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Contains reports whether the point (lat, lng) lies inside the polygon ring.
// The ring is treated as implicitly closed; a trailing vertex equal to the
// first is tolerated. Rings with fewer than 3 vertices are never entered.
// Runs in O(len(ring)).
func (e *Engine) Contains(lat, lng float64, ring []domain.LngLat) bool {
	if len(ring) < 3 {
		return false
	}

	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i].Lng, ring[i].Lat
		xj, yj := ring[j].Lng, ring[j].Lat

		// Count crossings of the horizontal ray extending east from the point.
		if (yi > lat) != (yj > lat) &&
			lng < (xj-xi)*(lat-yi)/(yj-yi+epsilon)+xi {
			inside = !inside
		}
	}
	return inside
}

// Inside implements domain.RegionLocator: a point is inside if it is
// contained by any region in the snapshot, independent of evaluation order.
func (e *Engine) Inside(_ context.Context, lat, lng float64, regions []*domain.GeofenceRegion) (bool, error) {
	for _, region := range regions {
		if e.Contains(lat, lng, region.Ring) {
			return true, nil
		}
	}
	return false, nil
}
