package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventbeacon/internal/delivery/http/helpers"
	"eventbeacon/internal/delivery/http/middleware"
	"eventbeacon/internal/domain"
)

type mockGeofenceStore struct {
	regions []*domain.GeofenceRegion
	err     error
}

func (m *mockGeofenceStore) ListByEventID(_ context.Context, _ string) ([]*domain.GeofenceRegion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.regions, nil
}

type mockEventRepo struct {
	event *domain.Event
	err   error
}

func (m *mockEventRepo) GetByID(_ context.Context, _ string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func TestGeofenceController_ListGeofences_Success(t *testing.T) {
	store := &mockGeofenceStore{
		regions: []*domain.GeofenceRegion{
			{ID: "g1", EventID: "ev-1", Name: "Main Hall", Color: "#ff0000", Ring: []domain.LngLat{{Lng: 0, Lat: 0}, {Lng: 0, Lat: 1}, {Lng: 1, Lat: 1}}},
		},
	}
	events := &mockEventRepo{event: &domain.Event{ID: "ev-1", Name: "Conf"}}
	ctrl := NewGeofenceController(testControllerLogger(), store, events)

	req := httptest.NewRequest(http.MethodGet, "/events/ev-1/geofences", nil)
	req.SetPathValue("eventID", "ev-1")
	req = req.WithContext(middleware.SetUserID(req.Context(), "u1"))
	w := httptest.NewRecorder()
	ctrl.ListGeofences(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	var resp struct {
		Data []*domain.GeofenceRegion `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Name != "Main Hall" {
		t.Fatalf("unexpected regions: %+v", resp.Data)
	}
}

func TestGeofenceController_ListGeofences_EventNotFound(t *testing.T) {
	events := &mockEventRepo{err: domain.ErrNotFound}
	ctrl := NewGeofenceController(testControllerLogger(), &mockGeofenceStore{}, events)

	req := httptest.NewRequest(http.MethodGet, "/events/ev-1/geofences", nil)
	req.SetPathValue("eventID", "ev-1")
	req = req.WithContext(middleware.SetUserID(req.Context(), "u1"))
	w := httptest.NewRecorder()
	ctrl.ListGeofences(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != helpers.ErrCodeNotFound {
		t.Fatalf("expected error code %q, got %+v", helpers.ErrCodeNotFound, resp.Error)
	}
}

func TestGeofenceController_ListGeofences_Unauthorized(t *testing.T) {
	ctrl := NewGeofenceController(testControllerLogger(), &mockGeofenceStore{}, &mockEventRepo{})

	req := httptest.NewRequest(http.MethodGet, "/events/ev-1/geofences", nil)
	req.SetPathValue("eventID", "ev-1")
	w := httptest.NewRecorder()
	ctrl.ListGeofences(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}
