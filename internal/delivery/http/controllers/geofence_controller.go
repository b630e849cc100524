package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventbeacon/internal/delivery/http/helpers"
	"eventbeacon/internal/delivery/http/middleware"
	"eventbeacon/internal/domain"
)

type GeofenceController struct {
	Logger *slog.Logger
	Store  domain.GeofenceStore
	Events domain.EventRepository
}

func NewGeofenceController(logger *slog.Logger, store domain.GeofenceStore, events domain.EventRepository) *GeofenceController {
	return &GeofenceController{
		Logger: logger,
		Store:  store,
		Events: events,
	}
}

// ListGeofencesSuccessResponse is the success response envelope for GET /events/{eventID}/geofences.
type ListGeofencesSuccessResponse struct {
	Data  []*domain.GeofenceRegion `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// ListGeofences godoc
// @Summary List the geofence regions of an event
// @Description Returns the current region snapshot so clients can render the fences. Regions are managed elsewhere; this endpoint is read-only.
// @Tags geofence
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.ListGeofencesSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/geofences [get]
func (c *GeofenceController) ListGeofences(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if _, err := c.Events.GetByID(r.Context(), eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	regions, err := c.Store.ListByEventID(r.Context(), eventID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if regions == nil {
		regions = []*domain.GeofenceRegion{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regions)
}
