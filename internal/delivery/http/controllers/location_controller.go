package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventbeacon/internal/delivery/http/helpers"
	"eventbeacon/internal/delivery/http/middleware"
	"eventbeacon/internal/domain"
)

type LocationController struct {
	Logger  *slog.Logger
	Service domain.LocationService
}

func NewLocationController(logger *slog.Logger, svc domain.LocationService) *LocationController {
	return &LocationController{
		Logger:  logger,
		Service: svc,
	}
}

// UpdateLocationRequest is the request body for POST /events/{eventID}/location.
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Validate implements helpers.Validator.
func (r *UpdateLocationRequest) Validate() []string {
	var errs []string
	if r.Latitude == nil {
		errs = append(errs, "latitude is required")
	} else if *r.Latitude < -90 || *r.Latitude > 90 {
		errs = append(errs, "latitude must be between -90 and 90")
	}
	if r.Longitude == nil {
		errs = append(errs, "longitude is required")
	} else if *r.Longitude < -180 || *r.Longitude > 180 {
		errs = append(errs, "longitude must be between -180 and 180")
	}
	return errs
}

// UpdateLocationResponse is the data payload for POST /events/{eventID}/location.
type UpdateLocationResponse struct {
	Location       *domain.PresenceRecord `json:"location"`
	GeofenceStatus domain.PresenceStatus  `json:"geofence_status"`
}

// UpdateLocationSuccessResponse is the success response envelope for POST /events/{eventID}/location.
type UpdateLocationSuccessResponse struct {
	Data  *UpdateLocationResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// UpdateLocation godoc
// @Summary Submit the caller's current coordinate for an event
// @Description Evaluates the coordinate against the event's geofence regions, upserts the caller's presence record, and returns the record with the resulting status. A status change is broadcast to the event's realtime room.
// @Tags location
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body controllers.UpdateLocationRequest true "Coordinate"
// @Success 200 {object} controllers.UpdateLocationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/location [post]
func (c *LocationController) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req UpdateLocationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	rec, status, err := c.Service.UpdateLocation(r.Context(), eventID, userID, *req.Latitude, *req.Longitude)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, UpdateLocationResponse{
		Location:       rec,
		GeofenceStatus: status,
	})
}

// ListLocationsSuccessResponse is the success response envelope for GET /events/{eventID}/locations.
type ListLocationsSuccessResponse struct {
	Data  []*domain.PresenceRecord `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// ListEventLocations godoc
// @Summary List current participant locations for an event
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.ListLocationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/locations [get]
func (c *LocationController) ListEventLocations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	records, err := c.Service.ListEventLocations(r.Context(), eventID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []*domain.PresenceRecord{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, records)
}

// GetMyLocationSuccessResponse is the success response envelope for GET /events/{eventID}/location/me.
type GetMyLocationSuccessResponse struct {
	Data  *domain.PresenceRecord `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// GetMyLocation godoc
// @Summary Get the caller's current location in an event
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.GetMyLocationSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/location/me [get]
func (c *LocationController) GetMyLocation(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	rec, err := c.Service.GetMyLocation(r.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "no location recorded")
			return
		}
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rec)
}

// RemoveMyLocation godoc
// @Summary Remove the caller's presence record for an event
// @Description Called when the user leaves the event. Removing an absent record succeeds.
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/location/me [delete]
func (c *LocationController) RemoveMyLocation(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.RemovePresence(r.Context(), eventID, userID); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *LocationController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
