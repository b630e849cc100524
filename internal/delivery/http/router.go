package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"eventbeacon/internal/delivery/http/controllers"
	"eventbeacon/internal/delivery/http/helpers"
	"eventbeacon/internal/delivery/http/middleware"
	"eventbeacon/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	locationController *controllers.LocationController,
	geofenceController *controllers.GeofenceController,
	realtimeHandler http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Location ingest and queries
	mux.HandleFunc("POST /events/{eventID}/location", auth(locationController.UpdateLocation))
	mux.HandleFunc("GET /events/{eventID}/locations", auth(locationController.ListEventLocations))
	mux.HandleFunc("GET /events/{eventID}/location/me", auth(locationController.GetMyLocation))
	mux.HandleFunc("DELETE /events/{eventID}/location/me", auth(locationController.RemoveMyLocation))

	// Geofence snapshot for client-side rendering
	mux.HandleFunc("GET /events/{eventID}/geofences", auth(geofenceController.ListGeofences))

	// Realtime channel; the handler authenticates the token itself because
	// browser websocket clients cannot set an Authorization header.
	mux.Handle("GET /ws", realtimeHandler)

	// Operational endpoints
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
