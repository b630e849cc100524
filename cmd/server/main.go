package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventbeacon/config"
	_ "eventbeacon/docs"
	"eventbeacon/internal/adapters/auth"
	"eventbeacon/internal/adapters/email"
	delivery "eventbeacon/internal/delivery/http"
	"eventbeacon/internal/delivery/http/controllers"
	"eventbeacon/internal/delivery/http/middleware"
	"eventbeacon/internal/domain"
	"eventbeacon/internal/geo"
	"eventbeacon/internal/realtime"
	"eventbeacon/internal/repository/postgres"
	"eventbeacon/internal/services"
)

// @title EventBeacon API
// @version 1.0
// @description Geofence evaluation and real-time presence tracking for event attendance.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	presenceRepo := postgres.NewPresenceRepository(db)
	geofenceStore := postgres.NewGeofenceRepository(db)

	var locator domain.RegionLocator
	switch cfg.GeofenceBackend {
	case config.GeofenceBackendPostGIS:
		locator = postgres.NewGeoLocator(db)
	default:
		locator = geo.NewEngine()
	}
	logger.Info("geofence backend selected", "backend", cfg.GeofenceBackend)

	hub := realtime.NewHub(logger, realtime.WithSendBuffer(cfg.RealtimeSendBuffer))
	defer hub.Close()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	emitter := services.NewAlertEmitter(hub, mailer, email.NewTemplateRenderer(), logger)
	locationService := services.NewLocationService(
		eventRepo, presenceRepo, geofenceStore, locator, emitter, logger,
		services.WithRegionCacheTTL(cfg.GeofenceCacheTTL),
	)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	locationController := controllers.NewLocationController(logger, locationService)
	geofenceController := controllers.NewGeofenceController(logger, geofenceStore, eventRepo)
	wsHandler := realtime.NewHandler(hub, verifier, logger)

	mux := delivery.NewRouter(logger, verifier, locationController, geofenceController, wsHandler)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	hub.Close()
}
