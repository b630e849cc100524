package realtime

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"eventbeacon/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS layer and bearer auth;
	// the upgrader itself accepts any origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler upgrades HTTP requests to websocket connections and attaches them
// to the hub.
type Handler struct {
	Hub      *Hub
	Verifier domain.TokenVerifier
	Logger   *slog.Logger
}

// NewHandler creates the websocket endpoint handler.
func NewHandler(hub *Hub, verifier domain.TokenVerifier, logger *slog.Logger) *Handler {
	return &Handler{
		Hub:      hub,
		Verifier: verifier,
		Logger:   logger,
	}
}

// ServeHTTP authenticates the caller, upgrades the connection, and runs the
// client pumps until the connection drops. Browsers cannot set headers on
// websocket requests, so the bearer token is also accepted as a query
// parameter.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	userID, err := h.Verifier.Verify(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.Logger.Debug("websocket upgrade failed", "err", err)
		return
	}

	client := NewClient(conn, userID, h.Hub.sendBuffer)
	h.Logger.Debug("realtime client connected", "client_id", client.ID, "user_id", userID)
	client.Run(h.Hub, h.Logger)
	h.Logger.Debug("realtime client disconnected", "client_id", client.ID, "user_id", userID)
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return r.URL.Query().Get("token")
}
