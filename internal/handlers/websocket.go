package handlers

import (
	"net/http"

	"artshowcase-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionEventsHandler upgrades authenticated clients to a WebSocket over
// which auth-state changes (sign-out in another tab, profile updates) are
// pushed.
type SessionEventsHandler struct {
	hub      *services.SessionHub
	sessions *services.SessionService
}

// NewSessionEventsHandler creates a new session events handler
func NewSessionEventsHandler(hub *services.SessionHub, sessions *services.SessionService) *SessionEventsHandler {
	return &SessionEventsHandler{
		hub:      hub,
		sessions: sessions,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *SessionEventsHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.sessions.ValidateToken(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	log.Info().Str("user_id", userID).Msg("Session events connection established")

	// The stream is push-only. Reading drains client pings and detects the
	// close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}
	}
}
