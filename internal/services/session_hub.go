package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// SessionHub fans auth-state events out to every open tab of a user, so a
// sign-out in one tab is observed by the others without polling. A user may
// hold several connections at once.
type SessionHub struct {
	mu          sync.RWMutex
	connections map[string]map[*websocket.Conn]bool
}

// NewSessionHub creates a new session hub
func NewSessionHub() *SessionHub {
	return &SessionHub{
		connections: make(map[string]map[*websocket.Conn]bool),
	}
}

// Register adds a WebSocket connection for a user
func (h *SessionHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[userID] == nil {
		h.connections[userID] = make(map[*websocket.Conn]bool)
	}
	h.connections[userID][conn] = true

	log.Info().Str("user_id", userID).Msg("Session connection registered")
}

// Unregister removes a WebSocket connection for a user
func (h *SessionHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, exists := h.connections[userID]; exists {
		if conns[conn] {
			conn.Close()
			delete(conns, conn)
		}
		if len(conns) == 0 {
			delete(h.connections, userID)
		}
		log.Info().Str("user_id", userID).Msg("Session connection unregistered")
	}
}

// ConnectionCount reports how many connections a user currently holds
func (h *SessionHub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// NotifySessionChange pushes an auth-state event to all of a user's
// connections. Delivery is best-effort: a dead connection is dropped, never
// reported to the caller.
func (h *SessionHub) NotifySessionChange(userID string, event SessionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to marshal session event")
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.connections[userID]))
	for conn := range h.connections[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Error().
				Err(err).
				Str("user_id", userID).
				Str("type", event.Type).
				Msg("Failed to push session event")
			h.Unregister(userID, conn)
		}
	}
}
