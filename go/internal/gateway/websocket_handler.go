package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/elevator/go/internal/game"
)

// WebSocketHandler handles WebSocket upgrade requests for game sessions
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	sessions          *game.Manager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, sessions *game.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		sessions:          sessions,
	}
}

// HandleGameConnection handles GET /ws/game?session_id=<uuid>
func (h *WebSocketHandler) HandleGameConnection(w http.ResponseWriter, r *http.Request) {
	sessionIDStr := r.URL.Query().Get("session_id")
	if sessionIDStr == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		http.Error(w, "invalid session_id format", http.StatusBadRequest)
		return
	}

	ctrl, err := h.sessions.Get(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.connectionManager.UpgradeConnection(w, r, sessionID)
	if err != nil {
		// The upgrader has already replied to the client.
		log.Error().
			Err(err).
			Str("session_id", sessionID.String()).
			Msg("failed to upgrade WebSocket connection")
		return
	}

	// Bring the new client up to date; later changes arrive as broadcasts.
	event, err := NewGameEvent(sessionID, EventTypeStateChanged, ctrl.Snapshot())
	if err != nil {
		log.Error().Err(err).Msg("failed to build initial state event")
		return
	}
	h.connectionManager.SendEvent(conn, event)
}

// HandleClientMessage applies a command received over a connection.
func (h *WebSocketHandler) HandleClientMessage(conn *Connection, msg ClientMessage) {
	ctrl, err := h.sessions.Get(conn.SessionID)
	if err != nil {
		conn.reject(msg.Type, err)
		return
	}

	res, err := applyAction(ctrl, msg.Type, msg.Floor)
	if err != nil {
		log.Debug().
			Err(err).
			Str("session_id", conn.SessionID.String()).
			Str("action", msg.Type).
			Msg("client action rejected")
		conn.reject(msg.Type, err)
		return
	}

	if res.Click != nil && !res.Click.Hit {
		event, err := NewGameEvent(conn.SessionID, EventTypeFloorMissed, FloorMissedPayload{Floor: msg.Floor})
		if err != nil {
			log.Error().Err(err).Msg("failed to build floor missed event")
			return
		}
		h.connectionManager.SendEvent(conn, event)
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}
