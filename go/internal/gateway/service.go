package gateway

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/elevator/go/internal/game"
)

// Service is the game gateway: it owns the session registry and pushes
// state changes to WebSocket clients.
type Service struct {
	sessions          *game.Manager
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
}

// Config holds configuration for the gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
	// AllowedOrigins for CORS; empty allows all.
	AllowedOrigins []string
}

// DefaultConfig returns default configuration for the gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
	}
}

// NewService creates a new gateway service
func NewService(config Config, sessions *game.Manager) *Service {
	s := &Service{sessions: sessions}

	s.connectionManager = NewConnectionManager(config.ConnectionConfig, func(conn *Connection, msg ClientMessage) {
		s.wsHandler.HandleClientMessage(conn, msg)
	})
	s.connectionManager.OnActivity(sessions.Touch)
	s.wsHandler = NewWebSocketHandler(s.connectionManager, sessions)
	s.stateHandler = NewStateHandler(s)

	sessions.SetEvictionHooks(game.EvictionHooks{
		InUse:   s.connectionManager.HasConnections,
		Evicted: s.sessionEvicted,
	})

	return s
}

// Start runs the broadcaster and the idle session sweeper until ctx is cancelled
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting game gateway service")

	go s.connectionManager.Start(ctx)
	s.sessions.Run(ctx)

	log.Info().Msg("game gateway service stopped")
}

// CreateSession starts a new game whose state changes are broadcast to its clients.
func (s *Service) CreateSession() *game.Controller {
	ctrl := s.sessions.Create()
	id := ctrl.ID()

	ctrl.Subscribe(func(snap game.Snapshot) {
		event, err := NewGameEvent(id, EventTypeStateChanged, snap)
		if err != nil {
			log.Error().Err(err).Str("session_id", id.String()).Msg("failed to build state event")
			return
		}
		s.connectionManager.BroadcastToSession(id, event)
	})

	return ctrl
}

// GetSession looks up a running game.
func (s *Service) GetSession(id uuid.UUID) (*game.Controller, error) {
	return s.sessions.Get(id)
}

// RemoveSession ends a game and disconnects its clients.
func (s *Service) RemoveSession(id uuid.UUID) error {
	if err := s.sessions.Remove(id); err != nil {
		return err
	}
	s.connectionManager.CloseSession(id)
	return nil
}

// sessionEvicted disconnects the clients of a session dropped for inactivity.
func (s *Service) sessionEvicted(id uuid.UUID) {
	s.connectionManager.CloseSession(id)
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() ServiceStats {
	return ServiceStats{
		ConnectionStats: s.connectionManager.GetConnectionStats(),
		Sessions:        s.sessions.Count(),
	}
}

// ServiceStats extends the connection statistics with the session count.
type ServiceStats struct {
	ConnectionStats
	Sessions int `json:"sessions"`
}

// HandleStats handles GET /api/stats
func (s *Service) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.GetStats())
}
