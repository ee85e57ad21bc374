package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/elevator/go/internal/game"
)

// SessionStore is what the REST handlers need to create and find sessions.
type SessionStore interface {
	CreateSession() *game.Controller
	RemoveSession(id uuid.UUID) error
	GetSession(id uuid.UUID) (*game.Controller, error)
}

// LayoutsResponse lists the button layouts in play order.
type LayoutsResponse struct {
	Layouts []game.Layout `json:"layouts"`
}

type clickRequest struct {
	Floor int `json:"floor"`
}

// StateHandler serves the REST mirror of the game actions
type StateHandler struct {
	store SessionStore
}

// NewStateHandler creates a new state handler
func NewStateHandler(store SessionStore) *StateHandler {
	return &StateHandler{store: store}
}

// RegisterStateRoutes registers the /api routes
func (h *StateHandler) RegisterStateRoutes(r chi.Router) {
	r.Get("/api/layouts", h.HandleGetLayouts)
	r.Route("/api/games", func(r chi.Router) {
		r.Post("/", h.HandleCreateGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetGame)
			r.Delete("/", h.HandleDeleteGame)
			r.Post("/start", h.handleAction(ActionStart))
			r.Post("/confirm", h.handleAction(ActionConfirm))
			r.Post("/click", h.handleAction(ActionClick))
			r.Post("/restart", h.handleAction(ActionRestart))
		})
	})
}

// HandleGetLayouts handles GET /api/layouts
func (h *StateHandler) HandleGetLayouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LayoutsResponse{Layouts: game.GenerateLayouts()})
}

// HandleCreateGame handles POST /api/games
func (h *StateHandler) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	ctrl := h.store.CreateSession()
	writeJSON(w, http.StatusCreated, ctrl.Snapshot())
}

// HandleGetGame handles GET /api/games/{id}
func (h *StateHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// HandleDeleteGame handles DELETE /api/games/{id}
func (h *StateHandler) HandleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	if err := h.store.RemoveSession(id); err != nil {
		writeActionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StateHandler) handleAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl, ok := h.lookup(w, r)
		if !ok {
			return
		}

		var req clickRequest
		if action == ActionClick {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		res, err := applyAction(ctrl, action, req.Floor)
		if err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *StateHandler) lookup(w http.ResponseWriter, r *http.Request) (*game.Controller, bool) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return nil, false
	}
	ctrl, err := h.store.GetSession(id)
	if err != nil {
		writeActionError(w, err)
		return nil, false
	}
	return ctrl, true
}

func parseSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id format")
		return uuid.Nil, false
	}
	return id, true
}

func writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrControllerClosed):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, game.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrFloorOutOfLayout), errors.Is(err, ErrUnknownAction):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("unexpected action error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
