package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GameEvent is the envelope of every message the server pushes to a client.
type GameEvent struct {
	ID        string          `json:"id"`         // Event UUID
	SessionID string          `json:"session_id"` // Game session UUID
	Type      EventType       `json:"type"`       // Event type
	Timestamp time.Time       `json:"timestamp"`  // Event creation time
	Data      json.RawMessage `json:"data"`       // Event-specific payload
}

// EventType represents the type of game event
type EventType string

const (
	EventTypeStateChanged   EventType = "StateChanged"
	EventTypeFloorMissed    EventType = "FloorMissed"
	EventTypeActionRejected EventType = "ActionRejected"
)

// Action names accepted from clients over both WebSocket and REST.
const (
	ActionStart   = "start"
	ActionConfirm = "confirm"
	ActionClick   = "click"
	ActionRestart = "restart"
)

// ClientMessage is a command sent by the browser.
type ClientMessage struct {
	Type  string `json:"type"`
	Floor int    `json:"floor,omitempty"`
}

// FloorMissedPayload is sent when a non-target floor is pressed.
type FloorMissedPayload struct {
	Floor int `json:"floor"`
}

// ActionRejectedPayload explains why a client command had no effect.
type ActionRejectedPayload struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}

// NewGameEvent wraps payload into an event envelope.
func NewGameEvent(sessionID uuid.UUID, eventType EventType, payload interface{}) (*GameEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &GameEvent{
		ID:        uuid.New().String(),
		SessionID: sessionID.String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}
