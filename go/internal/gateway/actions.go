package gateway

import (
	"errors"
	"fmt"

	"github.com/mcdev12/elevator/go/internal/game"
	"github.com/rs/zerolog/log"
)

var ErrUnknownAction = errors.New("unknown action")

// ActionResult is what a client command produced.
type ActionResult struct {
	Snapshot game.Snapshot     `json:"state"`
	Click    *game.ClickResult `json:"click,omitempty"`
}

// applyAction runs one client command against a session.
func applyAction(c *game.Controller, action string, floor int) (ActionResult, error) {
	var (
		res ActionResult
		err error
	)

	switch action {
	case ActionStart:
		res.Snapshot, err = c.RequestTarget()
	case ActionConfirm:
		res.Snapshot, err = c.ConfirmStart()
	case ActionClick:
		var click game.ClickResult
		click, res.Snapshot, err = c.ClickFloor(floor)
		if err == nil {
			res.Click = &click
		}
	case ActionRestart:
		res.Snapshot, err = c.Restart()
	default:
		return res, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	// The session has already moved to finished; the caller just gets the new state.
	if errors.Is(err, game.ErrTargetPoolExhausted) {
		log.Warn().
			Err(err).
			Str("session_id", c.ID().String()).
			Str("action", action).
			Msg("target pool exhausted, game finished early")
		err = nil
	}

	return res, err
}
