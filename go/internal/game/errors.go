package game

import "errors"

var (
	ErrInvalidTransition   = errors.New("action not allowed in current state")
	ErrTargetPoolExhausted = errors.New("no unused floor left in layout")
	ErrFloorOutOfLayout    = errors.New("floor is not part of the current layout")
	ErrSessionNotFound     = errors.New("session not found")
	ErrControllerClosed    = errors.New("controller closed")
)
