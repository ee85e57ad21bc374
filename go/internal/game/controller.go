package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	// DisplayDelay is how long a cleared round stays on screen before the
	// next layout (or the results) is shown.
	DisplayDelay = time.Second

	reportTimeout = 30 * time.Second
)

// Reporter receives the elapsed times of a completed game.
type Reporter interface {
	Report(ctx context.Context, sessionID uuid.UUID, times []float64) error
}

// Listener is called with a fresh snapshot after every state change.
// It runs while the controller lock is held, so it must not block or call
// back into the controller.
type Listener func(Snapshot)

// ClickResult describes what a floor click did.
type ClickResult struct {
	Hit     bool    `json:"hit"`
	Elapsed float64 `json:"elapsed,omitempty"`
}

// Controller runs the round state machine for one game session.
type Controller struct {
	id       uuid.UUID
	clock    clockwork.Clock
	rng      *rand.Rand
	reporter Reporter
	layouts  []Layout

	mu           sync.Mutex
	state        State
	session      Session
	pending      clockwork.Timer
	pendingGen   uint64
	listeners    []Listener
	version      uint64
	lastActivity time.Time
	closed       bool
}

// NewController creates an idle game session.
func NewController(id uuid.UUID, clock clockwork.Clock, rng *rand.Rand, reporter Reporter) *Controller {
	return &Controller{
		id:           id,
		clock:        clock,
		rng:          rng,
		reporter:     reporter,
		layouts:      GenerateLayouts(),
		state:        StateIdle,
		session:      newSession(),
		lastActivity: clock.Now(),
	}
}

// ID returns the session id.
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// Subscribe registers a listener for state changes.
func (c *Controller) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// LastActivity returns when the session last changed or was touched.
func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

// Touch records client activity that did not change the state.
func (c *Controller) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActivity = c.clock.Now()
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// RequestTarget picks a new target floor from the current layout.
// When every layout has been played the game finishes instead.
func (c *Controller) RequestTarget() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked("request target", StateIdle); err != nil {
		return c.snapshotLocked(), err
	}

	err := c.requestTargetLocked()
	c.changedLocked()
	return c.snapshotLocked(), err
}

// ConfirmStart starts the timer for the shown target.
func (c *Controller) ConfirmStart() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked("confirm start", StateTargetShown); err != nil {
		return c.snapshotLocked(), err
	}

	now := c.clock.Now()
	c.session.StartedAt = &now
	c.session.UsedFloors[*c.session.TargetFloor] = struct{}{}
	c.state = StateActive

	log.Debug().
		Str("session_id", c.id.String()).
		Int("layout_index", c.session.LayoutIndex).
		Int("target_floor", *c.session.TargetFloor).
		Msg("round started")

	c.changedLocked()
	return c.snapshotLocked(), nil
}

// ClickFloor handles a press on one of the floor buttons. Presses on anything
// but the target leave the session untouched.
func (c *Controller) ClickFloor(floor int) (ClickResult, Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked("click floor", StateActive); err != nil {
		return ClickResult{}, c.snapshotLocked(), err
	}
	if !c.layouts[c.session.LayoutIndex].Contains(floor) {
		return ClickResult{}, c.snapshotLocked(), fmt.Errorf("%w: %d", ErrFloorOutOfLayout, floor)
	}
	if floor != *c.session.TargetFloor {
		return ClickResult{Hit: false}, c.snapshotLocked(), nil
	}

	elapsed := c.clock.Now().Sub(*c.session.StartedAt).Seconds()
	c.session.ElapsedTimes = append(c.session.ElapsedTimes, elapsed)
	c.state = StateRoundCleared

	log.Info().
		Str("session_id", c.id.String()).
		Int("layout_index", c.session.LayoutIndex).
		Int("floor", floor).
		Float64("elapsed_sec", elapsed).
		Msg("round cleared")

	if c.session.LayoutIndex >= len(c.layouts)-1 {
		c.scheduleLocked(c.finishLocked)
	} else {
		c.scheduleLocked(c.advanceLocked)
	}

	c.changedLocked()
	return ClickResult{Hit: true, Elapsed: elapsed}, c.snapshotLocked(), nil
}

// Restart sends the finished game's times to the reporter and starts over
// from the first layout.
func (c *Controller) Restart() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked("restart", StateFinished); err != nil {
		return c.snapshotLocked(), err
	}

	times := append([]float64(nil), c.session.ElapsedTimes...)
	go c.report(times)

	c.cancelPendingLocked()
	c.session = newSession()
	c.state = StateIdle

	err := c.requestTargetLocked()
	c.changedLocked()
	return c.snapshotLocked(), err
}

// Close stops any pending transition. The controller rejects all actions afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelPendingLocked()
	c.closed = true
}

func (c *Controller) checkLocked(action string, want State) error {
	if c.closed {
		return ErrControllerClosed
	}
	if c.state != want {
		return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, c.state)
	}
	return nil
}

func (c *Controller) requestTargetLocked() error {
	if c.session.LayoutIndex >= len(c.layouts) {
		c.finishLocked()
		return nil
	}

	available := AvailableFloors(c.layouts[c.session.LayoutIndex], c.session.UsedFloors)
	floor, ok := PickFloor(available, c.rng)
	if !ok {
		// Nothing left to ask for; end the game rather than leave it without a target.
		c.finishLocked()
		return ErrTargetPoolExhausted
	}

	c.session.TargetFloor = &floor
	c.state = StateTargetShown
	return nil
}

func (c *Controller) advanceLocked() {
	c.session.LayoutIndex++
	c.session.clearRound()
	c.state = StateIdle

	if err := c.requestTargetLocked(); err != nil {
		log.Error().
			Err(err).
			Str("session_id", c.id.String()).
			Int("layout_index", c.session.LayoutIndex).
			Msg("failed to pick target for next layout")
	}
}

func (c *Controller) finishLocked() {
	c.session.TargetFloor = nil
	c.session.Finished = true
	c.state = StateFinished

	log.Info().
		Str("session_id", c.id.String()).
		Floats64("elapsed_times", c.session.ElapsedTimes).
		Msg("game finished")
}

// scheduleLocked runs fn after DisplayDelay unless the transition is cancelled first.
func (c *Controller) scheduleLocked(fn func()) {
	c.cancelPendingLocked()

	gen := c.pendingGen
	c.pending = c.clock.AfterFunc(DisplayDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		// A stop that raced with the timer firing leaves a stale callback behind.
		if c.closed || gen != c.pendingGen {
			return
		}
		c.pending = nil
		c.pendingGen++
		fn()
		c.changedLocked()
	})
}

func (c *Controller) cancelPendingLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.pendingGen++
}

func (c *Controller) changedLocked() {
	c.version++
	c.lastActivity = c.clock.Now()

	if len(c.listeners) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, l := range c.listeners {
		l(snap)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := c.session
	snap := Snapshot{
		SessionID:    c.id.String(),
		Version:      c.version,
		State:        c.state,
		LayoutIndex:  s.LayoutIndex,
		UsedFloors:   s.usedList(),
		ElapsedTimes: append([]float64{}, s.ElapsedTimes...),
		Results:      make([]string, 0, len(s.ElapsedTimes)),
		Finished:     s.Finished,
	}
	if s.LayoutIndex < len(c.layouts) {
		snap.Layout = append([]int(nil), c.layouts[s.LayoutIndex]...)
	}
	if s.TargetFloor != nil {
		target := *s.TargetFloor
		snap.TargetFloor = &target
	}
	if s.StartedAt != nil {
		started := *s.StartedAt
		snap.StartedAt = &started
	}
	for _, t := range s.ElapsedTimes {
		snap.Results = append(snap.Results, FormatElapsed(t))
	}
	return snap
}

func (c *Controller) report(times []float64) {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	if err := c.reporter.Report(ctx, c.id, times); err != nil {
		log.Error().
			Err(err).
			Str("session_id", c.id.String()).
			Msg("failed to report results")
		return
	}

	log.Info().
		Str("session_id", c.id.String()).
		Int("count", len(times)).
		Msg("results reported")
}
