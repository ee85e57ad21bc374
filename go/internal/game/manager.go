package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Manager keeps the live game sessions of a server.
type Manager struct {
	clock    clockwork.Clock
	reporter Reporter
	ttl      time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Controller
	seeds    *rand.Rand
	hooks    EvictionHooks
}

// EvictionHooks lets the owner of a Manager take part in idle eviction.
type EvictionHooks struct {
	// InUse reports sessions that must be kept however long they have been idle.
	InUse func(id uuid.UUID) bool
	// Evicted runs after an idle session has been closed and removed.
	Evicted func(id uuid.UUID)
}

// NewManager creates an empty session registry. Sessions idle for longer than
// ttl are evicted by Run.
func NewManager(clock clockwork.Clock, reporter Reporter, ttl time.Duration) *Manager {
	return &Manager{
		clock:    clock,
		reporter: reporter,
		ttl:      ttl,
		sessions: make(map[uuid.UUID]*Controller),
		seeds:    rand.New(rand.NewSource(clock.Now().UnixNano())),
	}
}

// SetEvictionHooks installs the hooks used by EvictIdle.
func (m *Manager) SetEvictionHooks(h EvictionHooks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = h
}

// Touch marks a session as active without changing its state.
func (m *Manager) Touch(id uuid.UUID) {
	if c, err := m.Get(id); err == nil {
		c.Touch()
	}
}

// Create starts a new idle session.
func (m *Manager) Create() *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New()
	c := NewController(id, m.clock, rand.New(rand.NewSource(m.seeds.Int63())), m.reporter)
	m.sessions[id] = c

	log.Info().
		Str("session_id", id.String()).
		Int("active_sessions", len(m.sessions)).
		Msg("session created")

	return c
}

// Get looks up a session.
func (m *Manager) Get(id uuid.UUID) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Remove closes and forgets a session.
func (m *Manager) Remove(id uuid.UUID) error {
	m.mu.Lock()
	c, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	c.Close()

	log.Info().Str("session_id", id.String()).Msg("session removed")
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run evicts idle sessions until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	interval := m.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.Chan():
			m.EvictIdle()
		}
	}
}

// EvictIdle closes and removes every session idle for longer than the ttl
// that is not in use. It returns how many sessions were evicted.
func (m *Manager) EvictIdle() int {
	cutoff := m.clock.Now().Add(-m.ttl)

	m.mu.RLock()
	hooks := m.hooks
	var candidates []*Controller
	for _, c := range m.sessions {
		if c.LastActivity().Before(cutoff) {
			candidates = append(candidates, c)
		}
	}
	m.mu.RUnlock()

	var stale []*Controller
	for _, c := range candidates {
		if hooks.InUse != nil && hooks.InUse(c.ID()) {
			continue
		}
		stale = append(stale, c)
	}

	m.mu.Lock()
	evicted := stale[:0]
	for _, c := range stale {
		// The session may have been removed or touched since it was picked.
		if m.sessions[c.ID()] != c || !c.LastActivity().Before(cutoff) {
			continue
		}
		delete(m.sessions, c.ID())
		evicted = append(evicted, c)
	}
	m.mu.Unlock()

	for _, c := range evicted {
		c.Close()
		if hooks.Evicted != nil {
			hooks.Evicted(c.ID())
		}
		log.Info().Str("session_id", c.ID().String()).Msg("idle session evicted")
	}
	return len(evicted)
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, c := range m.sessions {
		c.Close()
		delete(m.sessions, id)
	}
}
