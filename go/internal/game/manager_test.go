package game

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CreateGetRemove(t *testing.T) {
	m := NewManager(clockwork.NewFakeClock(), newFakeReporter(), time.Hour)

	c := m.Create()
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, StateIdle, c.Snapshot().State)

	got, err := m.Get(c.ID())
	require.NoError(t, err)
	assert.Same(t, c, got)

	require.NoError(t, m.Remove(c.ID()))
	assert.Equal(t, 0, m.Count())

	_, err = m.Get(c.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Remove(c.ID()), ErrSessionNotFound)

	_, err = c.RequestTarget()
	assert.ErrorIs(t, err, ErrControllerClosed)
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager(clockwork.NewFakeClock(), newFakeReporter(), time.Hour)

	_, err := m.Get(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m := NewManager(clockwork.NewFakeClock(), newFakeReporter(), time.Hour)

	a, b := m.Create(), m.Create()
	assert.NotEqual(t, a.ID(), b.ID())

	_, err := a.RequestTarget()
	require.NoError(t, err)
	assert.Equal(t, StateTargetShown, a.Snapshot().State)
	assert.Equal(t, StateIdle, b.Snapshot().State)
}

func TestManager_EvictsIdleSessions(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewManager(clock, newFakeReporter(), time.Minute)

	stale := m.Create()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	clock.Advance(30 * time.Second)
	fresh := m.Create()
	clock.Advance(45 * time.Second)

	require.Eventually(t, func() bool { return m.Count() == 1 }, time.Second, 5*time.Millisecond)
	_, err := m.Get(stale.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh.ID())
	assert.NoError(t, err)

	cancel()
	<-done
	assert.Equal(t, 0, m.Count())
}

func TestManager_EvictIdleHooks(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewManager(clock, newFakeReporter(), time.Minute)

	busy, idle := m.Create(), m.Create()

	var evicted []uuid.UUID
	m.SetEvictionHooks(EvictionHooks{
		InUse:   func(id uuid.UUID) bool { return id == busy.ID() },
		Evicted: func(id uuid.UUID) { evicted = append(evicted, id) },
	})

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, m.EvictIdle())

	assert.Equal(t, []uuid.UUID{idle.ID()}, evicted)
	_, err := m.Get(busy.ID())
	assert.NoError(t, err)
	_, err = idle.RequestTarget()
	assert.ErrorIs(t, err, ErrControllerClosed)
}

func TestManager_TouchKeepsSessionAlive(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewManager(clock, newFakeReporter(), time.Minute)
	c := m.Create()

	clock.Advance(50 * time.Second)
	m.Touch(c.ID())
	m.Touch(uuid.New())
	clock.Advance(50 * time.Second)

	assert.Equal(t, 0, m.EvictIdle())
	assert.Equal(t, 1, m.Count())

	clock.Advance(time.Minute)
	assert.Equal(t, 1, m.EvictIdle())
	assert.Equal(t, 0, m.Count())
}
