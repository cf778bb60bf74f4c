package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comigor/mindcare-go/internal/composer"
	"github.com/comigor/mindcare-go/internal/conversation"
	"github.com/comigor/mindcare-go/internal/history"
)

type echoResponder struct{}

func (echoResponder) Reply(_ context.Context, text string) (conversation.Message, error) {
	return conversation.BotMessage("echo: " + text), nil
}

func TestManager_CreateGetClose(t *testing.T) {
	ctx := context.Background()
	store := history.NewMemoryStore()
	m := NewManager(store, echoResponder{}, Options{})

	s, err := m.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	require.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	require.Same(t, s, got)

	_, err = s.Composer.Send(ctx, "hi")
	require.NoError(t, err)
	n, err := s.Conversation().Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.NoError(t, m.Close(ctx, s.ID))
	_, err = m.Get(s.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, m.Close(ctx, s.ID), ErrSessionNotFound)

	msgs, err := store.List(ctx, s.ID)
	require.NoError(t, err)
	require.Empty(t, msgs)

	_, err = s.Composer.Send(ctx, "after close")
	require.ErrorIs(t, err, composer.ErrClosed)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	sqlite, err := history.OpenSQLite(ctx)
	require.NoError(t, err)
	defer sqlite.Close()
	m := NewManager(sqlite, echoResponder{}, Options{})

	a, err := m.Create(ctx)
	require.NoError(t, err)
	b, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = a.Composer.Send(ctx, "only in a")
	require.NoError(t, err)

	na, err := a.Conversation().Len(ctx)
	require.NoError(t, err)
	nb, err := b.Conversation().Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, na)
	require.Equal(t, 1, nb)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClockedManager(store conversation.Store, r composer.Responder, opts Options) (*Manager, *clock) {
	c := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(store, r, opts)
	m.now = c.Now
	return m, c
}

func TestManager_SweepClosesIdleSessions(t *testing.T) {
	ctx := context.Background()
	store := history.NewMemoryStore()
	m, clk := newClockedManager(store, echoResponder{}, Options{IdleTTL: 30 * time.Minute})

	idle, err := m.Create(ctx)
	require.NoError(t, err)
	active, err := m.Create(ctx)
	require.NoError(t, err)

	clk.Advance(20 * time.Minute)
	_, err = m.Get(active.ID)
	require.NoError(t, err)
	require.Zero(t, m.Sweep(ctx))

	clk.Advance(15 * time.Minute)
	require.Equal(t, 1, m.Sweep(ctx))
	require.Equal(t, 1, m.Len())

	_, err = m.Get(idle.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	msgs, err := store.List(ctx, idle.ID)
	require.NoError(t, err)
	require.Empty(t, msgs)
	_, err = idle.Composer.Send(ctx, "too late")
	require.ErrorIs(t, err, composer.ErrClosed)

	_, err = m.Get(active.ID)
	require.NoError(t, err)
}

type gatedResponder struct {
	started chan struct{}
	release chan struct{}
}

func (g gatedResponder) Reply(_ context.Context, text string) (conversation.Message, error) {
	g.started <- struct{}{}
	<-g.release
	return conversation.BotMessage("echo: " + text), nil
}

func TestManager_SweepKeepsBusySessions(t *testing.T) {
	ctx := context.Background()
	r := gatedResponder{started: make(chan struct{}), release: make(chan struct{})}
	m, clk := newClockedManager(history.NewMemoryStore(), r, Options{IdleTTL: time.Minute})

	s, err := m.Create(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Composer.Send(ctx, "slow question")
	}()
	<-r.started

	clk.Advance(time.Hour)
	require.Zero(t, m.Sweep(ctx))
	require.Equal(t, 1, m.Len())

	close(r.release)
	<-done
	require.Equal(t, 1, m.Sweep(ctx))
	require.Zero(t, m.Len())
}

func TestManager_SweepDisabledWithoutTTL(t *testing.T) {
	ctx := context.Background()
	m, clk := newClockedManager(history.NewMemoryStore(), echoResponder{}, Options{})

	_, err := m.Create(ctx)
	require.NoError(t, err)
	clk.Advance(24 * time.Hour)
	require.Zero(t, m.Sweep(ctx))
	require.Equal(t, 1, m.Len())
}

func TestManager_MaxSessions(t *testing.T) {
	ctx := context.Background()
	m, clk := newClockedManager(history.NewMemoryStore(), echoResponder{}, Options{IdleTTL: 10 * time.Minute, MaxSessions: 2})

	_, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.Create(ctx)
	require.NoError(t, err)

	_, err = m.Create(ctx)
	require.ErrorIs(t, err, ErrTooManySessions)
	require.Equal(t, 2, m.Len())

	// once both are idle, a new session evicts them
	clk.Advance(11 * time.Minute)
	_, err = m.Create(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())
}

func TestManager_RunSweepsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m, clk := newClockedManager(history.NewMemoryStore(), echoResponder{}, Options{IdleTTL: time.Minute})

	_, err := m.Create(ctx)
	require.NoError(t, err)
	clk.Advance(2 * time.Minute)

	done := make(chan struct{})
	go func() {
		m.Run(ctx, 5*time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
