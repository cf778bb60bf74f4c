package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comigor/mindcare-go/internal/composer"
	"github.com/comigor/mindcare-go/internal/conversation"
	"github.com/comigor/mindcare-go/internal/logger"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many live sessions")
)

// Session is one mounted chat screen.
type Session struct {
	ID        string
	CreatedAt time.Time
	Composer  *composer.Composer

	// guarded by Manager.mu
	lastActive time.Time
}

// Conversation returns the session's message sequence.
func (s *Session) Conversation() *conversation.Conversation { return s.Composer.Conversation() }

// Options bounds the live sessions. Zero values disable the matching limit.
type Options struct {
	// IdleTTL is how long a session may go untouched before Sweep closes it.
	IdleTTL time.Duration
	// MaxSessions caps the live sessions; Create fails beyond it.
	MaxSessions int
}

// Manager keeps the live sessions of the process in memory.
type Manager struct {
	store     conversation.Store
	responder composer.Responder
	opts      Options
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager whose sessions share store and responder.
func NewManager(store conversation.Store, responder composer.Responder, opts Options) *Manager {
	return &Manager{
		store:     store,
		responder: responder,
		opts:      opts,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Create mounts a new session seeded with the greeting. When the manager is
// full, idle sessions are swept first; ErrTooManySessions is returned if
// that frees nothing.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	if m.opts.MaxSessions > 0 && m.Len() >= m.opts.MaxSessions {
		m.Sweep(ctx)
		if m.Len() >= m.opts.MaxSessions {
			return nil, ErrTooManySessions
		}
	}

	id := uuid.NewString()
	conv, err := conversation.New(ctx, id, m.store)
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	s := &Session{
		ID:         id,
		CreatedAt:  now,
		Composer:   composer.New(conv, m.responder),
		lastActive: now,
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	logger.FromContext(ctx).Info("session created", "session", id)
	return s, nil
}

// Get retrieves a live session and marks it active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastActive = m.now().UTC()
	return s, nil
}

// Close unmounts a session and drops its messages. A reply still in flight
// is discarded.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	if err := m.unmount(ctx, s); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("session closed", "session", id)
	return nil
}

// Sweep closes every session idle for longer than IdleTTL and returns how
// many it closed. Sessions waiting on a reply are kept.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := m.now().UTC().Add(-m.opts.IdleTTL)

	var idle []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.lastActive.After(cutoff) || s.Composer.Busy() {
			continue
		}
		idle = append(idle, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range idle {
		if err := m.unmount(ctx, s); err != nil {
			logger.L.Error("failed to clear expired session", "session", s.ID, "error", err)
		}
	}
	if len(idle) > 0 {
		logger.L.Info("expired idle sessions", "count", len(idle))
	}
	return len(idle)
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.opts.IdleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) unmount(ctx context.Context, s *Session) error {
	s.Composer.Close()
	return m.store.Clear(ctx, s.ID)
}
