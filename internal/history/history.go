// Package history provides conversation stores.
// Both stores live only as long as the process: MemoryStore keeps a slice per
// session and SQLiteStore uses an in-process ":memory:" database.
package history

import (
	"context"
	"sync"

	"github.com/comigor/mindcare-go/internal/conversation"
)

// MemoryStore keeps messages in a slice per session.
type MemoryStore struct {
	mu       sync.RWMutex
	messages map[string][]conversation.Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[string][]conversation.Message)}
}

// Append adds msg to the end of the session's sequence.
func (s *MemoryStore) Append(_ context.Context, sessionID string, msg conversation.Message) error {
	s.mu.Lock()
	s.messages[sessionID] = append(s.messages[sessionID], msg)
	s.mu.Unlock()
	return nil
}

// List returns a copy of the session's messages in insertion order.
func (s *MemoryStore) List(_ context.Context, sessionID string) ([]conversation.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[sessionID]
	out := make([]conversation.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Clear drops every message of the session.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.messages, sessionID)
	s.mu.Unlock()
	return nil
}
