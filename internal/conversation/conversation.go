package conversation

import (
	"context"
	"sync"
)

// Store holds the ordered messages of every session.
type Store interface {
	Append(ctx context.Context, sessionID string, msg Message) error
	List(ctx context.Context, sessionID string) ([]Message, error)
	Clear(ctx context.Context, sessionID string) error
}

// Conversation is the append-only message sequence of one session.
type Conversation struct {
	id    string
	store Store

	mu         sync.Mutex
	generation uint64
}

// New creates a conversation seeded with the greeting.
func New(ctx context.Context, id string, store Store) (*Conversation, error) {
	c := &Conversation{id: id, store: store}
	if err := c.seed(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// ID returns the session identifier the conversation is stored under.
func (c *Conversation) ID() string { return c.id }

func (c *Conversation) seed(ctx context.Context) error {
	if err := c.store.Clear(ctx, c.id); err != nil {
		return err
	}
	return c.store.Append(ctx, c.id, BotMessage(Greeting))
}

// Append adds msg to the end of the conversation.
func (c *Conversation) Append(ctx context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Append(ctx, c.id, msg)
}

// AppendIfGeneration appends msg only when no reset happened since gen was
// observed. It reports whether the message was appended.
func (c *Conversation) AppendIfGeneration(ctx context.Context, gen uint64, msg Message) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false, nil
	}
	if err := c.store.Append(ctx, c.id, msg); err != nil {
		return false, err
	}
	return true, nil
}

// Reset replaces the whole sequence with the single greeting.
func (c *Conversation) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.seed(ctx)
}

// Generation counts resets; see AppendIfGeneration.
func (c *Conversation) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Messages returns a snapshot of the sequence in insertion order.
func (c *Conversation) Messages(ctx context.Context) ([]Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.List(ctx, c.id)
}

// Len returns the number of messages.
func (c *Conversation) Len(ctx context.Context) (int, error) {
	msgs, err := c.Messages(ctx)
	if err != nil {
		return 0, err
	}
	return len(msgs), nil
}
