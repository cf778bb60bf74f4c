// Package composer owns the chat draft and runs one message exchange at a time.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/qmuntal/stateless"

	"github.com/comigor/mindcare-go/internal/conversation"
	"github.com/comigor/mindcare-go/internal/logger"
)

// FSM states
const (
	StateIdle    = "Idle"
	StateSending = "Sending"
)

// FSM triggers
const (
	TriggerSend   = "Send"
	TriggerSettle = "Settle"
)

// MaxMessageLength caps a submission, in characters.
const MaxMessageLength = 2000

var (
	ErrEmptyDraft = errors.New("message is empty")
	ErrTooLong    = fmt.Errorf("message is longer than %d characters", MaxMessageLength)
	ErrBusy       = errors.New("a message is already being sent")
	ErrClosed     = errors.New("composer is closed")
)

// Responder produces the bot message for a user utterance. It always returns
// a message; a non-nil error only describes why a fallback was used.
type Responder interface {
	Reply(ctx context.Context, text string) (conversation.Message, error)
}

// Exchange describes one accepted submission.
type Exchange struct {
	User  conversation.Message
	Reply conversation.Message
	// Failure is the gateway error when Reply is a fallback.
	Failure error
	// Discarded is set when the reply was dropped because the conversation
	// was reset or the composer closed while it was in flight.
	Discarded bool
}

// Composer drives Idle -> Sending -> Idle for a single conversation.
type Composer struct {
	conv      *conversation.Conversation
	responder Responder

	mu     sync.Mutex
	fsm    *stateless.StateMachine
	draft  string
	closed bool
}

// New creates a composer bound to conv.
func New(conv *conversation.Conversation, responder Responder) *Composer {
	fsm := stateless.NewStateMachine(StateIdle)
	fsm.Configure(StateIdle).
		Permit(TriggerSend, StateSending)
	fsm.Configure(StateSending).
		Permit(TriggerSettle, StateIdle)
	fsm.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		logger.L.Debug("composer transition", "session", conv.ID(), "from", t.Source, "to", t.Destination, "trigger", t.Trigger)
	})

	return &Composer{conv: conv, responder: responder, fsm: fsm}
}

// Conversation returns the conversation the composer appends to.
func (c *Composer) Conversation() *conversation.Conversation { return c.conv }

// SetDraft replaces the draft text.
func (c *Composer) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

// Draft returns the current draft text.
func (c *Composer) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Busy reports whether an exchange is in flight.
func (c *Composer) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.MustState() == StateSending
}

// Submit sends the draft. The draft is cleared once the user message is appended.
func (c *Composer) Submit(ctx context.Context) (Exchange, error) {
	return c.exchange(ctx, "", true)
}

// Send sends text directly, leaving the draft untouched.
func (c *Composer) Send(ctx context.Context, text string) (Exchange, error) {
	return c.exchange(ctx, text, false)
}

// Reset clears the conversation back to the greeting. A reply still in
// flight is discarded when it arrives.
func (c *Composer) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.Reset(ctx)
}

// Close unmounts the composer; later submissions fail with ErrClosed and an
// in-flight reply is discarded.
func (c *Composer) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Composer) exchange(ctx context.Context, text string, fromDraft bool) (Exchange, error) {
	user, gen, err := c.begin(ctx, text, fromDraft)
	if err != nil {
		return Exchange{}, err
	}

	// an accepted exchange always settles with a reply, even if the caller
	// goes away; only Reset and Close discard it
	detached := context.WithoutCancel(ctx)
	reply, failure := c.responder.Reply(detached, user.Text)

	appended, err := c.settle(detached, gen, reply)
	ex := Exchange{User: user, Reply: reply, Failure: failure, Discarded: !appended}
	if ex.Discarded && err == nil {
		logger.FromContext(ctx).Info("reply discarded", "session", c.conv.ID(), "message", reply.ID)
	}
	return ex, err
}

// begin validates the text, moves to Sending and appends the user message.
func (c *Composer) begin(ctx context.Context, text string, fromDraft bool) (conversation.Message, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fromDraft {
		text = c.draft
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return conversation.Message{}, 0, ErrEmptyDraft
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return conversation.Message{}, 0, ErrTooLong
	}
	if c.closed {
		return conversation.Message{}, 0, ErrClosed
	}
	if ok, _ := c.fsm.CanFire(TriggerSend); !ok {
		return conversation.Message{}, 0, ErrBusy
	}
	if err := c.fsm.FireCtx(ctx, TriggerSend); err != nil {
		return conversation.Message{}, 0, fmt.Errorf("composer: %w", err)
	}

	user := conversation.UserMessage(text)
	if err := c.conv.Append(ctx, user); err != nil {
		c.fireSettle(ctx)
		return conversation.Message{}, 0, fmt.Errorf("append user message: %w", err)
	}
	if fromDraft {
		c.draft = ""
	}
	return user, c.conv.Generation(), nil
}

// settle appends reply unless the composer closed or the conversation was
// reset since gen, then returns to Idle.
func (c *Composer) settle(ctx context.Context, gen uint64, reply conversation.Message) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.fireSettle(ctx)

	if c.closed {
		return false, nil
	}
	appended, err := c.conv.AppendIfGeneration(ctx, gen, reply)
	if err != nil {
		return false, fmt.Errorf("append reply: %w", err)
	}
	return appended, nil
}

func (c *Composer) fireSettle(ctx context.Context) {
	if err := c.fsm.FireCtx(ctx, TriggerSettle); err != nil {
		logger.L.Error("composer settle failed", "session", c.conv.ID(), "error", err)
	}
}
