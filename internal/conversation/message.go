package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Greeting seeds every new or cleared conversation.
const Greeting = "Hello! I'm here to support your mental well-being. How can I help you today?"

// Message is one turn of a conversation. It is never mutated after creation.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage stamps a message with a fresh id and the current time.
func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now().UTC(),
	}
}

// UserMessage creates a message authored by the user.
func UserMessage(text string) Message { return NewMessage(SenderUser, text) }

// BotMessage creates a message authored by the assistant.
func BotMessage(text string) Message { return NewMessage(SenderBot, text) }
