// Package tui is a terminal chat client over a single local session.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/comigor/mindcare-go/internal/composer"
	"github.com/comigor/mindcare-go/internal/conversation"
	"github.com/comigor/mindcare-go/internal/logger"
	"github.com/comigor/mindcare-go/internal/resources"
)

// replyMsg carries the outcome of one exchange back into the update loop.
type replyMsg struct {
	exchange composer.Exchange
	err      error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	composer *composer.Composer

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	messages     []conversation.Message
	sending      bool
	showHelp     bool
	showCrisis   bool
	confirmClear bool
	err          error

	width  int
	height int
}

// New creates the chat model for c.
func New(c *composer.Composer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type your message..."
	ti.CharLimit = composer.MaxMessageLength
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		composer: c,
		input:    ti,
		viewport: vp,
		spinner:  sp,
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// refresh reloads the conversation snapshot and re-renders the viewport.
func (m *Model) refresh() {
	msgs, err := m.composer.Conversation().Messages(context.Background())
	if err != nil {
		logger.L.Error("load conversation failed", "error", err)
		m.err = err
		return
	}
	m.messages = msgs
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

// showQuickReplies mirrors the chat screen: offered only before the first exchange.
func (m Model) showQuickReplies() bool {
	return len(m.messages) == 1 && !m.sending
}

// sendCmd runs the exchange off the update loop.
func sendCmd(c *composer.Composer, text string) tea.Cmd {
	return func() tea.Msg {
		ex, err := c.Send(context.Background(), text)
		return replyMsg{exchange: ex, err: err}
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	return m.send(m.input.Value())
}

func (m Model) send(text string) (tea.Model, tea.Cmd) {
	text = strings.TrimSpace(text)
	if text == "" || m.sending || m.composer.Busy() {
		return m, nil
	}
	m.input.Reset()
	m.composer.SetDraft("")
	m.sending = true
	m.err = nil
	return m, tea.Batch(sendCmd(m.composer, text), m.spinner.Tick)
}

func (m Model) handleReply(msg replyMsg) Model {
	m.sending = false
	switch {
	case msg.err == nil:
	case errors.Is(msg.err, composer.ErrEmptyDraft), errors.Is(msg.err, composer.ErrBusy):
		// no-op submissions
	default:
		m.err = msg.err
	}
	m.refresh()
	return m
}

// quickReply returns the quick reply picked by a number key, if any is
// offered and the input is still empty.
func (m Model) quickReply(key string) (string, bool) {
	if !m.showQuickReplies() || m.input.Value() != "" || len(key) != 1 {
		return "", false
	}
	replies := resources.QuickReplies()
	i := int(key[0] - '1')
	if i < 0 || i >= len(replies) {
		return "", false
	}
	return replies[i], true
}
