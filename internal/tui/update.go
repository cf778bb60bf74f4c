package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/comigor/mindcare-go/internal/logger"
)

// Update handles key presses, replies and resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-m.chromeHeight(), 3)
		m.input.Width = max(msg.Width-4, 10)
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case replyMsg:
		return m.handleReply(msg), nil

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// the user message is appended before the reply arrives
		m.refresh()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmClear {
		m.confirmClear = false
		if msg.String() == "y" || msg.String() == "Y" {
			if err := m.composer.Reset(context.Background()); err != nil {
				logger.L.Error("clear chat failed", "error", err)
				m.err = err
			}
			m.refresh()
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		m.composer.Close()
		return m, tea.Quit
	case "enter":
		return m.submit()
	case "ctrl+r":
		m.confirmClear = true
		return m, nil
	case "ctrl+h":
		m.showHelp = !m.showHelp
		return m, nil
	case "ctrl+t":
		m.showCrisis = !m.showCrisis
		return m, nil
	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if text, ok := m.quickReply(msg.String()); ok {
		return m.send(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.composer.SetDraft(m.input.Value())
	return m, cmd
}
