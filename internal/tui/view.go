package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/comigor/mindcare-go/internal/conversation"
	"github.com/comigor/mindcare-go/internal/resources"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("63")).Padding(0, 1)
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("236")).Background(lipgloss.Color("153")).Padding(0, 1)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// View renders the chat screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.helpPanel())
		b.WriteString("\n")
	}
	if m.showCrisis {
		b.WriteString(m.crisisPanel())
		b.WriteString("\n")
	}
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) header() string {
	return titleStyle.Render("MindCare Assistant") + "\n" +
		subtitleStyle.Render("I'm here to listen and support you 24/7")
}

func (m Model) helpPanel() string {
	lines := []string{"How to use the chat:"}
	for _, l := range resources.ChatHelp() {
		lines = append(lines, "• "+l)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) crisisPanel() string {
	lines := []string{alertStyle.Render("Need urgent help? तत्काल सहायता चाहिन्छ?")}
	for _, c := range resources.CrisisContacts() {
		line := fmt.Sprintf("%s: %s", c.Name, c.Number)
		if c.Detail != "" {
			line += " (" + c.Detail + ")"
		}
		lines = append(lines, line)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) footer() string {
	var b strings.Builder
	if m.showQuickReplies() {
		replies := resources.QuickReplies()
		numbered := make([]string, len(replies))
		for i, r := range replies {
			numbered[i] = fmt.Sprintf("%d %s", i+1, r)
		}
		b.WriteString(hintStyle.Render("Quick start: " + strings.Join(numbered, " · ")))
		b.WriteString("\n")
	}
	if m.sending {
		b.WriteString(m.spinner.View() + " " + hintStyle.Render("Assistant is typing..."))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(alertStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	if m.confirmClear {
		b.WriteString(alertStyle.Render("Are you sure you want to clear the chat history? (y/n)"))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter send · ctrl+r clear · ctrl+h help · ctrl+t crisis lines · esc quit"))
	return b.String()
}

// chromeHeight is the number of lines around the viewport.
func (m Model) chromeHeight() int {
	return lipgloss.Height(m.header()) + lipgloss.Height(m.footer()) + 2
}

func (m Model) renderMessages() string {
	width := max(m.width*4/5, 20)
	parts := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		parts = append(parts, renderMessage(msg, width, m.width))
	}
	return strings.Join(parts, "\n\n")
}

func renderMessage(msg conversation.Message, bubbleWidth, lineWidth int) string {
	stamp := msg.Timestamp.Local().Format("15:04")
	if msg.Sender == conversation.SenderUser {
		label := subtitleStyle.Render("You · " + stamp)
		block := lipgloss.JoinVertical(lipgloss.Right, label, bubble(userStyle, msg.Text, bubbleWidth))
		return lipgloss.PlaceHorizontal(lineWidth, lipgloss.Right, block)
	}
	label := subtitleStyle.Render("Assistant · " + stamp)
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble(botStyle, msg.Text, bubbleWidth))
}

// bubble wraps text to at most width columns, shrinking for short messages.
func bubble(style lipgloss.Style, text string, width int) string {
	inner := min(width-2, lipgloss.Width(text))
	return style.Render(lipgloss.NewStyle().Width(max(inner, 1)).Render(text))
}
