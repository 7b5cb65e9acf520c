package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/codefionn/gencalc/internal/assistant"
	"github.com/muesli/reflow/wordwrap"
)

var (
	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	assistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)

const assistantGreeting = "Ask a math question, a word problem or an expression. Answers are rendered as Markdown."

// refreshTranscript re-renders the chat log into the viewport and scrolls to
// the newest entry.
func (m *Model) refreshTranscript() {
	entries := m.transcript.Entries()
	if len(entries) == 0 {
		m.viewport.SetContent(statusStyle.MarginLeft(0).Render(wordwrap.String(assistantGreeting, m.wrapWidth())))
		return
	}

	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderEntry(e))
		sb.WriteString("\n")
	}
	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderEntry(e assistant.Entry) string {
	switch e.Speaker {
	case assistant.SpeakerUser:
		return userLabelStyle.Render("You") + "\n" + wordwrap.String(e.Text, m.wrapWidth())
	case assistant.SpeakerError:
		return assistantLabelStyle.Render("Assistant") + "\n" + errorStyle.Render(wordwrap.String(e.Text, m.wrapWidth()))
	default:
		return assistantLabelStyle.Render("Assistant") + "\n" + m.renderMarkdown(e.Text)
	}
}

// renderMarkdown falls back to plain wrapped text until the glamour renderer
// has been created.
func (m *Model) renderMarkdown(text string) string {
	if m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return wordwrap.String(text, m.wrapWidth())
}

func (m *Model) wrapWidth() int {
	if m.viewport.Width < 20 {
		return 20
	}
	return m.viewport.Width
}

// renderAssistant renders the chat viewport above the input box.
func (m *Model) renderAssistant(width int) string {
	input := inputBoxStyle.Width(width - 2).Render(m.input.View())
	return m.viewport.View() + "\n" + input
}
