package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/codefionn/gencalc/internal/calculator"
)

var footerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("241")).
	MarginLeft(2)

// View implements tea.Model.
func (m *Model) View() string {
	state := m.ctrl.Snapshot()
	width := m.mainWidth()

	var body string
	if state.Mode == calculator.ModeAI {
		body = m.renderAssistant(width - 2)
	} else {
		body = renderDisplay(state, keypadWidth()) + "\n" + renderKeypad(state.Mode)
	}
	body = lipgloss.NewStyle().MarginLeft(2).Width(width - 2).Render(body)

	if m.sidebarVisible() {
		height := m.height - 3
		if h := lipgloss.Height(body); h > height {
			height = h
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSidebar(state.History, height))
	}

	return m.renderHeader(state) + "\n" + body + "\n" + m.renderFooter(state)
}

func keypadWidth() int {
	return 4*cellWidth + 3
}

func (m *Model) renderFooter(state calculator.State) string {
	if m.pending > 0 {
		indicator := "…"
		if !m.animationsDisabled {
			indicator = m.spinner.View()
		}
		return footerStyle.Render(fmt.Sprintf("%s Thinking (%d pending)", indicator, m.pending))
	}
	if m.status != "" {
		return footerStyle.Render(m.status)
	}

	help := "tab mode • ctrl+r rad/deg • ctrl+h history • ctrl+l clear history • ctrl+c quit"
	switch {
	case m.historyFocus:
		help = "↑/↓ select • enter restore • esc back"
	case state.Mode == calculator.ModeAI:
		if model := m.solver.Model(); model != "" {
			help = fmt.Sprintf("enter ask • esc clear • %s • %s", model, help)
		} else {
			help = "enter ask • esc clear • " + help
		}
	default:
		help = "enter = • esc clear • y copy • " + help
	}
	return footerStyle.Render(help)
}
