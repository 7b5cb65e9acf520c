package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/codefionn/gencalc/internal/history"
	"github.com/muesli/reflow/truncate"
)

var (
	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("238")).
			PaddingLeft(1)

	sidebarTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170"))

	historyItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	historyAIStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141"))

	historySelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("63"))
)

// renderSidebar lists history entries newest first, truncated to the sidebar
// width. Each entry takes two lines.
func (m *Model) renderSidebar(items []history.Item, height int) string {
	inner := uint(sidebarWidth - 3)

	var sb strings.Builder
	sb.WriteString(sidebarTitleStyle.Render("History"))
	sb.WriteString("\n")

	if len(items) == 0 {
		sb.WriteString(statusStyle.MarginLeft(0).Render("No calculations yet"))
		return sidebarStyle.Height(height).Render(sb.String())
	}

	maxItems := (height - 1) / 2
	if maxItems < 1 {
		maxItems = 1
	}
	start := 0
	if m.historyFocus && m.historyCursor >= maxItems {
		start = m.historyCursor - maxItems + 1
	}

	for i := start; i < len(items) && i < start+maxItems; i++ {
		item := items[i]
		first := truncate.StringWithTail(item.Expression, inner, "…")
		second := truncate.StringWithTail("= "+item.Result, inner, "…")
		style := historyItemStyle
		if item.Kind == history.KindAI {
			first = truncate.StringWithTail("✦ "+item.Expression, inner, "…")
			style = historyAIStyle
		}
		if m.historyFocus && i == m.historyCursor {
			style = historySelectedStyle
		}
		sb.WriteString(style.Render(first))
		sb.WriteString("\n")
		sb.WriteString(statusStyle.MarginLeft(0).Render(second))
		sb.WriteString("\n")
	}

	return sidebarStyle.Height(height).Render(strings.TrimRight(sb.String(), "\n"))
}
