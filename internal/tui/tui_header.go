package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/codefionn/gencalc/internal/calc"
	"github.com/codefionn/gencalc/internal/calculator"
)

var (
	// titleStyle is the style for the application title in the header
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginLeft(2)

	// statusStyle is the style for status indicators (model, pending, etc.)
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginLeft(2)

	// activeTabStyle is the style for the currently active mode tab
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("63")).
			Padding(0, 1)

	// inactiveTabStyle is the style for inactive mode tabs
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Padding(0, 1)

	radBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("39")).
			Padding(0, 1)

	degBadgeStyle = radBadgeStyle.
			Background(lipgloss.Color("214"))
)

// renderHeader renders the title, the mode tabs and the angle badge.
func (m *Model) renderHeader(state calculator.State) string {
	tabs := make([]string, 0, len(calculator.Modes()))
	for _, mode := range calculator.Modes() {
		if mode == state.Mode {
			tabs = append(tabs, activeTabStyle.Render(mode.Title()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(mode.Title()))
		}
	}

	badge := radBadgeStyle.Render("RAD")
	if state.Angle == calc.Degrees {
		badge = degBadgeStyle.Render("DEG")
	}

	row := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("gencalc"),
		"  ",
		lipgloss.JoinHorizontal(lipgloss.Center, tabs...),
		"  ",
		badge,
	)
	return row + "\n"
}
