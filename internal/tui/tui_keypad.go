package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/codefionn/gencalc/internal/calculator"
	"github.com/codefionn/gencalc/internal/keypad"
)

const cellWidth = 7

var (
	displayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	expressionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	resultStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	errorResultStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196"))

	keyStyles = map[keypad.Type]lipgloss.Style{
		keypad.TypeNumber:   lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("236")),
		keypad.TypeOperator: lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("60")),
		keypad.TypeAction:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")),
		keypad.TypeFunction: lipgloss.NewStyle().Foreground(lipgloss.Color("159")).Background(lipgloss.Color("24")),
	}
)

// renderDisplay renders the expression line above the result line. The
// expression is right-aligned like a pocket calculator.
func renderDisplay(state calculator.State, width int) string {
	inner := width - 4
	if inner < 10 {
		inner = 10
	}

	expr := state.Expression
	if expr == "" && state.Result == "" {
		expr = "0"
	}
	exprLine := expressionStyle.Width(inner).Align(lipgloss.Right).Render(tail(expr, inner))

	style := resultStyle
	if state.HasError() {
		style = errorResultStyle
	}
	resultLine := style.Width(inner).Align(lipgloss.Right).Render(tail(state.Result, inner))

	return displayStyle.Width(inner + 2).Render(exprLine + "\n" + resultLine)
}

// tail keeps the last width runes so the cursor end stays visible.
func tail(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return "…" + string(r[len(r)-width+1:])
}

// renderKeypad draws the buttons for mode as a grid.
func renderKeypad(mode calculator.Mode) string {
	var layouts [][]keypad.Button
	if mode == calculator.ModeScientific {
		layouts = append(layouts, keypad.ScientificKeys())
	}
	layouts = append(layouts, keypad.StandardKeys())

	var lines []string
	for _, keys := range layouts {
		for _, row := range keypad.Rows(keys) {
			cells := make([]string, 0, len(row))
			for _, b := range row {
				w := b.Width()*cellWidth + (b.Width() - 1)
				cells = append(cells, keyStyles[b.Type].Width(w).Align(lipgloss.Center).Render(b.Label))
			}
			lines = append(lines, strings.Join(cells, " "))
		}
	}
	return strings.Join(lines, "\n")
}
