// Package keypad describes the calculator buttons and maps keyboard input
// onto them.
package keypad

import "strings"

// Type is the role of a button, which decides how the controller treats its value.
type Type string

const (
	TypeNumber   Type = "number"
	TypeOperator Type = "operator"
	TypeAction   Type = "action"
	TypeFunction Type = "function"
)

// Action values carried by buttons of TypeAction.
const (
	ActionClear     = "clear"
	ActionEvaluate  = "="
	ActionToggleRad = "toggle_rad"
	ActionBackspace = "backspace"
)

// Button is a single keypad key. Label is what is drawn, Value is what is
// appended to the expression (or the action name).
type Button struct {
	Label string
	Value string
	Type  Type
	// Span is the number of grid columns the button occupies
	Span int
}

// Columns is the width of every keypad grid.
const Columns = 4

var standardKeys = []Button{
	{Label: "C", Value: ActionClear, Type: TypeAction},
	{Label: "(", Value: "(", Type: TypeOperator},
	{Label: ")", Value: ")", Type: TypeOperator},
	{Label: "÷", Value: "/", Type: TypeOperator},

	{Label: "7", Value: "7", Type: TypeNumber},
	{Label: "8", Value: "8", Type: TypeNumber},
	{Label: "9", Value: "9", Type: TypeNumber},
	{Label: "×", Value: "*", Type: TypeOperator},

	{Label: "4", Value: "4", Type: TypeNumber},
	{Label: "5", Value: "5", Type: TypeNumber},
	{Label: "6", Value: "6", Type: TypeNumber},
	{Label: "-", Value: "-", Type: TypeOperator},

	{Label: "1", Value: "1", Type: TypeNumber},
	{Label: "2", Value: "2", Type: TypeNumber},
	{Label: "3", Value: "3", Type: TypeNumber},
	{Label: "+", Value: "+", Type: TypeOperator},

	{Label: "0", Value: "0", Type: TypeNumber, Span: 2},
	{Label: ".", Value: ".", Type: TypeNumber},
	{Label: "=", Value: ActionEvaluate, Type: TypeAction},
}

var scientificKeys = []Button{
	{Label: "sin", Value: "sin(", Type: TypeFunction},
	{Label: "cos", Value: "cos(", Type: TypeFunction},
	{Label: "tan", Value: "tan(", Type: TypeFunction},
	{Label: "deg", Value: ActionToggleRad, Type: TypeAction},

	{Label: "ln", Value: "log(", Type: TypeFunction},
	{Label: "log", Value: "log10(", Type: TypeFunction},
	{Label: "√", Value: "sqrt(", Type: TypeFunction},
	{Label: "^", Value: "^", Type: TypeOperator},

	{Label: "π", Value: "pi", Type: TypeNumber},
	{Label: "e", Value: "e", Type: TypeNumber},
	{Label: "abs", Value: "abs(", Type: TypeFunction},
	{Label: "mod", Value: "%", Type: TypeOperator},
}

// StandardKeys returns the arithmetic keypad in row-major order.
func StandardKeys() []Button {
	return clone(standardKeys)
}

// ScientificKeys returns the function keypad shown above the standard one
// in scientific mode.
func ScientificKeys() []Button {
	return clone(scientificKeys)
}

func clone(in []Button) []Button {
	out := make([]Button, len(in))
	copy(out, in)
	return out
}

// Width returns the number of columns b occupies.
func (b Button) Width() int {
	if b.Span < 1 {
		return 1
	}
	return b.Span
}

// Rows splits a layout into grid rows of Columns cells, honoring spans.
func Rows(keys []Button) [][]Button {
	var rows [][]Button
	var row []Button
	used := 0
	for _, k := range keys {
		if used+k.Width() > Columns && len(row) > 0 {
			rows = append(rows, row)
			row, used = nil, 0
		}
		row = append(row, k)
		used += k.Width()
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// keyAliases maps typed keys that differ from any button label.
var keyAliases = map[string]Button{
	"*":         {Label: "×", Value: "*", Type: TypeOperator},
	"/":         {Label: "÷", Value: "/", Type: TypeOperator},
	"%":         {Label: "mod", Value: "%", Type: TypeOperator},
	"enter":     {Label: "=", Value: ActionEvaluate, Type: TypeAction},
	"esc":       {Label: "C", Value: ActionClear, Type: TypeAction},
	"backspace": {Label: "⌫", Value: ActionBackspace, Type: TypeAction},
	"p":         {Label: "π", Value: "pi", Type: TypeNumber},
	"s":         {Label: "sin", Value: "sin(", Type: TypeFunction},
	"o":         {Label: "cos", Value: "cos(", Type: TypeFunction},
	"t":         {Label: "tan", Value: "tan(", Type: TypeFunction},
	"l":         {Label: "ln", Value: "log(", Type: TypeFunction},
	"g":         {Label: "log", Value: "log10(", Type: TypeFunction},
	"r":         {Label: "√", Value: "sqrt(", Type: TypeFunction},
	"a":         {Label: "abs", Value: "abs(", Type: TypeFunction},
	"d":         {Label: "deg", Value: ActionToggleRad, Type: TypeAction},
}

// Lookup resolves a key name (as reported by the terminal) or a button label
// to a button. Labels are matched case-insensitively after the aliases.
func Lookup(key string) (Button, bool) {
	if b, ok := keyAliases[key]; ok {
		return b, true
	}
	for _, layout := range [][]Button{standardKeys, scientificKeys} {
		for _, b := range layout {
			if b.Label == key || strings.EqualFold(b.Label, key) {
				return b, true
			}
		}
	}
	return Button{}, false
}
