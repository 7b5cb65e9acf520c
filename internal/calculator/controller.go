// Package calculator holds the keypad-driven state machine that sits between
// the user interface and the evaluator.
package calculator

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/codefionn/gencalc/internal/calc"
	"github.com/codefionn/gencalc/internal/history"
	"github.com/codefionn/gencalc/internal/keypad"
	"github.com/codefionn/gencalc/internal/logger"
)

// State is an immutable view of the controller used for rendering.
type State struct {
	Expression string
	Result     string
	Angle      calc.AngleMode
	Mode       Mode
	History    []history.Item
}

// HasError reports whether the displayed result is the error sentinel.
func (s State) HasError() bool {
	return s.Result == calc.ErrorResult
}

// Controller turns key presses into an expression, evaluates it on "=" and
// records successful results.
type Controller struct {
	mu         sync.Mutex
	expression string
	result     string
	angle      calc.AngleMode
	mode       Mode
	history    *history.Store
	log        *logger.Logger
}

// New creates a controller recording into store. A nil store gets a fresh
// one with the default limit.
func New(store *history.Store, angle calc.AngleMode, mode Mode) *Controller {
	if store == nil {
		store = history.New(history.DefaultLimit)
	}
	return &Controller{
		angle:   angle,
		mode:    mode,
		history: store,
		log:     logger.Global().WithPrefix("calculator"),
	}
}

// History returns the store the controller records into.
func (c *Controller) History() *history.Store {
	return c.history
}

// PressButton is a convenience for Press(b.Value, b.Type).
func (c *Controller) PressButton(b keypad.Button) {
	c.Press(b.Value, b.Type)
}

// Press applies a single keypad event.
func (c *Controller) Press(value string, typ keypad.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if typ == keypad.TypeAction {
		c.applyAction(value)
		return
	}

	showingResult := c.result != "" && c.expression == ""
	if showingResult && c.result != calc.ErrorResult &&
		(typ == keypad.TypeOperator || typ == keypad.TypeFunction) {
		c.expression = c.result + value
		c.result = ""
		return
	}
	if showingResult {
		c.result = ""
	}
	c.expression += value
}

func (c *Controller) applyAction(action string) {
	switch action {
	case keypad.ActionClear:
		c.expression = ""
		c.result = ""
	case keypad.ActionEvaluate:
		c.evaluate()
	case keypad.ActionToggleRad:
		c.angle = c.angle.Toggle()
	case keypad.ActionBackspace:
		if c.expression == "" {
			return
		}
		_, size := utf8.DecodeLastRuneInString(c.expression)
		c.expression = c.expression[:len(c.expression)-size]
	default:
		c.log.Warn("ignoring unknown action %q", action)
	}
}

func (c *Controller) evaluate() {
	if strings.TrimSpace(c.expression) == "" {
		return
	}
	res := calc.Run(c.expression, c.angle)
	c.result = res.Text
	if !res.OK() {
		c.log.Debug("evaluate %q (%s): %v", c.expression, c.angle, res.Err)
		return
	}
	c.history.AddCalculation(c.expression, res.Text)
}

// SetExpression replaces the pending expression, clearing any displayed result.
func (c *Controller) SetExpression(expr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expression = expr
	c.result = ""
}

// SelectHistory restores a calculation entry into the display. Assistant
// entries are ignored.
func (c *Controller) SelectHistory(item history.Item) bool {
	if item.Kind != history.KindCalculation {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expression = item.Expression
	c.result = item.Result
	return true
}

// RecordAI records an assistant query in the history.
func (c *Controller) RecordAI(query string) history.Item {
	return c.history.AddAI(query)
}

// ClearHistory empties the history store.
func (c *Controller) ClearHistory() {
	c.history.Clear()
}

// SetMode switches the active panel.
func (c *Controller) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

// CycleMode advances to the next panel and returns it.
func (c *Controller) CycleMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = c.mode.Next()
	return c.mode
}

// SetAngle sets the angle mode.
func (c *Controller) SetAngle(a calc.AngleMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.angle = a
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Expression: c.expression,
		Result:     c.result,
		Angle:      c.angle,
		Mode:       c.mode,
		History:    c.history.Items(),
	}
}
