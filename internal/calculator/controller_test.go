package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/gencalc/internal/calc"
	"github.com/codefionn/gencalc/internal/history"
	"github.com/codefionn/gencalc/internal/keypad"
)

func press(c *Controller, keys ...string) {
	for _, k := range keys {
		b, ok := keypad.Lookup(k)
		if !ok {
			panic("no button for " + k)
		}
		c.PressButton(b)
	}
}

func newController() *Controller {
	return New(history.New(history.DefaultLimit), calc.Radians, ModeStandard)
}

func TestEvaluateRecordsHistory(t *testing.T) {
	c := newController()
	press(c, "2", "+", "3", "*", "4", "=")

	s := c.Snapshot()
	assert.Equal(t, "14", s.Result)
	assert.Equal(t, "2+3*4", s.Expression)
	require.Len(t, s.History, 1)
	assert.Equal(t, "2+3*4", s.History[0].Expression)
	assert.Equal(t, "14", s.History[0].Result)
	assert.Equal(t, history.KindCalculation, s.History[0].Kind)
}

func TestEvaluateEmptyIsNoop(t *testing.T) {
	c := newController()
	press(c, "=")

	s := c.Snapshot()
	assert.Empty(t, s.Result)
	assert.Empty(t, s.History)
}

func TestErrorKeepsExpressionAndSkipsHistory(t *testing.T) {
	c := newController()
	press(c, "1", "/", "0", "=")

	s := c.Snapshot()
	assert.True(t, s.HasError())
	assert.Equal(t, "1/0", s.Expression)
	assert.Empty(t, s.History)

	press(c, "backspace", "2", "=")
	s = c.Snapshot()
	assert.Equal(t, "0.5", s.Result)
	assert.Len(t, s.History, 1)
}

func TestEvaluateAgainRepeatsCalculation(t *testing.T) {
	c := newController()
	press(c, "2", "+", "2", "=", "=")

	s := c.Snapshot()
	assert.Equal(t, "2+2", s.Expression)
	assert.Equal(t, "4", s.Result)
	assert.Len(t, s.History, 2)
}

func TestTypingAfterResultExtendsExpression(t *testing.T) {
	c := newController()
	press(c, "6", "*", "7", "=", "+", "1")

	s := c.Snapshot()
	assert.Equal(t, "6*7+1", s.Expression)
	assert.Equal(t, "42", s.Result)

	press(c, "=")
	assert.Equal(t, "43", c.Snapshot().Result)
}

func TestContinueFromResult(t *testing.T) {
	c := newController()
	press(c, "6", "*", "7", "=", "backspace", "backspace", "backspace", "+", "1")

	s := c.Snapshot()
	assert.Equal(t, "42+1", s.Expression)
	assert.Empty(t, s.Result)

	press(c, "=")
	assert.Equal(t, "43", c.Snapshot().Result)
}

func TestFunctionContinuesFromResult(t *testing.T) {
	c := newController()
	press(c, "1", "6", "=", "backspace", "backspace")
	c.Press("sqrt(", keypad.TypeFunction)

	assert.Equal(t, "16sqrt(", c.Snapshot().Expression)
}

func TestNumberStartsFresh(t *testing.T) {
	c := newController()
	press(c, "6", "*", "7", "=", "backspace", "backspace", "backspace", "5")

	s := c.Snapshot()
	assert.Equal(t, "5", s.Expression)
	assert.Empty(t, s.Result)
}

func TestErrorResultIsNotContinued(t *testing.T) {
	c := newController()
	press(c, "5", "/", "0", "=", "backspace", "backspace", "backspace", "+")

	s := c.Snapshot()
	assert.Equal(t, "+", s.Expression)
	assert.Empty(t, s.Result)
}

func TestClear(t *testing.T) {
	c := newController()
	press(c, "1", "+", "1", "=", "c")

	s := c.Snapshot()
	assert.Empty(t, s.Expression)
	assert.Empty(t, s.Result)
	assert.Len(t, s.History, 1)
}

func TestToggleRad(t *testing.T) {
	c := newController()
	c.Press("sin(", keypad.TypeFunction)
	press(c, "9", "0", ")", "d", "=")

	s := c.Snapshot()
	assert.Equal(t, calc.Degrees, s.Angle)
	assert.Equal(t, "1", s.Result)
}

func TestBackspaceRemovesRune(t *testing.T) {
	c := newController()
	c.SetExpression("2×3")
	press(c, "backspace")
	assert.Equal(t, "2×", c.Snapshot().Expression)

	press(c, "backspace")
	assert.Equal(t, "2", c.Snapshot().Expression)

	press(c, "backspace", "backspace")
	assert.Empty(t, c.Snapshot().Expression)
}

func TestSelectHistory(t *testing.T) {
	c := newController()
	press(c, "9", "-", "4", "=")
	item := c.Snapshot().History[0]
	press(c, "c")

	assert.True(t, c.SelectHistory(item))
	s := c.Snapshot()
	assert.Equal(t, "9-4", s.Expression)
	assert.Equal(t, "5", s.Result)

	ai := c.RecordAI("how many legs do 3 spiders have?")
	assert.False(t, c.SelectHistory(ai))
	assert.Equal(t, "9-4", c.Snapshot().Expression)
}

func TestRecordAIAndClearHistory(t *testing.T) {
	c := newController()
	c.RecordAI("area of a circle with r=2")

	items := c.Snapshot().History
	require.Len(t, items, 1)
	assert.Equal(t, history.AIResult, items[0].Result)

	c.ClearHistory()
	assert.Empty(t, c.Snapshot().History)
}

func TestHistoryCappedAtLimit(t *testing.T) {
	c := newController()
	for i := 0; i < history.DefaultLimit+5; i++ {
		press(c, "1", "+", "1", "=")
	}
	assert.Len(t, c.Snapshot().History, history.DefaultLimit)
}

func TestNilStore(t *testing.T) {
	c := New(nil, calc.Radians, ModeStandard)
	press(c, "1", "=")
	assert.Equal(t, 1, c.History().Len())
}

func TestModes(t *testing.T) {
	c := newController()
	assert.Equal(t, ModeScientific, c.CycleMode())
	assert.Equal(t, ModeAI, c.CycleMode())
	assert.Equal(t, ModeStandard, c.CycleMode())

	c.SetMode(ModeAI)
	assert.Equal(t, ModeAI, c.Snapshot().Mode)
	assert.Equal(t, ModeScientific, ModeAI.Prev())
	assert.Equal(t, "AI Assistant", ModeAI.Title())

	m, err := ParseMode("Scientific")
	require.NoError(t, err)
	assert.Equal(t, ModeScientific, m)
	_, err = ParseMode("graphing")
	assert.Error(t, err)
}
