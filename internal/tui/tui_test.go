package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/codefionn/gencalc/internal/assistant"
	"github.com/codefionn/gencalc/internal/calc"
	"github.com/codefionn/gencalc/internal/calculator"
	"github.com/codefionn/gencalc/internal/history"
	"github.com/codefionn/gencalc/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	reply string
	err   error
}

func (f *fakeClient) CompleteWithRequest(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.reply}, nil
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	return f.reply, f.err
}

func (f *fakeClient) Stream(ctx context.Context, req *llm.CompletionRequest, callback func(string) error) error {
	if f.err != nil {
		return f.err
	}
	return callback(f.reply)
}

func (f *fakeClient) GetModelName() string {
	return "fake-model"
}

type clipboardRecorder struct {
	copied []string
}

func (c *clipboardRecorder) copy(content string) tea.Cmd {
	c.copied = append(c.copied, content)
	return func() tea.Msg {
		return ClipboardCopyMsg{Content: content, Success: true}
	}
}

func newTestModel(t *testing.T, solver *assistant.Solver) (*Model, *clipboardRecorder) {
	t.Helper()
	ctrl := calculator.New(history.New(history.DefaultLimit), calc.Radians, calculator.ModeStandard)
	clip := &clipboardRecorder{}
	m := New(ctrl, solver, WithAnimationsDisabled(true), WithClipboard(clip.copy))
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, clip
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeKeys(m *Model, keys ...string) {
	for _, k := range keys {
		for _, r := range k {
			m.Update(runes(string(r)))
		}
	}
}

func send(m *Model, keyType tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: keyType})
	return cmd
}

func TestTypingAndEvaluate(t *testing.T) {
	m, _ := newTestModel(t, nil)

	typeKeys(m, "2+3*4")
	assert.Equal(t, "2+3*4", m.ctrl.Snapshot().Expression)

	send(m, tea.KeyEnter)
	state := m.ctrl.Snapshot()
	assert.Equal(t, "14", state.Result)
	assert.Equal(t, "2+3*4", state.Expression)
	require.Len(t, state.History, 1)
	assert.Equal(t, "2+3*4", state.History[0].Expression)
}

func TestEqualsKeyExtendsExpression(t *testing.T) {
	m, _ := newTestModel(t, nil)

	typeKeys(m, "6*7=")
	assert.Equal(t, "42", m.ctrl.Snapshot().Result)

	typeKeys(m, "/2=")
	state := m.ctrl.Snapshot()
	assert.Equal(t, "6*7/2", state.Expression)
	assert.Equal(t, "21", state.Result)
}

func TestErrorKeepsExpression(t *testing.T) {
	m, _ := newTestModel(t, nil)

	typeKeys(m, "1/0")
	send(m, tea.KeyEnter)

	state := m.ctrl.Snapshot()
	assert.Equal(t, calc.ErrorResult, state.Result)
	assert.Equal(t, "1/0", state.Expression)
	assert.Empty(t, state.History)
	assert.Contains(t, m.View(), calc.ErrorResult)
}

func TestClearAndBackspace(t *testing.T) {
	m, _ := newTestModel(t, nil)

	typeKeys(m, "123")
	send(m, tea.KeyBackspace)
	assert.Equal(t, "12", m.ctrl.Snapshot().Expression)

	send(m, tea.KeyEsc)
	assert.Empty(t, m.ctrl.Snapshot().Expression)

	typeKeys(m, "9c")
	assert.Empty(t, m.ctrl.Snapshot().Expression)
}

func TestModeCycling(t *testing.T) {
	m, _ := newTestModel(t, nil)

	send(m, tea.KeyTab)
	assert.Equal(t, calculator.ModeScientific, m.ctrl.Snapshot().Mode)
	assert.Contains(t, m.View(), "sin")

	send(m, tea.KeyTab)
	assert.Equal(t, calculator.ModeAI, m.ctrl.Snapshot().Mode)
	assert.True(t, m.input.Focused())
	assert.Contains(t, m.View(), "Ask a math question")

	send(m, tea.KeyShiftTab)
	assert.Equal(t, calculator.ModeScientific, m.ctrl.Snapshot().Mode)
	assert.False(t, m.input.Focused())

	send(m, tea.KeyTab)
	send(m, tea.KeyTab)
	assert.Equal(t, calculator.ModeStandard, m.ctrl.Snapshot().Mode)
}

func TestScientificKeys(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.ctrl.SetMode(calculator.ModeScientific)

	typeKeys(m, "r16)")
	assert.Equal(t, "sqrt(16)", m.ctrl.Snapshot().Expression)
	send(m, tea.KeyEnter)
	assert.Equal(t, "4", m.ctrl.Snapshot().Result)
}

func TestToggleAngle(t *testing.T) {
	m, _ := newTestModel(t, nil)
	assert.Contains(t, m.View(), "RAD")

	send(m, tea.KeyCtrlR)
	assert.Equal(t, calc.Degrees, m.ctrl.Snapshot().Angle)
	assert.Contains(t, m.View(), "DEG")

	typeKeys(m, "s90)")
	send(m, tea.KeyEnter)
	assert.Equal(t, "1", m.ctrl.Snapshot().Result)
}

func TestSidebarVisibility(t *testing.T) {
	m, _ := newTestModel(t, nil)
	assert.True(t, m.sidebarVisible())
	assert.Contains(t, m.View(), "History")

	send(m, tea.KeyCtrlH)
	assert.False(t, m.sidebarVisible())

	send(m, tea.KeyCtrlH)
	assert.True(t, m.sidebarVisible())

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	assert.False(t, m.sidebarVisible(), "narrow terminals hide the sidebar")
}

func TestHistorySelection(t *testing.T) {
	m, _ := newTestModel(t, nil)

	typeKeys(m, "1+1=", "c2*3=")
	require.Equal(t, 2, m.ctrl.History().Len())

	send(m, tea.KeyUp)
	assert.True(t, m.historyFocus)
	assert.Equal(t, 0, m.historyCursor)

	send(m, tea.KeyDown)
	assert.Equal(t, 1, m.historyCursor)
	send(m, tea.KeyDown)
	assert.Equal(t, 1, m.historyCursor, "cursor stops at the oldest entry")

	send(m, tea.KeyEnter)
	assert.False(t, m.historyFocus)
	state := m.ctrl.Snapshot()
	assert.Equal(t, "1+1", state.Expression)
	assert.Equal(t, "2", state.Result)
}

func TestHistoryEscLeavesFocus(t *testing.T) {
	m, _ := newTestModel(t, nil)
	typeKeys(m, "1+1=")

	send(m, tea.KeyUp)
	require.True(t, m.historyFocus)
	send(m, tea.KeyEsc)
	assert.False(t, m.historyFocus)
	assert.Equal(t, "2", m.ctrl.Snapshot().Result, "esc in history does not clear the display")
}

func TestClearHistory(t *testing.T) {
	m, _ := newTestModel(t, nil)
	typeKeys(m, "1+1=")
	require.Equal(t, 1, m.ctrl.History().Len())

	send(m, tea.KeyCtrlL)
	assert.Equal(t, 0, m.ctrl.History().Len())
	assert.Contains(t, m.View(), "History cleared")
}

func TestCopyResult(t *testing.T) {
	m, clip := newTestModel(t, nil)

	typeKeys(m, "y")
	assert.Empty(t, clip.copied)
	assert.Contains(t, m.View(), "Nothing to copy")

	typeKeys(m, "7*6=", "y")
	require.Equal(t, []string{"42"}, clip.copied)

	_, cmd := m.Update(runes("y"))
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Contains(t, m.View(), "Copied 42")
}

func TestAssistantSubmit(t *testing.T) {
	solver := assistant.New(&fakeClient{reply: "**4**"})
	m, _ := newTestModel(t, solver)
	m.setMode(calculator.ModeAI)

	typeKeys(m, "what is 2+2")
	assert.Equal(t, "what is 2+2", m.input.Value())

	cmd := send(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, 1, m.pending)
	assert.Contains(t, m.View(), "Thinking")

	m.Update(cmd())
	assert.Equal(t, 0, m.pending)

	entries := m.Transcript().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, assistant.SpeakerUser, entries[0].Speaker)
	assert.Equal(t, assistant.SpeakerAssistant, entries[1].Speaker)
	assert.Equal(t, "**4**", entries[1].Text)

	items := m.ctrl.History().Items()
	require.Len(t, items, 1)
	assert.Equal(t, history.KindAI, items[0].Kind)
	assert.Equal(t, history.AIResult, items[0].Result)
	assert.Equal(t, "what is 2+2", items[0].Expression)
}

func TestAssistantEmptySubmitIgnored(t *testing.T) {
	m, _ := newTestModel(t, assistant.New(&fakeClient{reply: "x"}))
	m.setMode(calculator.ModeAI)

	typeKeys(m, "   ")
	cmd := send(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.Transcript().Len())
}

func TestAssistantErrorReply(t *testing.T) {
	m, _ := newTestModel(t, assistant.New(&fakeClient{err: errors.New("boom")}))
	m.setMode(calculator.ModeAI)

	typeKeys(m, "integrate x")
	cmd := send(m, tea.KeyEnter)
	m.Update(cmd())

	entries := m.Transcript().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, assistant.SpeakerError, entries[1].Speaker)
	assert.Equal(t, assistant.UnavailableText, entries[1].Text)
}

func TestAssistantUnavailableWithoutSolver(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.setMode(calculator.ModeAI)

	typeKeys(m, "1+1")
	cmd := send(m, tea.KeyEnter)
	msg := cmd()
	reply, ok := msg.(solveResultMsg)
	require.True(t, ok)
	assert.True(t, reply.reply.IsError)
}

func TestOverlappingSubmissions(t *testing.T) {
	m, _ := newTestModel(t, assistant.New(&fakeClient{reply: "ok"}))
	m.setMode(calculator.ModeAI)

	typeKeys(m, "first")
	first := send(m, tea.KeyEnter)
	typeKeys(m, "second")
	second := send(m, tea.KeyEnter)
	assert.Equal(t, 2, m.pending)

	// second finishes before first
	m.Update(second())
	m.Update(first())
	assert.Equal(t, 0, m.pending)

	entries := m.Transcript().Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "first", entries[0].Text)
	assert.Equal(t, "second", entries[1].Text)
	assert.Equal(t, 2, m.ctrl.History().Len())
}

func TestSettingsMsg(t *testing.T) {
	m, _ := newTestModel(t, nil)
	deg := calc.Degrees
	solver := assistant.New(&fakeClient{reply: "hi"})

	m.Update(SettingsMsg{Angle: &deg, Solver: solver})
	assert.Equal(t, calc.Degrees, m.ctrl.Snapshot().Angle)
	assert.Same(t, solver, m.solver)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)
	cmd := send(m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestViewRendersKeypad(t *testing.T) {
	m, _ := newTestModel(t, nil)
	view := m.View()
	for _, label := range []string{"Standard", "Scientific", "AI Assistant", "÷", "×", "="} {
		assert.True(t, strings.Contains(view, label), "view missing %q", label)
	}
}
