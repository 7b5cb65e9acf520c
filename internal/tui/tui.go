// Package tui is the bubbletea front end of the calculator: a keypad panel
// for the standard and scientific modes, an AI assistant chat panel and a
// history sidebar.
package tui

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/codefionn/gencalc/internal/assistant"
	"github.com/codefionn/gencalc/internal/calc"
	"github.com/codefionn/gencalc/internal/calculator"
	"github.com/codefionn/gencalc/internal/consts"
	"github.com/codefionn/gencalc/internal/keypad"
	"github.com/codefionn/gencalc/internal/logger"
	"golang.org/x/term"
)

const (
	// sidebarMinWidth is the terminal width from which the history sidebar
	// is shown by default.
	sidebarMinWidth = 100
	sidebarWidth    = 34
)

// Model is the root bubbletea model.
type Model struct {
	ctrl       *calculator.Controller
	solver     *assistant.Solver
	transcript *assistant.Transcript
	log        *logger.Logger

	width  int
	height int

	// sidebarHidden is the user's ctrl+h toggle; the sidebar additionally
	// needs a wide enough terminal.
	sidebarHidden bool
	historyFocus  bool
	historyCursor int

	input         textinput.Model
	viewport      viewport.Model
	spinner       spinner.Model
	pending       int
	renderer      *glamour.TermRenderer
	rendererWidth int

	status             string
	animationsDisabled bool
	copyFn             func(string) tea.Cmd
}

// Option configures a Model.
type Option func(*Model)

// WithAnimationsDisabled replaces the spinner with a static indicator.
func WithAnimationsDisabled(disabled bool) Option {
	return func(m *Model) {
		m.animationsDisabled = disabled
	}
}

// WithClipboard overrides how results are copied.
func WithClipboard(fn func(string) tea.Cmd) Option {
	return func(m *Model) {
		m.copyFn = fn
	}
}

// New creates the model. A nil solver is replaced by one that reports the
// assistant as unavailable.
func New(ctrl *calculator.Controller, solver *assistant.Solver, opts ...Option) *Model {
	if solver == nil {
		solver = assistant.Unavailable(nil)
	}

	ti := textinput.New()
	ti.Placeholder = "Ask a math question..."
	ti.Prompt = "❯ "
	ti.CharLimit = consts.MaxQueryLength

	m := &Model{
		ctrl:       ctrl,
		solver:     solver,
		transcript: assistant.NewTranscript(),
		log:        logger.Global().WithPrefix("tui"),
		width:      80,
		height:     24,
		input:      ti,
		viewport:   viewport.New(76, 12),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(statusStyle.MarginLeft(0)),
		),
		copyFn: copyToClipboard,
	}
	for _, opt := range opts {
		opt(m)
	}
	if ctrl.Snapshot().Mode == calculator.ModeAI {
		m.input.Focus()
	}
	return m
}

// Transcript returns the assistant chat log shown in AI mode.
func (m *Model) Transcript() *assistant.Transcript {
	return m.transcript
}

// NewProgram wraps m in a program that uses the alternate screen. Callers
// keep the program to deliver SettingsMsg while it runs.
func NewProgram(m *Model, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
}

// solveResultMsg carries a finished assistant request.
type solveResultMsg struct {
	query string
	reply assistant.Reply
}

// rendererReadyMsg delivers a glamour renderer built off the update loop.
type rendererReadyMsg struct {
	renderer *glamour.TermRenderer
	width    int
	err      error
}

// ClipboardCopyMsg is sent when a result was copied to the clipboard.
type ClipboardCopyMsg struct {
	Content string
	Success bool
	Error   string
}

// SettingsMsg applies reloaded configuration to a running model. Nil fields
// are left unchanged.
type SettingsMsg struct {
	Angle  *calc.AngleMode
	Solver *assistant.Solver
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	initialWindowSize := func() tea.Msg {
		if width, height, ok := detectTerminalSize(); ok {
			return tea.WindowSizeMsg{Width: width, Height: height}
		}
		return nil
	}
	return tea.Batch(textinput.Blink, initialWindowSize)
}

func detectTerminalSize() (int, int, bool) {
	for _, f := range []*os.File{os.Stdout, os.Stdin, os.Stderr} {
		if f == nil {
			continue
		}
		fd := int(f.Fd())
		if !term.IsTerminal(fd) {
			continue
		}
		if width, height, err := term.GetSize(fd); err == nil && width > 0 && height > 0 {
			return width, height, true
		}
	}
	return 0, 0, false
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, m.ensureRenderer()

	case rendererReadyMsg:
		if msg.err != nil {
			m.log.Warn("markdown renderer unavailable: %v", msg.err)
			return m, nil
		}
		m.renderer, m.rendererWidth = msg.renderer, msg.width
		m.refreshTranscript()
		return m, nil

	case solveResultMsg:
		m.pending--
		m.ctrl.RecordAI(msg.query)
		m.transcript.AddReply(msg.reply)
		m.refreshTranscript()
		return m, nil

	case ClipboardCopyMsg:
		if msg.Success {
			m.status = "Copied " + msg.Content
		} else {
			m.status = msg.Error
		}
		return m, nil

	case SettingsMsg:
		if msg.Angle != nil {
			m.ctrl.SetAngle(*msg.Angle)
		}
		if msg.Solver != nil {
			m.solver = msg.Solver
		}
		m.status = "Settings reloaded"
		return m, nil

	case spinner.TickMsg:
		if m.pending <= 0 || m.animationsDisabled {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.ctrl.Snapshot().Mode == calculator.ModeAI {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	key := msg.String()

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m, m.setMode(m.ctrl.CycleMode())
	case "shift+tab":
		return m, m.setMode(m.ctrl.Snapshot().Mode.Prev())
	case "ctrl+r":
		m.ctrl.PressButton(keypad.Button{Value: keypad.ActionToggleRad, Type: keypad.TypeAction})
		return m, nil
	case "ctrl+h":
		m.sidebarHidden = !m.sidebarHidden
		if !m.sidebarVisible() {
			m.historyFocus = false
		}
		m.resize()
		return m, nil
	case "ctrl+l":
		m.ctrl.ClearHistory()
		m.historyFocus = false
		m.historyCursor = 0
		m.status = "History cleared"
		return m, nil
	}

	if m.historyFocus {
		return m.handleHistoryKey(key)
	}

	if m.ctrl.Snapshot().Mode == calculator.ModeAI {
		return m.handleAssistantKey(msg)
	}
	return m.handleCalculatorKey(key)
}

func (m *Model) handleCalculatorKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "y":
		result := m.ctrl.Snapshot().Result
		if result == "" || result == calc.ErrorResult {
			m.status = "Nothing to copy"
			return m, nil
		}
		return m, m.copyFn(result)
	case "up":
		if m.sidebarVisible() && m.ctrl.History().Len() > 0 {
			m.historyFocus = true
			m.historyCursor = 0
		}
		return m, nil
	}

	if b, ok := keypad.Lookup(key); ok {
		m.ctrl.PressButton(b)
	}
	return m, nil
}

func (m *Model) handleHistoryKey(key string) (tea.Model, tea.Cmd) {
	items := m.ctrl.History().Items()
	if len(items) == 0 {
		m.historyFocus = false
		return m, nil
	}
	if m.historyCursor >= len(items) {
		m.historyCursor = len(items) - 1
	}

	switch key {
	case "up", "k":
		if m.historyCursor > 0 {
			m.historyCursor--
		} else {
			m.historyFocus = false
		}
	case "down", "j":
		if m.historyCursor < len(items)-1 {
			m.historyCursor++
		}
	case "enter":
		item := items[m.historyCursor]
		if m.ctrl.SelectHistory(item) {
			m.historyFocus = false
			if m.ctrl.Snapshot().Mode == calculator.ModeAI {
				m.ctrl.SetMode(calculator.ModeStandard)
				m.input.Blur()
			}
		} else {
			m.status = "Assistant queries cannot be restored"
		}
	case "esc":
		m.historyFocus = false
	}
	return m, nil
}

func (m *Model) handleAssistantKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.submit()
	case "esc":
		m.input.Reset()
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case "up":
		if m.input.Value() == "" && m.sidebarVisible() && m.ctrl.History().Len() > 0 {
			m.historyFocus = true
			m.historyCursor = 0
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the current input to the assistant. Submissions are
// independent: earlier requests keep running and replies are appended as
// they complete.
func (m *Model) submit() tea.Cmd {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return nil
	}
	m.input.Reset()
	m.transcript.AddQuery(query)
	m.refreshTranscript()

	m.pending++
	solver := m.solver
	solve := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), consts.AssistantTimeout)
		defer cancel()
		return solveResultMsg{query: query, reply: solver.Solve(ctx, query)}
	}

	if m.pending == 1 && !m.animationsDisabled {
		return tea.Batch(solve, m.spinner.Tick)
	}
	return solve
}

func (m *Model) setMode(mode calculator.Mode) tea.Cmd {
	m.ctrl.SetMode(mode)
	m.historyFocus = false
	if mode == calculator.ModeAI {
		m.refreshTranscript()
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m *Model) sidebarVisible() bool {
	return !m.sidebarHidden && m.width >= sidebarMinWidth
}

func (m *Model) mainWidth() int {
	w := m.width
	if m.sidebarVisible() {
		w -= sidebarWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) resize() {
	w := m.mainWidth() - 4
	// header, input box and footer
	h := m.height - 9
	if h < 3 {
		h = 3
	}
	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = w - 4
	m.refreshTranscript()
}

func (m *Model) ensureRenderer() tea.Cmd {
	wrap := m.mainWidth() - 6
	if wrap < 20 {
		wrap = 20
	}
	if m.renderer != nil && m.rendererWidth == wrap {
		return nil
	}
	return func() tea.Msg {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
			glamour.WithPreservedNewLines(),
		)
		return rendererReadyMsg{renderer: renderer, width: wrap, err: err}
	}
}
