package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/symsubst/log"
	"github.com/ardnew/symsubst/symengine"
)

// editMapMsg carries a validated YAML document from the editor.
type editMapMsg struct{ data []byte }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a decode
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails for any other reason.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help     Print this message
  list     List the substitution map
  edit     Edit the substitution map in $EDITOR
  clear    Clear screen
  reset    Restore the substitution map the session started with
  quit     Exit REPL

Usage:
  Type an expression to evaluate it under the substitution map
  Type name = expr to bind name to expr evaluated under the current map
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to navigate command history
  Press Ctrl+C on empty line or Ctrl+D to exit
`

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

func (m inputMode) echo(input string) string {
	if m == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// assignment matches "name = expr".
var assignment = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.*)$`)

// draft is the unsubmitted input of one mode.
type draft struct {
	text   string
	cursor int
}

// altNav is the state saved when Alt+Up/Down navigation begins.
type altNav struct {
	active bool
	mode   inputMode
	draft
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	vars       *symengine.ExpressionMap[string]
	initial    []byte // JSON snapshot restored by reset
	logger     log.Logger
	history    *History
	historyIdx int
	matches    fuzzy.Matches // current fuzzy match results
	candidates []string      // backing candidate list
	wordStart  int           // byte offset of current word start
	wordEnd    int           // byte offset of current word end
	suggIdx    int           // selected candidate index
	tabActive  bool          // whether user is tab-cycling
	preTab     draft         // input before tab-cycling began
	altNav     altNav
	width      int // terminal width for ellipsization
	quitting   bool
	mode       inputMode
	drafts     [2]draft // indexed by inputMode
}

// Run starts an interactive session over vars. Bindings made during the
// session are inserted into vars. History is kept in cacheDir unless it is
// empty.
func Run(
	ctx context.Context,
	vars *symengine.ExpressionMap[string],
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if vars == nil {
		return ErrNoSession
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("len", vars.Len()))

	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", historyPath),
			slog.Any("error", err))
	}

	m, err := newModel(ctx, vars, history, logger)
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	vars *symengine.ExpressionMap[string],
	history *History,
	logger log.Logger,
) (model, error) {
	initial, err := json.Marshal(vars)
	if err != nil {
		return model{}, err
	}

	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		vars:       vars,
		initial:    initial,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}, nil
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editMapMsg:
		if err := m.vars.UnmarshalYAML(msg.data); err != nil {
			return m, tea.Println(errorStyle.Render("🗴 error: " + err.Error()))
		}

		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.Int("len", m.vars.Len()))

		return m, tea.Println(resultStyle.Render("✔ substitution map updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("🗴 error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	return b.String()
}

// statusLine renders the line below the input: a history position, a usage
// hint, a function signature or the completion bar.
func (m model) statusLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeCtrl {
			return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") +
				" (press Esc to return)")
		}

		return hintStyle.Render("Type an expression or press Esc for commands")
	}

	if m.mode == modeEval {
		call := detectFunctionCall(input, m.input.Position())
		if hint := renderSignatureHint(call); call.inCall && hint != "" {
			return hint
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.tabActive = false
		m.altNav.active = false
		m.historyIdx = m.history.Len()

		return m.setInput("", 0), nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNav.active = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.recallCtrl(-1), nil
		}

		m, _ = m.recall(-1, anyEntry)

		return m, nil

	case tea.KeyDown:
		if msg.Alt {
			return m.recallCtrl(1), nil
		}

		return m.recallNewer(anyEntry), nil

	case tea.KeyShiftUp:
		m, _ = m.recall(-1, inMode(m.mode))

		return m, nil

	case tea.KeyShiftDown:
		return m.recallNewer(inMode(m.mode)), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false

			return m.setInput(m.preTab.text, m.preTab.cursor), nil
		}

		m.altNav.active = false

		return m.toggleMode(), nil

	case tea.KeyRunes:
		// Space accepts the candidate being cycled.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Editing and cursor keys never auto-confirm a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNav.active = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by delta, wrapping at either end. A single
// candidate is completed immediately.
func (m model) cycle(delta int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + delta + n) % n

	default:
		m.tabActive = true
		m.preTab = draft{m.input.Value(), m.input.Position()}

		m.suggIdx = 0
		if delta < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input and moves the
// cursor to its end.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input. With
// autoConfirm, a sole candidate equal to the typed word is accepted so the
// bar disappears once a name is complete.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) setInput(text string, cursor int) model {
	m.input.SetValue(text)
	m.input.SetCursor(cursor)
	refreshMatches(&m, false)

	return m
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	mode := m.mode

	m.drafts = [2]draft{}
	m = m.setInput("", 0)

	if err := m.history.Add(input, mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	m.logger.TraceContext(m.ctxFunc(), "repl input",
		slog.String("input", input),
		slog.Int("mode", int(mode)))

	echo := tea.Println(mode.echo(input))

	if mode == modeCtrl {
		return m.executeCommand(input, echo)
	}

	return m, tea.Sequence(echo, m.evaluate(input))
}

// evaluate handles one eval-mode line and returns the command printing its
// outcome. An assignment binds the name to its right-hand side evaluated
// under the current map.
func (m model) evaluate(input string) tea.Cmd {
	var name string

	if sub := assignment.FindStringSubmatch(input); sub != nil {
		name, input = sub[1], sub[2]
	}

	expr, err := symengine.Parse(input)
	if err != nil {
		return tea.Println(errorStyle.Render("error: " + err.Error()))
	}

	result, err := m.vars.Subs(expr)
	if err != nil {
		return tea.Println(errorStyle.Render("error: " + err.Error()))
	}

	out := resultStyle.Render(result.String())

	if name != "" {
		m.vars.Insert(name, result)
		out = inputStyle.Render(name+" = ") + out
	}

	if free := result.FreeSymbols(); len(free) > 0 && name == "" {
		out += hintStyle.Render("  unbound: " + strings.Join(free, ", "))
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval result",
		slog.String("name", name),
		slog.String("result", result.String()))

	return tea.Println(out)
}

func (m model) executeCommand(input string, echo tea.Cmd) (model, tea.Cmd) {
	cmd, _, _ := strings.Cut(input, " ")

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listBindings()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "r", "reset":
		if err := m.vars.UnmarshalJSON(m.initial); err != nil {
			return m, tea.Sequence(echo,
				tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		return m, tea.Sequence(echo,
			tea.Println(resultStyle.Render("✔ substitution map restored")))

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"))
	}
}

func (m model) edit() tea.Cmd {
	cmd := &editMapCommand{
		vars:    m.vars,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.data == nil:
			return editCancelledMsg{}
		}

		return editMapMsg{data: cmd.data}
	})
}

func (m model) listBindings() string {
	if m.vars.IsEmpty() {
		return hintStyle.Render("  (no bindings)")
	}

	var b strings.Builder

	for k, v := range m.vars.All() {
		fmt.Fprintf(&b, "  %s = %s\n", k, hintStyle.Render(v.String()))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func anyEntry(HistoryEntry) bool { return true }

func inMode(mode inputMode) func(HistoryEntry) bool {
	return func(e HistoryEntry) bool { return e.Mode == mode }
}

// recall loads the nearest entry accepted by keep in direction delta,
// switching to the entry's mode. It reports whether an entry was found.
func (m model) recall(delta int, keep func(HistoryEntry) bool) (model, bool) {
	for i := m.historyIdx + delta; i >= 0 && i < m.history.Len(); i += delta {
		entry, err := m.history.Entry(i)
		if err != nil || !keep(entry) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i

		return m.setInput(entry.Line, len(entry.Line)), true
	}

	return m, false
}

// recallNewer moves toward the newest entry, clearing the input once past it.
func (m model) recallNewer(keep func(HistoryEntry) bool) model {
	m, ok := m.recall(1, keep)
	if !ok && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m = m.setInput("", 0)
	}

	return m
}

// recallCtrl walks command-mode history. The mode and input in effect when
// the walk began are restored when either end is reached.
func (m model) recallCtrl(delta int) model {
	if !m.altNav.active {
		m.altNav = altNav{
			active: true,
			mode:   m.mode,
			draft:  draft{m.input.Value(), m.input.Position()},
		}

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	m, ok := m.recall(delta, inMode(modeCtrl))
	if ok {
		return m
	}

	saved := m.altNav
	m.altNav.active = false

	if saved.mode != m.mode {
		m = m.switchToMode(saved.mode)
	}

	m.historyIdx = m.history.Len()

	return m.setInput(saved.text, saved.cursor)
}

func (m model) toggleMode() model {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode saves the current input as the draft of the current mode and
// restores the draft of the target mode.
func (m model) switchToMode(mode inputMode) model {
	m.drafts[m.mode] = draft{m.input.Value(), m.input.Position()}
	m.mode = mode

	if mode == modeCtrl {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	} else {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	}

	return m.setInput(m.drafts[mode].text, m.drafts[mode].cursor)
}
