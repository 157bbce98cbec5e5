package repl

import (
	"errors"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/symsubst/log"
	"github.com/ardnew/symsubst/symengine"
)

func newTestModel(t *testing.T, pairs ...string) model {
	t.Helper()

	vars := symengine.NewExpressionMap[string]()
	t.Cleanup(func() { _ = vars.Close() })

	for i := 0; i+1 < len(pairs); i += 2 {
		vars.Insert(pairs[i], symengine.MustParse(pairs[i+1]))
	}

	m, err := newModel(t.Context(), vars, NewHistory(""), log.Logger{})
	if err != nil {
		t.Fatalf("newModel error: %v", err)
	}

	return m
}

func send(m model, msgs ...tea.Msg) (model, tea.Cmd) {
	var cmd tea.Cmd

	for _, msg := range msgs {
		var next tea.Model

		next, cmd = m.Update(msg)
		m = next.(model)
	}

	return m, cmd
}

func typed(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func enter(m model, line string) (model, tea.Cmd) {
	return send(m, typed(line), key(tea.KeyEnter))
}

func assertBound(t *testing.T, m model, name, want string) {
	t.Helper()

	got, ok := m.vars.Get(name)
	if !ok {
		t.Fatalf("%s is not bound", name)
	}

	if !symengine.MustParse(want).Equal(got) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func assertInput(t *testing.T, m model, want string) {
	t.Helper()

	if got := m.input.Value(); got != want {
		t.Errorf("input = %q, want %q", got, want)
	}
}

func assertKeys(t *testing.T, m model, want ...string) {
	t.Helper()

	if got := m.vars.Keys(); !slices.Equal(got, want) {
		t.Errorf("bound keys = %v, want %v", got, want)
	}
}

func TestModel_Assignment(t *testing.T) {
	m := newTestModel(t)

	m, _ = enter(m, "a = 3")
	m, _ = enter(m, "b=-4")
	m, _ = enter(m, "c = a*b + 10")

	assertBound(t, m, "a", "3")
	assertBound(t, m, "b", "-4")
	assertBound(t, m, "c", "-2")
	assertKeys(t, m, "a", "b", "c")
	assertInput(t, m, "")
}

func TestModel_Assignment_Eager(t *testing.T) {
	m := newTestModel(t, "a", "2")

	m, _ = enter(m, "y = a*x")
	m, _ = enter(m, "a = 5")

	assertBound(t, m, "y", "2*x")
}

func TestModel_Evaluate(t *testing.T) {
	m := newTestModel(t, "a", "3")

	m, cmd := enter(m, "a + z")
	if cmd == nil {
		t.Error("evaluation produced no output command")
	}

	// Plain expressions do not bind.
	assertKeys(t, m, "a")

	m, cmd = enter(m, "a +")
	if cmd == nil {
		t.Error("parse error produced no output command")
	}

	assertKeys(t, m, "a")
}

func TestModel_History(t *testing.T) {
	m := newTestModel(t)

	m, _ = enter(m, "a = 1")
	m, _ = enter(m, "a + 1")

	if m.history.Len() != 2 {
		t.Fatalf("history length = %d, want 2", m.history.Len())
	}

	m, _ = send(m, key(tea.KeyUp))
	assertInput(t, m, "a + 1")

	m, _ = send(m, key(tea.KeyUp))
	assertInput(t, m, "a = 1")

	m, _ = send(m, key(tea.KeyDown), key(tea.KeyDown))
	assertInput(t, m, "")

	if m.historyIdx != m.history.Len() {
		t.Errorf("historyIdx = %d, want %d", m.historyIdx, m.history.Len())
	}
}

func TestModel_ToggleMode(t *testing.T) {
	m := newTestModel(t)

	m, _ = send(m, typed("a + b"), key(tea.KeyEsc))
	if m.mode != modeCtrl {
		t.Fatalf("mode = %v, want command mode", m.mode)
	}

	assertInput(t, m, "")

	if !strings.Contains(m.View(), "help") {
		t.Error("command mode view does not mention help")
	}

	m, _ = send(m, typed("li"), key(tea.KeyEsc))
	if m.mode != modeEval {
		t.Fatalf("mode = %v, want eval mode", m.mode)
	}

	assertInput(t, m, "a + b")

	m, _ = send(m, key(tea.KeyEsc))
	assertInput(t, m, "li")
}

func TestModel_Reset(t *testing.T) {
	m := newTestModel(t, "a", "1")

	m, _ = enter(m, "a = 7")
	m, _ = enter(m, "b = 2")
	assertBound(t, m, "a", "7")

	m, _ = send(m, key(tea.KeyEsc))
	m, _ = enter(m, "reset")

	assertKeys(t, m, "a")
	assertBound(t, m, "a", "1")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)

	m, _ = send(m, key(tea.KeyEsc))
	m, cmd := enter(m, "quit")

	if !m.quitting || cmd == nil {
		t.Errorf("quit: quitting = %t, cmd = %v", m.quitting, cmd)
	}

	if v := m.View(); v != "" {
		t.Errorf("View() after quit = %q, want empty", v)
	}
}

func TestModel_TabCompletion(t *testing.T) {
	m := newTestModel(t, "alpha", "1")

	m, _ = send(m, typed("2*alp"))
	if len(m.matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(m.matches))
	}

	m, _ = send(m, key(tea.KeyTab))
	assertInput(t, m, "2*alpha")

	if len(m.matches) != 0 {
		t.Errorf("matches after completion = %d, want 0", len(m.matches))
	}
}

func TestModel_TabCycle(t *testing.T) {
	m := newTestModel(t, "tab", "1")

	m, _ = send(m, typed("ta"))
	if len(m.matches) < 2 {
		t.Fatalf("matches = %d, want at least 2", len(m.matches))
	}

	first := m.matches[0].Str

	m, _ = send(m, key(tea.KeyTab))
	if !m.tabActive {
		t.Error("tab cycling not active after Tab")
	}

	assertInput(t, m, first)

	m, _ = send(m, key(tea.KeyTab))
	if m.suggIdx != 1 {
		t.Errorf("suggIdx = %d, want 1", m.suggIdx)
	}

	assertInput(t, m, m.matches[1].Str)

	m, _ = send(m, key(tea.KeyShiftTab))
	if m.suggIdx != 0 {
		t.Errorf("suggIdx = %d, want 0", m.suggIdx)
	}

	assertInput(t, m, first)

	m, _ = send(m, key(tea.KeyEsc))
	if m.tabActive {
		t.Error("tab cycling still active after Esc")
	}

	// Esc restores the typed word without leaving eval mode.
	assertInput(t, m, "ta")

	if m.mode != modeEval {
		t.Errorf("mode = %v, want eval mode", m.mode)
	}
}

func TestModel_EditMsg(t *testing.T) {
	m := newTestModel(t, "a", "1")

	m, _ = send(m, editMapMsg{data: []byte("x: 2\ny: x + 1\n")})
	assertKeys(t, m, "x", "y")

	// Invalid edits are not applied.
	m, _ = send(m, editMapMsg{data: []byte("x: \"2 +\"\n")})
	assertKeys(t, m, "x", "y")

	m, cmd := send(m, editDeclinedMsg{})
	if !m.quitting || cmd == nil {
		t.Errorf("declined edit: quitting = %t, cmd = %v", m.quitting, cmd)
	}
}

func TestModel_ListBindings(t *testing.T) {
	m := newTestModel(t)
	if list := m.listBindings(); !strings.Contains(list, "no bindings") {
		t.Errorf("empty listing = %q", list)
	}

	m, _ = enter(m, "b = 2")
	m, _ = enter(m, "a = 1")

	list := m.listBindings()
	if strings.Index(list, "a = ") > strings.Index(list, "b = ") {
		t.Errorf("bindings not sorted:\n%s", list)
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)
	if !strings.Contains(m.View(), "Type an expression") {
		t.Error("initial view missing placeholder")
	}

	m, _ = send(m, typed("sin("))
	if !strings.Contains(m.View(), "sine") {
		t.Error("view missing signature hint for sin(")
	}
}

func TestRun_NoSession(t *testing.T) {
	if err := Run(t.Context(), nil, "", log.Logger{}); !errors.Is(err, ErrNoSession) {
		t.Errorf("Run without session error = %v, want ErrNoSession", err)
	}
}
