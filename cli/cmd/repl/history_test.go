package repl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func mustAdd(t *testing.T, h *History, line string, mode inputMode) {
	t.Helper()

	if err := h.Add(line, mode); err != nil {
		t.Fatalf("Add(%q) error: %v", line, err)
	}
}

func readHistory(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	return string(data)
}

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load of missing file: %v", err)
	}

	if h.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", h.Len())
	}

	mustAdd(t, h, "a = 3", modeEval)
	mustAdd(t, h, "  list ", modeCtrl)
	mustAdd(t, h, "", modeEval)

	if got, want := readHistory(t, path), "E:a = 3\nC:list\n"; got != want {
		t.Errorf("history file = %q, want %q", got, want)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := []HistoryEntry{
		{Line: "a = 3", Mode: modeEval},
		{Line: "list", Mode: modeCtrl},
	}
	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestHistory_Duplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	mustAdd(t, h, "x", modeEval)
	mustAdd(t, h, "y", modeEval)
	mustAdd(t, h, "y", modeEval)
	mustAdd(t, h, "x", modeCtrl)
	mustAdd(t, h, "x", modeEval)

	want := []HistoryEntry{
		{Line: "y", Mode: modeEval},
		{Line: "x", Mode: modeCtrl},
		{Line: "x", Mode: modeEval},
	}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}

	if got, want := readHistory(t, path), "E:y\nC:x\nE:x\n"; got != want {
		t.Errorf("history file = %q, want %q", got, want)
	}
}

func TestHistory_Limit(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)
	h.limit = 3

	for i := range 5 {
		mustAdd(t, h, fmt.Sprint(i), modeEval)
	}

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}

	first, err := h.Entry(0)
	if err != nil {
		t.Fatalf("Entry(0) error: %v", err)
	}

	if first.Line != "2" {
		t.Errorf("oldest entry = %q, want 2", first.Line)
	}

	reloaded := NewHistory(path)
	reloaded.limit = 3

	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if got, want := reloaded.Entries(), h.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded Entries() = %v, want %v", got, want)
	}
}

func TestHistory_Entry(t *testing.T) {
	h := NewHistory("")
	mustAdd(t, h, "x", modeEval)

	for _, i := range []int{1, -1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}

func TestHistory_LegacyLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	if err := os.WriteFile(path, []byte("a*b\n\nC:quit\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := []HistoryEntry{
		{Line: "a*b", Mode: modeEval},
		{Line: "quit", Mode: modeCtrl},
	}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}
