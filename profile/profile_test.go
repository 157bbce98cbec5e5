package profile

import (
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	p := New(WithMode("cpu"), WithPath("/tmp/prof"), WithQuiet(true))

	want := Profiler{Mode: "cpu", Path: "/tmp/prof", Quiet: true}
	if p != want {
		t.Errorf("New() = %+v, want %+v", p, want)
	}
}

func TestStart_NoMode(t *testing.T) {
	ctl := New(WithPath(t.TempDir())).Start()
	if _, ok := ctl.(ignore); !ok {
		t.Errorf("Start() without mode = %T, want ignore", ctl)
	}

	ctl.Stop()
}

func TestStart_UnknownMode(t *testing.T) {
	ctl := New(WithMode("bogus"), WithPath(t.TempDir())).Start()
	if _, ok := ctl.(ignore); !ok {
		t.Errorf("Start() with unknown mode = %T, want ignore", ctl)
	}

	ctl.Stop()
}

func TestModes_Sorted(t *testing.T) {
	if modes := Modes(); !slices.IsSorted(modes) {
		t.Errorf("Modes() = %v is not sorted", modes)
	}
}
