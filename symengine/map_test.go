package symengine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/symsubst/log"
)

func newTestMap(t *testing.T, pairs ...any) *ExpressionMap[string] {
	t.Helper()

	m := NewExpressionMap[string]()
	t.Cleanup(func() { _ = m.Close() })

	for i := 0; i+1 < len(pairs); i += 2 {
		m.Insert(pairs[i].(string), pairs[i+1].(*Expression))
	}

	return m
}

func TestExpressionMap_Eval(t *testing.T) {
	m := newTestMap(t, "a", From(3), "b", From(-4))

	assertExpr(t, "-2", m.Eval(MustParse("a*b + 10")))
}

func TestExpressionMap_Eval_Arithmetic(t *testing.T) {
	tests := []struct {
		k1, k2 string
		v1, v2 int64
		c      int64
	}{
		{"a", "b", 3, -4, 10},
		{"x", "y", 0, 99, -1},
		{"alpha", "beta", -7, -6, 0},
		{"p", "q", 1 << 20, 1 << 20, 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s=%d,%s=%d", tt.k1, tt.v1, tt.k2, tt.v2), func(t *testing.T) {
			m := newTestMap(t, tt.k1, Int(tt.v1), tt.k2, Int(tt.v2))

			got := m.Eval(MustParse(fmt.Sprintf("%s*%s + %d", tt.k1, tt.k2, tt.c)))

			if want := Int(tt.v1*tt.v2 + tt.c); !want.Equal(got) {
				t.Errorf("got %s, want %s", got, want)
			}
		})
	}
}

func TestExpressionMap_Eval_Unbound(t *testing.T) {
	m := newTestMap(t, "a", From(2))

	got := m.Eval(MustParse("a*x"))
	assertExpr(t, "2*x", got)

	if syms := got.FreeSymbols(); !slices.Equal(syms, []string{"x"}) {
		t.Errorf("FreeSymbols() = %v, want [x]", syms)
	}
}

func TestExpressionMap_Eval_Simultaneous(t *testing.T) {
	m := newTestMap(t, "a", Symbol("b"), "b", Symbol("a"))

	assertExpr(t, "b - a", m.Eval(MustParse("a - b")))
}

func TestExpressionMap_Eval_Pure(t *testing.T) {
	m := newTestMap(t, "a", From(1))
	expr := MustParse("a + z")

	_ = m.Eval(expr)

	assertExpr(t, "a + z", expr)

	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestExpressionMap_Subs_Failure(t *testing.T) {
	if Engine != "kernel" {
		t.Skip("libsymengine evaluates 1/0 to complex infinity")
	}

	m := newTestMap(t, "x", From(0))
	expr := MustParse("1/x")

	if _, err := m.Subs(expr); !errors.Is(err, ErrSubstitute) {
		t.Errorf("Subs error = %v, want ErrSubstitute", err)
	}

	if got := m.Eval(expr); got != expr {
		t.Errorf("Eval on failure = %s, want the input itself", got)
	}
}

func TestExpressionMap_Len(t *testing.T) {
	m := newTestMap(t)
	if !m.IsEmpty() || m.Len() != 0 {
		t.Fatalf("new map: IsEmpty() = %t, Len() = %d", m.IsEmpty(), m.Len())
	}

	m.Insert("a", From(1))
	m.Insert("b", From(2))
	m.Insert("a", From(3))

	if m.IsEmpty() {
		t.Error("IsEmpty() = true after inserts")
	}

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}

	v, ok := m.Get("a")
	if !ok {
		t.Fatal("Get(\"a\") not found")
	}

	assertExpr(t, "3", v)
	assertExpr(t, "6", m.Eval(MustParse("a*b")))
}

func TestExpressionMap_ContainsKey(t *testing.T) {
	m := newTestMap(t, "a", From(1))

	if !m.ContainsKey("a") {
		t.Error("ContainsKey(\"a\") = false")
	}

	if m.ContainsKey("b") {
		t.Error("ContainsKey(\"b\") = true")
	}

	if _, ok := m.Get("b"); ok {
		t.Error("Get(\"b\") found a value")
	}
}

func TestExpressionMap_Insert_OwnsValue(t *testing.T) {
	m := newTestMap(t)

	v := Int(3)
	m.Insert("a", v)

	if err := json.Unmarshal([]byte(`"7"`), v); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}

	got, _ := m.Get("a")
	assertExpr(t, "3", got)
	assertExpr(t, "3", m.Eval(Symbol("a")))

	if err := got.UnmarshalText([]byte("9")); err != nil {
		t.Fatalf("UnmarshalText error: %v", err)
	}

	again, _ := m.Get("a")
	assertExpr(t, "3", again)

	for _, v := range m.All() {
		_ = v.UnmarshalText([]byte("11"))
	}

	assertExpr(t, "3", m.Eval(Symbol("a")))

	if s := m.String(); s != "map[a:3]" {
		t.Errorf("String() = %q, want map[a:3]", s)
	}
}

func TestExpressionMap_ZeroValue(t *testing.T) {
	var m ExpressionMap[string]
	defer m.Close()

	if !m.IsEmpty() {
		t.Error("zero map is not empty")
	}

	m.Insert("k", From(5))

	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}

	assertExpr(t, "10", m.Eval(MustParse("2*k")))
}

func TestExpressionMap_NamedKey(t *testing.T) {
	type name string

	m := NewExpressionMap[name]()
	defer m.Close()

	m.Insert(name("r"), From(2))

	if !m.ContainsKey("r") {
		t.Error("ContainsKey(\"r\") = false")
	}

	assertExpr(t, "4", m.Eval(MustParse("r^2")))

	if got := m.Keys(); !slices.Equal(got, []name{"r"}) {
		t.Errorf("Keys() = %v, want [r]", got)
	}
}

func TestExpressionMap_InsertNil(t *testing.T) {
	m := newTestMap(t)

	if panicValue(func() { m.Insert("a", nil) }) == nil {
		t.Error("Insert of nil did not panic")
	}

	if !m.IsEmpty() {
		t.Error("failed insert left an entry")
	}
}

func TestExpressionMap_Keys_All(t *testing.T) {
	m := newTestMap(t, "c", From(3), "a", From(1), "b", From(2))

	if got := m.Keys(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Keys() = %v, want [a b c]", got)
	}

	var keys []string
	for k, v := range m.All() {
		keys = append(keys, k)

		if !v.Equal(m.table[k]) {
			t.Errorf("All yielded %s for %s, want %s", v, k, m.table[k])
		}

		if k == "b" {
			break
		}
	}

	if !slices.Equal(keys, []string{"a", "b"}) {
		t.Errorf("All stopped at %v, want [a b]", keys)
	}
}

func TestExpressionMap_Equal(t *testing.T) {
	a := newTestMap(t, "x", From(1), "y", MustParse("z + 1"))
	b := newTestMap(t, "y", MustParse("1 + z"), "x", From(1))
	c := newTestMap(t, "x", From(1))
	d := newTestMap(t, "x", From(1), "y", MustParse("z + 2"))

	tests := []struct {
		name  string
		other *ExpressionMap[string]
		want  bool
	}{
		{"reordered", b, true},
		{"self", a, true},
		{"subset", c, false},
		{"different value", d, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestExpressionMap_String(t *testing.T) {
	m := newTestMap(t, "b", From(-4), "a", From(3))

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"String", m.String(), "map[a:3 b:-4]"},
		{"Sprint", fmt.Sprint(m), "map[a:3 b:-4]"},
		{"GoString", fmt.Sprintf("%#v", m), `symengine.ExpressionMap[string]{"a": "3", "b": "-4"}`},
		{"empty", newTestMap(t).String(), "map[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestExpressionMap_Close(t *testing.T) {
	m := NewExpressionMap[string]()
	m.Insert("a", From(1))

	for range 2 {
		if err := m.Close(); err != nil {
			t.Fatalf("Close error: %v", err)
		}
	}

	ops := map[string]func(){
		"Len":    func() { m.Len() },
		"Insert": func() { m.Insert("b", From(2)) },
		"Eval":   func() { m.Eval(Symbol("a")) },
	}

	for name, op := range ops {
		if r := panicValue(op); r != ErrClosed {
			t.Errorf("%s on closed map panicked with %v, want ErrClosed", name, r)
		}
	}
}

func TestExpressionMap_WithLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"))

	m := NewExpressionMap[string](WithLogger(logger))
	m.Insert("a", From(3))
	m.Eval(MustParse("a + 1"))

	if err := m.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`"msg":"insert","key":"a","value":"3","len":1`,
		`"msg":"eval"`,
		`"msg":"close"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
