//go:build !(cgo && symengine)

package capi

import (
	"errors"

	"github.com/ardnew/symsubst/internal/kernel"
)

// Engine names the engine behind this build.
const Engine = "kernel"

// Basic is a handle to one expression.
type Basic struct {
	expr  kernel.Expr
	freed bool
}

// MapBasicBasic is a handle to an expression-to-expression map.
type MapBasicBasic struct {
	entries map[string]mapEntry
	freed   bool
}

type mapEntry struct{ key, val kernel.Expr }

func (b *Basic) live() {
	if b == nil || b.freed {
		panic("capi: use of freed or nil basic")
	}
}

func (m *MapBasicBasic) live() {
	if m == nil || m.freed {
		panic("capi: use of freed or nil map")
	}
}

// guard runs fn and converts its error, or a panic raised by the engine,
// into a Status.
func guard(fn func() error) (status Status) {
	defer func() {
		if r := recover(); r != nil {
			err, _ := r.(error)
			status = statusOf(err)
			if status == StatusOK {
				status = StatusRuntimeError
			}
		}
	}()

	return statusOf(fn())
}

func statusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, kernel.ErrDivisionByZero):
		return StatusDivByZero
	case errors.Is(err, kernel.ErrSyntax):
		return StatusParseError
	case errors.Is(err, kernel.ErrNotFinite):
		return StatusDomainError
	default:
		return StatusRuntimeError
	}
}

// BasicNew allocates an expression handle holding the integer 0.
func BasicNew() *Basic { return &Basic{expr: kernel.NewInt(0)} }

// BasicFree releases b. Freeing a handle twice panics.
func BasicFree(b *Basic) {
	b.live()

	b.freed, b.expr = true, nil
}

// BasicAssign copies the expression held by src into dst.
func BasicAssign(dst, src *Basic) Status {
	dst.live()
	src.live()

	dst.expr = src.expr

	return StatusOK
}

// BasicParse parses s into b. On failure b is unchanged.
func BasicParse(b *Basic, s string) Status {
	b.live()

	return guard(func() error {
		e, err := kernel.Parse(s)
		if err != nil {
			return err
		}

		b.expr = e

		return nil
	})
}

// SymbolSet stores the symbol name in b.
func SymbolSet(b *Basic, name string) Status {
	b.live()

	b.expr = kernel.NewSym(name)

	return StatusOK
}

// IntegerSetSI stores the integer v in b.
func IntegerSetSI(b *Basic, v int64) Status {
	b.live()

	b.expr = kernel.NewInt(v)

	return StatusOK
}

// RealDoubleSetD stores the number v in b. The kernel keeps numbers exact,
// so v is stored as the rational of its shortest decimal form.
func RealDoubleSetD(b *Basic, v float64) Status {
	b.live()

	return guard(func() error {
		n, err := kernel.NewFloat(v)
		if err != nil {
			return err
		}

		b.expr = n

		return nil
	})
}

// BasicStr returns the printed form of b.
func BasicStr(b *Basic) string {
	b.live()

	return b.expr.String()
}

// BasicEq reports whether a and b hold structurally equal expressions.
func BasicEq(a, b *Basic) bool {
	a.live()
	b.live()

	return kernel.Equal(a.expr, b.expr)
}

// BasicFreeSymbols returns the sorted names of the symbols in b.
func BasicFreeSymbols(b *Basic) ([]string, Status) {
	b.live()

	return kernel.FreeSymbols(b.expr), StatusOK
}

// BasicSubs stores in dst the result of substituting every key of m found
// in src with its mapped value. Substitution is simultaneous. On failure
// dst is unchanged.
func BasicSubs(dst, src *Basic, m *MapBasicBasic) Status {
	dst.live()
	src.live()
	m.live()

	if len(m.entries) == 0 {
		dst.expr = src.expr

		return StatusOK
	}

	lookup := func(e kernel.Expr) (kernel.Expr, bool) {
		en, ok := m.entries[e.String()]
		if !ok || !kernel.Equal(en.key, e) {
			return nil, false
		}

		return en.val, true
	}

	return guard(func() error {
		dst.expr = kernel.Subs(src.expr, lookup)

		return nil
	})
}

// MapBasicBasicNew allocates an empty map handle.
func MapBasicBasicNew() *MapBasicBasic {
	return &MapBasicBasic{entries: map[string]mapEntry{}}
}

// MapBasicBasicFree releases m. Freeing a handle twice panics.
func MapBasicBasicFree(m *MapBasicBasic) {
	m.live()

	m.freed, m.entries = true, nil
}

// MapBasicBasicInsert maps key to the current value of mapped, replacing
// any existing entry for an equal key. Later changes to either handle do
// not affect the map.
func MapBasicBasicInsert(m *MapBasicBasic, key, mapped *Basic) {
	m.live()
	key.live()
	mapped.live()

	m.entries[key.expr.String()] = mapEntry{key: key.expr, val: mapped.expr}
}

// MapBasicBasicSize returns the number of entries in m.
func MapBasicBasicSize(m *MapBasicBasic) int {
	m.live()

	return len(m.entries)
}
