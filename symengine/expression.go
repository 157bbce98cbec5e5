package symengine

import (
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"runtime"
	"strconv"

	"github.com/ardnew/symsubst/internal/capi"
	"github.com/ardnew/symsubst/internal/kernel"
)

// Engine names the symbolic engine this build is linked against: "symengine"
// for libsymengine through cgo, or "kernel" for the in-process engine.
const Engine = capi.Engine

// Functions returns the sorted names of the one-argument functions the
// in-process engine parses. libsymengine accepts most of them too.
func Functions() []string { return kernel.Functions() }

// Expression is an immutable symbolic expression backed by an engine handle.
//
// The zero Expression is the integer 0. Expressions may be shared freely;
// the handle is released when the Expression becomes unreachable.
type Expression struct {
	basic *capi.Basic
}

// zero backs the zero Expression and is never freed.
var zero = capi.BasicNew()

func newExpression() *Expression {
	e := &Expression{basic: capi.BasicNew()}
	runtime.AddCleanup(e, capi.BasicFree, e.basic)

	return e
}

// clone returns an Expression with its own engine handle holding the value
// of e.
func (e *Expression) clone() *Expression {
	out := newExpression()
	mustOK(capi.BasicAssign(out.basic, e.handle()), "basic_assign")
	runtime.KeepAlive(e)

	return out
}

// handle returns the engine handle of e, treating nil and zero values as 0.
func (e *Expression) handle() *capi.Basic {
	if e == nil || e.basic == nil {
		return zero
	}

	return e.basic
}

// Parse parses an expression string such as "a*b + 10".
func Parse(s string) (*Expression, error) {
	e := newExpression()

	if err := capi.BasicParse(e.basic, s).Err("basic_parse"); err != nil {
		return nil, ErrParse.Wrap(err).With(slog.String("source", s))
	}

	return e, nil
}

// MustParse is like [Parse] but panics if s cannot be parsed.
// It simplifies initialization of package-level expressions.
func MustParse(s string) *Expression {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return e
}

// Symbol returns the free symbol with the given name.
func Symbol(name string) *Expression {
	e := newExpression()
	mustOK(capi.SymbolSet(e.basic, name), "symbol_set")

	return e
}

// Int returns the integer constant v.
func Int(v int64) *Expression {
	e := newExpression()
	mustOK(capi.IntegerSetSI(e.basic, v), "integer_set_si")

	return e
}

// Float returns the numeric constant v. The in-process engine keeps numbers
// exact, so Float(0.1) is the rational 1/10 there; libsymengine stores a
// double. Float panics if v is NaN or infinite and the engine rejects it.
func Float(v float64) *Expression {
	e := newExpression()
	mustOK(capi.RealDoubleSetD(e.basic, v), "real_double_set_d")

	return e
}

func mustOK(s capi.Status, op string) {
	if err := s.Err(op); err != nil {
		panic(err)
	}
}

// Value is the set of Go types [From] converts to an [Expression].
type Value interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 |
		*Expression
}

// From converts a Go number to a constant Expression. An *Expression is
// returned as is.
//
//	m.Insert("a", symengine.From(3))
func From[V Value](v V) *Expression {
	if e, ok := any(v).(*Expression); ok {
		return e
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return Int(int64(u))
		}

		// Beyond int64: let the engine fold 2*(u/2) + u%2 exactly.
		return MustParse(fmt.Sprintf("%d*2 + %d", u>>1, u&1))

	case reflect.Float32:
		// Go through the shortest float32 form so float32(0.1) is 0.1.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(rv.Float(), 'g', -1, 32), 64)

		return Float(f)

	default:
		return Float(rv.Float())
	}
}

// String returns the engine's printed form of e.
func (e *Expression) String() string {
	s := capi.BasicStr(e.handle())
	runtime.KeepAlive(e)

	return s
}

// Equal reports whether e and other are structurally equal.
func (e *Expression) Equal(other *Expression) bool {
	eq := capi.BasicEq(e.handle(), other.handle())
	runtime.KeepAlive(e)
	runtime.KeepAlive(other)

	return eq
}

// FreeSymbols returns the sorted names of the symbols occurring in e.
func (e *Expression) FreeSymbols() []string {
	names, status := capi.BasicFreeSymbols(e.handle())
	runtime.KeepAlive(e)

	if status != capi.StatusOK {
		return nil
	}

	return names
}

// Subs substitutes the values of subs for the symbols named by its keys.
// It is a one-shot form of [ExpressionMap.Eval].
func (e *Expression) Subs(subs map[string]*Expression) *Expression {
	m := NewExpressionMap[string]()
	defer m.Close()

	for k, v := range subs {
		m.Insert(k, v)
	}

	return m.Eval(e)
}

// MarshalText encodes e as its printed form.
func (e *Expression) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText parses text into e, replacing any previous value. It is
// meant for decoding into a freshly allocated Expression.
func (e *Expression) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	if e.basic == nil {
		e.basic = capi.BasicNew()
		runtime.AddCleanup(e, capi.BasicFree, e.basic)
	}

	mustOK(capi.BasicAssign(e.basic, parsed.basic), "basic_assign")
	runtime.KeepAlive(parsed)

	return nil
}

// LogValue implements [slog.LogValuer].
func (e *Expression) LogValue() slog.Value { return slog.StringValue(e.String()) }
