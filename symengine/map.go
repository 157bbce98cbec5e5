package symengine

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/symsubst/internal/capi"
	"github.com/ardnew/symsubst/log"
)

// Key is the constraint on map keys: strings and named string types.
type Key interface{ ~string }

// ExpressionMap maps symbol names to expressions and substitutes them into
// other expressions.
//
// Every entry lives in two places: an engine map handle, which performs the
// substitution, and a Go map mirroring it for lookups, iteration, equality
// and encoding. [ExpressionMap.Insert] is the only mutation and updates both.
//
// The zero ExpressionMap is empty and ready to use. An ExpressionMap is not
// safe for concurrent use. Call [ExpressionMap.Close] to release the engine
// handle early; it is otherwise released when the map becomes unreachable.
// Every method other than Close and the decoders panics with [ErrClosed]
// once the map is closed.
type ExpressionMap[K Key] struct {
	handle  *capi.MapBasicBasic
	table   map[K]*Expression
	cleanup runtime.Cleanup
	opts    options
	closed  bool
}

// NewExpressionMap returns an empty map with its engine handle allocated.
func NewExpressionMap[K Key](opts ...Option) *ExpressionMap[K] {
	m := &ExpressionMap[K]{}
	applyOptions(&m.opts, opts...)
	m.init()

	return m
}

// init allocates the engine handle on first use.
func (m *ExpressionMap[K]) init() {
	if m.closed {
		panic(ErrClosed)
	}

	if m.handle != nil {
		return
	}

	m.adopt(capi.MapBasicBasicNew(), map[K]*Expression{})
}

// adopt makes handle and table the contents of m, releasing the previous
// handle.
func (m *ExpressionMap[K]) adopt(handle *capi.MapBasicBasic, table map[K]*Expression) {
	m.release()

	m.handle, m.table, m.closed = handle, table, false
	m.cleanup = runtime.AddCleanup(m, capi.MapBasicBasicFree, handle)
}

// release frees the engine handle, if any, exactly once.
func (m *ExpressionMap[K]) release() {
	if m.handle == nil {
		return
	}

	m.cleanup.Stop()
	capi.MapBasicBasicFree(m.handle)
	m.handle = nil
}

func (m *ExpressionMap[K]) logger() log.Logger { return m.opts.logger }

// Insert maps key to a copy of value, replacing any previous value for key.
// Later changes to value do not reach m. A nil value panics.
//
// Go has no implicit conversions; wrap numbers with [From], [Int] or
// [Float]:
//
//	m.Insert("a", symengine.From(3))
func (m *ExpressionMap[K]) Insert(key K, value *Expression) {
	if value == nil {
		panic("symengine: nil value inserted for key " + strconv.Quote(string(key)))
	}

	m.init()

	value = value.clone()

	sym := Symbol(string(key))
	capi.MapBasicBasicInsert(m.handle, sym.basic, value.basic)
	runtime.KeepAlive(sym)
	runtime.KeepAlive(value)

	m.table[key] = value

	if l := m.logger(); l.Enabled(log.LevelTrace) {
		l.Trace("insert",
			slog.String("key", string(key)),
			slog.Any("value", value),
			slog.Int("len", len(m.table)))
	}
}

// ContainsKey reports whether key has been inserted.
func (m *ExpressionMap[K]) ContainsKey(key K) bool {
	m.init()

	_, ok := m.table[key]

	return ok
}

// Get returns a copy of the value inserted for key.
func (m *ExpressionMap[K]) Get(key K) (*Expression, bool) {
	m.init()

	v, ok := m.table[key]
	if !ok {
		return nil, false
	}

	return v.clone(), true
}

// Keys returns the keys of m in sorted order.
func (m *ExpressionMap[K]) Keys() []K {
	m.init()

	return slices.Sorted(maps.Keys(m.table))
}

// All returns an iterator over copies of the entries of m in key order.
func (m *ExpressionMap[K]) All() iter.Seq2[K, *Expression] {
	keys := m.Keys()

	return func(yield func(K, *Expression) bool) {
		for _, k := range keys {
			if !yield(k, m.table[k].clone()) {
				return
			}
		}
	}
}

// Eval substitutes every inserted key occurring as a symbol in expr with its
// value, simultaneously. Neither m nor expr is modified. When the engine
// reports a failure, such as a division by zero, Eval returns expr itself;
// use [ExpressionMap.Subs] to observe the failure.
func (m *ExpressionMap[K]) Eval(expr *Expression) *Expression {
	out, err := m.Subs(expr)
	if err != nil {
		m.logger().Debug("eval failed", slog.Any("error", err))

		return expr
	}

	return out
}

// Subs is like [ExpressionMap.Eval] but reports engine failures as an error
// wrapping [ErrSubstitute].
func (m *ExpressionMap[K]) Subs(expr *Expression) (*Expression, error) {
	m.init()

	out := newExpression()
	status := capi.BasicSubs(out.basic, expr.handle(), m.handle)
	runtime.KeepAlive(expr)

	if err := status.Err("basic_subs"); err != nil {
		return nil, ErrSubstitute.Wrap(err).With(slog.Any("expr", expr))
	}

	if l := m.logger(); l.Enabled(log.LevelTrace) {
		l.Trace("eval", slog.Any("expr", expr), slog.Any("result", out))
	}

	return out, nil
}

// Len returns the number of entries in the engine map.
func (m *ExpressionMap[K]) Len() int {
	m.init()

	return capi.MapBasicBasicSize(m.handle)
}

// IsEmpty reports whether m has no entries.
func (m *ExpressionMap[K]) IsEmpty() bool { return m.Len() == 0 }

// Equal reports whether m and other hold the same keys mapped to equal
// expressions. Only the mirrored entries are compared.
func (m *ExpressionMap[K]) Equal(other *ExpressionMap[K]) bool {
	if m == other {
		return true
	}

	if m == nil || other == nil {
		return false
	}

	m.init()
	other.init()

	return maps.EqualFunc(m.table, other.table, (*Expression).Equal)
}

// String formats m like a Go map with sorted keys: map[a:3 b:-4].
func (m *ExpressionMap[K]) String() string {
	var b strings.Builder

	b.WriteString("map[")

	i := 0
	for k, v := range m.All() {
		if i > 0 {
			b.WriteByte(' ')
		}

		fmt.Fprintf(&b, "%s:%s", string(k), v)
		i++
	}

	b.WriteByte(']')

	return b.String()
}

// GoString implements [fmt.GoStringer].
func (m *ExpressionMap[K]) GoString() string {
	var b strings.Builder

	fmt.Fprintf(&b, "symengine.ExpressionMap[%T]{", *new(K))

	i := 0
	for k, v := range m.All() {
		if i > 0 {
			b.WriteString(", ")
		}

		fmt.Fprintf(&b, "%q: %q", string(k), v.String())
		i++
	}

	b.WriteByte('}')

	return b.String()
}

// Close releases the engine handle. It is idempotent and always returns nil.
func (m *ExpressionMap[K]) Close() error {
	if m.closed {
		return nil
	}

	m.release()
	m.table, m.closed = nil, true

	m.logger().Trace("close")

	return nil
}
