package kernel

import (
	"errors"
	"slices"
	"sort"
)

// ErrDivisionByZero is raised (as a panic value) when an expression divides
// a number by zero. The capi boundary recovers it into a status code.
var ErrDivisionByZero = errors.New("division by zero")

// Expr is a node of a symbolic expression tree.
//
// Every constructor returns simplified nodes, and nodes are never mutated
// after construction, so subtrees may be shared freely.
type Expr interface {
	Simplify() Expr
	String() string
	Equal(other Expr) bool

	// children returns the operands of the node in canonical order.
	children() []Expr
	// rebuild constructs a simplified node of the same kind over kids.
	rebuild(kids []Expr) Expr
	// prec reports the binding strength of the node's printed form.
	prec() int
}

// Printing precedence, lowest to highest.
const (
	precAdd = iota + 1
	precMul
	precPow
	precAtom
)

// Sym is a free symbol.
type Sym struct{ name string }

// NewSym returns the symbol with the given name.
func NewSym(name string) *Sym { return &Sym{name: name} }

// Name returns the symbol's name.
func (s *Sym) Name() string { return s.name }

func (s *Sym) Simplify() Expr      { return s }
func (s *Sym) String() string      { return s.name }
func (s *Sym) children() []Expr    { return nil }
func (s *Sym) rebuild([]Expr) Expr { return s }
func (s *Sym) prec() int           { return precAtom }
func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)

	return ok && s.name == o.name
}

// Equal reports whether a and b are structurally equal. Nil only equals nil.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Equal(b)
}

// FreeSymbols returns the sorted, de-duplicated names of all symbols in e.
func FreeSymbols(e Expr) []string {
	seen := map[string]struct{}{}

	var walk func(Expr)
	walk = func(x Expr) {
		if s, ok := x.(*Sym); ok {
			seen[s.name] = struct{}{}

			return
		}

		for _, k := range x.children() {
			walk(k)
		}
	}

	walk(e)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Subs replaces subexpressions of e for which lookup reports a match.
//
// Replacement is simultaneous: a node is first offered to lookup as a whole,
// and only when it does not match are its operands visited. Replacement
// values are never revisited, so substituting a for b and b for a swaps them.
func Subs(e Expr, lookup func(Expr) (Expr, bool)) Expr {
	if r, ok := lookup(e); ok {
		return r
	}

	kids := e.children()
	if len(kids) == 0 {
		return e
	}

	out := make([]Expr, len(kids))
	changed := false

	for i, k := range kids {
		out[i] = Subs(k, lookup)
		if out[i] != k {
			changed = true
		}
	}

	if !changed {
		return e
	}

	return e.rebuild(out)
}

// equalAll reports whether a and b hold pairwise equal expressions.
func equalAll(a, b []Expr) bool {
	return slices.EqualFunc(a, b, func(x, y Expr) bool { return x.Equal(y) })
}

// keyed pairs an expression with its printed form for ordering.
type keyed struct {
	expr Expr
	key  string
}

// sortByKey orders exprs by their printed form without recomputing
// String in the comparator.
func sortByKey(exprs []Expr) []Expr {
	ks := make([]keyed, len(exprs))
	for i, e := range exprs {
		ks[i] = keyed{expr: e, key: e.String()}
	}

	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })

	out := make([]Expr, len(ks))
	for i := range ks {
		out[i] = ks[i].expr
	}

	return out
}

// paren wraps s in parentheses when the child binds looser than min.
func paren(child Expr, min int) string {
	if child.prec() < min {
		return "(" + child.String() + ")"
	}

	return child.String()
}
