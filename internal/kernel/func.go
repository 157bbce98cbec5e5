package kernel

import "slices"

// Func is a named function of one argument.
type Func struct {
	name string
	arg  Expr
}

// functions lists the names FuncOf accepts.
var functions = []string{
	"abs", "acos", "asin", "atan", "ceil", "cos", "cosh", "exp", "floor",
	"ln", "log", "sign", "sin", "sinh", "sqrt", "tan", "tanh",
}

// Functions returns the names of the supported functions in sorted order.
func Functions() []string { return slices.Clone(functions) }

// IsFunction reports whether name is a supported function.
func IsFunction(name string) bool {
	_, ok := slices.BinarySearch(functions, name)

	return ok
}

// FuncOf returns the simplified application of the named function to arg.
// The name must satisfy IsFunction. sqrt is represented as a power of one
// half and ln is an alias of log.
func FuncOf(name string, arg Expr) Expr {
	switch name {
	case "sqrt":
		return PowOf(arg, half)
	case "ln":
		name = "log"
	}

	return (&Func{name: name, arg: arg}).Simplify()
}

// Name returns the function name.
func (f *Func) Name() string { return f.name }

// Arg returns the function argument.
func (f *Func) Arg() Expr { return f.arg }

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()

	if n, ok := arg.(*Num); ok {
		if v, ok := evalNum(f.name, n); ok {
			return v
		}
	}

	switch f.name {
	case "sin", "tan", "asin", "atan", "sinh", "tanh", "sign":
		if neg, ok := negated(arg); ok {
			return MulOf(NewInt(-1), FuncOf(f.name, neg))
		}

	case "cos", "cosh", "abs":
		if neg, ok := negated(arg); ok {
			return FuncOf(f.name, neg)
		}
	}

	if inner, ok := arg.(*Func); ok {
		switch {
		case f.name == "exp" && inner.name == "log":
			return inner.arg
		case f.name == inner.name && idempotent(f.name):
			return inner
		}
	}

	return &Func{name: f.name, arg: arg}
}

// idempotent reports whether f(f(x)) is f(x).
func idempotent(name string) bool {
	switch name {
	case "abs", "floor", "ceil", "sign":
		return true
	}

	return false
}

// evalNum folds the function applied to a number when the result is exact.
func evalNum(name string, n *Num) (Expr, bool) {
	switch name {
	case "abs":
		return numAbs(n), true
	case "floor":
		return numFloor(n), true
	case "ceil":
		return numCeil(n), true
	case "sign":
		return NewInt(int64(n.val.Sign())), true
	}

	switch {
	case n.IsZero():
		switch name {
		case "sin", "tan", "asin", "atan", "sinh", "tanh":
			return NewInt(0), true
		case "cos", "cosh", "exp":
			return NewInt(1), true
		}

	case n.IsOne():
		switch name {
		case "log", "acos":
			return NewInt(0), true
		}
	}

	return nil, false
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)

	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) children() []Expr         { return []Expr{f.arg} }
func (f *Func) rebuild(kids []Expr) Expr { return FuncOf(f.name, kids[0]) }
func (f *Func) prec() int                { return precAtom }
