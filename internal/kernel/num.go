package kernel

import (
	"errors"
	"math"
	"math/big"
	"strconv"
)

// ErrNotFinite is returned when a NaN or infinite float is converted.
var ErrNotFinite = errors.New("number is not finite")

// maxExactExponent bounds the integer exponents folded into exact numbers.
const maxExactExponent = 1024

// Num is an exact rational number.
type Num struct{ val *big.Rat }

// NewInt returns the integer v.
func NewInt(v int64) *Num { return &Num{val: new(big.Rat).SetInt64(v)} }

// NewRat returns p/q. It panics with ErrDivisionByZero when q is zero.
func NewRat(p, q int64) *Num {
	if q == 0 {
		panic(ErrDivisionByZero)
	}

	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NewFloat converts f through its shortest decimal representation, so 0.1
// becomes exactly 1/10.
func NewFloat(f float64) (*Num, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrNotFinite
	}

	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		return nil, ErrNotFinite
	}

	return &Num{val: r}, nil
}

func newNum(r *big.Rat) *Num { return &Num{val: r} }

// Rat returns a copy of the number's value.
func (n *Num) Rat() *big.Rat { return new(big.Rat).Set(n.val) }

func (n *Num) IsZero() bool     { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool      { return n.val.IsInt() && n.val.Num().IsInt64() && n.val.Num().Int64() == 1 }
func (n *Num) IsNegOne() bool   { return n.val.IsInt() && n.val.Num().IsInt64() && n.val.Num().Int64() == -1 }
func (n *Num) IsInteger() bool  { return n.val.IsInt() }
func (n *Num) IsNegative() bool { return n.val.Sign() < 0 }
func (n *Num) IsPositive() bool { return n.val.Sign() > 0 }

func (n *Num) Simplify() Expr      { return n }
func (n *Num) children() []Expr    { return nil }
func (n *Num) rebuild([]Expr) Expr { return n }

func (n *Num) prec() int {
	switch {
	case n.IsNegative():
		return precAdd
	case !n.IsInteger():
		return precMul
	default:
		return precAtom
	}
}

func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)

	return ok && n.val.Cmp(o.val) == 0
}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}

	return n.val.RatString()
}

func numAdd(a, b *Num) *Num { return newNum(new(big.Rat).Add(a.val, b.val)) }
func numMul(a, b *Num) *Num { return newNum(new(big.Rat).Mul(a.val, b.val)) }
func numNeg(a *Num) *Num    { return newNum(new(big.Rat).Neg(a.val)) }
func numAbs(a *Num) *Num    { return newNum(new(big.Rat).Abs(a.val)) }

func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic(ErrDivisionByZero)
	}

	return newNum(new(big.Rat).Inv(a.val))
}

// numPowInt raises a to the integer power e.
func numPowInt(a *Num, e int64) *Num {
	if e < 0 {
		return numRecip(numPowInt(a, -e))
	}

	x := big.NewInt(e)
	num := new(big.Int).Exp(a.val.Num(), x, nil)
	den := new(big.Int).Exp(a.val.Denom(), x, nil)

	return newNum(new(big.Rat).SetFrac(num, den))
}

// numSqrt returns the exact square root of a non-negative rational when
// both numerator and denominator are perfect squares.
func numSqrt(a *Num) (*Num, bool) {
	if a.IsNegative() {
		return nil, false
	}

	num := new(big.Int).Sqrt(a.val.Num())
	den := new(big.Int).Sqrt(a.val.Denom())

	if new(big.Int).Mul(num, num).Cmp(a.val.Num()) != 0 ||
		new(big.Int).Mul(den, den).Cmp(a.val.Denom()) != 0 {
		return nil, false
	}

	return newNum(new(big.Rat).SetFrac(num, den)), true
}

// numFloor returns the greatest integer not above a.
func numFloor(a *Num) *Num {
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(a.val.Num(), a.val.Denom(), m) // Euclidean: m >= 0 for positive denominators

	return newNum(new(big.Rat).SetInt(q))
}

// numCeil returns the least integer not below a.
func numCeil(a *Num) *Num { return numNeg(numFloor(numNeg(a))) }

// int64Exponent reports whether e is an integer number that fits the exact
// exponent bound.
func int64Exponent(e Expr) (int64, bool) {
	n, ok := e.(*Num)
	if !ok || !n.IsInteger() || !n.val.Num().IsInt64() {
		return 0, false
	}

	v := n.val.Num().Int64()
	if v > maxExactExponent || v < -maxExactExponent {
		return 0, false
	}

	return v, true
}
