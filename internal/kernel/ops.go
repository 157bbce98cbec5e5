package kernel

import (
	"math/big"
	"sort"
	"strings"
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
	half   = NewRat(1, 2)
)

// Add is a sum of two or more terms, ordered by their non-numeric part with
// any constant last.
type Add struct{ terms []Expr }

// AddOf returns the simplified sum of terms.
func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Terms returns the operands of the sum.
func (a *Add) Terms() []Expr { return a.terms }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))

	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	type like struct {
		rest  Expr
		coeff *Num
	}

	constant := NewInt(0)
	groups := map[string]*like{}
	order := []string{}

	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)

			continue
		}

		coeff, rest := splitCoeff(t)
		key := rest.String()

		g, seen := groups[key]
		if !seen {
			g = &like{rest: rest, coeff: NewInt(0)}
			groups[key] = g
			order = append(order, key)
		}

		g.coeff = numAdd(g.coeff, coeff)
	}

	sort.Strings(order)

	terms := make([]Expr, 0, len(order)+1)

	for _, key := range order {
		g := groups[key]

		switch {
		case g.coeff.IsZero():
			continue
		case g.coeff.IsOne():
			terms = append(terms, g.rest)
		default:
			terms = append(terms, MulOf(g.coeff, g.rest))
		}
	}

	if !constant.IsZero() {
		terms = append(terms, constant)
	}

	switch len(terms) {
	case 0:
		return NewInt(0)
	case 1:
		return terms[0]
	}

	return &Add{terms: terms}
}

func (a *Add) String() string {
	var b strings.Builder

	for i, t := range a.terms {
		if i == 0 {
			b.WriteString(t.String())

			continue
		}

		if neg, ok := negated(t); ok {
			b.WriteString(" - ")
			b.WriteString(paren(neg, precMul))
		} else {
			b.WriteString(" + ")
			b.WriteString(t.String())
		}
	}

	return b.String()
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)

	return ok && equalAll(a.terms, o.terms)
}

func (a *Add) children() []Expr         { return a.terms }
func (a *Add) rebuild(kids []Expr) Expr { return AddOf(kids...) }
func (a *Add) prec() int                { return precAdd }

// splitCoeff separates the numeric coefficient of a term from the rest.
func splitCoeff(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok {
		return NewInt(1), e
	}

	c, ok := m.factors[0].(*Num)
	if !ok {
		return NewInt(1), e
	}

	rest := m.factors[1:]
	if len(rest) == 1 {
		return c, rest[0]
	}

	return c, &Mul{factors: rest}
}

// negated returns -e when e prints with a leading minus sign.
func negated(e Expr) (Expr, bool) {
	switch v := e.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			return MulOf(append([]Expr{numNeg(c)}, v.factors[1:]...)...), true
		}
	}

	return nil, false
}

// Mul is a product of two or more factors. A numeric coefficient, when
// present, is always the first factor.
type Mul struct{ factors []Expr }

// MulOf returns the simplified product of factors.
func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Factors returns the operands of the product.
func (m *Mul) Factors() []Expr { return m.factors }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))

	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	type like struct {
		base Expr
		exps []Expr
	}

	coeff := NewInt(1)
	groups := map[string]*like{}
	order := []string{}

	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)

			continue
		}

		base, exp := splitPow(f)
		key := base.String()

		g, seen := groups[key]
		if !seen {
			g = &like{base: base}
			groups[key] = g
			order = append(order, key)
		}

		g.exps = append(g.exps, exp)
	}

	others := make([]Expr, 0, len(order))

	for _, key := range order {
		g := groups[key]

		exp := g.exps[0]
		if len(g.exps) > 1 {
			exp = AddOf(g.exps...)
		}

		switch p := PowOf(g.base, exp).(type) {
		case *Num:
			coeff = numMul(coeff, p)
		case *Mul:
			for _, f := range p.factors {
				if n, ok := f.(*Num); ok {
					coeff = numMul(coeff, n)
				} else {
					others = append(others, f)
				}
			}
		default:
			others = append(others, p)
		}
	}

	if coeff.IsZero() {
		return NewInt(0)
	}

	if len(others) == 0 {
		return coeff
	}

	others = sortByKey(others)

	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}

		return &Mul{factors: others}
	}

	// A number times a single sum distributes over the sum.
	if sum, ok := others[0].(*Add); ok && len(others) == 1 {
		terms := make([]Expr, len(sum.terms))
		for i, t := range sum.terms {
			terms[i] = MulOf(coeff, t)
		}

		return AddOf(terms...)
	}

	return &Mul{factors: append([]Expr{coeff}, others...)}
}

func (m *Mul) String() string {
	coeff := NewInt(1)
	factors := m.factors

	if c, ok := factors[0].(*Num); ok {
		coeff = c
		factors = factors[1:]
	}

	var num, den []string

	if p := coeff.val.Num(); p.CmpAbs(bigOne) != 0 {
		num = append(num, new(big.Int).Abs(p).String())
	}

	if q := coeff.val.Denom(); q.Cmp(bigOne) != 0 {
		den = append(den, q.String())
	}

	for _, f := range factors {
		if pw, ok := f.(*Pow); ok {
			if e, ok := pw.exp.(*Num); ok && e.IsNegative() {
				den = append(den, paren(PowOf(pw.base, numNeg(e)), precPow))

				continue
			}
		}

		num = append(num, paren(f, precMul))
	}

	s := strings.Join(num, "*")
	if s == "" {
		s = "1"
	}

	if len(den) > 0 {
		d := strings.Join(den, "*")
		if len(den) > 1 {
			d = "(" + d + ")"
		}

		s += "/" + d
	}

	if coeff.IsNegative() {
		s = "-" + s
	}

	return s
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)

	return ok && equalAll(m.factors, o.factors)
}

func (m *Mul) children() []Expr         { return m.factors }
func (m *Mul) rebuild(kids []Expr) Expr { return MulOf(kids...) }

func (m *Mul) prec() int {
	if c, ok := m.factors[0].(*Num); ok && c.IsNegative() {
		return precAdd
	}

	return precMul
}

// splitPow separates a factor into base and exponent.
func splitPow(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}

	return e, NewInt(1)
}

// Pow is base raised to exp.
type Pow struct{ base, exp Expr }

// PowOf returns the simplified power base^exp.
func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// Base returns the base of the power.
func (p *Pow) Base() Expr { return p.base }

// Exp returns the exponent of the power.
func (p *Pow) Exp() Expr { return p.exp }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok {
		if en.IsZero() {
			return NewInt(1)
		}

		if en.IsOne() {
			return base
		}
	}

	if bn, ok := base.(*Num); ok {
		if folded, ok := powNum(bn, exp); ok {
			return folded
		}
	}

	if e, ok := int64Exponent(exp); ok {
		switch b := base.(type) {
		case *Pow:
			return PowOf(b.base, MulOf(b.exp, NewInt(e)))
		case *Mul:
			factors := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				factors[i] = PowOf(f, exp)
			}

			return MulOf(factors...)
		}
	}

	return &Pow{base: base, exp: exp}
}

// powNum folds a numeric base raised to exp when the result is exact.
func powNum(bn *Num, exp Expr) (Expr, bool) {
	en, isNum := exp.(*Num)

	switch {
	case bn.IsZero():
		if !isNum {
			return nil, false
		}

		if en.IsNegative() {
			panic(ErrDivisionByZero)
		}

		return NewInt(0), true

	case bn.IsOne():
		return NewInt(1), true
	}

	if e, ok := int64Exponent(exp); ok {
		return numPowInt(bn, e), true
	}

	// Half-integer powers of perfect squares.
	if isNum && en.val.Denom().Cmp(bigTwo) == 0 && en.val.Num().IsInt64() {
		if r, ok := numSqrt(bn); ok {
			if n := en.val.Num().Int64(); n <= maxExactExponent && n >= -maxExactExponent {
				return numPowInt(r, n), true
			}
		}
	}

	return nil, false
}

func (p *Pow) String() string {
	if e, ok := p.exp.(*Num); ok {
		if e.IsNegative() {
			return "1/" + paren(PowOf(p.base, numNeg(e)), precPow)
		}

		if e.Equal(half) {
			return "sqrt(" + p.base.String() + ")"
		}
	}

	return paren(p.base, precAtom) + "^" + paren(p.exp, precAtom)
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)

	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) children() []Expr         { return []Expr{p.base, p.exp} }
func (p *Pow) rebuild(kids []Expr) Expr { return PowOf(kids[0], kids[1]) }

func (p *Pow) prec() int {
	if e, ok := p.exp.(*Num); ok {
		if e.IsNegative() {
			return precMul
		}

		if e.Equal(half) {
			return precAtom
		}
	}

	return precPow
}
