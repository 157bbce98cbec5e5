package kernel

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// ErrSyntax is returned when an expression string cannot be parsed or uses
// syntax outside the algebraic subset.
var ErrSyntax = errors.New("invalid expression")

// Parse converts an expression string into a simplified expression.
//
// The accepted grammar is the arithmetic subset of expr-lang: integer and
// decimal literals, identifiers, unary + and -, binary + - * / and the power
// operators ^ and **, and calls of the functions named by Functions.
func Parse(src string) (expr Expr, err error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrSyntax)
	}

	lits, err := extractLiterals(src)
	if err != nil {
		return nil, err
	}

	tree, err := parser.Parse(lits.src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	var check syntaxCheck

	ast.Walk(&tree.Node, &check)

	if check.err != nil {
		return nil, check.err
	}

	// Simplification panics on exact arithmetic failures such as 1/0.
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok || !errors.Is(e, ErrDivisionByZero) {
				panic(r)
			}

			expr, err = nil, e
		}
	}()

	return lits.lower(tree.Node)
}

// MustParse is like Parse but panics if src cannot be parsed.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}

	return e
}

// syntaxCheck records the first node outside the algebraic subset.
type syntaxCheck struct{ err error }

func (c *syntaxCheck) Visit(node *ast.Node) {
	if c.err != nil {
		return
	}

	switch n := (*node).(type) {
	case *ast.IdentifierNode:
	case *ast.UnaryNode:
		if n.Operator != "-" && n.Operator != "+" {
			c.err = fmt.Errorf("%w: unsupported operator %q", ErrSyntax, n.Operator)
		}
	case *ast.BinaryNode:
		switch n.Operator {
		case "+", "-", "*", "/", "^", "**":
		default:
			c.err = fmt.Errorf("%w: unsupported operator %q", ErrSyntax, n.Operator)
		}
	case *ast.CallNode:
		id, ok := n.Callee.(*ast.IdentifierNode)
		if !ok {
			c.err = fmt.Errorf("%w: unsupported call", ErrSyntax)
		} else {
			c.err = checkCall(id.Value, len(n.Arguments))
		}
	case *ast.BuiltinNode:
		c.err = checkCall(n.Name, len(n.Arguments))
	default:
		c.err = fmt.Errorf("%w: unsupported syntax %T", ErrSyntax, n)
	}
}

func checkCall(name string, argc int) error {
	if !IsFunction(name) {
		return fmt.Errorf("%w: unknown function %q", ErrSyntax, name)
	}

	if argc != 1 {
		return fmt.Errorf("%w: %s takes 1 argument, got %d", ErrSyntax, name, argc)
	}

	return nil
}

// maxLiteralExponent bounds the decimal exponent of a numeric literal.
const maxLiteralExponent = 4096

// literals holds the source with every numeric literal replaced by a
// placeholder identifier, and the exact value of each placeholder.
// The expr-lang parser reads literals as int or float64, which cannot hold
// every number the kernel prints.
type literals struct {
	src    string
	values map[string]*Num
}

// extractLiterals scans src for decimal literals (digits with an optional
// fraction, exponent and _ separators) and swaps each one for a placeholder.
// The placeholder prefix is lengthened until it does not occur in src.
func extractLiterals(src string) (*literals, error) {
	prefix := "_lit"
	for strings.Contains(src, prefix) {
		prefix = "_" + prefix
	}

	lits := &literals{values: make(map[string]*Num)}

	var b strings.Builder

	for i := 0; i < len(src); {
		c := src[i]

		switch {
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && (isIdentStart(src[j]) || isDigit(src[j])) {
				j++
			}

			b.WriteString(src[i:j])
			i = j

		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			j := scanNumber(src, i)

			text := strings.ReplaceAll(src[i:j], "_", "")

			if k := strings.IndexAny(text, "eE"); k >= 0 {
				exp, err := strconv.Atoi(text[k+1:])
				if err != nil || exp > maxLiteralExponent || exp < -maxLiteralExponent {
					return nil, fmt.Errorf("%w: exponent of %q out of range", ErrSyntax, src[i:j])
				}
			}

			r, ok := new(big.Rat).SetString(text)
			if !ok {
				return nil, fmt.Errorf("%w: invalid number %q", ErrSyntax, src[i:j])
			}

			name := fmt.Sprintf("%s%d", prefix, len(lits.values))
			lits.values[name] = newNum(r)

			// Spaces keep "2x" and "x.5" from fusing into one identifier.
			b.WriteByte(' ')
			b.WriteString(name)
			b.WriteByte(' ')
			i = j

		default:
			b.WriteByte(c)
			i++
		}
	}

	lits.src = b.String()

	return lits, nil
}

// scanNumber returns the end of the numeric literal starting at src[i].
func scanNumber(src string, i int) int {
	digits := func(j int) int {
		for j < len(src) && (isDigit(src[j]) || src[j] == '_') {
			j++
		}

		return j
	}

	j := digits(i)
	if j < len(src) && src[j] == '.' && j+1 < len(src) && isDigit(src[j+1]) {
		j = digits(j + 1)
	}

	if j < len(src) && (src[j] == 'e' || src[j] == 'E') {
		k := j + 1
		if k < len(src) && (src[k] == '+' || src[k] == '-') {
			k++
		}

		if k < len(src) && isDigit(src[k]) {
			j = digits(k)
		}
	}

	return j
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// lower converts a checked syntax tree into kernel nodes.
func (l *literals) lower(node ast.Node) (Expr, error) {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		if v, ok := l.values[n.Value]; ok {
			return v, nil
		}

		return NewSym(n.Value), nil

	case *ast.UnaryNode:
		x, err := l.lower(n.Node)
		if err != nil {
			return nil, err
		}

		if n.Operator == "-" {
			return MulOf(NewInt(-1), x), nil
		}

		return x, nil

	case *ast.BinaryNode:
		x, err := l.lower(n.Left)
		if err != nil {
			return nil, err
		}

		y, err := l.lower(n.Right)
		if err != nil {
			return nil, err
		}

		switch n.Operator {
		case "+":
			return AddOf(x, y), nil
		case "-":
			return AddOf(x, MulOf(NewInt(-1), y)), nil
		case "*":
			return MulOf(x, y), nil
		case "/":
			return MulOf(x, PowOf(y, NewInt(-1))), nil
		default:
			return PowOf(x, y), nil
		}

	case *ast.CallNode:
		return l.lowerCall(n.Callee.(*ast.IdentifierNode).Value, n.Arguments)

	case *ast.BuiltinNode:
		return l.lowerCall(n.Name, n.Arguments)
	}

	return nil, fmt.Errorf("%w: unsupported syntax %T", ErrSyntax, node)
}

func (l *literals) lowerCall(name string, args []ast.Node) (Expr, error) {
	arg, err := l.lower(args[0])
	if err != nil {
		return nil, err
	}

	return FuncOf(name, arg), nil
}
