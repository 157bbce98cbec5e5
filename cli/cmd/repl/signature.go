package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// summaries describe the functions listed by symengine.Functions.
var summaries = map[string]string{
	"abs":   "absolute value",
	"acos":  "inverse cosine",
	"asin":  "inverse sine",
	"atan":  "inverse tangent",
	"ceil":  "least integer not less than x",
	"cos":   "cosine",
	"cosh":  "hyperbolic cosine",
	"exp":   "natural exponential",
	"floor": "greatest integer not greater than x",
	"ln":    "natural logarithm",
	"log":   "natural logarithm",
	"sign":  "sign of x (-1, 0 or 1)",
	"sin":   "sine",
	"sinh":  "hyperbolic sine",
	"sqrt":  "square root, printed as x^(1/2)",
	"tan":   "tangent",
	"tanh":  "hyperbolic tangent",
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall describes the innermost call enclosing the cursor.
type functionCall struct {
	name     string
	argIndex int // 0-based
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed "name(" before cursor and
// counts the commas separating its arguments so far. Plain parentheses
// without a preceding name are not calls.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	open, depth := -1, 0

scan:
	for i := cursor; i > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i

				break scan
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}
	}

	call := functionCall{name: name, inCall: true}

	depth = 0
	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				call.argIndex++
			}
		}
	}

	return call
}

// signature returns the hint text for a known function.
func signature(name string) (sig, summary string, ok bool) {
	if !isFunction(name) {
		return "", "", false
	}

	return name + "(x)", summaries[name], true
}

// renderSignatureHint renders the signature of call. The parameter is
// highlighted while the cursor is in the first argument. Further arguments
// are flagged since every function takes exactly one.
func renderSignatureHint(call functionCall) string {
	sig, summary, ok := signature(call.name)
	if !ok {
		return ""
	}

	name, _, _ := strings.Cut(sig, "(")

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	if call.argIndex == 0 {
		b.WriteString(currentParamStyle.Render("x"))
	} else {
		b.WriteString(signatureStyle.Render("x"))
	}

	b.WriteString(signatureStyle.Render(")"))

	if call.argIndex > 0 {
		b.WriteString(errorStyle.Render("  takes one argument"))
	} else if summary != "" {
		b.WriteString(signatureStyle.Render("  " + summary))
	}

	return b.String()
}
