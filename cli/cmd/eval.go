package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/symsubst/log"
	"github.com/ardnew/symsubst/symengine"
)

// Eval substitutes the session bindings into an expression.
type Eval struct {
	Expr   string   `arg:""                                 help:"Expression to evaluate"                        name:"expr"`
	Set    []string `help:"Bind a symbol to an expression"  placeholder:"NAME=EXPR"                              short:"s"`
	Output string   `default:"text"                         enum:"text,json,yaml"   help:"Output format"          short:"o"`
	Strict bool     `help:"Fail if unbound symbols remain"`
}

// evalResult is the structured form of an evaluation for JSON and YAML
// output.
type evalResult struct {
	Expr    string   `json:"expr"              yaml:"expr"`
	Result  string   `json:"result"            yaml:"result"`
	Unbound []string `json:"unbound,omitempty" yaml:"unbound,omitempty"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	expr, err := symengine.Parse(e.Expr)
	if err != nil {
		return ErrEvaluate.Wrap(err).With(slog.String("command", "eval"))
	}

	vars, err := bindings(ctx, e.Set)
	if err != nil {
		return err
	}
	defer vars.Close()

	result, err := vars.Subs(expr)
	if err != nil {
		return ErrEvaluate.Wrap(err).With(
			slog.String("command", "eval"),
			slog.Any("bindings", vars))
	}

	unbound := result.FreeSymbols()
	if len(unbound) > 0 {
		if e.Strict {
			return ErrUnbound.With(
				slog.String("expr", e.Expr),
				slog.String("symbols", strings.Join(unbound, " ")))
		}

		log.WarnContext(ctx, "unbound symbols",
			slog.String("symbols", strings.Join(unbound, " ")))
	}

	return e.print(ctx, evalResult{
		Expr:    expr.String(),
		Result:  result.String(),
		Unbound: unbound,
	})
}

func (e *Eval) print(ctx context.Context, r evalResult) error {
	w := stdout(ctx)

	switch e.Output {
	case "json":
		data, err := json.Marshal(r)
		if err != nil {
			return ErrMarshal.Wrap(err).With(slog.String("format", "json"))
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case "yaml":
		data, err := yaml.MarshalContext(ctx, r)
		if err != nil {
			return ErrMarshal.Wrap(err).With(slog.String("format", "yaml"))
		}

		_, err = fmt.Fprint(w, string(data))

		return err

	default:
		_, err := fmt.Fprintln(w, r.Result)

		return err
	}
}
