package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/symsubst/cli/cmd/repl"
	"github.com/ardnew/symsubst/log"
)

// Repl starts an interactive session over the substitution map.
type Repl struct {
	Set []string `help:"Bind a symbol to an expression" placeholder:"NAME=EXPR" short:"s"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	vars, err := bindings(ctx, r.Set)
	if err != nil {
		return err
	}
	defer vars.Close()

	cacheDir := ""
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	logger := log.Default().With(slog.String("component", "repl"))

	return repl.Run(ctx, vars, cacheDir, logger)
}
