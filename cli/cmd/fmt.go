package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/symsubst/symengine"
)

// Fmt decodes a substitution map and re-encodes it in canonical form.
type Fmt struct {
	Text Text `cmd:"" default:"withargs" help:"Format as NAME = EXPR lines (default)."`
	JSON JSON `cmd:""                    help:"Format as JSON."`
	YAML YAML `cmd:""                    help:"Format as YAML."`
}

// Text formats a map as one NAME = EXPR line per entry, sorted by name.
type Text struct {
	Source string `arg:"" default:"-" help:"Map file (JSON or YAML) or '-' for stdin." name:"source"`
}

// Run executes the text command.
func (t *Text) Run(ctx context.Context) error {
	return format(ctx, t.Source, "text", func(w io.Writer, m *symengine.ExpressionMap[string]) error {
		for k, v := range m.All() {
			if _, err := fmt.Fprintf(w, "%s = %s\n", k, v); err != nil {
				return err
			}
		}

		return nil
	})
}

// JSON formats a map as a JSON object.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output (0 for compact)" short:"i"`

	Source string `arg:"" default:"-" help:"Map file (JSON or YAML) or '-' for stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	return format(ctx, j.Source, "json", func(w io.Writer, m *symengine.ExpressionMap[string]) error {
		var (
			data []byte
			err  error
		)

		if j.Indent > 0 {
			data, err = json.MarshalIndent(m, "", strings.Repeat(" ", j.Indent))
		} else {
			data, err = json.Marshal(m)
		}

		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	})
}

// YAML formats a map as a YAML mapping.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output (0 for flow style)" short:"i"`

	Source string `arg:"" default:"-" help:"Map file (JSON or YAML) or '-' for stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return format(ctx, y.Source, "yaml", func(w io.Writer, m *symengine.ExpressionMap[string]) error {
		var opts []yaml.EncodeOption
		if y.Indent > 0 {
			opts = append(opts, yaml.Indent(y.Indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		data, err := yaml.MarshalContext(ctx, m, opts...)
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(w, string(data))

		return err
	})
}

// format reads source and writes it with encode.
func format(
	ctx context.Context,
	source, name string,
	encode func(io.Writer, *symengine.ExpressionMap[string]) error,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	m, err := readMap(ctx, source)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := encode(stdout(ctx), m); err != nil {
		return ErrMarshal.Wrap(err).With(
			slog.String("format", name),
			slog.String("file", source))
	}

	return nil
}
