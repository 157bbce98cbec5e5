package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/symsubst/log"
	"github.com/ardnew/symsubst/symengine"
)

const defaultEditor = "vi"

// editMapCommand implements [tea.ExecCommand]. It writes the session map as
// YAML to a temporary file, opens the user's editor and validates the
// result. On a decode error the user is asked whether to edit again;
// declining exits the program.
//
// The session map itself is not modified here. The validated document is
// left in data for the model to apply.
type editMapCommand struct {
	vars    *symengine.ExpressionMap[string]
	ctxFunc func() context.Context
	logger  log.Logger
	data    []byte
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editMapCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editMapCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editMapCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-validate-retry loop. It returns [ErrEditDeclined] if
// the user gives up after an invalid edit. An emptied file leaves data nil.
func (c *editMapCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := yaml.MarshalContext(ctx, c.vars, yaml.Indent(2))
	if err != nil {
		return fmt.Errorf("encode map: %w", err)
	}

	f, err := os.CreateTemp(os.TempDir(), "symsubst-repl-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		decodeErr := validate(data)

		c.logger.TraceContext(ctx, "editor decode attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", decodeErr == nil))

		if decodeErr == nil {
			c.data = data

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDecode error: %s\n", decodeErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		if !confirm(c.stdin) {
			return ErrEditDeclined
		}

		content = data
	}
}

// validate decodes data into a throwaway map.
func validate(data []byte) error {
	var m symengine.ExpressionMap[string]
	defer m.Close()

	return yaml.Unmarshal(data, &m)
}

// confirm reads a yes/no answer, defaulting to yes.
func confirm(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "n", "no":
		return false
	}

	return true
}

// runEditor opens path in $EDITOR and returns the edited content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
