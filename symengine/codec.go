package symengine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"
)

// MarshalJSON encodes m as a JSON object mapping each key to the printed
// form of its value.
func (m *ExpressionMap[K]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.printed())
}

// UnmarshalJSON replaces the contents of m with the decoded object.
// Values may be expression strings or JSON numbers. A JSON null leaves m
// as it is. On failure m is left unchanged and the error wraps [ErrDecode].
func (m *ExpressionMap[K]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return ErrDecode.Wrap(err).With(slog.String("format", "json"))
	}

	if raw == nil {
		return nil
	}

	return m.decode("json", raw)
}

// MarshalYAML encodes m as a YAML mapping with keys in sorted order.
func (m *ExpressionMap[K]) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, 0, len(m.table))
	for k, v := range m.All() {
		out = append(out, yaml.MapItem{Key: string(k), Value: v.String()})
	}

	return out, nil
}

// UnmarshalYAML replaces the contents of m with the decoded mapping.
// A null document leaves m as it is. On failure m is left unchanged and the
// error wraps [ErrDecode].
func (m *ExpressionMap[K]) UnmarshalYAML(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ErrDecode.Wrap(err).With(slog.String("format", "yaml"))
	}

	if raw == nil {
		return nil
	}

	return m.decode("yaml", raw)
}

func (m *ExpressionMap[K]) printed() map[string]string {
	out := make(map[string]string, len(m.table))
	for k, v := range m.All() {
		out[string(k)] = v.String()
	}

	return out
}

// decode converts every value of raw before touching m, then fills a fresh
// map through Insert and takes over its handle.
func (m *ExpressionMap[K]) decode(format string, raw map[string]any) error {
	keys := slices.Sorted(maps.Keys(raw))
	values := make([]*Expression, len(keys))

	for i, k := range keys {
		v, err := expressionOf(raw[k])
		if err != nil {
			return ErrDecode.Wrap(err).With(
				slog.String("format", format),
				slog.String("key", k))
		}

		values[i] = v
	}

	fresh := &ExpressionMap[K]{opts: m.opts}
	for i, k := range keys {
		fresh.Insert(K(k), values[i])
	}

	fresh.init()
	fresh.cleanup.Stop()

	handle, table := fresh.handle, fresh.table
	fresh.handle, fresh.table, fresh.closed = nil, nil, true

	m.adopt(handle, table)

	m.logger().Trace("decode",
		slog.String("format", format),
		slog.Int("len", len(table)))

	return nil
}

// expressionOf converts a decoded JSON or YAML scalar to an Expression.
func expressionOf(v any) (*Expression, error) {
	switch v := v.(type) {
	case string:
		return Parse(v)
	case json.Number:
		return Parse(v.String())
	case int:
		return From(v), nil
	case int64:
		return From(v), nil
	case uint64:
		return From(v), nil
	case float64:
		return From(v), nil
	case nil:
		return nil, errors.New("null value")
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// MarshalYAML encodes e as its printed form.
func (e *Expression) MarshalYAML() (any, error) { return e.String(), nil }

// UnmarshalYAML decodes a YAML scalar into e. Numbers are accepted as well
// as expression strings.
func (e *Expression) UnmarshalYAML(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ErrDecode.Wrap(err).With(slog.String("format", "yaml"))
	}

	parsed, err := expressionOf(raw)
	if err != nil {
		return err
	}

	text, _ := parsed.MarshalText()

	return e.UnmarshalText(text)
}
