package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/symsubst/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag defaults from a
// YAML mapping:
//
//	log_level: debug
//	log_format: json
//	log_pretty: false
//	map:
//	  - ~/constants.yaml
//
// Keys are flag names with either hyphens or underscores. Scalars are passed
// to kong as strings and sequences are joined with commas. Command-line flags
// override config file values. A malformed file is reported at warn level and
// otherwise ignored.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var raw map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &raw)
		if err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.Any("error", err))

			return config{}, nil
		}

		cfg := make(config, len(raw))
		for key, value := range raw {
			cfg[strings.ReplaceAll(key, "_", "-")] = flagValue(value)
		}

		return cfg, nil
	}
}

// flagValue converts a decoded YAML value to the form kong expects.
func flagValue(v any) any {
	switch v := v.(type) {
	case bool, string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprint(flagValue(e))
		}

		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// config implements [kong.Resolver] over a flat map keyed by flag name.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	return nil, nil //nolint:nilnil
}
