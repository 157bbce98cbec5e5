// Package cli contains the command line interface for symsubst.
//
// # Usage
//
// The default command evaluates an expression under a substitution map
// assembled from map files and --set bindings:
//
//	symsubst -m constants.yaml 'a*b + 10' -s a=3 -s b=-4
//
// Other commands re-encode map files (fmt), start an interactive session
// (repl) and write the current flag values to the configuration file (init).
//
// # Configuration
//
// Flag defaults are read from config.yaml and config.json in the user
// configuration directory, e.g. ~/.config/symsubst. YAML keys may use
// hyphens or underscores. Command-line flags take precedence.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format, or "none"
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Style text output for terminals
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
// Then --pprof-mode selects the profile and --pprof-dir its output directory.
package cli
