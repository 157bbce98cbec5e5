// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("evaluated", slog.String("result", "-2"))
//	logger.Error("decode failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// The package-level functions ([Info], [Error], ...) write through a default
// logger on [os.Stderr] that [Config] reconfigures in place. The command line
// flags in package cli drive [Config].
//
// # Adding Attributes
//
// [Logger.With] returns a logger that adds attributes to every message:
//
//	logger = logger.With(slog.String("component", "repl"))
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn] and [LevelError]. Trace sits below slog's debug level and
// prints as TRACE.
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON]. Text output is styled for the
// terminal with lipgloss unless [WithPretty] disables it; styling degrades
// to plain text when the output is not a terminal.
//
// The zero [Logger] discards all messages.
package log
