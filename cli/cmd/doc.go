// Package cmd implements the symsubst subcommands: eval, fmt, repl and init.
//
// Substitution maps are read from JSON or YAML files named with the global
// --map flag, merged in order, and then overridden by --set bindings.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
