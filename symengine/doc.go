// Package symengine binds the substitution map of a symbolic algebra engine.
//
// An [ExpressionMap] maps symbol names to [Expression] values and substitutes
// them, all at once, into other expressions:
//
//	m := symengine.NewExpressionMap[string]()
//	defer m.Close()
//
//	m.Insert("a", symengine.From(3))
//	m.Insert("b", symengine.From(-4))
//
//	m.Eval(symengine.MustParse("a*b + 10")) // -2
//
// Symbols without an entry are left in place.
//
// # Engines
//
// Built with cgo and the symengine build tag, the package links against
// libsymengine through its C wrapper. Otherwise an in-process engine with
// exact rational arithmetic is used. [Engine] reports which one is active.
// Both print expressions in their own canonical form, so compare results
// with [Expression.Equal] rather than by string when the engine may vary.
//
// # Resources
//
// Every Expression and ExpressionMap owns an engine handle. Handles are
// released by the garbage collector; [ExpressionMap.Close] releases a map's
// handle immediately.
//
// # Encoding
//
// ExpressionMap implements JSON and YAML marshaling as a plain mapping from
// key to expression string. Decoding accepts expression strings and numbers
// and replaces the map's previous contents only on success.
//
// # Errors
//
// Errors returned by this package wrap one of [ErrParse], [ErrSubstitute],
// [ErrDecode] or [ErrClosed]. They implement [log/slog.LogValuer] and carry
// the offending input as attributes.
package symengine
