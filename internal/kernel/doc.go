// Package kernel is a small in-process symbolic algebra engine.
//
// It provides exact rational numbers, symbols, sums, products, powers and
// named functions, kept in a canonical simplified form so that structurally
// equal expressions print identically. Expression strings are parsed with
// the expr-lang parser and lowered into kernel nodes.
//
// The kernel backs the default build of package internal/capi, which
// presents it through the same opaque-handle interface as the native
// SymEngine C wrapper. Outside internal/capi only [Functions] is used.
//
// # Canonical form
//
//   - sums and products are flattened and their numeric parts folded
//   - like terms combine (2*a + 3*a is 5*a)
//   - like factors combine by adding exponents (a*a is a^2)
//   - operands are ordered by their printed form
//   - integer powers of products distribute over the factors
//
// Printing is re-parseable: Parse(e.String()) is Equal to e.
package kernel
