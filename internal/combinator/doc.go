// Package combinator implements the Cartesian expansion used by matrix and
// combined data sources.
//
// Product folds per-parameter candidate lists from a single empty seed row, so
// for list sizes a1..an it yields exactly a1*...*an rows in an order that is a
// pure function of the input order. ExcludeRows removes whole rows that are
// positionally equal to an exclusion.
//
// Candidates derives one parameter's list: explicit values when given,
// otherwise the inferred domain of bool and enum parameters (plus nil when the
// parameter is nullable), filtered by the parameter's own exclusions.
// Malformed declarations are reported as UsageError.
//
// # Equality
//
// Values implementing Equaler decide equality themselves. Everything else is
// compared by deep value equality, with numeric kinds compared by value so
// that int(1) and int64(1) match.
package combinator
