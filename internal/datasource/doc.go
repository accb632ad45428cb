// Package datasource adapts every data descriptor to one pull contract: a
// lazy sequence of row factories.
//
// # Normalization
//
// Open resolves a descriptor against a Context:
//
//   - Inline yields its literal row, or a single nil argument when no values
//     were supplied.
//   - Factory invokes its callable (on the class instance when it is
//     instance-scoped) and classifies the result. Async and Future results are
//     awaited and classified again. Slices, arrays, iter.Seq[any] values and
//     model.Sequence values are enumerable and yield one row per element;
//     strings are scalars. Anything else yields a single row.
//   - Generator delegates to the user sequence.
//   - Matrix and Combined expand the Cartesian product of per-parameter
//     candidates. Combined candidates that come from a row factory, shared
//     fixtures included, are materialized again for every row with that
//     row's context, so fixtures land in the row's FixtureSink.
//   - Shared yields one row of fixture instances from the registry.
//   - Empty and NoOp yield one empty row.
//
// An enumerable that produces nothing yields exactly one empty row, so an
// empty source builds the same number of tests as no source at all.
//
// # Rows
//
// Enumerated elements become rows: a model.Tuple is unwrapped into positions,
// a []any is taken as a complete row unless the signature has a single
// parameter that accepts it, and every other value is wrapped in a
// one-element row. Deferred elements (func() any, model.Async) are resolved
// when their row factory runs.
//
// Every materialized row, except fixture rows, passes through the
// initializer hook: values implementing model.Initializer are initialized
// before the row is returned.
//
// # Failures
//
// Errors and panics raised by user code are returned as SourceError, with a
// model.InvocationError wrapper stripped one level.
package datasource
