// Package types provides the runtime type model used during test construction.
//
// Go cannot close a generic type at run time, so declarations carry their own
// type metadata: named types (optionally generic, with declared supertypes),
// type parameters, nullable wrappers, arrays, tuples and enums. The model is
// small on purpose: it only has to answer the questions the generic resolver,
// the parameter mapper and the combinators ask.
//
// # Core Concepts
//
//   - **Definition**: a named type definition with optional type parameters,
//     supertypes expressed in terms of those parameters and, for enums, an
//     ordered value domain.
//   - **Type**: one node of a type expression. Named types reference a
//     Definition plus arguments; parameters are identified by owner and name.
//   - **TypeOf**: maps a Go value to its Type. Values may report their own type
//     through the Typed interface, Go types may be registered explicitly, and
//     builtins map through reflection.
//   - **Universe**: a name scope used to parse type expressions such as
//     "Map<string, T[]>" or "int?" from declaration files.
//
// # Assignability
//
// AssignableFrom follows the usual rules: any accepts everything, a nullable
// type accepts its underlying type and nil, named types accept themselves and
// any type declaring them as a supertype, and integer types widen towards
// int64 and float64. Open type parameters accept anything that satisfies their
// constraint.
package types
