// Package model defines the read-only declaration metadata consumed by the
// test construction engine.
//
// A declaration surface (YAML suite files, hand-written registrations, or a
// code generator) describes test classes, their methods, parameters and
// properties, and attaches data descriptors to them. Nothing in this package
// performs work; it is the vocabulary shared by the data source protocol, the
// combinators, the fixture registry, the generic resolver and the builder.
//
// # Descriptors
//
// Descriptor is a closed union. Each variant carries only what it needs:
//
//   - Inline: a literal argument row
//   - Factory: a callable, static or invoked on a class instance
//   - Generator: a user-supplied lazy sequence of rows
//   - Matrix: the Cartesian product of per-parameter candidate lists
//   - Combined: the product of all sources attached to each parameter
//   - Shared: fixture instances served by the shared fixture registry
//   - Empty and NoOp: a single empty row
//
// # Pull Contract
//
// Every descriptor is resolved into a Sequence: a lazy, finite and not
// necessarily restartable stream of RowFactory values. A RowFactory is a
// deferred computation producing one argument row.
//
// # Delegates
//
// Classes and methods carry pre-resolved delegates (ClassFactory and
// MethodInvoker). Generic declarations may additionally supply Instantiate
// hooks that return delegates closed over concrete type arguments, which is
// how generated code plugs in. Both paths are treated the same.
package model
