// Package builder is the test construction orchestrator. It turns declared
// test methods into TestDefinitions ready for an execution subsystem.
//
// # Pipeline
//
// For every method the builder enumerates class-level descriptors crossed
// with method-level descriptors, substituting a single NoOp descriptor for a
// level that declares none, so at least one combination is always attempted.
// For each class row it maps the row onto the constructor signature and
// closes the class over inferred type arguments. When a method-level source
// or instance property needs instance data a throwaway instance is
// constructed first. Each method row yields Repeat+1 definitions, and every
// definition calls the class row factory, the method row factory and the
// property sources again, so unshared fixtures and freshly built values are
// never handed to two tests. The definition then registers usage of every
// fixture it acquired. Static properties are resolved, initialized and set
// once per closed class. Unshared fixtures acquired by a combination that
// fails to build are released.
//
// # Failures
//
// Any error or panic inside one combination becomes a DiscoveryFailure
// carrying the intended identity, the declaration's location and the
// original error. Construction then continues with the next combination, so
// one malformed data source never hides the rest of a suite.
//
// # Concurrency
//
// Rows of one method are pulled sequentially because generators may be
// stateful. Different methods are independent and are built concurrently,
// bounded by Options.Parallelism. Result order is deterministic: methods in
// input order, combinations in enumeration order.
package builder
