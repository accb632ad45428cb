// Package fixture implements the shared fixture registry: a scope-keyed,
// reference-counted arena of fixture instances.
//
// # Scope Keys
//
// A Key combines the fixture type, the scope kind and an owner: the declaring
// class for per-class fixtures, the assembly for per-assembly fixtures, the
// session id for per-session fixtures and the explicit key for keyed
// fixtures. Fixtures with ScopeNone are never shared; every Get creates a
// private slot.
//
// # Lifecycle
//
// Each slot moves through
//
//	Uninitialized -> Creating -> Created -> Initializing -> Ready -> Disposing -> Disposed
//
// with Failed as the terminal state of a slot whose construction or
// initialization failed. Construction and initialization are single-flight
// per slot and their outcome is memoized, so every consumer of a key observes
// the same instance and the same failure.
//
// Usage counting is decoupled from Get: RegisterUsage is called once per
// consuming test, Release once when that test ends. A slot is disposed when
// its count reaches zero and
//
//   - immediately, for keyed fixtures
//   - once CompleteScope has been called for its owner, for per-class,
//     per-assembly and per-session fixtures
//   - on the Release of its last consumer, for unshared fixtures, which
//     never outlive the test row that created them
//
// Disposal prefers model.Disposer over io.Closer. Batch teardown (CompleteScope
// and Close) disposes in reverse creation order and keeps going after a
// failure; the errors are joined.
//
// # Tracker
//
// Tracker sits between the registry and an execution subsystem. It counts the
// tests of each class and assembly and crosses the matching scope boundary
// when the last of them finishes.
package fixture
