package fixture

import (
	"fmt"

	"testwright/internal/model"
)

// Key identifies a shared fixture slot.
type Key struct {
	Type  string
	Kind  model.ScopeKind
	Owner string
}

func (k Key) String() string {
	if k.Owner == "" {
		return fmt.Sprintf("%s[%s]", k.Type, k.Kind)
	}
	return fmt.Sprintf("%s[%s:%s]", k.Type, k.Kind, k.Owner)
}

// Owner carries the identities a scope kind can be keyed by.
type Owner struct {
	Class    string
	Assembly string
	Session  string
}

// KeyFor derives the scope key of a fixture request.
func KeyFor(ref model.FixtureRef, owner Owner) Key {
	k := Key{Kind: ref.Scope}
	if ref.Type != nil {
		k.Type = ref.Type.String()
	}
	switch ref.Scope {
	case model.ScopePerClass:
		k.Owner = owner.Class
	case model.ScopePerAssembly:
		k.Owner = owner.Assembly
	case model.ScopePerTestSession:
		k.Owner = owner.Session
	case model.ScopeKeyed:
		k.Owner = ref.Key
	}
	return k
}

// State is the lifecycle state of a slot.
type State int

const (
	StateUninitialized State = iota
	StateCreating
	StateCreated
	StateInitializing
	StateReady
	StateDisposing
	StateDisposed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCreating:
		return "creating"
	case StateCreated:
		return "created"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDisposing:
		return "disposing"
	case StateDisposed:
		return "disposed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LifecycleError reports a fixture that failed to be created, initialized or
// disposed.
type LifecycleError struct {
	Key   Key
	Phase string
	Err   error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("fixture %s: %s failed: %v", e.Key, e.Phase, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}
