package model

import (
	"context"

	"testwright/internal/types"
)

// Descriptor declares where the values of a class, method, parameter or
// property come from.
type Descriptor interface {
	// Kind names the variant for logs and diagnostics.
	Kind() string
	// AccessesInstance reports whether producing values requires a
	// constructed instance of the test class.
	AccessesInstance() bool

	isDescriptor()
}

// Inline is a literal argument row. A nil Values slice stands for a single
// nil argument.
type Inline struct {
	Values []any
}

// Factory invokes a callable and classifies its result into rows.
type Factory struct {
	Name string
	// Instance factories are invoked on a class instance.
	Instance bool
	Args     []any
	Call     Callable
}

// Generator produces rows from a user-defined sequence.
type Generator struct {
	Name string
	Open func(ctx context.Context, info GenerationInfo) (Sequence, error)
}

// Matrix expands the Cartesian product of the per-parameter candidates
// declared on each Parameter's Matrix field. Exclusions remove whole rows.
type Matrix struct {
	Exclusions [][]any
}

// Combined expands the Cartesian product of the descriptors attached to each
// parameter through Parameter.Sources.
type Combined struct{}

// Shared yields one row holding fixture instances from the shared fixture
// registry.
type Shared struct {
	Fixtures []FixtureRef
}

// Empty yields one row with no arguments.
type Empty struct{}

// NoOp is the descriptor used for a level that declares none.
type NoOp struct{}

func (Inline) Kind() string { return "inline" }
func (Factory) Kind() string { return "factory" }
func (Generator) Kind() string { return "generator" }
func (Matrix) Kind() string { return "matrix" }
func (Combined) Kind() string { return "combined" }
func (Shared) Kind() string { return "shared" }
func (Empty) Kind() string { return "empty" }
func (NoOp) Kind() string { return "noop" }

func (Inline) AccessesInstance() bool { return false }
func (f Factory) AccessesInstance() bool { return f.Instance }
func (Generator) AccessesInstance() bool { return false }
func (Matrix) AccessesInstance() bool { return false }
func (Combined) AccessesInstance() bool { return false }
func (Shared) AccessesInstance() bool { return false }
func (Empty) AccessesInstance() bool { return false }
func (NoOp) AccessesInstance() bool { return false }

func (Inline) isDescriptor() {}
func (Factory) isDescriptor() {}
func (Generator) isDescriptor() {}
func (Matrix) isDescriptor() {}
func (Combined) isDescriptor() {}
func (Shared) isDescriptor() {}
func (Empty) isDescriptor() {}
func (NoOp) isDescriptor() {}

// AnyAccessesInstance reports whether any descriptor, including descriptors
// nested in the given parameters, needs a class instance.
func AnyAccessesInstance(descs []Descriptor, params []*Parameter) bool {
	for _, d := range descs {
		if d.AccessesInstance() {
			return true
		}
		switch d.(type) {
		case Matrix, *Matrix:
			for _, p := range params {
				if p.Matrix != nil && p.Matrix.Factory != nil && p.Matrix.Factory.Instance {
					return true
				}
			}
		case Combined, *Combined:
			for _, p := range params {
				for _, s := range p.Sources {
					if s.AccessesInstance() {
						return true
					}
				}
			}
		}
	}
	return false
}

// ScopeKind is the sharing granularity of a fixture.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopePerClass
	ScopePerAssembly
	ScopePerTestSession
	ScopeKeyed
)

func (s ScopeKind) String() string {
	switch s {
	case ScopeNone:
		return "none"
	case ScopePerClass:
		return "class"
	case ScopePerAssembly:
		return "assembly"
	case ScopePerTestSession:
		return "session"
	case ScopeKeyed:
		return "keyed"
	default:
		return "unknown"
	}
}

// ParseScope converts a scope name as written in declarations.
func ParseScope(name string) (ScopeKind, bool) {
	switch name {
	case "", "none":
		return ScopeNone, true
	case "class", "per-class":
		return ScopePerClass, true
	case "assembly", "per-assembly":
		return ScopePerAssembly, true
	case "session", "per-session", "per-test-session":
		return ScopePerTestSession, true
	case "keyed":
		return ScopeKeyed, true
	default:
		return ScopeNone, false
	}
}

// FixtureRef requests one fixture instance.
type FixtureRef struct {
	Type  *types.Type
	Scope ScopeKind
	// Key partitions keyed fixtures.
	Key string
	New func(ctx context.Context) (any, error)
}

// MatrixValues lists the candidates of one matrix parameter. When neither
// Values nor Factory is set the domain is inferred from the parameter type.
type MatrixValues struct {
	Values    []any
	Excluding []any
	Factory   *Factory
}
