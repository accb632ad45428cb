package generic

import (
	"testwright/internal/types"
)

// Unify matches a declared type against the runtime type of a value and
// records type-parameter bindings in b. A nil actual type stands for a nil
// value and binds nothing.
func Unify(declared, actual *types.Type, b types.Bindings) error {
	if declared == nil || actual == nil || actual.Kind == types.KindAny {
		return nil
	}

	switch declared.Kind {
	case types.KindAny:
		return nil

	case types.KindParam:
		actual = actual.Underlying()
		if existing, ok := b.Lookup(declared); ok {
			if !existing.Equal(actual) {
				return &ConflictError{Param: declared, First: existing, Second: actual}
			}
			return nil
		}
		b[declared.ID()] = actual
		return nil

	case types.KindNullable:
		return Unify(declared.Elem, actual.Underlying(), b)
	}

	if !declared.IsGeneric() {
		if !declared.AssignableFrom(actual) {
			return &MismatchError{Declared: declared, Actual: actual}
		}
		return nil
	}

	actual = actual.Underlying()
	switch declared.Kind {
	case types.KindArray:
		if actual.Kind != types.KindArray {
			return &MismatchError{Declared: declared, Actual: actual}
		}
		return Unify(declared.Elem, actual.Elem, b)

	case types.KindTuple:
		if actual.Kind != types.KindTuple || len(actual.Args) != len(declared.Args) {
			return &MismatchError{Declared: declared, Actual: actual}
		}
		return unifyAll(declared.Args, actual.Args, b)

	default:
		match := findDefinition(actual, declared, map[string]bool{})
		if match == nil {
			return &MismatchError{Declared: declared, Actual: actual}
		}
		return unifyAll(declared.Args, match.Args, b)
	}
}

func unifyAll(declared, actual []*types.Type, b types.Bindings) error {
	for i := range declared {
		if err := Unify(declared[i], actual[i], b); err != nil {
			return err
		}
	}
	return nil
}

// findDefinition returns t or the first supertype of t that shares the
// generic definition of target.
func findDefinition(t, target *types.Type, seen map[string]bool) *types.Type {
	if t == nil || t.Kind != types.KindNamed {
		return nil
	}
	if t.SameDefinition(target) {
		return t
	}
	if seen[t.String()] {
		return nil
	}
	seen[t.String()] = true
	for _, s := range t.Supers() {
		if m := findDefinition(s, target, seen); m != nil {
			return m
		}
	}
	return nil
}
