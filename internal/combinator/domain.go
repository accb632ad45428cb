package combinator

import (
	"fmt"

	"testwright/internal/model"
	"testwright/internal/types"
)

// UsageError reports a malformed matrix or combined declaration.
type UsageError struct {
	Parameter string
	Reason    string
}

func (e *UsageError) Error() string {
	if e.Parameter == "" {
		return "invalid data source: " + e.Reason
	}
	return fmt.Sprintf("invalid data source for parameter %q: %s", e.Parameter, e.Reason)
}

// BoolDomain returns true, false and, for nullable parameters, nil.
func BoolDomain(nullable bool) []any {
	if nullable {
		return []any{true, false, nil}
	}
	return []any{true, false}
}

// EnumDomain returns the declared values of an enum type, followed by nil
// when the type is nullable.
func EnumDomain(t *types.Type) []any {
	values := t.EnumValues()
	if t.IsNullable() {
		values = append(values, nil)
	}
	return values
}

// InferDomain returns the candidate values implied by a parameter type.
func InferDomain(p *model.Parameter) ([]any, error) {
	switch {
	case p.Type.IsBool():
		return BoolDomain(p.Type.IsNullable()), nil
	case p.Type.IsEnum():
		return EnumDomain(p.Type), nil
	default:
		return nil, &UsageError{Parameter: p.Name, Reason: fmt.Sprintf("no candidate values and type %s has no inferable domain", p.Type)}
	}
}

// Candidates returns the candidate list of one matrix parameter. Explicit
// values, when non-nil, replace domain inference. The parameter's exclusions
// are applied last.
func Candidates(p *model.Parameter, explicit []any) ([]any, error) {
	var excluding []any
	if p.Matrix != nil {
		excluding = p.Matrix.Excluding
	}

	inferred := explicit == nil
	values := explicit
	if inferred {
		var err error
		if values, err = InferDomain(p); err != nil {
			return nil, err
		}
	}
	if len(values) == 0 {
		return nil, &UsageError{Parameter: p.Name, Reason: "no candidate values"}
	}

	if err := validateExclusions(p, excluding, values, inferred); err != nil {
		return nil, err
	}

	out := make([]any, 0, len(values))
	for _, v := range values {
		if !contains(excluding, v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, &UsageError{Parameter: p.Name, Reason: "exclusions remove every candidate value"}
	}
	return out, nil
}

func validateExclusions(p *model.Parameter, excluding, domain []any, inferred bool) error {
	for _, x := range excluding {
		if x == nil {
			switch {
			case !p.Type.IsNullable():
				return &UsageError{Parameter: p.Name, Reason: fmt.Sprintf("cannot exclude nil from non-nullable type %s", p.Type)}
			case p.Type.IsEnum():
				return &UsageError{Parameter: p.Name, Reason: "cannot exclude nil from a nullable enum; declare the parameter non-nullable instead"}
			}
			continue
		}
		if inferred && p.Type.IsBool() && !contains(domain, x) {
			return &UsageError{Parameter: p.Name, Reason: fmt.Sprintf("excluded value %v is not a bool", x)}
		}
	}
	return nil
}
