package generic

import (
	"fmt"

	"testwright/internal/types"
)

// CannotInferError reports a type parameter without a discoverable binding.
type CannotInferError struct {
	Target string
	Param  *types.Type
}

func (e *CannotInferError) Error() string {
	return fmt.Sprintf("cannot infer type argument %s of %s from the supplied arguments", e.Param.Name, e.Target)
}

// ConflictError reports a type parameter inferred as two different types.
type ConflictError struct {
	Param  *types.Type
	First  *types.Type
	Second *types.Type
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting inference for type parameter %s: %s and %s", e.Param.Name, e.First, e.Second)
}

// MismatchError reports a value whose type cannot match the declared type.
type MismatchError struct {
	Declared *types.Type
	Actual   *types.Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("value of type %s does not match declared type %s", e.Actual, e.Declared)
}

// ConstraintError reports a binding that violates a type parameter
// constraint.
type ConstraintError struct {
	Param      *types.Type
	Bound      *types.Type
	Constraint *types.Type
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("type argument %s for %s does not satisfy constraint %s", e.Bound, e.Param.Name, e.Constraint)
}

// ParameterError attributes an inference failure to a parameter.
type ParameterError struct {
	Parameter string
	Err       error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter %s: %v", e.Parameter, e.Err)
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}
