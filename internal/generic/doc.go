// Package generic infers the type arguments of generic test classes and
// methods from the values chosen for their parameters and produces closed
// descriptors.
//
// Inference walks every parameter's declared type in lock-step with the
// runtime type of its value. A bare type parameter is bound; a nullable
// declared type is unwrapped; arrays and tuples recurse element-wise; a
// generic named type recurses pairwise into its arguments when the runtime
// type shares its definition, or into the first supertype that does. Nil
// values carry no type information and are skipped.
//
// A type parameter inferred from two positions must be bound to the same type
// both times; disagreements are reported as ConflictError instead of letting
// the first binding win silently. Parameters that are still unbound after the
// walk fall back to optional-parameter defaults, and anything left over is a
// CannotInferError naming the parameter. Constraints are checked last.
//
// The closed descriptors carry substituted parameter types, the type
// arguments in declaration order and delegates obtained from the declaration's
// Instantiate hook when one is provided.
package generic
