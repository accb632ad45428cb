package model

import (
	"context"
	"fmt"

	"testwright/internal/types"
)

// RowFactory materializes one argument row.
type RowFactory func(ctx context.Context) ([]any, error)

// Sequence is a lazy, finite stream of row factories. Next returns false once
// the stream is exhausted. Sequences need not be restartable.
type Sequence interface {
	Next(ctx context.Context) (RowFactory, bool, error)
}

// SequenceFunc adapts a function to Sequence.
type SequenceFunc func(ctx context.Context) (RowFactory, bool, error)

func (f SequenceFunc) Next(ctx context.Context) (RowFactory, bool, error) {
	return f(ctx)
}

// Rows returns a sequence over fixed rows.
func Rows(rows ...[]any) Sequence {
	i := 0
	return SequenceFunc(func(context.Context) (RowFactory, bool, error) {
		if i >= len(rows) {
			return nil, false, nil
		}
		row := rows[i]
		i++
		return Static(row), true, nil
	})
}

// Static returns a factory that yields a copy of row.
func Static(row []any) RowFactory {
	return func(context.Context) ([]any, error) {
		return append([]any{}, row...), nil
	}
}

// Callable is an explicit invocation capability. Receiver is nil for static
// callables.
type Callable func(ctx context.Context, receiver any, args []any) (any, error)

// Async is a deferred, possibly blocking computation returned by a factory.
type Async func(ctx context.Context) (any, error)

// Future is an asynchronous result that can be awaited.
type Future interface {
	Await(ctx context.Context) (any, error)
}

// Tuple is a tuple-like value that is unwrapped into multiple positions.
type Tuple []any

// RuntimeType reports the tuple of member types.
func (t Tuple) RuntimeType() *types.Type {
	members := make([]*types.Type, len(t))
	for i, v := range t {
		members[i] = types.TypeOf(v)
		if members[i] == nil {
			members[i] = types.Any
		}
	}
	return types.TupleOf(members...)
}

// Initializer is implemented by values that need asynchronous initialization
// before use.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Disposer is the asynchronous disposal capability. It is preferred over
// io.Closer when a value implements both.
type Disposer interface {
	Dispose(ctx context.Context) error
}

// InvocationError wraps a failure raised by a dynamically invoked callable.
type InvocationError struct {
	Target string
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoking %s: %v", e.Target, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// UnwrapInvocation strips one level of InvocationError wrapping.
func UnwrapInvocation(err error) error {
	if ie, ok := err.(*InvocationError); ok && ie.Err != nil {
		return ie.Err
	}
	return err
}

// Level identifies which declaration a descriptor is attached to.
type Level int

const (
	LevelClass Level = iota
	LevelMethod
	LevelProperty
	LevelParameter
)

func (l Level) String() string {
	switch l {
	case LevelClass:
		return "class"
	case LevelMethod:
		return "method"
	case LevelProperty:
		return "property"
	case LevelParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// GenerationInfo is the read-only context handed to generators.
type GenerationInfo struct {
	Level      Level
	Class      *Class
	Method     *Method
	Parameters []*Parameter
	// Instance is the class instance for instance-scoped sources, if any.
	Instance any
}
