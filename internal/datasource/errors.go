package datasource

import (
	"fmt"

	"testwright/internal/model"
)

// SourceError attributes a failure to the data source that raised it.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("data source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func sourceError(source string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*SourceError); ok {
		return err
	}
	return &SourceError{Source: source, Err: model.UnwrapInvocation(err)}
}

// protect runs fn and converts a panic into an error.
func protect[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}
