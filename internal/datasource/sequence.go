package datasource

import (
	"context"
	"fmt"

	"testwright/internal/model"
)

// lazy defers open until the first pull. An error from open is returned once.
func lazy(open func(ctx context.Context) (model.Sequence, error)) model.Sequence {
	var inner model.Sequence
	var failed bool
	return model.SequenceFunc(func(ctx context.Context) (model.RowFactory, bool, error) {
		if failed {
			return nil, false, nil
		}
		if inner == nil {
			seq, err := open(ctx)
			if err != nil {
				failed = true
				return nil, false, err
			}
			inner = seq
		}
		return inner.Next(ctx)
	})
}

// nonEmpty yields a single empty row when seq produces nothing.
func nonEmpty(seq model.Sequence) model.Sequence {
	produced := false
	padded := false
	return model.SequenceFunc(func(ctx context.Context) (model.RowFactory, bool, error) {
		if padded {
			return nil, false, nil
		}
		f, ok, err := seq.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if ok {
			produced = true
			return f, true, nil
		}
		if !produced {
			padded = true
			return model.Static([]any{}), true, nil
		}
		return nil, false, nil
	})
}

// guard converts panics and errors raised by a user sequence into
// SourceErrors.
func guard(seq model.Sequence, name string) model.Sequence {
	return model.SequenceFunc(func(ctx context.Context) (model.RowFactory, bool, error) {
		var f model.RowFactory
		ok, err := protect(func() (bool, error) {
			var (
				ok  bool
				err error
			)
			f, ok, err = seq.Next(ctx)
			return ok, err
		})
		if err != nil {
			return nil, false, sourceError(name, err)
		}
		if !ok {
			return nil, false, nil
		}
		if f == nil {
			return nil, false, sourceError(name, fmt.Errorf("sequence yielded a nil row factory"))
		}
		return func(ctx context.Context) ([]any, error) {
			row, err := protect(func() ([]any, error) { return f(ctx) })
			return row, sourceError(name, err)
		}, true, nil
	})
}

// initializing runs the per-row initializer hook on every materialized row.
func initializing(seq model.Sequence, dc *Context, name string) model.Sequence {
	return model.SequenceFunc(func(ctx context.Context) (model.RowFactory, bool, error) {
		f, ok, err := seq.Next(ctx)
		if err != nil || !ok {
			return nil, ok, err
		}
		return func(ctx context.Context) ([]any, error) {
			row, err := protect(func() ([]any, error) { return f(ctx) })
			if err != nil {
				return nil, sourceError(name, err)
			}
			if err := initializeRow(ctx, row, dc.Initialized); err != nil {
				return nil, sourceError(name, err)
			}
			return row, nil
		}, true, nil
	})
}

func initializeRow(ctx context.Context, row []any, seen *InitSet) error {
	for _, v := range row {
		if err := initializeValue(ctx, v, seen); err != nil {
			return err
		}
		if nested, ok := v.([]any); ok {
			for _, n := range nested {
				if err := initializeValue(ctx, n, seen); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func initializeValue(ctx context.Context, v any, seen *InitSet) error {
	init, ok := v.(model.Initializer)
	if !ok || !seen.claim(v) {
		return nil
	}
	_, err := protect(func() (struct{}, error) { return struct{}{}, init.Initialize(ctx) })
	if err != nil {
		return fmt.Errorf("initializing %T: %w", v, err)
	}
	return nil
}
