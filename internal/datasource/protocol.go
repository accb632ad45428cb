package datasource

import (
	"context"
	"fmt"
	"iter"
	"reflect"

	"testwright/internal/combinator"
	"testwright/internal/fixture"
	"testwright/internal/model"
	"testwright/internal/types"
	"testwright/pkg/logging"
)

const subsystem = "DataSource"

// Open resolves a descriptor into a sequence of row factories. Work that
// invokes user code is deferred until the sequence is pulled.
func Open(ctx context.Context, desc model.Descriptor, dc *Context) (model.Sequence, error) {
	if dc == nil {
		dc = &Context{}
	}
	switch d := desc.(type) {
	case nil, model.NoOp, *model.NoOp, model.Empty, *model.Empty:
		return model.Rows([]any{}), nil
	case model.Inline:
		return inline(d, dc), nil
	case *model.Inline:
		return inline(*d, dc), nil
	case model.Factory:
		return factory(d, dc), nil
	case *model.Factory:
		return factory(*d, dc), nil
	case model.Generator:
		return generator(d, dc), nil
	case *model.Generator:
		return generator(*d, dc), nil
	case model.Matrix:
		return lazy(func(ctx context.Context) (model.Sequence, error) { return matrix(ctx, d, dc) }), nil
	case *model.Matrix:
		return lazy(func(ctx context.Context) (model.Sequence, error) { return matrix(ctx, *d, dc) }), nil
	case model.Combined, *model.Combined:
		return lazy(func(ctx context.Context) (model.Sequence, error) { return combined(ctx, dc) }), nil
	case model.Shared:
		return shared(d, dc), nil
	case *model.Shared:
		return shared(*d, dc), nil
	default:
		return nil, fmt.Errorf("unsupported data descriptor %T", desc)
	}
}

// Collect drains a sequence, materializing every row.
func Collect(ctx context.Context, seq model.Sequence) ([][]any, error) {
	var rows [][]any
	for {
		f, ok, err := seq.Next(ctx)
		if err != nil {
			return rows, err
		}
		if !ok {
			return rows, nil
		}
		row, err := f(ctx)
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

func inline(d model.Inline, dc *Context) model.Sequence {
	values := d.Values
	if values == nil {
		values = []any{nil}
	}
	return initializing(model.Rows(values), dc, "inline")
}

func factory(d model.Factory, dc *Context) model.Sequence {
	name := d.Name
	if name == "" {
		name = "factory"
	}
	return lazy(func(ctx context.Context) (model.Sequence, error) {
		result, err := invoke(ctx, d, dc)
		if err != nil {
			return nil, err
		}
		seq, err := classify(ctx, result, dc.Info.Parameters, name)
		if err != nil {
			return nil, sourceError(name, err)
		}
		return initializing(seq, dc, name), nil
	})
}

func invoke(ctx context.Context, d model.Factory, dc *Context) (any, error) {
	name := d.Name
	if d.Call == nil {
		return nil, sourceError(name, fmt.Errorf("no callable bound"))
	}
	var receiver any
	if d.Instance {
		if dc.Info.Instance == nil {
			return nil, sourceError(name, fmt.Errorf("instance data source requires a class instance"))
		}
		receiver = dc.Info.Instance
	}
	logging.Debug(subsystem, "invoking %s", name)
	result, err := protect(func() (any, error) { return d.Call(ctx, receiver, d.Args) })
	if err != nil {
		return nil, sourceError(name, err)
	}
	return result, nil
}

func generator(d model.Generator, dc *Context) model.Sequence {
	name := d.Name
	if name == "" {
		name = "generator"
	}
	return lazy(func(ctx context.Context) (model.Sequence, error) {
		if d.Open == nil {
			return nil, sourceError(name, fmt.Errorf("no generator bound"))
		}
		seq, err := protect(func() (model.Sequence, error) { return d.Open(ctx, dc.Info) })
		if err != nil {
			return nil, sourceError(name, err)
		}
		if seq == nil {
			return model.Rows([]any{}), nil
		}
		return initializing(guard(nonEmpty(seq), name), dc, name), nil
	})
}

// classify turns a factory result into a sequence.
func classify(ctx context.Context, v any, params []*model.Parameter, name string) (model.Sequence, error) {
	switch x := v.(type) {
	case nil:
		return model.Rows([]any{nil}), nil
	case model.Async:
		r, err := protect(func() (any, error) { return x(ctx) })
		if err != nil {
			return nil, model.UnwrapInvocation(err)
		}
		return classify(ctx, r, params, name)
	case model.Future:
		r, err := protect(func() (any, error) { return x.Await(ctx) })
		if err != nil {
			return nil, model.UnwrapInvocation(err)
		}
		return classify(ctx, r, params, name)
	case model.Sequence:
		return guard(nonEmpty(x), name), nil
	case model.Tuple:
		return model.Rows(append([]any{}, x...)), nil
	case string:
		return model.Rows([]any{x}), nil
	case iter.Seq[any]:
		var elems []any
		_, err := protect(func() (struct{}, error) {
			for e := range x {
				elems = append(elems, e)
			}
			return struct{}{}, nil
		})
		if err != nil {
			return nil, err
		}
		return elements(elems, params), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return elements(elems, params), nil
	}
	return model.Rows([]any{v}), nil
}

// elements yields one row per enumerated element, or a single empty row when
// there are none.
func elements(elems []any, params []*model.Parameter) model.Sequence {
	if len(elems) == 0 {
		return model.Rows([]any{})
	}
	i := 0
	return model.SequenceFunc(func(context.Context) (model.RowFactory, bool, error) {
		if i >= len(elems) {
			return nil, false, nil
		}
		e := elems[i]
		i++
		return func(ctx context.Context) ([]any, error) {
			resolved, err := resolveDeferred(ctx, e)
			if err != nil {
				return nil, err
			}
			return elementRow(resolved, params), nil
		}, true, nil
	})
}

func resolveDeferred(ctx context.Context, e any) (any, error) {
	switch x := e.(type) {
	case func() any:
		return protect(func() (any, error) { return x(), nil })
	case model.Async:
		r, err := protect(func() (any, error) { return x(ctx) })
		return r, model.UnwrapInvocation(err)
	case model.Future:
		r, err := protect(func() (any, error) { return x.Await(ctx) })
		return r, model.UnwrapInvocation(err)
	default:
		return e, nil
	}
}

// elementRow positions one enumerated element.
func elementRow(e any, params []*model.Parameter) []any {
	switch x := e.(type) {
	case model.Tuple:
		return append([]any{}, x...)
	case []any:
		if len(params) == 1 && acceptsWhole(params[0]) {
			return []any{x}
		}
		return append([]any{}, x...)
	default:
		return []any{e}
	}
}

func acceptsWhole(p *model.Parameter) bool {
	return !p.Variadic && p.Type != nil && p.Type.Underlying().Kind == types.KindArray
}

func matrix(ctx context.Context, d model.Matrix, dc *Context) (model.Sequence, error) {
	params := dc.Info.Parameters
	lists := make([][]any, len(params))
	for i, p := range params {
		var explicit []any
		if p.Matrix != nil {
			switch {
			case p.Matrix.Factory != nil:
				values, err := factoryValues(ctx, *p.Matrix.Factory, dc)
				if err != nil {
					return nil, err
				}
				explicit = values
			case p.Matrix.Values != nil:
				explicit = p.Matrix.Values
			}
		}
		candidates, err := combinator.Candidates(p, explicit)
		if err != nil {
			return nil, err
		}
		lists[i] = candidates
	}

	rows := combinator.ExcludeRows(combinator.Product(lists), d.Exclusions)
	logging.Debug(subsystem, "matrix over %d parameters expanded to %d rows", len(params), len(rows))
	if len(rows) == 0 {
		return nil, &combinator.UsageError{Reason: "matrix exclusions remove every combination"}
	}
	return initializing(model.Rows(rows...), dc, "matrix"), nil
}

// factoryValues flattens a nested matrix factory into candidate values.
func factoryValues(ctx context.Context, f model.Factory, dc *Context) ([]any, error) {
	result, err := invoke(ctx, f, dc)
	if err != nil {
		return nil, err
	}
	seq, err := classify(ctx, result, nil, f.Name)
	if err != nil {
		return nil, sourceError(f.Name, err)
	}
	rows, err := Collect(ctx, seq)
	if err != nil {
		return nil, sourceError(f.Name, err)
	}
	values := make([]any, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			values = append(values, row[0])
		}
	}
	return values, nil
}

func combined(ctx context.Context, dc *Context) (model.Sequence, error) {
	params := dc.Info.Parameters
	lists := make([][]any, len(params))
	for i, p := range params {
		if len(p.Sources) == 0 {
			return nil, &combinator.UsageError{Parameter: p.Name, Reason: "combined data source requires at least one source on every parameter"}
		}
		sub := dc.WithInfo(model.GenerationInfo{
			Level:      model.LevelParameter,
			Class:      dc.Info.Class,
			Method:     dc.Info.Method,
			Parameters: []*model.Parameter{p},
			Instance:   dc.Info.Instance,
		})
		var values []any
		for _, src := range p.Sources {
			contributed, err := parameterCells(ctx, src, sub)
			if err != nil {
				return nil, err
			}
			values = append(values, contributed...)
		}
		if len(values) == 0 {
			return nil, &combinator.UsageError{Parameter: p.Name, Reason: "combined data sources produced no values"}
		}
		lists[i] = values
	}

	rows := combinator.Product(lists)
	logging.Debug(subsystem, "combined over %d parameters expanded to %d rows", len(params), len(rows))

	i := 0
	return model.SequenceFunc(func(context.Context) (model.RowFactory, bool, error) {
		if i >= len(rows) {
			return nil, false, nil
		}
		cells := rows[i]
		i++
		return func(ctx context.Context) ([]any, error) {
			row := make([]any, len(cells))
			for j, c := range cells {
				c := c.(cell)
				v, err := protect(func() (any, error) { return c.materialize(ctx) })
				if err != nil {
					return nil, sourceError("combined", err)
				}
				// Fixture lifecycles belong to the registry.
				if !c.fixture {
					if err := initializeRow(ctx, []any{v}, dc.Initialized); err != nil {
						return nil, sourceError("combined", err)
					}
				}
				row[j] = v
			}
			return row, nil
		}, true, nil
	}), nil
}

// cell is one candidate of a combined parameter. Candidates contributed by a
// row factory are materialized again for every row that uses them, with the
// context of that row.
type cell struct {
	value   any
	factory model.RowFactory
	fixture bool
}

func (c cell) materialize(ctx context.Context) (any, error) {
	if c.factory == nil {
		return c.value, nil
	}
	row, err := c.factory(ctx)
	if err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, nil
	}
	return row[0], nil
}

// parameterCells returns the candidates one source contributes to a single
// parameter: every literal of an inline source, the first value of each row
// otherwise. Shared fixtures are only acquired when a row is materialized.
func parameterCells(ctx context.Context, src model.Descriptor, dc *Context) ([]any, error) {
	switch d := src.(type) {
	case model.Inline:
		if d.Values == nil {
			return []any{cell{}}, nil
		}
		cells := make([]any, len(d.Values))
		for i, v := range d.Values {
			cells[i] = cell{value: v}
		}
		return cells, nil
	case *model.Inline:
		return parameterCells(ctx, *d, dc)
	case model.Shared:
		if len(d.Fixtures) == 0 {
			return nil, nil
		}
		f, _, err := shared(d, dc).Next(ctx)
		if err != nil {
			return nil, err
		}
		return []any{cell{factory: f, fixture: true}}, nil
	case *model.Shared:
		return parameterCells(ctx, *d, dc)
	case model.Matrix, *model.Matrix, model.Combined, *model.Combined:
		return nil, &combinator.UsageError{Reason: fmt.Sprintf("%s data source cannot be nested in a combined data source", src.Kind())}
	}

	seq, err := Open(ctx, src, dc)
	if err != nil {
		return nil, err
	}
	var cells []any
	for {
		f, ok, err := seq.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return cells, nil
		}
		// The row is materialized once here to learn whether it contributes
		// a value at all.
		row, err := f(ctx)
		if err != nil {
			return nil, err
		}
		if len(row) > 0 {
			cells = append(cells, cell{value: row[0], factory: f})
		}
	}
}

func shared(d model.Shared, dc *Context) model.Sequence {
	done := false
	return model.SequenceFunc(func(context.Context) (model.RowFactory, bool, error) {
		if done {
			return nil, false, nil
		}
		done = true
		return func(ctx context.Context) ([]any, error) {
			if dc.Registry == nil {
				return nil, fmt.Errorf("shared data source requires a fixture registry")
			}
			sink := sinkFrom(ctx)
			row := make([]any, 0, len(d.Fixtures))
			for _, ref := range d.Fixtures {
				key := fixture.KeyFor(ref, dc.Owner)
				h, err := dc.Registry.Get(ctx, key, ref.New)
				if err != nil {
					return nil, err
				}
				if sink != nil {
					sink.add(h)
				}
				row = append(row, h.Instance())
			}
			return row, nil
		}, true, nil
	})
}
