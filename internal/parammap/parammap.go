package parammap

import (
	"fmt"
	"reflect"
	"strings"

	"testwright/internal/model"
	"testwright/internal/types"
)

// MissingArgumentsError reports required parameters without a supplied value.
type MissingArgumentsError struct {
	Missing  []string
	Supplied int
	Expected int
}

func (e *MissingArgumentsError) Error() string {
	return fmt.Sprintf("expected %d arguments but got %d: missing required parameters %s",
		e.Expected, e.Supplied, strings.Join(e.Missing, ", "))
}

// Map aligns args with params. The input slice is never modified.
func Map(params []*model.Parameter, args []any) ([]any, error) {
	if len(params) == 0 {
		return []any{}, nil
	}

	last := params[len(params)-1]
	switch {
	case len(args) == len(params):
		out := append([]any{}, args...)
		if last.Variadic && !isSlice(args[len(args)-1]) {
			out[len(out)-1] = []any{args[len(args)-1]}
		}
		return out, nil

	case len(args) < len(params):
		return pad(params, args)

	default:
		if last.Variadic {
			fixed := len(params) - 1
			tail := args[fixed:]
			if packable(last, tail) {
				out := append([]any{}, args[:fixed]...)
				return append(out, append([]any{}, tail...)), nil
			}
		}
		return append([]any{}, args[:len(params)]...), nil
	}
}

func pad(params []*model.Parameter, args []any) ([]any, error) {
	out := append([]any{}, args...)
	var missing []string
	for _, p := range params[len(args):] {
		if !p.Optional {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingArgumentsError{Missing: missing, Supplied: len(args), Expected: len(params)}
	}
	for _, p := range params[len(args):] {
		switch {
		case p.Default != nil:
			out = append(out, p.Default)
		case p.Variadic:
			out = append(out, []any{})
		default:
			out = append(out, nil)
		}
	}
	return out, nil
}

func packable(p *model.Parameter, values []any) bool {
	elem := p.ElemType()
	for _, v := range values {
		if v == nil {
			continue
		}
		if !elem.AssignableFrom(types.TypeOf(v)) {
			return false
		}
	}
	return true
}

// isSlice reports whether v is already an enumerable collection. Strings are
// scalars.
func isSlice(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}
