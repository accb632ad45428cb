package parammap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testwright/internal/model"
	"testwright/internal/types"
)

func param(name string, t *types.Type) *model.Parameter {
	return &model.Parameter{Name: name, Type: t}
}

func variadic(name string, elem *types.Type) *model.Parameter {
	return &model.Parameter{Name: name, Type: types.ArrayOf(elem), Variadic: true}
}

func TestMap(t *testing.T) {
	optionalTail := variadic("rest", types.String)
	optionalTail.Optional = true

	tests := []struct {
		name   string
		params []*model.Parameter
		args   []any
		want   []any
	}{
		{
			name: "no parameters discards values",
			args: []any{1, 2},
			want: []any{},
		},
		{
			name:   "exact match",
			params: []*model.Parameter{param("a", types.Int), param("b", types.String)},
			args:   []any{1, "x"},
			want:   []any{1, "x"},
		},
		{
			name:   "variadic packs trailing values",
			params: []*model.Parameter{param("n", types.Int), variadic("rest", types.String)},
			args:   []any{1, "a", "b"},
			want:   []any{1, []any{"a", "b"}},
		},
		{
			name:   "variadic wraps single scalar",
			params: []*model.Parameter{param("n", types.Int), variadic("rest", types.String)},
			args:   []any{1, "a"},
			want:   []any{1, []any{"a"}},
		},
		{
			name:   "variadic keeps supplied slice",
			params: []*model.Parameter{param("n", types.Int), variadic("rest", types.String)},
			args:   []any{1, []string{"a", "b"}},
			want:   []any{1, []string{"a", "b"}},
		},
		{
			name:   "optional variadic defaults to empty",
			params: []*model.Parameter{param("n", types.Int), optionalTail},
			args:   []any{1},
			want:   []any{1, []any{}},
		},
		{
			name: "optional parameters take defaults",
			params: []*model.Parameter{
				param("a", types.Int),
				{Name: "b", Type: types.String, Optional: true, Default: "dflt"},
				{Name: "c", Type: types.Nullable(types.Int), Optional: true},
			},
			args: []any{1},
			want: []any{1, "dflt", nil},
		},
		{
			name:   "excess values truncated",
			params: []*model.Parameter{param("a", types.Int)},
			args:   []any{1, 2, 3},
			want:   []any{1},
		},
		{
			name:   "non assignable tail truncated",
			params: []*model.Parameter{param("n", types.Int), variadic("rest", types.Int)},
			args:   []any{1, 2, "x"},
			want:   []any{1, 2},
		},
		{
			name:   "nil packs into variadic",
			params: []*model.Parameter{variadic("rest", types.String)},
			args:   []any{"a", nil},
			want:   []any{[]any{"a", nil}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Map(tt.params, tt.args)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Map() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMap_MissingRequired(t *testing.T) {
	params := []*model.Parameter{param("n", types.Int), variadic("rest", types.String)}

	_, err := Map(params, []any{1})

	var missing *MissingArgumentsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"rest"}, missing.Missing)
	assert.Equal(t, 1, missing.Supplied)
	assert.Equal(t, 2, missing.Expected)
	assert.Contains(t, err.Error(), "missing required parameters rest")
}

func TestMap_DoesNotMutateInput(t *testing.T) {
	params := []*model.Parameter{param("n", types.Int), variadic("rest", types.String)}
	args := []any{1, "a"}

	_, err := Map(params, args)
	require.NoError(t, err)
	assert.Equal(t, []any{1, "a"}, args)
}
