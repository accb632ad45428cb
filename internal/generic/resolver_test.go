package generic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testwright/internal/model"
	"testwright/internal/types"
)

// typed is a value reporting a fixed runtime type.
type typed struct{ t *types.Type }

func (v typed) RuntimeType() *types.Type { return v.t }

func TestUnify(t *testing.T) {
	wrapper := types.Define("Wrapper", "T")
	pair := types.Define("Pair", "A", "B")
	enumerable := types.Define("Enumerable", "E")
	list := types.Define("List", "L")
	list.Implements(enumerable.Of(list.Param("L")))
	concrete := types.Define("Concrete").Of()

	T := types.Param("M", "T")
	U := types.Param("M", "U")

	tests := []struct {
		name     string
		declared *types.Type
		actual   *types.Type
		want     map[string]string
	}{
		{"bare parameter", T, types.Int, map[string]string{"M.T": "int"}},
		{"generic container", wrapper.Of(T), wrapper.Of(concrete), map[string]string{"M.T": "Concrete"}},
		{"nullable declared", types.Nullable(T), types.Int, map[string]string{"M.T": "int"}},
		{"nullable actual", T, types.Nullable(types.String), map[string]string{"M.T": "string"}},
		{"array", types.ArrayOf(T), types.ArrayOf(types.Bool), map[string]string{"M.T": "bool"}},
		{"tuple", types.TupleOf(T, U), types.TupleOf(types.Int, types.String), map[string]string{"M.T": "int", "M.U": "string"}},
		{"pairwise", pair.Of(T, wrapper.Of(U)), pair.Of(types.Int, wrapper.Of(types.Float64)), map[string]string{"M.T": "int", "M.U": "float64"}},
		{"via supertype", enumerable.Of(T), list.Of(types.String), map[string]string{"M.T": "string"}},
		{"nil value", T, nil, map[string]string{}},
		{"non generic assignable", types.Float64, types.Int, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := types.Bindings{}
			require.NoError(t, Unify(tt.declared, tt.actual, b))
			got := map[string]string{}
			for k, v := range b {
				got[k] = v.String()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnify_Failures(t *testing.T) {
	wrapper := types.Define("Wrapper", "T")
	other := types.Define("Other", "T")
	T := types.Param("M", "T")

	t.Run("conflict", func(t *testing.T) {
		b := types.Bindings{}
		require.NoError(t, Unify(T, types.Int, b))
		err := Unify(T, types.String, b)
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "int", conflict.First.String())
		assert.Equal(t, "string", conflict.Second.String())
	})

	t.Run("definition mismatch", func(t *testing.T) {
		var mismatch *MismatchError
		assert.ErrorAs(t, Unify(wrapper.Of(T), other.Of(types.Int), types.Bindings{}), &mismatch)
	})

	t.Run("array mismatch", func(t *testing.T) {
		var mismatch *MismatchError
		assert.ErrorAs(t, Unify(types.ArrayOf(T), types.Int, types.Bindings{}), &mismatch)
	})

	t.Run("non generic mismatch", func(t *testing.T) {
		var mismatch *MismatchError
		assert.ErrorAs(t, Unify(types.Int, types.String, types.Bindings{}), &mismatch)
	})
}

func TestInfer(t *testing.T) {
	T := types.Param("Echo", "T")
	U := types.Param("Echo", "U")

	t.Run("binds from positions", func(t *testing.T) {
		params := []*model.Parameter{{Name: "a", Type: T}, {Name: "b", Type: types.ArrayOf(U)}}
		b, err := Infer("Echo", []*types.Type{T, U}, params, []any{1, []string{"x"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"int", "string"}, names(TypeArgs([]*types.Type{T, U}, b)))
	})

	t.Run("variadic elements", func(t *testing.T) {
		params := []*model.Parameter{{Name: "rest", Type: types.ArrayOf(T), Variadic: true}}
		b, err := Infer("Echo", []*types.Type{T}, params, []any{[]any{"a", "b"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, "string", b["Echo.T"].String())
	})

	t.Run("skips nil and falls back to defaults", func(t *testing.T) {
		params := []*model.Parameter{
			{Name: "a", Type: types.Nullable(T)},
			{Name: "b", Type: T, Optional: true, Default: 2.5},
		}
		b, err := Infer("Echo", []*types.Type{T}, params, []any{nil}, nil)
		require.NoError(t, err)
		assert.Equal(t, "float64", b["Echo.T"].String())
	})

	t.Run("cannot infer", func(t *testing.T) {
		params := []*model.Parameter{{Name: "a", Type: types.Nullable(T)}}
		_, err := Infer("Echo", []*types.Type{T}, params, []any{nil}, nil)
		var cannot *CannotInferError
		require.ErrorAs(t, err, &cannot)
		assert.Equal(t, "T", cannot.Param.Name)
		assert.Contains(t, err.Error(), "cannot infer type argument T of Echo")
	})

	t.Run("conflict across parameters", func(t *testing.T) {
		params := []*model.Parameter{{Name: "a", Type: T}, {Name: "b", Type: T}}
		_, err := Infer("Echo", []*types.Type{T}, params, []any{1, "x"}, nil)
		var pe *ParameterError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "b", pe.Parameter)
		var conflict *ConflictError
		assert.ErrorAs(t, err, &conflict)
	})

	t.Run("constraint", func(t *testing.T) {
		animal := types.Define("Animal")
		dog := types.Define("Dog").Implements(animal.Of())
		C := types.Param("Echo", "C").WithConstraint(animal.Of())
		params := []*model.Parameter{{Name: "a", Type: C}}

		_, err := Infer("Echo", []*types.Type{C}, params, []any{typed{dog.Of()}}, nil)
		require.NoError(t, err)

		_, err = Infer("Echo", []*types.Type{C}, params, []any{"cat"}, nil)
		var ce *ConstraintError
		assert.ErrorAs(t, err, &ce)
	})

	t.Run("seed is not modified", func(t *testing.T) {
		seed := types.Bindings{"Other.X": types.Int}
		params := []*model.Parameter{{Name: "a", Type: T}}
		b, err := Infer("Echo", []*types.Type{T}, params, []any{true}, seed)
		require.NoError(t, err)
		assert.Len(t, seed, 1)
		assert.Len(t, b, 2)
	})
}

func names(ts []*types.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

func TestResolveClassAndMethod(t *testing.T) {
	box := types.Define("Box", "T")
	classT := types.Param("Holder", "T")
	methodU := types.Param("Holder.Check", "U")

	var instantiatedWith []*types.Type
	class := &model.Class{
		Name:       "Holder",
		TypeParams: []*types.Type{classT},
		Parameters: []*model.Parameter{{Name: "value", Type: box.Of(classT)}},
		New: func(context.Context, []*types.Type, []any) (any, error) {
			return "reflective", nil
		},
		Instantiate: func(args []*types.Type) (model.ClassFactory, error) {
			instantiatedWith = args
			return func(context.Context, []*types.Type, []any) (any, error) { return "generated", nil }, nil
		},
	}
	method := &model.Method{
		Name:       "Check",
		Class:      class,
		TypeParams: []*types.Type{methodU},
		Parameters: []*model.Parameter{
			{Name: "expected", Type: classT},
			{Name: "extra", Type: methodU},
		},
	}

	closedClass, err := ResolveClass(class, []any{typed{box.Of(types.Int)}})
	require.NoError(t, err)
	assert.Equal(t, "Holder<int>", closedClass.Name())
	assert.Equal(t, []string{"int"}, names(instantiatedWith))
	assert.Equal(t, "Box<int>", closedClass.Parameters[0].Type.String())
	assert.Equal(t, "Box<T>", class.Parameters[0].Type.String(), "declaration untouched")

	instance, err := closedClass.New(context.Background(), closedClass.TypeArgs, nil)
	require.NoError(t, err)
	assert.Equal(t, "generated", instance)

	closedMethod, err := ResolveMethod(method, closedClass, []any{5, "s"})
	require.NoError(t, err)
	assert.Equal(t, "Holder<int>.Check<string>", closedMethod.Name())
	assert.Equal(t, "int", closedMethod.Parameters[0].Type.String())

	_, err = ResolveMethod(method, closedClass, []any{"wrong", "s"})
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict, "method arguments must agree with the closed class")
}

func TestResolveClass_NonGeneric(t *testing.T) {
	class := &model.Class{Name: "Plain", Parameters: []*model.Parameter{{Name: "n", Type: types.Int}}}

	closed, err := ResolveClass(class, []any{"not checked"})
	require.NoError(t, err)
	assert.Nil(t, closed.TypeArgs)
	assert.Equal(t, "Plain", closed.Name())
}
