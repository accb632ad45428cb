package types

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_String(t *testing.T) {
	list := Define("List", "T")
	m := Define("Map", "K", "V")

	tests := []struct {
		name string
		typ  *Type
		want string
	}{
		{"builtin", Int, "int"},
		{"nullable", Nullable(Bool), "bool?"},
		{"open generic", list.Open(), "List<T>"},
		{"closed generic", m.Of(String, ArrayOf(Int)), "Map<string, int[]>"},
		{"tuple", TupleOf(Int, Nullable(String)), "(int, string?)"},
		{"any", Any, "any"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestNullable_NotNested(t *testing.T) {
	n := Nullable(Int)
	assert.Same(t, n, Nullable(n))
	assert.Same(t, Any, Nullable(Any))
	assert.True(t, n.Underlying().Equal(Int))
}

func TestType_IsGenericAndParams(t *testing.T) {
	pair := Define("Pair", "A", "B")
	open := pair.Open()

	assert.True(t, open.IsGeneric())
	assert.False(t, pair.Of(Int, String).IsGeneric())

	params := ArrayOf(open).Params()
	require.Len(t, params, 2)
	assert.Equal(t, "Pair.A", params[0].ID())
	assert.Equal(t, "Pair.B", params[1].ID())
}

func TestType_Substitute(t *testing.T) {
	box := Define("Box", "T")
	T := box.Param("T")

	closed := Nullable(ArrayOf(box.Open())).Substitute(Bindings{T.ID(): String})
	assert.Equal(t, "Box<string>[]?", closed.String())
	assert.False(t, closed.IsGeneric())

	// Unrelated parameters survive substitution.
	other := Param("Other", "T")
	assert.Same(t, other, other.Substitute(Bindings{T.ID(): String}))
}

func TestType_AssignableFrom(t *testing.T) {
	enumerable := Define("Enumerable", "T")
	list := Define("List", "T")
	list.Implements(enumerable.Of(list.Param("T")))
	animal := Define("Animal")
	dog := Define("Dog").Implements(animal.Of())

	tests := []struct {
		name string
		dst  *Type
		src  *Type
		want bool
	}{
		{"identical", Int, Int, true},
		{"any accepts all", Any, String, true},
		{"nil into nullable", Nullable(Int), nil, true},
		{"nil into value", Int, nil, false},
		{"value into nullable", Nullable(Int), Int, true},
		{"nullable into value", Int, Nullable(Int), false},
		{"widening", Float64, Int, true},
		{"narrowing", Int, Float64, false},
		{"supertype", animal.Of(), dog.Of(), true},
		{"subtype", dog.Of(), animal.Of(), false},
		{"generic super", enumerable.Of(Int), list.Of(Int), true},
		{"generic super mismatch", enumerable.Of(String), list.Of(Int), false},
		{"array covariance", ArrayOf(animal.Of()), ArrayOf(dog.Of()), true},
		{"open parameter", Param("M", "T"), String, true},
		{"constrained parameter", Param("M", "T").WithConstraint(animal.Of()), String, false},
		{"tuple", TupleOf(Int, String), TupleOf(Int, String), true},
		{"tuple arity", TupleOf(Int), TupleOf(Int, String), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dst.AssignableFrom(tt.src))
		})
	}
}

func TestEnum(t *testing.T) {
	color := Enum("Color", "Red", "Green")

	assert.True(t, color.IsEnum())
	assert.True(t, Nullable(color).IsEnum())
	assert.Equal(t, []any{EnumValue{"Color", "Red"}, EnumValue{"Color", "Green"}}, color.EnumValues())
	assert.True(t, color.AssignableFrom(TypeOf(EnumValue{Enum: "Color", Name: "Red"})))
	assert.False(t, Int.IsEnum())
}

type widget struct{}

type boxed struct{ arg *Type }

func (b boxed) RuntimeType() *Type { return Define("Box", "T").Of(b.arg) }

func TestTypeOf(t *testing.T) {
	Register(reflect.TypeOf(widget{}), Define("Widget").Of())

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"int", 3, "int"},
		{"int64", int64(3), "int64"},
		{"string", "x", "string"},
		{"bool", true, "bool"},
		{"float", 1.5, "float64"},
		{"typed slice", []string{"a"}, "string[]"},
		{"homogeneous any slice", []any{1, 2}, "int[]"},
		{"mixed any slice", []any{1, "a"}, "any[]"},
		{"empty any slice", []any{}, "any[]"},
		{"registered", widget{}, "Widget"},
		{"typed value", boxed{arg: Int}, "Box<int>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TypeOf(tt.value)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}

	assert.Nil(t, TypeOf(nil))
}

func TestUniverse_Parse(t *testing.T) {
	u := NewUniverse()
	require.NoError(t, u.Declare(Define("List", "T")))
	require.NoError(t, u.Declare(Define("Map", "K", "V")))
	T := Param("Test", "T")

	tests := []struct {
		expr    string
		want    string
		wantErr bool
	}{
		{"int", "int", false},
		{"string?", "string?", false},
		{"int[]", "int[]", false},
		{"List<T>", "List<T>", false},
		{"Map<string, List<int>>", "Map<string, List<int>>", false},
		{"(int, bool?)", "(int, bool?)", false},
		{"any", "any", false},
		{"Missing", "", true},
		{"List", "", true},
		{"List<int", "", true},
		{"int]", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := u.Parse(tt.expr, T)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	got, err := u.Parse("List<T>", T)
	require.NoError(t, err)
	assert.Same(t, T, got.Args[0])
	assert.Error(t, u.Declare(Define("List")))
}
