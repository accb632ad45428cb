package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"testwright/internal/types"
)

func testUniverse(t *testing.T) *types.Universe {
	t.Helper()
	u := types.NewUniverse()
	require.NoError(t, u.Declare(types.Define("Box", "T")))
	require.NoError(t, u.Declare(types.Enum("Color", "Red", "Green").Def))
	return u
}

func TestLiterals_Decode(t *testing.T) {
	u := testUniverse(t)
	box := func(arg *types.Type, v any) Value {
		d, _ := u.Lookup("Box")
		return Value{Type: d.Of(arg), Value: v}
	}

	tests := []struct {
		name    string
		src     string
		want    any
		wantErr string
	}{
		{name: "int", src: "3", want: 3},
		{name: "float", src: "2.5", want: 2.5},
		{name: "bool", src: "true", want: true},
		{name: "string", src: `"3"`, want: "3"},
		{name: "null", src: "null", want: nil},
		{name: "list", src: "[1, a, null]", want: []any{1, "a", nil}},
		{name: "typed generic", src: `{type: "Box<int>", value: 3}`, want: box(types.Int, 3)},
		{name: "enum member", src: "{type: Color, value: Green}", want: types.EnumValue{Enum: "Color", Name: "Green"}},
		{name: "int64", src: "{type: int64, value: 4}", want: int64(4)},
		{name: "float from int", src: "{type: float64, value: 4}", want: 4.0},
		{name: "nullable null", src: "{type: int?, value: null}", want: nil},
		{name: "typed array", src: "{type: \"int64[]\", value: [1, 2]}", want: []any{int64(1), int64(2)}},
		{name: "alias", src: "[&a 1, *a]", want: []any{1, 1}},
		{name: "unknown enum member", src: "{type: Color, value: Blue}", wantErr: `"Blue" is not a member of enum Color`},
		{name: "untyped mapping", src: "{value: 1}", wantErr: "mapping literals need a type"},
		{name: "unknown type", src: "{type: Nope, value: 1}", wantErr: `unknown type "Nope"`},
		{name: "null into non-nullable", src: "{type: int, value: null}", wantErr: "null is not a valid int"},
		{name: "wrong builtin", src: "{type: int, value: x}", wantErr: "x is not a valid int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n yaml.Node
			require.NoError(t, yaml.Unmarshal([]byte(tt.src), &n))

			got, err := literals{universe: u}.decode(&n)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if v, ok := tt.want.(Value); ok {
				gv, ok := got.(Value)
				require.True(t, ok, "got %T", got)
				assert.True(t, v.Equal(gv), "got %v", gv)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue_RuntimeTypeAndEquality(t *testing.T) {
	box := types.Define("Box", "T")
	a := Value{Type: box.Of(types.Int), Value: 1}

	assert.Equal(t, "Box<int>", types.TypeOf(a).String())
	assert.True(t, a.Equal(Value{Type: box.Of(types.Int), Value: 1}))
	assert.False(t, a.Equal(Value{Type: box.Of(types.String), Value: 1}))
	assert.False(t, a.Equal(1))
	assert.Equal(t, "Box<int>(1)", a.String())
}

func TestCoerce(t *testing.T) {
	color := types.Enum("Color", "Red")

	assert.Equal(t, types.EnumValue{Enum: "Color", Name: "Red"}, coerce(color, "Red"))
	assert.Equal(t, "Blue", coerce(color, "Blue"), "unknown members stay as written")
	assert.Equal(t, int64(2), coerce(types.Int64, 2))
	assert.Equal(t, 2.0, coerce(types.Nullable(types.Float64), 2))
	assert.Equal(t, 2, coerce(types.Int, 2))
	assert.Equal(t, "x", coerce(types.Param("M", "T"), "x"))
}
