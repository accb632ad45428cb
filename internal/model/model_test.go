package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testwright/internal/types"
)

func TestRows_DrainsInOrder(t *testing.T) {
	ctx := context.Background()
	seq := Rows([]any{1}, []any{2, "b"})

	var got [][]any
	for {
		f, ok, err := seq.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		row, err := f(ctx)
		require.NoError(t, err)
		got = append(got, row)
	}

	assert.Equal(t, [][]any{{1}, {2, "b"}}, got)

	_, ok, err := seq.Next(ctx)
	assert.NoError(t, err)
	assert.False(t, ok, "exhausted sequences stay exhausted")
}

func TestStatic_ReturnsCopies(t *testing.T) {
	row := []any{1, 2}
	f := Static(row)

	got, err := f(context.Background())
	require.NoError(t, err)
	got[0] = 99

	again, _ := f(context.Background())
	assert.Equal(t, []any{1, 2}, again)
}

func TestUnwrapInvocation(t *testing.T) {
	inner := errors.New("boom")

	assert.Same(t, inner, UnwrapInvocation(&InvocationError{Target: "Data", Err: inner}))
	assert.Same(t, inner, UnwrapInvocation(inner))

	nested := &InvocationError{Target: "outer", Err: &InvocationError{Target: "inner", Err: inner}}
	unwrapped := UnwrapInvocation(nested)
	var ie *InvocationError
	require.ErrorAs(t, unwrapped, &ie, "only one level is stripped")
	assert.Equal(t, "inner", ie.Target)
}

func TestAnyAccessesInstance(t *testing.T) {
	instanceFactory := &Factory{Name: "Values", Instance: true}

	tests := []struct {
		name   string
		descs  []Descriptor
		params []*Parameter
		want   bool
	}{
		{"none", nil, nil, false},
		{"static factory", []Descriptor{Factory{Name: "Static"}}, nil, false},
		{"instance factory", []Descriptor{Factory{Name: "Values", Instance: true}}, nil, true},
		{
			"matrix with instance factory",
			[]Descriptor{Matrix{}},
			[]*Parameter{{Name: "x", Matrix: &MatrixValues{Factory: instanceFactory}}},
			true,
		},
		{
			"combined with instance source",
			[]Descriptor{Combined{}},
			[]*Parameter{{Name: "x", Sources: []Descriptor{Inline{}, *instanceFactory}}},
			true,
		},
		{
			"matrix pointer with instance factory",
			[]Descriptor{&Matrix{}},
			[]*Parameter{{Name: "x", Matrix: &MatrixValues{Factory: instanceFactory}}},
			true,
		},
		{
			"combined pointer with instance source",
			[]Descriptor{&Combined{}},
			[]*Parameter{{Name: "x", Sources: []Descriptor{instanceFactory}}},
			true,
		},
		{
			"matrix params ignored without matrix descriptor",
			[]Descriptor{Inline{Values: []any{1}}},
			[]*Parameter{{Name: "x", Matrix: &MatrixValues{Factory: instanceFactory}}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnyAccessesInstance(tt.descs, tt.params))
		})
	}
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		in   string
		want ScopeKind
		ok   bool
	}{
		{"", ScopeNone, true},
		{"class", ScopePerClass, true},
		{"per-assembly", ScopePerAssembly, true},
		{"session", ScopePerTestSession, true},
		{"keyed", ScopeKeyed, true},
		{"global", ScopeNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseScope(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTuple_RuntimeType(t *testing.T) {
	assert.Equal(t, "(int, string, any)", Tuple{1, "a", nil}.RuntimeType().String())
}

func TestNames(t *testing.T) {
	c := &Class{Name: "Calc"}
	m := &Method{Name: "Adds", Class: c}

	assert.Equal(t, "Calc.Adds", m.FullName())
	assert.Equal(t, "Calc<int, string>", c.TypeName([]*types.Type{types.Int, types.String}))
	assert.Equal(t, "src/calc.yaml:12", Location{File: "src/calc.yaml", Line: 12}.String())
	assert.Equal(t, "", Location{}.String())
}
