package combinator

import (
	"reflect"
)

// Equaler is the explicit equality contract for reference types.
type Equaler interface {
	Equal(other any) bool
}

// Equal reports whether a and b are the same value.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if e, ok := a.(Equaler); ok {
		return e.Equal(b)
	}
	if e, ok := b.(Equaler); ok {
		return e.Equal(a)
	}
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return x.equal(y)
		}
	}
	return reflect.DeepEqual(a, b)
}

type numberKind int

const (
	signed numberKind = iota
	unsigned
	floating
)

// numeric holds a number in the widest representation of its kind.
type numeric struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

func number(v any) (numeric, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numeric{kind: signed, i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return numeric{kind: unsigned, u: rv.Uint()}, true
	case reflect.Float32, reflect.Float64:
		return numeric{kind: floating, f: rv.Float()}, true
	default:
		return numeric{}, false
	}
}

// equal compares integers exactly and falls back to float comparison only
// when either side is a float.
func (n numeric) equal(o numeric) bool {
	switch {
	case n.kind == floating || o.kind == floating:
		return n.float() == o.float()
	case n.kind == signed && o.kind == signed:
		return n.i == o.i
	case n.kind == unsigned && o.kind == unsigned:
		return n.u == o.u
	case n.kind == signed:
		return n.i >= 0 && uint64(n.i) == o.u
	default:
		return o.i >= 0 && uint64(o.i) == n.u
	}
}

func (n numeric) float() float64 {
	switch n.kind {
	case signed:
		return float64(n.i)
	case unsigned:
		return float64(n.u)
	default:
		return n.f
	}
}

func contains(values []any, v any) bool {
	for _, x := range values {
		if Equal(x, v) {
			return true
		}
	}
	return false
}
