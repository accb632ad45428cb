package types

import (
	"reflect"
	"sync"
)

// Typed is implemented by values that know their own Type, such as instances
// of generic classes whose type arguments reflection cannot recover.
type Typed interface {
	RuntimeType() *Type
}

var (
	registryMu sync.RWMutex
	registry   = map[reflect.Type]*Type{}
)

// Register associates a Go type with a model type. Later registrations win.
func Register(rt reflect.Type, t *Type) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[rt] = t
}

func registered(rt reflect.Type) (*Type, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[rt]
	return t, ok
}

// TypeOf returns the runtime type of v, or nil for a nil value.
func TypeOf(v any) *Type {
	if v == nil {
		return nil
	}
	switch x := v.(type) {
	case Typed:
		return x.RuntimeType()
	case EnumValue:
		return &Type{Kind: KindNamed, Name: x.Enum}
	}
	rv := reflect.ValueOf(v)
	if t, ok := registered(rv.Type()); ok {
		return t
	}
	if k := rv.Kind(); (k == reflect.Slice || k == reflect.Array) && rv.Type().Elem().Kind() == reflect.Interface {
		return ArrayOf(commonElem(rv))
	}
	return FromReflect(rv.Type())
}

// commonElem infers the element type of an interface-typed slice from its
// members. Mixed or empty slices have element type any.
func commonElem(rv reflect.Value) *Type {
	var elem *Type
	for i := 0; i < rv.Len(); i++ {
		et := TypeOf(rv.Index(i).Interface())
		if et == nil {
			continue
		}
		if elem == nil {
			elem = et
			continue
		}
		if !elem.Equal(et) {
			return Any
		}
	}
	if elem == nil {
		return Any
	}
	return elem
}

// FromReflect maps a Go type onto the model.
func FromReflect(rt reflect.Type) *Type {
	if t, ok := registered(rt); ok {
		return t
	}
	switch rt.Kind() {
	case reflect.Bool:
		return Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		if rt.PkgPath() == "" {
			return Int
		}
	case reflect.Int64, reflect.Uint64:
		if rt.PkgPath() == "" {
			return Int64
		}
	case reflect.Float32, reflect.Float64:
		if rt.PkgPath() == "" {
			return Float64
		}
	case reflect.String:
		if rt.PkgPath() == "" {
			return String
		}
	case reflect.Interface:
		return Any
	case reflect.Slice, reflect.Array:
		return ArrayOf(FromReflect(rt.Elem()))
	case reflect.Pointer:
		return Nullable(FromReflect(rt.Elem()))
	}
	name := rt.String()
	if name == "" {
		name = rt.Kind().String()
	}
	return Define(name).Of()
}
