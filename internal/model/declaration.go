package model

import (
	"context"
	"fmt"
	"strings"

	"testwright/internal/types"
)

// Location is the source provenance of a declaration.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Parameter describes one positional parameter.
type Parameter struct {
	Name     string
	Type     *types.Type
	Optional bool
	Default  any
	// Variadic marks a trailing parameter that collects remaining values.
	// Its Type is the array type.
	Variadic bool
	// Sources are the descriptors consumed by a Combined expansion.
	Sources []Descriptor
	Matrix  *MatrixValues
}

// ElemType returns the element type of a variadic parameter.
func (p *Parameter) ElemType() *types.Type {
	if p.Type != nil && p.Type.Kind == types.KindArray {
		return p.Type.Elem
	}
	return types.Any
}

// Property is an injectable member of a test class.
type Property struct {
	Name   string
	Type   *types.Type
	Static bool
	Source Descriptor
	// Set stores the value. The instance is nil for static properties.
	Set func(instance any, value any) error
}

// ClassFactory constructs a test class instance.
type ClassFactory func(ctx context.Context, typeArgs []*types.Type, args []any) (any, error)

// MethodInvoker runs a test method body on an instance.
type MethodInvoker func(ctx context.Context, instance any, typeArgs []*types.Type, args []any) error

// Class describes a test class.
type Class struct {
	Name       string
	Assembly   string
	TypeParams []*types.Type
	Parameters []*Parameter
	Properties []*Property
	Sources    []Descriptor
	New        ClassFactory
	// Instantiate returns a factory closed over concrete type arguments.
	Instantiate func(typeArgs []*types.Type) (ClassFactory, error)
}

// IsGeneric reports whether the class declares type parameters.
func (c *Class) IsGeneric() bool {
	return len(c.TypeParams) > 0
}

// TypeName renders the class with type arguments.
func (c *Class) TypeName(args []*types.Type) string {
	return genericName(c.Name, args)
}

// Method describes a test method.
type Method struct {
	Name       string
	Class      *Class
	TypeParams []*types.Type
	Parameters []*Parameter
	Sources    []Descriptor
	Invoke     MethodInvoker
	// Instantiate returns an invoker closed over the class and method type
	// arguments.
	Instantiate func(classArgs, methodArgs []*types.Type) (MethodInvoker, error)
	// Repeat is the number of additional copies of every combination.
	Repeat int
	// DisplayName is an optional template for test display names.
	DisplayName string
	Location    Location
}

// IsGeneric reports whether the method declares type parameters.
func (m *Method) IsGeneric() bool {
	return len(m.TypeParams) > 0
}

// FullName returns Class.Method.
func (m *Method) FullName() string {
	if m.Class == nil {
		return m.Name
	}
	return m.Class.Name + "." + m.Name
}

func genericName(name string, args []*types.Type) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return name + "<" + strings.Join(parts, ", ") + ">"
}
