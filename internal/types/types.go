package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the shape of a Type.
type Kind int

const (
	KindNamed Kind = iota
	KindParam
	KindNullable
	KindArray
	KindTuple
	KindAny
)

// String returns a human readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindParam:
		return "param"
	case KindNullable:
		return "nullable"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindAny:
		return "any"
	default:
		return "unknown"
	}
}

// Definition describes a named type. Generic definitions declare type
// parameters; Supers may reference those parameters and are closed together
// with the definition.
type Definition struct {
	Name   string
	Params []*Type
	Supers []*Type
	// Values is the ordered value domain of an enum definition.
	Values []any
}

// Define creates a (possibly generic) definition. Parameter owners are the
// definition name.
func Define(name string, params ...string) *Definition {
	d := &Definition{Name: name}
	for _, p := range params {
		d.Params = append(d.Params, Param(name, p))
	}
	return d
}

// Implements adds supertypes and returns the definition for chaining.
func (d *Definition) Implements(supers ...*Type) *Definition {
	d.Supers = append(d.Supers, supers...)
	return d
}

// Param returns the definition's type parameter with the given name.
func (d *Definition) Param(name string) *Type {
	for _, p := range d.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Of closes the definition over args. Passing no args to a non-generic
// definition returns its only type.
func (d *Definition) Of(args ...*Type) *Type {
	return &Type{Kind: KindNamed, Name: d.Name, Def: d, Args: args}
}

// Open returns the definition applied to its own type parameters.
func (d *Definition) Open() *Type {
	return d.Of(d.Params...)
}

// IsEnum reports whether the definition declares a value domain.
func (d *Definition) IsEnum() bool {
	return len(d.Values) > 0
}

// Type is one node of a type expression.
type Type struct {
	Kind Kind
	// Name is the definition name for named types and the parameter name for
	// type parameters.
	Name string
	Def  *Definition
	// Args holds generic arguments for named types and members for tuples.
	Args []*Type
	// Elem is the wrapped type of nullable and array types.
	Elem *Type
	// Owner identifies the generic declaration a type parameter belongs to.
	Owner      string
	Constraint *Type
}

// Param creates a type parameter owned by owner.
func Param(owner, name string) *Type {
	return &Type{Kind: KindParam, Name: name, Owner: owner}
}

// WithConstraint returns a copy of the parameter constrained to c.
func (t *Type) WithConstraint(c *Type) *Type {
	cp := *t
	cp.Constraint = c
	return &cp
}

// Nullable wraps t. Nullable types are never nested.
func Nullable(t *Type) *Type {
	if t == nil || t.Kind == KindNullable || t.Kind == KindAny {
		return t
	}
	return &Type{Kind: KindNullable, Elem: t}
}

// ArrayOf returns the array type with element elem.
func ArrayOf(elem *Type) *Type {
	return &Type{Kind: KindArray, Elem: elem}
}

// TupleOf returns the tuple type with the given members.
func TupleOf(members ...*Type) *Type {
	return &Type{Kind: KindTuple, Args: members}
}

// Enum defines an enum type whose domain is the given member names in order.
func Enum(name string, members ...string) *Type {
	d := &Definition{Name: name}
	t := d.Of()
	for _, m := range members {
		d.Values = append(d.Values, EnumValue{Enum: name, Name: m})
	}
	return t
}

// EnumValue is one member of an enum defined with Enum.
type EnumValue struct {
	Enum string
	Name string
}

func (v EnumValue) String() string {
	return v.Name
}

// Builtin types.
var (
	Any     = &Type{Kind: KindAny, Name: "any"}
	Bool    = Define("bool").Of()
	Int     = Define("int").Of()
	Int64   = Define("int64").Of()
	Float64 = Define("float64").Of()
	String  = Define("string").Of()
)

// ID returns the identity of a type parameter: owner and name.
func (t *Type) ID() string {
	if t.Owner == "" {
		return t.Name
	}
	return t.Owner + "." + t.Name
}

// String renders the type the way declarations spell it.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindAny:
		return "any"
	case KindParam:
		return t.Name
	case KindNullable:
		return t.Elem.String() + "?"
	case KindArray:
		return t.Elem.String() + "[]"
	case KindTuple:
		return "(" + joinTypes(t.Args) + ")"
	default:
		if len(t.Args) == 0 {
			return t.Name
		}
		return t.Name + "<" + joinTypes(t.Args) + ">"
	}
}

func joinTypes(ts []*Type) string {
	parts := make([]string, len(ts))
	for i, a := range ts {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// Equal reports structural equality. Definitions compare by name and arity.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindAny:
		return true
	case KindParam:
		return t.ID() == o.ID()
	case KindNullable, KindArray:
		return t.Elem.Equal(o.Elem)
	case KindTuple:
		return equalAll(t.Args, o.Args)
	default:
		return t.Name == o.Name && equalAll(t.Args, o.Args)
	}
}

func equalAll(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// IsGeneric reports whether t still contains an unbound type parameter.
func (t *Type) IsGeneric() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindParam:
		return true
	case KindNullable, KindArray:
		return t.Elem.IsGeneric()
	case KindNamed, KindTuple:
		for _, a := range t.Args {
			if a.IsGeneric() {
				return true
			}
		}
	}
	return false
}

// Params returns the distinct type parameters referenced by t in order of
// first appearance.
func (t *Type) Params() []*Type {
	var out []*Type
	seen := map[string]bool{}
	var walk func(*Type)
	walk = func(x *Type) {
		if x == nil {
			return
		}
		switch x.Kind {
		case KindParam:
			if !seen[x.ID()] {
				seen[x.ID()] = true
				out = append(out, x)
			}
		case KindNullable, KindArray:
			walk(x.Elem)
		case KindNamed, KindTuple:
			for _, a := range x.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return out
}

// SameDefinition reports whether t and o are applications of the same
// generic definition.
func (t *Type) SameDefinition(o *Type) bool {
	return t != nil && o != nil && t.Kind == KindNamed && o.Kind == KindNamed &&
		t.Name == o.Name && len(t.Args) == len(o.Args)
}

// IsNullable reports whether t admits nil.
func (t *Type) IsNullable() bool {
	return t != nil && (t.Kind == KindNullable || t.Kind == KindAny)
}

// Underlying strips a nullable wrapper.
func (t *Type) Underlying() *Type {
	if t != nil && t.Kind == KindNullable {
		return t.Elem
	}
	return t
}

// IsEnum reports whether the underlying type is an enum.
func (t *Type) IsEnum() bool {
	u := t.Underlying()
	return u != nil && u.Kind == KindNamed && u.Def != nil && u.Def.IsEnum()
}

// EnumValues returns the declared domain of an enum type.
func (t *Type) EnumValues() []any {
	if !t.IsEnum() {
		return nil
	}
	return append([]any(nil), t.Underlying().Def.Values...)
}

// IsBool reports whether the underlying type is bool.
func (t *Type) IsBool() bool {
	return t.Underlying().Equal(Bool)
}

// Supers returns the declared supertypes of a named type, closed over its
// arguments.
func (t *Type) Supers() []*Type {
	if t == nil || t.Kind != KindNamed || t.Def == nil {
		return nil
	}
	b := Bindings{}
	for i, p := range t.Def.Params {
		if i < len(t.Args) {
			b[p.ID()] = t.Args[i]
		}
	}
	out := make([]*Type, len(t.Def.Supers))
	for i, s := range t.Def.Supers {
		out[i] = s.Substitute(b)
	}
	return out
}

// Bindings maps type-parameter identities to concrete types.
type Bindings map[string]*Type

// Lookup returns the binding for parameter p.
func (b Bindings) Lookup(p *Type) (*Type, bool) {
	t, ok := b[p.ID()]
	return t, ok
}

// Substitute replaces every bound parameter in t.
func (t *Type) Substitute(b Bindings) *Type {
	if t == nil || len(b) == 0 {
		return t
	}
	switch t.Kind {
	case KindParam:
		if bound, ok := b[t.ID()]; ok {
			return bound
		}
		return t
	case KindNullable:
		return Nullable(t.Elem.Substitute(b))
	case KindArray:
		return ArrayOf(t.Elem.Substitute(b))
	case KindTuple:
		return TupleOf(substituteAll(t.Args, b)...)
	case KindNamed:
		if len(t.Args) == 0 {
			return t
		}
		cp := *t
		cp.Args = substituteAll(t.Args, b)
		return &cp
	default:
		return t
	}
}

func substituteAll(ts []*Type, b Bindings) []*Type {
	out := make([]*Type, len(ts))
	for i, a := range ts {
		out[i] = a.Substitute(b)
	}
	return out
}

var widening = map[string][]string{
	"int":     {"int64", "float64"},
	"int64":   {"float64"},
	"float64": nil,
}

// AssignableFrom reports whether a value of type src may be stored in t.
// A nil src stands for the nil value.
func (t *Type) AssignableFrom(src *Type) bool {
	if t == nil {
		return false
	}
	if t.Kind == KindAny {
		return true
	}
	if src == nil {
		return t.Kind == KindNullable
	}
	if src.Kind == KindAny {
		return t.Kind == KindParam && t.Constraint == nil
	}
	switch t.Kind {
	case KindParam:
		return t.Constraint == nil || t.Constraint.AssignableFrom(src)
	case KindNullable:
		return t.Elem.AssignableFrom(src.Underlying())
	}
	if src.Kind == KindNullable {
		return false
	}
	if src.Kind == KindParam {
		return src.Constraint != nil && t.AssignableFrom(src.Constraint)
	}
	switch t.Kind {
	case KindArray:
		return src.Kind == KindArray && t.Elem.AssignableFrom(src.Elem)
	case KindTuple:
		if src.Kind != KindTuple || len(src.Args) != len(t.Args) {
			return false
		}
		for i := range t.Args {
			if !t.Args[i].AssignableFrom(src.Args[i]) {
				return false
			}
		}
		return true
	}

	if src.Kind != KindNamed {
		return false
	}
	if t.SameDefinition(src) {
		for i := range t.Args {
			if t.Args[i].Kind == KindParam {
				if !t.Args[i].AssignableFrom(src.Args[i]) {
					return false
				}
				continue
			}
			if !t.Args[i].Equal(src.Args[i]) {
				return false
			}
		}
		return true
	}
	if len(t.Args) == 0 && len(src.Args) == 0 {
		for _, w := range widening[src.Name] {
			if w == t.Name {
				return true
			}
		}
	}
	for _, s := range src.Supers() {
		if t.AssignableFrom(s) {
			return true
		}
	}
	return false
}

// Describe returns a short description used in error messages.
func Describe(t *Type) string {
	if t == nil {
		return "nil"
	}
	return fmt.Sprintf("%s (%s)", t, t.Kind)
}
