package generic

import (
	"fmt"
	"strings"

	"testwright/internal/model"
	"testwright/internal/types"
	"testwright/pkg/logging"
)

const subsystem = "GenericResolver"

// Infer binds typeParams from the arguments supplied for params, starting
// from seed. The seed is not modified.
func Infer(target string, typeParams []*types.Type, params []*model.Parameter, args []any, seed types.Bindings) (types.Bindings, error) {
	b := make(types.Bindings, len(seed)+len(typeParams))
	for k, v := range seed {
		b[k] = v
	}

	for i, p := range params {
		if i >= len(args) {
			break
		}
		if err := unifyValue(p, args[i], b); err != nil {
			return nil, &ParameterError{Parameter: p.Name, Err: err}
		}
	}

	for _, tp := range typeParams {
		if _, ok := b.Lookup(tp); ok {
			continue
		}
		for _, p := range params {
			if p.Default == nil || !references(p.Type, tp) {
				continue
			}
			if err := Unify(p.Type, types.TypeOf(p.Default), b); err != nil {
				return nil, &ParameterError{Parameter: p.Name, Err: err}
			}
			if _, ok := b.Lookup(tp); ok {
				break
			}
		}
	}

	for _, tp := range typeParams {
		bound, ok := b.Lookup(tp)
		if !ok {
			return nil, &CannotInferError{Target: target, Param: tp}
		}
		if tp.Constraint != nil {
			c := tp.Constraint.Substitute(b)
			if !c.AssignableFrom(bound) {
				return nil, &ConstraintError{Param: tp, Bound: bound, Constraint: c}
			}
		}
	}
	return b, nil
}

func unifyValue(p *model.Parameter, v any, b types.Bindings) error {
	if v == nil {
		return nil
	}
	actual := types.TypeOf(v)
	if p.Variadic {
		if packed, ok := v.([]any); ok {
			for _, e := range packed {
				if err := Unify(p.ElemType(), types.TypeOf(e), b); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return Unify(p.Type, actual, b)
}

func references(t, param *types.Type) bool {
	for _, p := range t.Params() {
		if p.ID() == param.ID() {
			return true
		}
	}
	return false
}

// TypeArgs returns the bindings of params in declaration order.
func TypeArgs(params []*types.Type, b types.Bindings) []*types.Type {
	if len(params) == 0 {
		return nil
	}
	out := make([]*types.Type, len(params))
	for i, p := range params {
		out[i], _ = b.Lookup(p)
	}
	return out
}

// ClosedClass is a class with every type parameter bound.
type ClosedClass struct {
	Class      *model.Class
	TypeArgs   []*types.Type
	Bindings   types.Bindings
	Parameters []*model.Parameter
	New        model.ClassFactory
}

// Name renders the closed class name.
func (c *ClosedClass) Name() string {
	return c.Class.TypeName(c.TypeArgs)
}

// ResolveClass closes a class over the arguments chosen for its constructor.
// Non-generic classes are returned unchanged.
func ResolveClass(c *model.Class, args []any) (*ClosedClass, error) {
	closed := &ClosedClass{Class: c, Bindings: types.Bindings{}, Parameters: c.Parameters, New: c.New}
	if !c.IsGeneric() {
		return closed, nil
	}

	b, err := Infer(c.Name, c.TypeParams, c.Parameters, args, nil)
	if err != nil {
		return nil, fmt.Errorf("resolving class %s: %w", c.Name, err)
	}
	closed.Bindings = b
	closed.TypeArgs = TypeArgs(c.TypeParams, b)
	closed.Parameters = substituteParams(c.Parameters, b)

	if c.Instantiate != nil {
		f, err := c.Instantiate(closed.TypeArgs)
		if err != nil {
			return nil, fmt.Errorf("instantiating %s: %w", closed.Name(), err)
		}
		closed.New = f
	}
	logging.Debug(subsystem, "closed class %s", closed.Name())
	return closed, nil
}

// ClosedMethod is a method with every class and method type parameter bound.
type ClosedMethod struct {
	Method     *model.Method
	Class      *ClosedClass
	TypeArgs   []*types.Type
	Bindings   types.Bindings
	Parameters []*model.Parameter
	Invoke     model.MethodInvoker
}

// MethodName renders Method<...>.
func (m *ClosedMethod) MethodName() string {
	if len(m.TypeArgs) == 0 {
		return m.Method.Name
	}
	parts := make([]string, len(m.TypeArgs))
	for i, t := range m.TypeArgs {
		parts[i] = t.String()
	}
	return m.Method.Name + "<" + strings.Join(parts, ", ") + ">"
}

// Name renders Class<...>.Method<...>.
func (m *ClosedMethod) Name() string {
	if m.Class == nil {
		return m.MethodName()
	}
	return m.Class.Name() + "." + m.MethodName()
}

// ResolveMethod closes a method over the arguments chosen for it, after its
// class has been closed. Class bindings seed inference so that method
// parameters typed with class type parameters are checked for consistency.
func ResolveMethod(m *model.Method, class *ClosedClass, args []any) (*ClosedMethod, error) {
	var seed types.Bindings
	if class != nil {
		seed = class.Bindings
	}
	closed := &ClosedMethod{Method: m, Class: class, Bindings: seed, Parameters: m.Parameters, Invoke: m.Invoke}

	needsInference := m.IsGeneric()
	if !needsInference {
		for _, p := range m.Parameters {
			if p.Type.IsGeneric() {
				needsInference = true
				break
			}
		}
	}
	if needsInference {
		b, err := Infer(m.FullName(), m.TypeParams, m.Parameters, args, seed)
		if err != nil {
			return nil, fmt.Errorf("resolving method %s: %w", m.FullName(), err)
		}
		closed.Bindings = b
		closed.TypeArgs = TypeArgs(m.TypeParams, b)
		closed.Parameters = substituteParams(m.Parameters, b)
		for _, p := range closed.Parameters {
			if p.Type.IsGeneric() {
				return nil, fmt.Errorf("resolving method %s: parameter %s still has open type %s", m.FullName(), p.Name, p.Type)
			}
		}
	}

	var classArgs []*types.Type
	if class != nil {
		classArgs = class.TypeArgs
	}
	if m.Instantiate != nil && (len(classArgs) > 0 || len(closed.TypeArgs) > 0) {
		inv, err := m.Instantiate(classArgs, closed.TypeArgs)
		if err != nil {
			return nil, fmt.Errorf("instantiating %s: %w", closed.Name(), err)
		}
		closed.Invoke = inv
	}
	if needsInference {
		logging.Debug(subsystem, "closed method %s", closed.Name())
	}
	return closed, nil
}

func substituteParams(params []*model.Parameter, b types.Bindings) []*model.Parameter {
	out := make([]*model.Parameter, len(params))
	for i, p := range params {
		cp := *p
		cp.Type = p.Type.Substitute(b)
		out[i] = &cp
	}
	return out
}
