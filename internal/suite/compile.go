package suite

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"testwright/internal/model"
	"testwright/internal/types"
	"testwright/pkg/logging"
)

type fixtureDecl struct {
	spec FixtureSpec
	typ  *types.Type
}

type providerDecl struct {
	spec ProviderSpec
	data []any
}

type pendingSupers struct {
	file  *File
	cat   string
	def   *types.Definition
	exprs []string
}

type compiler struct {
	suite     *Suite
	universe  *types.Universe
	lit       literals
	errs      *SuiteErrorCollection
	fixtures  map[string]fixtureDecl
	providers map[string]providerDecl
	classes   map[string]bool
	pending   []pendingSupers
}

func compile(files []*File) (*Suite, error) {
	u := types.NewUniverse()
	c := &compiler{
		suite:     &Suite{Universe: u, Journal: NewJournal(), statics: make(map[string]any)},
		universe:  u,
		lit:       literals{universe: u},
		errs:      &SuiteErrorCollection{},
		fixtures:  make(map[string]fixtureDecl),
		providers: make(map[string]providerDecl),
		classes:   make(map[string]bool),
	}
	for _, f := range files {
		c.declareEnums(f)
		c.declareTypes(f)
		c.declareFixtures(f)
	}
	c.linkSupers()
	for _, f := range files {
		c.declareProviders(f)
	}
	for _, f := range files {
		for i := range f.Classes {
			c.compileClass(f, &f.Classes[i])
		}
	}
	if err := c.errs.err(); err != nil {
		logging.Warn(subsystem, "suite has %d errors", c.errs.Count())
		return nil, err
	}
	return c.suite, nil
}

func (c *compiler) fail(f *File, category, entity, errorType string, line int, err error) {
	c.errs.Add(SuiteError{
		FilePath:  f.path,
		Category:  category,
		Entity:    entity,
		ErrorType: errorType,
		Message:   err.Error(),
		Line:      line,
	})
}

func (c *compiler) invalid(f *File, category, entity string, line int, format string, args ...any) {
	c.fail(f, category, entity, ErrorTypeValidation, line, fmt.Errorf(format, args...))
}

func (c *compiler) declareEnums(f *File) {
	for _, e := range f.Enums {
		if err := ValidateEntityName(e.Name, CategoryEnum); err != nil {
			c.fail(f, CategoryEnum, e.Name, ErrorTypeValidation, 0, err)
			continue
		}
		if len(e.Members) == 0 {
			c.invalid(f, CategoryEnum, e.Name, 0, "enum needs at least one member")
			continue
		}
		seen := make(map[string]bool, len(e.Members))
		for _, m := range e.Members {
			if seen[m] {
				c.invalid(f, CategoryEnum, e.Name, 0, "duplicate member %q", m)
			}
			seen[m] = true
		}
		if err := c.universe.Declare(types.Enum(e.Name, e.Members...).Def); err != nil {
			c.fail(f, CategoryEnum, e.Name, ErrorTypeValidation, 0, err)
		}
	}
}

func (c *compiler) declareTypes(f *File) {
	for _, t := range f.Types {
		if err := ValidateEntityName(t.Name, CategoryType); err != nil {
			c.fail(f, CategoryType, t.Name, ErrorTypeValidation, 0, err)
			continue
		}
		def := types.Define(t.Name, t.Params...)
		if err := c.universe.Declare(def); err != nil {
			c.fail(f, CategoryType, t.Name, ErrorTypeValidation, 0, err)
			continue
		}
		c.pending = append(c.pending, pendingSupers{file: f, cat: CategoryType, def: def, exprs: t.Implements})
	}
}

func (c *compiler) declareFixtures(f *File) {
	for _, fx := range f.Fixtures {
		if err := ValidateEntityName(fx.Name, CategoryFixture); err != nil {
			c.fail(f, CategoryFixture, fx.Name, ErrorTypeValidation, 0, err)
			continue
		}
		if err := ValidateOneOf("failOn", fx.FailOn, []string{"", PhaseCreate, PhaseInitialize}); err != nil {
			c.fail(f, CategoryFixture, fx.Name, ErrorTypeValidation, 0, err)
			continue
		}
		def := types.Define(fx.Name)
		if err := c.universe.Declare(def); err != nil {
			c.fail(f, CategoryFixture, fx.Name, ErrorTypeValidation, 0, err)
			continue
		}
		c.fixtures[fx.Name] = fixtureDecl{spec: fx, typ: def.Of()}
		c.pending = append(c.pending, pendingSupers{file: f, cat: CategoryFixture, def: def, exprs: fx.Implements})
	}
}

// linkSupers resolves implements clauses once every name is declared.
func (c *compiler) linkSupers() {
	for _, p := range c.pending {
		for _, expr := range p.exprs {
			super, err := c.universe.Parse(expr, p.def.Params...)
			if err != nil {
				c.fail(p.file, p.cat, p.def.Name, ErrorTypeReference, 0, err)
				continue
			}
			p.def.Implements(super)
		}
	}
}

func (c *compiler) declareProviders(f *File) {
	for _, p := range f.Providers {
		if err := ValidateEntityName(p.Name, CategoryProvider); err != nil {
			c.fail(f, CategoryProvider, p.Name, ErrorTypeValidation, 0, err)
			continue
		}
		if _, dup := c.providers[p.Name]; dup {
			c.invalid(f, CategoryProvider, p.Name, 0, "provider already declared")
			continue
		}
		set := 0
		for _, ok := range []bool{p.Values != nil, p.Rows != nil, p.Field != ""} {
			if ok {
				set++
			}
		}
		if set > 1 || (set == 0 && p.Error == "") {
			c.invalid(f, CategoryProvider, p.Name, 0, "exactly one of values, rows or field must be set")
			continue
		}

		decl := providerDecl{spec: p}
		switch {
		case p.Values != nil:
			values, err := c.lit.list(p.Values)
			if err != nil {
				c.fail(f, CategoryProvider, p.Name, ErrorTypeParse, 0, err)
				continue
			}
			decl.data = values
		case p.Rows != nil:
			rows, err := c.lit.rows(p.Rows)
			if err != nil {
				c.fail(f, CategoryProvider, p.Name, ErrorTypeParse, 0, err)
				continue
			}
			decl.data = make([]any, len(rows))
			for i, r := range rows {
				decl.data[i] = r
			}
		}
		c.providers[p.Name] = decl
	}
}

// call returns the factory delegate serving a provider.
func (p providerDecl) call() model.Callable {
	return func(ctx context.Context, receiver any, _ []any) (any, error) {
		if p.spec.Error != "" {
			return nil, &model.InvocationError{Target: p.spec.Name, Err: errors.New(p.spec.Error)}
		}
		produce := func(context.Context) (any, error) {
			if p.spec.Field == "" {
				return slices.Clone(p.data), nil
			}
			inst, ok := receiver.(*Instance)
			if !ok {
				return nil, fmt.Errorf("provider %s reads field %s and needs a class instance", p.spec.Name, p.spec.Field)
			}
			v, ok := inst.Field(p.spec.Field)
			if !ok {
				return nil, fmt.Errorf("class %s has no field %s", inst.Class, p.spec.Field)
			}
			return v, nil
		}
		if p.spec.Async {
			return model.Async(produce), nil
		}
		return produce(ctx)
	}
}

func (c *compiler) typeParams(owner string, specs []string) ([]*types.Type, error) {
	params := make([]*types.Type, 0, len(specs))
	for _, s := range specs {
		name, constraint, hasConstraint := strings.Cut(s, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty type parameter in %q", s)
		}
		p := types.Param(owner, name)
		if hasConstraint {
			ct, err := c.universe.Parse(strings.TrimSpace(constraint))
			if err != nil {
				return nil, fmt.Errorf("constraint of %s: %w", name, err)
			}
			p = p.WithConstraint(ct)
		}
		params = append(params, p)
	}
	return params, nil
}

func (c *compiler) compileClass(f *File, cs *ClassSpec) {
	fail := func(err error) { c.fail(f, CategoryClass, cs.Name, ErrorTypeValidation, cs.Line, err) }
	if err := ValidateEntityName(cs.Name, CategoryClass); err != nil {
		fail(err)
		return
	}
	if c.classes[cs.Name] {
		fail(errors.New("class already declared"))
		return
	}
	c.classes[cs.Name] = true

	typeParams, err := c.typeParams(cs.Name, cs.TypeParams)
	if err != nil {
		fail(err)
		return
	}
	params, err := c.parameters(cs.Parameters, typeParams)
	if err != nil {
		fail(err)
		return
	}
	sources, err := c.sources(cs.Sources, params)
	if err != nil {
		fail(err)
		return
	}
	fields := make(map[string]any, len(cs.Fields))
	for name, node := range cs.Fields {
		v, err := c.lit.decode(&node)
		if err != nil {
			fail(fmt.Errorf("field %s: %w", name, err))
			return
		}
		fields[name] = v
	}

	class := &model.Class{
		Name:       cs.Name,
		Assembly:   f.Assembly,
		TypeParams: typeParams,
		Parameters: params,
		Sources:    sources,
		New: func(ctx context.Context, typeArgs []*types.Type, args []any) (any, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return newInstance(cs.Name, typeArgs, args, fields), nil
		},
	}
	for _, ps := range cs.Properties {
		prop, err := c.property(class, ps, typeParams)
		if err != nil {
			fail(err)
			return
		}
		class.Properties = append(class.Properties, prop)
	}

	var methods []*model.Method
	seen := make(map[string]bool, len(cs.Methods))
	for i := range cs.Methods {
		ms := &cs.Methods[i]
		m, err := c.method(f, class, ms, typeParams)
		if err == nil && seen[ms.Name] {
			err = errors.New("method already declared")
		}
		if err != nil {
			c.fail(f, CategoryMethod, cs.Name+"."+ms.Name, ErrorTypeValidation, ms.Line, err)
			continue
		}
		seen[ms.Name] = true
		methods = append(methods, m)
	}
	if len(cs.Methods) == 0 {
		fail(errors.New("class declares no methods"))
	}

	c.suite.Classes = append(c.suite.Classes, class)
	c.suite.Methods = append(c.suite.Methods, methods...)
}

func (c *compiler) method(f *File, class *model.Class, ms *MethodSpec, classParams []*types.Type) (*model.Method, error) {
	if err := ValidateEntityName(ms.Name, CategoryMethod); err != nil {
		return nil, err
	}
	if ms.Repeat < 0 {
		return nil, ValidationError{Field: "repeat", Value: ms.Repeat, Message: "must not be negative"}
	}
	typeParams, err := c.typeParams(class.Name+"."+ms.Name, ms.TypeParams)
	if err != nil {
		return nil, err
	}
	params, err := c.parameters(ms.Parameters, append(slices.Clip(classParams), typeParams...))
	if err != nil {
		return nil, err
	}
	sources, err := c.sources(ms.Sources, params)
	if err != nil {
		return nil, err
	}

	full := class.Name + "." + ms.Name
	return &model.Method{
		Name:        ms.Name,
		Class:       class,
		TypeParams:  typeParams,
		Parameters:  params,
		Sources:     sources,
		Repeat:      ms.Repeat,
		DisplayName: ms.DisplayName,
		Location:    model.Location{File: f.path, Line: ms.Line},
		Invoke: func(ctx context.Context, _ any, _ []*types.Type, args []any) error {
			logging.Debug(subsystem, "invoking %s with %d arguments", full, len(args))
			return ctx.Err()
		},
	}, nil
}

func (c *compiler) parameters(specs []ParameterSpec, scope []*types.Type) ([]*model.Parameter, error) {
	params := make([]*model.Parameter, 0, len(specs))
	for i, ps := range specs {
		if err := ValidateEntityName(ps.Name, "parameter"); err != nil {
			return nil, err
		}
		if err := ValidateRequired("type", ps.Type, "parameter "+ps.Name); err != nil {
			return nil, err
		}
		if ps.Variadic && i != len(specs)-1 {
			return nil, fmt.Errorf("parameter %s: only the last parameter can be variadic", ps.Name)
		}
		t, err := c.universe.Parse(ps.Type, scope...)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", ps.Name, err)
		}
		if ps.Variadic {
			t = types.ArrayOf(t)
		}
		p := &model.Parameter{Name: ps.Name, Type: t, Optional: ps.Optional, Variadic: ps.Variadic}

		if ps.Default != nil {
			if p.Default, err = c.lit.decode(ps.Default); err != nil {
				return nil, fmt.Errorf("parameter %s default: %w", ps.Name, err)
			}
			p.Default = coerce(t, p.Default)
			p.Optional = true
		}
		if ps.Matrix != nil {
			if p.Matrix, err = c.matrixValues(ps.Matrix, p); err != nil {
				return nil, fmt.Errorf("parameter %s matrix: %w", ps.Name, err)
			}
		}
		params = append(params, p)
	}

	for i, ps := range specs {
		if len(ps.Sources) == 0 {
			continue
		}
		sources, err := c.sources(ps.Sources, params[i:i+1])
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", ps.Name, err)
		}
		params[i].Sources = sources
	}
	return params, nil
}

func (c *compiler) matrixValues(ms *MatrixSpec, p *model.Parameter) (*model.MatrixValues, error) {
	mv := &model.MatrixValues{}
	var err error
	if mv.Values, err = c.lit.list(ms.Values); err != nil {
		return nil, err
	}
	if mv.Excluding, err = c.lit.list(ms.Excluding); err != nil {
		return nil, err
	}
	for i := range mv.Values {
		mv.Values[i] = coerce(p.Type, mv.Values[i])
	}
	for i := range mv.Excluding {
		mv.Excluding[i] = coerce(p.Type, mv.Excluding[i])
	}
	if ms.Method != "" {
		if mv.Values != nil {
			return nil, errors.New("values and method are mutually exclusive")
		}
		decl, ok := c.providers[ms.Method]
		if !ok {
			return nil, fmt.Errorf("unknown provider %q", ms.Method)
		}
		mv.Factory = &model.Factory{Name: ms.Method, Instance: decl.spec.Field != "", Call: decl.call()}
	}
	return mv, nil
}

func (c *compiler) property(class *model.Class, ps PropertySpec, scope []*types.Type) (*model.Property, error) {
	if err := ValidateEntityName(ps.Name, "property"); err != nil {
		return nil, err
	}
	t, err := c.universe.Parse(ps.Type, scope...)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", ps.Name, err)
	}
	if ps.Source.Matrix != nil || ps.Source.Combined {
		return nil, fmt.Errorf("property %s: matrix and combined sources need parameters", ps.Name)
	}
	param := &model.Parameter{Name: ps.Name, Type: t}
	src, err := c.source(ps.Source, []*model.Parameter{param})
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", ps.Name, err)
	}

	prop := &model.Property{Name: ps.Name, Type: t, Static: ps.Static, Source: src}
	if ps.Static {
		prop.Set = func(_ any, v any) error {
			c.suite.setStatic(class.Name, ps.Name, v)
			return nil
		}
	} else {
		prop.Set = func(instance any, v any) error {
			inst, ok := instance.(*Instance)
			if !ok {
				return fmt.Errorf("cannot inject %s into %T", ps.Name, instance)
			}
			inst.setProperty(ps.Name, v)
			return nil
		}
	}
	return prop, nil
}

func (c *compiler) sources(specs []SourceSpec, params []*model.Parameter) ([]model.Descriptor, error) {
	descs := make([]model.Descriptor, 0, len(specs))
	for i, s := range specs {
		d, err := c.source(s, params)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i+1, err)
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func (c *compiler) source(s SourceSpec, params []*model.Parameter) (model.Descriptor, error) {
	kinds := s.kinds()
	if len(kinds) != 1 {
		return nil, fmt.Errorf("exactly one source kind must be set, got %d (%s)", len(kinds), strings.Join(kinds, ", "))
	}

	switch kinds[0] {
	case "arguments":
		row, err := c.lit.list(s.Arguments)
		if err != nil {
			return nil, err
		}
		return model.Inline{Values: coerceRow(row, params)}, nil
	case "method":
		decl, ok := c.providers[s.Method]
		if !ok {
			return nil, fmt.Errorf("unknown provider %q", s.Method)
		}
		return model.Factory{Name: s.Method, Instance: s.Instance || decl.spec.Field != "", Call: decl.call()}, nil
	case "range":
		return rangeGenerator(*s.Range)
	case "matrix":
		rows, err := c.lit.rows(s.Matrix.Exclude)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i] = coerceRow(rows[i], params)
		}
		return model.Matrix{Exclusions: rows}, nil
	case "combined":
		return model.Combined{}, nil
	case "shared":
		return c.shared(s.Shared)
	default:
		return model.Empty{}, nil
	}
}

func (c *compiler) shared(refs []SharedRef) (model.Descriptor, error) {
	fixtures := make([]model.FixtureRef, 0, len(refs))
	for _, r := range refs {
		decl, ok := c.fixtures[r.Fixture]
		if !ok {
			return nil, fmt.Errorf("unknown fixture %q", r.Fixture)
		}
		scope, ok := model.ParseScope(r.Scope)
		if !ok {
			return nil, fmt.Errorf("fixture %s: unknown scope %q", r.Fixture, r.Scope)
		}
		if scope == model.ScopeKeyed && r.Key == "" {
			return nil, fmt.Errorf("fixture %s: keyed scope needs a key", r.Fixture)
		}
		journal := c.suite.Journal
		fixtures = append(fixtures, model.FixtureRef{
			Type:  decl.typ,
			Scope: scope,
			Key:   r.Key,
			New: func(ctx context.Context) (any, error) {
				res, err := newResource(ctx, decl.spec, decl.typ, journal)
				if err != nil {
					return nil, err
				}
				return res, nil
			},
		})
	}
	return model.Shared{Fixtures: fixtures}, nil
}

func rangeGenerator(r RangeSpec) (model.Descriptor, error) {
	step := r.Step
	if step == 0 {
		step = 1
	}
	if step < 0 {
		return nil, fmt.Errorf("range step must be positive, got %d", step)
	}
	return model.Generator{
		Name: fmt.Sprintf("range(%d..%d)", r.From, r.To),
		Open: func(context.Context, model.GenerationInfo) (model.Sequence, error) {
			next := r.From
			return model.SequenceFunc(func(ctx context.Context) (model.RowFactory, bool, error) {
				if err := ctx.Err(); err != nil {
					return nil, false, err
				}
				if next > r.To {
					return nil, false, nil
				}
				v := next
				next += step
				return model.Static([]any{v}), true, nil
			}), nil
		},
	}, nil
}

// coerceRow converts the literals of a row to their parameter types where a
// lossless conversion exists.
func coerceRow(row []any, params []*model.Parameter) []any {
	for i := range row {
		if i >= len(params) {
			break
		}
		t := params[i].Type
		if params[i].Variadic {
			t = params[i].ElemType()
		}
		row[i] = coerce(t, row[i])
		if params[i].Variadic {
			for j := i + 1; j < len(row); j++ {
				row[j] = coerce(t, row[j])
			}
			break
		}
	}
	return row
}

func coerce(t *types.Type, v any) any {
	if t == nil || v == nil || t.IsGeneric() {
		return v
	}
	u := t.Underlying()
	switch v.(type) {
	case string:
		if !u.IsEnum() {
			return v
		}
	case int:
		if !u.Equal(types.Int64) && !u.Equal(types.Float64) {
			return v
		}
	default:
		return v
	}
	if c, err := convert(t, v); err == nil {
		return c
	}
	return v
}
