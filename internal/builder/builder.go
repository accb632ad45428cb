package builder

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"testwright/internal/datasource"
	"testwright/internal/fixture"
	"testwright/internal/generic"
	"testwright/internal/model"
	"testwright/internal/naming"
	"testwright/internal/parammap"
	"testwright/pkg/logging"
)

const subsystem = "TestBuilder"

// Options configures a Builder.
type Options struct {
	// Registry serves shared fixtures. A private registry is created when nil.
	Registry *fixture.Registry
	// SessionID owns per-session fixtures. A random id is used when empty.
	SessionID string
	// Parallelism bounds how many methods are built at once. Zero means
	// GOMAXPROCS.
	Parallelism int
	Naming      *naming.Engine
}

// Builder constructs test definitions.
type Builder struct {
	registry    *fixture.Registry
	session     string
	parallelism int
	naming      *naming.Engine
	initialized *datasource.InitSet

	mu      sync.Mutex
	statics map[string]*staticProperty
}

// New creates a builder.
func New(opts Options) *Builder {
	b := &Builder{
		registry:    opts.Registry,
		session:     opts.SessionID,
		parallelism: opts.Parallelism,
		naming:      opts.Naming,
		initialized: datasource.NewInitSet(),
		statics:     make(map[string]*staticProperty),
	}
	if b.registry == nil {
		b.registry = fixture.NewRegistry()
	}
	if b.session == "" {
		b.session = uuid.NewString()
	}
	if b.parallelism <= 0 {
		b.parallelism = runtime.GOMAXPROCS(0)
	}
	if b.naming == nil {
		b.naming = naming.New()
	}
	return b
}

// Registry returns the fixture registry used by the builder.
func (b *Builder) Registry() *fixture.Registry {
	return b.registry
}

// SessionID returns the session that owns per-session fixtures.
func (b *Builder) SessionID() string {
	return b.session
}

// Build constructs every method. The returned error is non-nil only when ctx
// is cancelled; construction problems are reported as failures.
func (b *Builder) Build(ctx context.Context, methods []*model.Method) (*Result, error) {
	type output struct {
		tests    []*TestDefinition
		failures []*DiscoveryFailure
	}
	outputs := make([]output, len(methods))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)
	for i, m := range methods {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tests, failures := b.BuildMethod(gctx, m)
			outputs[i] = output{tests: tests, failures: failures}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, o := range outputs {
		result.Tests = append(result.Tests, o.tests...)
		result.Failures = append(result.Failures, o.failures...)
	}
	logging.Info(subsystem, "constructed %d tests from %d methods, %d discovery failures",
		len(result.Tests), len(methods), len(result.Failures))
	return result, nil
}

// methodRun holds the per-method construction state.
type methodRun struct {
	b        *Builder
	method   *model.Method
	class    *model.Class
	owner    fixture.Owner
	tests    []*TestDefinition
	failures []*DiscoveryFailure
}

// BuildMethod constructs every combination of one method. Every test
// materializes its own rows, so values and unshared fixtures produced by a
// row factory are never handed to two tests.
func (b *Builder) BuildMethod(ctx context.Context, m *model.Method) ([]*TestDefinition, []*DiscoveryFailure) {
	run := &methodRun{b: b, method: m, class: m.Class}
	if run.class == nil {
		run.fail(naming.Identity{Method: m.Name}, errors.New("method has no declaring class"))
		return nil, run.failures
	}
	run.owner = fixture.Owner{Class: run.class.Name, Assembly: run.class.Assembly, Session: b.session}

	next, classRow := 0, 0
	for _, desc := range descriptorsOrNoOp(run.class.Sources) {
		dc := run.context(model.GenerationInfo{
			Level:      model.LevelClass,
			Class:      run.class,
			Method:     m,
			Parameters: run.class.Parameters,
		})
		_ = run.eachFactory(ctx, desc, dc, func() naming.Identity {
			return naming.Identity{Class: run.class.Name, Method: m.Name, ClassIndex: classRow}
		}, func(factory model.RowFactory) error {
			classRow, next = next, next+1
			err := run.buildClassRow(ctx, classRow, factory)
			var rowErr *classRowError
			if errors.As(err, &rowErr) {
				return rowErr.err
			}
			return err
		})
	}

	logging.Debug(subsystem, "%s: %d tests, %d failures", m.FullName(), len(run.tests), len(run.failures))
	return run.tests, run.failures
}

func descriptorsOrNoOp(descs []model.Descriptor) []model.Descriptor {
	if len(descs) == 0 {
		return []model.Descriptor{model.NoOp{}}
	}
	return descs
}

func (r *methodRun) context(info model.GenerationInfo) *datasource.Context {
	return &datasource.Context{
		Info:        info,
		Registry:    r.b.registry,
		Owner:       r.owner,
		Initialized: r.b.initialized,
	}
}

// classRowError aborts every remaining test of a class row.
type classRowError struct {
	err error
}

func (e *classRowError) Error() string { return e.err.Error() }

func (e *classRowError) Unwrap() error { return e.err }

// eachFactory pulls every row factory of desc and hands it to fn. Errors
// opening or advancing the sequence abort the descriptor; errors from fn only
// skip that row, except a classRowError which is returned to the caller.
func (r *methodRun) eachFactory(ctx context.Context, desc model.Descriptor, dc *datasource.Context,
	identity func() naming.Identity, fn func(model.RowFactory) error) error {

	seq, err := datasource.Open(ctx, desc, dc)
	if err != nil {
		r.fail(identity(), err)
		return nil
	}
	for {
		var (
			factory model.RowFactory
			ok      bool
		)
		err := protect(func() error {
			var err error
			factory, ok, err = seq.Next(ctx)
			return err
		})
		if err != nil {
			r.fail(identity(), err)
			return nil
		}
		if !ok {
			return nil
		}

		err = protect(func() error { return fn(factory) })
		var rowErr *classRowError
		if errors.As(err, &rowErr) {
			return err
		}
		if err != nil {
			r.fail(identity(), err)
		}
	}
}

// classValues is one materialization of a class row.
type classValues struct {
	args    []any
	closed  *generic.ClosedClass
	handles []*fixture.Handle
}

// materializeClass calls the class row factory and closes the class over the
// produced arguments.
func (r *methodRun) materializeClass(ctx context.Context, factory model.RowFactory) (c *classValues, err error) {
	classCtx, sink := datasource.WithFixtureSink(ctx)
	defer func() {
		if err != nil {
			r.release(ctx, sink.Handles())
		}
	}()

	var raw []any
	if err := protect(func() error {
		var err error
		raw, err = factory(classCtx)
		return err
	}); err != nil {
		return nil, err
	}
	args, err := parammap.Map(r.class.Parameters, raw)
	if err != nil {
		return nil, fmt.Errorf("class arguments: %w", err)
	}
	closed, err := generic.ResolveClass(r.class, args)
	if err != nil {
		return nil, err
	}
	return &classValues{args: args, closed: closed, handles: sink.Handles()}, nil
}

func (r *methodRun) buildClassRow(ctx context.Context, classRow int, classFactory model.RowFactory) error {
	first, err := r.materializeClass(ctx, classFactory)
	if err != nil {
		return err
	}
	// The first materialization is consumed by the first test of the row.
	defer func() {
		if first != nil {
			r.release(ctx, first.handles)
		}
	}()
	next := func(ctx context.Context) (*classValues, error) {
		if first != nil {
			c := first
			first = nil
			return c, nil
		}
		return r.materializeClass(ctx, classFactory)
	}

	m := r.method
	closedClass, classArgs := first.closed, first.args
	info := model.GenerationInfo{Level: model.LevelMethod, Class: r.class, Method: m, Parameters: m.Parameters}
	if needsInstance(m, closedClass.Class) {
		if closedClass.New == nil {
			return fmt.Errorf("instance data source on %s requires a class factory", closedClass.Name())
		}
		instance, err := closedClass.New(ctx, closedClass.TypeArgs, classArgs)
		if err != nil {
			return fmt.Errorf("constructing %s for instance data: %w", closedClass.Name(), model.UnwrapInvocation(err))
		}
		info.Instance = instance
	}

	nextRow, methodRow := 0, 0
	for _, desc := range descriptorsOrNoOp(m.Sources) {
		err := r.eachFactory(ctx, desc, r.context(info), func() naming.Identity {
			return naming.Identity{
				Class:       closedClass.Name(),
				Method:      m.Name,
				ClassArgs:   classArgs,
				ClassIndex:  classRow,
				MethodIndex: methodRow,
			}
		}, func(methodFactory model.RowFactory) error {
			methodRow, nextRow = nextRow, nextRow+1
			for repeat := 0; repeat <= m.Repeat; repeat++ {
				if err := r.buildTest(ctx, next, info.Instance, classRow, methodRow, repeat, methodFactory); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// needsInstance reports whether any method or property data source of the
// method is resolved against a class instance.
func needsInstance(m *model.Method, class *model.Class) bool {
	if model.AnyAccessesInstance(m.Sources, m.Parameters) {
		return true
	}
	var props []model.Descriptor
	for _, p := range class.Properties {
		if p.Source != nil && !p.Static {
			props = append(props, p.Source)
		}
	}
	return model.AnyAccessesInstance(props, nil)
}

// buildTest materializes the class row, the method row and the properties of
// one test. Fixtures acquired by a test that fails to build are released.
func (r *methodRun) buildTest(ctx context.Context, nextClass func(context.Context) (*classValues, error),
	instance any, classRow, methodRow, repeat int, methodFactory model.RowFactory) (err error) {

	testCtx, sink := datasource.WithFixtureSink(ctx)
	var owned []*fixture.Handle
	defer func() {
		if err != nil {
			r.release(ctx, append(owned, sink.Handles()...))
		}
	}()

	c, err := nextClass(testCtx)
	if err != nil {
		return &classRowError{err: err}
	}
	owned = c.handles
	closedClass := c.closed

	m := r.method
	var raw []any
	if err := protect(func() error {
		var err error
		raw, err = methodFactory(testCtx)
		return err
	}); err != nil {
		return err
	}
	methodArgs, err := parammap.Map(m.Parameters, raw)
	if err != nil {
		return fmt.Errorf("method arguments: %w", err)
	}
	closedMethod, err := generic.ResolveMethod(m, closedClass, methodArgs)
	if err != nil {
		return err
	}

	properties, static, err := r.resolveProperties(testCtx, closedClass, instance)
	if err != nil {
		return err
	}

	handles := append(append(append([]*fixture.Handle{}, c.handles...), sink.Handles()...), static...)
	id := naming.Identity{
		Class:       closedClass.Name(),
		Method:      closedMethod.MethodName(),
		ClassArgs:   c.args,
		MethodArgs:  methodArgs,
		ClassIndex:  classRow,
		MethodIndex: methodRow,
		RepeatIndex: repeat,
		ParamNames:  parameterNames(m.Parameters),
		DisplayName: m.DisplayName,
	}
	display, err := r.b.naming.DisplayName(id)
	if err != nil {
		return err
	}
	for _, h := range handles {
		if err := r.b.registry.RegisterUsage(h); err != nil {
			return err
		}
	}
	r.tests = append(r.tests, &TestDefinition{
		ID:          id.ID(),
		DisplayName: display,
		Class:       closedClass,
		Method:      closedMethod,
		ClassArgs:   c.args,
		MethodArgs:  methodArgs,
		Properties:  properties,
		RepeatIndex: repeat,
		ClassRow:    classRow,
		MethodRow:   methodRow,
		Fixtures:    handles,
		Location:    m.Location,
	})
	return nil
}

// release disposes unshared fixtures acquired for a test that was never
// built. Shared fixtures hold no usage yet and are left to their scope.
func (r *methodRun) release(ctx context.Context, handles []*fixture.Handle) {
	for _, h := range handles {
		if h.Key().Kind != model.ScopeNone {
			continue
		}
		if err := r.b.registry.Release(ctx, h); err != nil {
			logging.Warn(subsystem, "releasing %s: %v", h.Key(), err)
		}
	}
}

// staticProperty is a static property resolved once per closed class.
type staticProperty struct {
	once    sync.Once
	value   any
	ok      bool
	handles []*fixture.Handle
	err     error
}

func (b *Builder) staticProperty(class *generic.ClosedClass, p *model.Property) *staticProperty {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := class.Name() + "." + p.Name
	sp, ok := b.statics[key]
	if !ok {
		sp = &staticProperty{}
		b.statics[key] = sp
	}
	return sp
}

// resolveProperties materializes property sources for one test. Each
// property takes the first value of the first row of its source. Instance
// properties are resolved into the sink of ctx. Static properties are
// resolved, initialized and set once per closed class; their fixtures are
// returned so every test records its usage.
func (r *methodRun) resolveProperties(ctx context.Context, closedClass *generic.ClosedClass, instance any) (map[string]any, []*fixture.Handle, error) {
	props := closedClass.Class.Properties
	if len(props) == 0 {
		return nil, nil, nil
	}
	values := make(map[string]any, len(props))
	var static []*fixture.Handle
	for _, p := range props {
		if p.Source == nil {
			continue
		}
		if !p.Static {
			v, ok, err := r.resolveProperty(ctx, closedClass, p, instance)
			if err != nil {
				return nil, nil, err
			}
			if ok {
				values[p.Name] = v
			}
			continue
		}

		sp := r.b.staticProperty(closedClass, p)
		sp.once.Do(func() {
			propCtx, sink := datasource.WithFixtureSink(ctx)
			sp.value, sp.ok, sp.err = r.resolveProperty(propCtx, closedClass, p, nil)
			sp.handles = sink.Handles()
			if sp.err != nil || !sp.ok {
				return
			}
			for _, h := range sp.handles {
				if err := r.b.registry.EnsureInitialized(propCtx, h); err != nil {
					sp.err = fmt.Errorf("property %s: %w", p.Name, err)
					return
				}
			}
			if p.Set != nil {
				if err := p.Set(nil, sp.value); err != nil {
					sp.err = fmt.Errorf("setting static property %s: %w", p.Name, err)
				}
			}
		})
		if sp.err != nil {
			return nil, nil, sp.err
		}
		if sp.ok {
			values[p.Name] = sp.value
			static = append(static, sp.handles...)
		}
	}
	return values, static, nil
}

func (r *methodRun) resolveProperty(ctx context.Context, closedClass *generic.ClosedClass, p *model.Property, instance any) (any, bool, error) {
	dc := r.context(model.GenerationInfo{
		Level:      model.LevelProperty,
		Class:      r.class,
		Method:     r.method,
		Parameters: []*model.Parameter{{Name: p.Name, Type: p.Type.Substitute(closedClass.Bindings)}},
		Instance:   instance,
	})
	seq, err := datasource.Open(ctx, p.Source, dc)
	if err != nil {
		return nil, false, fmt.Errorf("property %s: %w", p.Name, err)
	}
	factory, ok, err := seq.Next(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("property %s: %w", p.Name, err)
	}
	if !ok {
		return nil, false, nil
	}
	row, err := factory(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("property %s: %w", p.Name, err)
	}
	if len(row) == 0 {
		return nil, false, nil
	}
	return row[0], true, nil
}

func parameterNames(params []*model.Parameter) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func (r *methodRun) fail(id naming.Identity, err error) {
	err = model.UnwrapInvocation(err)
	if id.Class == "" && r.class != nil {
		id.Class = r.class.Name
	}
	display, _ := r.b.naming.DisplayName(naming.Identity{Method: id.Method, MethodArgs: id.MethodArgs})
	failure := &DiscoveryFailure{
		ID:          id.ID(),
		DisplayName: display,
		Class:       id.Class,
		Method:      r.method.Name,
		Location:    r.method.Location,
		Err:         err,
	}
	logging.Warn(subsystem, "discovery failure in %s.%s: %v", id.Class, r.method.Name, err)
	r.failures = append(r.failures, failure)
}

// protect runs fn and converts a panic into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during test construction: %v", p)
		}
	}()
	return fn()
}
