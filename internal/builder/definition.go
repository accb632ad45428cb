package builder

import (
	"context"
	"fmt"

	"testwright/internal/fixture"
	"testwright/internal/generic"
	"testwright/internal/model"
)

// TestDefinition is one fully materialized test.
type TestDefinition struct {
	ID          string
	DisplayName string
	Class       *generic.ClosedClass
	Method      *generic.ClosedMethod
	ClassArgs   []any
	MethodArgs  []any
	Properties  map[string]any
	RepeatIndex int
	// ClassRow and MethodRow are the positions of the argument rows within
	// their data sources.
	ClassRow  int
	MethodRow int
	Fixtures  []*fixture.Handle
	Location  model.Location
}

// NewInstance constructs the test class and injects instance properties.
func (d *TestDefinition) NewInstance(ctx context.Context) (any, error) {
	if d.Class.New == nil {
		return nil, fmt.Errorf("class %s has no factory", d.Class.Name())
	}
	instance, err := d.Class.New(ctx, d.Class.TypeArgs, d.ClassArgs)
	if err != nil {
		return nil, fmt.Errorf("constructing %s: %w", d.Class.Name(), model.UnwrapInvocation(err))
	}
	for _, p := range d.Class.Class.Properties {
		if p.Static || p.Set == nil {
			continue
		}
		v, ok := d.Properties[p.Name]
		if !ok {
			continue
		}
		if err := p.Set(instance, v); err != nil {
			return nil, fmt.Errorf("setting property %s: %w", p.Name, err)
		}
	}
	return instance, nil
}

// Invoke runs the test body on instance.
func (d *TestDefinition) Invoke(ctx context.Context, instance any) error {
	if d.Method.Invoke == nil {
		return fmt.Errorf("method %s has no invoker", d.Method.Name())
	}
	return d.Method.Invoke(ctx, instance, d.Method.TypeArgs, d.MethodArgs)
}

// Usage describes the fixtures the test consumes for the fixture tracker.
func (d *TestDefinition) Usage() fixture.Usage {
	return fixture.Usage{
		TestID:   d.ID,
		Class:    d.Class.Class.Name,
		Assembly: d.Class.Class.Assembly,
		Handles:  d.Fixtures,
	}
}

// DiscoveryFailure records a test that could not be constructed.
type DiscoveryFailure struct {
	ID          string
	DisplayName string
	Class       string
	Method      string
	Location    model.Location
	Err         error
}

func (f *DiscoveryFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.DisplayName, f.Err)
}

func (f *DiscoveryFailure) Unwrap() error {
	return f.Err
}

// Result is the outcome of a discovery run.
type Result struct {
	Tests    []*TestDefinition
	Failures []*DiscoveryFailure
}
