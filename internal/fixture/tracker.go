package fixture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"testwright/internal/model"
)

// Usage describes the fixtures a single constructed test consumes.
type Usage struct {
	TestID   string
	Class    string
	Assembly string
	Handles  []*Handle
}

// Tracker drives scope boundaries from test start and end notifications.
type Tracker struct {
	registry *Registry
	session  string

	mu         sync.Mutex
	registered map[string]bool
	classes    map[string]int
	assemblies map[string]int
}

// NewTracker returns a tracker for the given session id.
func NewTracker(registry *Registry, session string) *Tracker {
	return &Tracker{
		registry:   registry,
		session:    session,
		registered: make(map[string]bool),
		classes:    make(map[string]int),
		assemblies: make(map[string]int),
	}
}

// Register counts a test towards its class and assembly. Usage counts on the
// handles are expected to have been registered when the test was built.
func (t *Tracker) Register(u Usage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.registered[u.TestID] {
		return fmt.Errorf("test %s already registered", u.TestID)
	}
	t.registered[u.TestID] = true
	t.classes[u.Class]++
	t.assemblies[u.Assembly]++
	return nil
}

// Begin initializes the test's fixtures immediately before its body runs.
func (t *Tracker) Begin(ctx context.Context, u Usage) error {
	var errs []error
	for _, h := range u.Handles {
		if err := t.registry.EnsureInitialized(ctx, h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Finish releases the test's fixtures and crosses the class and assembly
// boundaries when this was the last registered test of either.
func (t *Tracker) Finish(ctx context.Context, u Usage) error {
	t.mu.Lock()
	if !t.registered[u.TestID] {
		t.mu.Unlock()
		return fmt.Errorf("test %s was not registered", u.TestID)
	}
	delete(t.registered, u.TestID)
	t.classes[u.Class]--
	classDone := t.classes[u.Class] == 0
	t.assemblies[u.Assembly]--
	assemblyDone := t.assemblies[u.Assembly] == 0
	t.mu.Unlock()

	var errs []error
	for _, h := range u.Handles {
		if err := t.registry.Release(ctx, h); err != nil {
			errs = append(errs, err)
		}
	}
	if classDone {
		errs = append(errs, t.registry.CompleteScope(ctx, model.ScopePerClass, u.Class))
	}
	if assemblyDone {
		errs = append(errs, t.registry.CompleteScope(ctx, model.ScopePerAssembly, u.Assembly))
	}
	return errors.Join(errs...)
}

// End crosses the session boundary and disposes everything left.
func (t *Tracker) End(ctx context.Context) error {
	return errors.Join(
		t.registry.CompleteScope(ctx, model.ScopePerTestSession, t.session),
		t.registry.Close(ctx),
	)
}
