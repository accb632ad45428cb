package suite

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"testwright/internal/types"
	"testwright/pkg/logging"
)

// Lifecycle phases recorded in a Journal.
const (
	PhaseCreate     = "create"
	PhaseInitialize = "initialize"
	PhaseDispose    = "dispose"
)

// Event is one recorded fixture lifecycle transition.
type Event struct {
	Fixture string
	Serial  int
	Phase   string
}

func (e Event) String() string {
	return fmt.Sprintf("%s#%d %s", e.Fixture, e.Serial, e.Phase)
}

// Journal records fixture lifecycle events in order. It is safe for
// concurrent use.
type Journal struct {
	mu     sync.Mutex
	events []Event
	serial map[string]int
}

// NewJournal returns an empty journal.
func NewJournal() *Journal {
	return &Journal{serial: make(map[string]int)}
}

// Events returns a copy of the recorded events.
func (j *Journal) Events() []Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Event(nil), j.events...)
}

// Count returns how many events of the given phase were recorded for fixture.
func (j *Journal) Count(fixture, phase string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, e := range j.events {
		if e.Fixture == fixture && e.Phase == phase {
			n++
		}
	}
	return n
}

func (j *Journal) record(fixture string, serial int, phase string) {
	j.mu.Lock()
	j.events = append(j.events, Event{Fixture: fixture, Serial: serial, Phase: phase})
	j.mu.Unlock()
	logging.Debug(subsystem, "fixture %s#%d: %s", fixture, serial, phase)
}

func (j *Journal) next(fixture string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.serial[fixture]++
	return j.serial[fixture]
}

// Resource is the fixture instance served for fixtures declared in suite
// files.
type Resource struct {
	Name   string
	Serial int

	typ     *types.Type
	failOn  string
	journal *Journal
}

func newResource(ctx context.Context, spec FixtureSpec, t *types.Type, j *Journal) (*Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := &Resource{Name: spec.Name, Serial: j.next(spec.Name), typ: t, failOn: spec.FailOn, journal: j}
	j.record(r.Name, r.Serial, PhaseCreate)
	if r.failOn == PhaseCreate {
		return nil, fmt.Errorf("fixture %s refused to start", r.Name)
	}
	return r, nil
}

func (r *Resource) RuntimeType() *types.Type {
	return r.typ
}

// Initialize records the initialization.
func (r *Resource) Initialize(ctx context.Context) error {
	r.journal.record(r.Name, r.Serial, PhaseInitialize)
	if r.failOn == PhaseInitialize {
		return errors.New("initialization failed")
	}
	return ctx.Err()
}

// Dispose records the disposal.
func (r *Resource) Dispose(context.Context) error {
	r.journal.record(r.Name, r.Serial, PhaseDispose)
	return nil
}

func (r *Resource) String() string {
	return fmt.Sprintf("%s#%d", r.Name, r.Serial)
}

// Instance is a constructed test class.
type Instance struct {
	Class    string
	TypeArgs []*types.Type
	Args     []any

	mu         sync.Mutex
	fields     map[string]any
	properties map[string]any
}

func newInstance(class string, typeArgs []*types.Type, args []any, fields map[string]any) *Instance {
	return &Instance{
		Class:      class,
		TypeArgs:   typeArgs,
		Args:       args,
		fields:     maps.Clone(fields),
		properties: make(map[string]any),
	}
}

// Field returns a declared instance field.
func (i *Instance) Field(name string) (any, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	v, ok := i.fields[name]
	return v, ok
}

// Property returns an injected property value.
func (i *Instance) Property(name string) (any, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	v, ok := i.properties[name]
	return v, ok
}

func (i *Instance) setProperty(name string, v any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.properties[name] = v
}
