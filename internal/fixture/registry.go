package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"testwright/internal/model"
	"testwright/pkg/logging"
)

const subsystem = "FixtureRegistry"

// ErrReleased is returned when releasing a handle more often than its usage
// was registered.
var ErrReleased = errors.New("fixture released more times than registered")

// ErrDisposed is returned when registering usage of a disposed fixture.
var ErrDisposed = errors.New("fixture already disposed")

// Factory constructs a fixture instance.
type Factory func(ctx context.Context) (any, error)

type slot struct {
	key      Key
	seq      uint64
	flight   string
	instance any
	refs     int
	state    State

	created bool
	initErr error
	initRan bool
	err     error
}

// Handle is a consumer's reference to a fixture slot.
type Handle struct {
	s *slot
	r *Registry
}

// Key returns the slot's scope key.
func (h *Handle) Key() Key {
	return h.s.key
}

// Instance returns the fixture instance.
func (h *Handle) Instance() any {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	return h.s.instance
}

// State returns the slot's current lifecycle state.
func (h *Handle) State() State {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	return h.s.state
}

// Refs returns the slot's live-consumer count.
func (h *Handle) Refs() int {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	return h.s.refs
}

type boundary struct {
	kind  model.ScopeKind
	owner string
}

// Registry is the scope-keyed fixture arena. All counters and state
// transitions are guarded by one mutex; user code runs outside it.
type Registry struct {
	mu      sync.Mutex
	slots   map[Key]*slot
	private map[*slot]struct{}
	crossed map[boundary]bool
	seq     uint64
	closed  bool

	group singleflight.Group
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		slots:   make(map[Key]*slot),
		private: make(map[*slot]struct{}),
		crossed: make(map[boundary]bool),
	}
}

// Get returns the fixture for key, constructing it with factory on first
// access. Unshared keys always construct a fresh instance. A failed
// construction is memoized and returned to every caller of the key.
func (r *Registry) Get(ctx context.Context, key Key, factory Factory) (*Handle, error) {
	if factory == nil {
		return nil, fmt.Errorf("fixture %s: no factory", key)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, fmt.Errorf("fixture %s: registry closed", key)
	}
	s, ok := r.slots[key]
	if key.Kind == model.ScopeNone || !ok {
		r.seq++
		s = &slot{key: key, seq: r.seq, flight: key.String() + "#" + strconv.FormatUint(r.seq, 10)}
		if key.Kind == model.ScopeNone {
			r.private[s] = struct{}{}
		} else {
			r.slots[key] = s
		}
	}
	r.mu.Unlock()

	if err := r.create(ctx, s, factory); err != nil {
		return nil, err
	}
	return &Handle{s: s, r: r}, nil
}

func (r *Registry) create(ctx context.Context, s *slot, factory Factory) error {
	r.mu.Lock()
	if s.created || s.err != nil {
		err := s.err
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	_, err, _ := r.group.Do("create:"+s.flight, func() (any, error) {
		r.mu.Lock()
		if s.created || s.err != nil {
			err := s.err
			r.mu.Unlock()
			return nil, err
		}
		s.state = StateCreating
		r.mu.Unlock()

		logging.Debug(subsystem, "creating %s", s.key)
		instance, err := protect(func() (any, error) { return factory(ctx) })

		r.mu.Lock()
		defer r.mu.Unlock()
		if err != nil {
			s.err = &LifecycleError{Key: s.key, Phase: "create", Err: err}
			s.state = StateFailed
			return nil, s.err
		}
		s.instance = instance
		s.created = true
		s.state = StateCreated
		return nil, nil
	})
	return err
}

// RegisterUsage records one more consuming test.
func (r *Registry) RegisterUsage(h *Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.s.state >= StateDisposing && h.s.state != StateFailed {
		return &LifecycleError{Key: h.s.key, Phase: "register", Err: ErrDisposed}
	}
	h.s.refs++
	return nil
}

// EnsureInitialized runs the fixture's one-shot initializer. Concurrent
// callers share a single invocation and all observe its outcome.
func (r *Registry) EnsureInitialized(ctx context.Context, h *Handle) error {
	s := h.s
	r.mu.Lock()
	if s.err != nil || s.initRan {
		err := s.err
		if err == nil {
			err = s.initErr
		}
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	_, err, _ := r.group.Do("init:"+s.flight, func() (any, error) {
		r.mu.Lock()
		if s.initRan {
			err := s.initErr
			r.mu.Unlock()
			return nil, err
		}
		if s.state >= StateDisposing && s.state != StateFailed {
			r.mu.Unlock()
			return nil, &LifecycleError{Key: s.key, Phase: "initialize", Err: ErrDisposed}
		}
		s.state = StateInitializing
		instance := s.instance
		r.mu.Unlock()

		var err error
		if init, ok := instance.(model.Initializer); ok {
			logging.Debug(subsystem, "initializing %s", s.key)
			_, err = protect(func() (any, error) { return nil, init.Initialize(ctx) })
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		s.initRan = true
		if err != nil {
			s.initErr = &LifecycleError{Key: s.key, Phase: "initialize", Err: err}
			s.state = StateFailed
			return nil, s.initErr
		}
		if s.state == StateInitializing {
			s.state = StateReady
		}
		return nil, nil
	})
	return err
}

// Release records that one consuming test has finished. The fixture is
// disposed when no consumers remain and its scope allows it.
func (r *Registry) Release(ctx context.Context, h *Handle) error {
	s := h.s
	r.mu.Lock()
	if s.refs == 0 && s.key.Kind != model.ScopeNone {
		r.mu.Unlock()
		return &LifecycleError{Key: s.key, Phase: "release", Err: ErrReleased}
	}
	if s.refs > 0 {
		s.refs--
	}

	var dispose bool
	switch s.key.Kind {
	case model.ScopeNone, model.ScopeKeyed:
		dispose = s.refs == 0
	default:
		dispose = s.refs == 0 && r.crossed[boundary{s.key.Kind, s.key.Owner}]
	}
	dispose = dispose && r.markDisposingLocked(s)
	r.mu.Unlock()

	if !dispose {
		return nil
	}
	return r.dispose(ctx, s)
}

// CompleteScope marks the boundary of owner as crossed: every fixture of that
// scope without remaining consumers is disposed, and fixtures still in use are
// disposed by their final Release.
func (r *Registry) CompleteScope(ctx context.Context, kind model.ScopeKind, owner string) error {
	r.mu.Lock()
	r.crossed[boundary{kind, owner}] = true
	var batch []*slot
	for _, s := range r.slots {
		if s.key.Kind == kind && s.key.Owner == owner && s.refs == 0 && r.markDisposingLocked(s) {
			batch = append(batch, s)
		}
	}
	r.mu.Unlock()

	logging.Debug(subsystem, "scope %s:%s complete, disposing %d fixtures", kind, owner, len(batch))
	return r.disposeBatch(ctx, batch)
}

// Close disposes every remaining fixture regardless of usage counts. The
// registry rejects further Get calls.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	var batch []*slot
	for _, s := range r.slots {
		if r.markDisposingLocked(s) {
			batch = append(batch, s)
		}
	}
	for s := range r.private {
		if r.markDisposingLocked(s) {
			batch = append(batch, s)
		}
	}
	r.mu.Unlock()

	return r.disposeBatch(ctx, batch)
}

func (r *Registry) markDisposingLocked(s *slot) bool {
	if s.state == StateDisposing || s.state == StateDisposed {
		return false
	}
	s.state = StateDisposing
	return true
}

func (r *Registry) disposeBatch(ctx context.Context, batch []*slot) error {
	sort.Slice(batch, func(i, j int) bool { return batch[i].seq > batch[j].seq })
	var errs []error
	for _, s := range batch {
		if err := r.dispose(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) dispose(ctx context.Context, s *slot) error {
	r.mu.Lock()
	instance := s.instance
	r.mu.Unlock()

	var err error
	switch d := instance.(type) {
	case model.Disposer:
		_, err = protect(func() (any, error) { return nil, d.Dispose(ctx) })
	case io.Closer:
		_, err = protect(func() (any, error) { return nil, d.Close() })
	}

	r.mu.Lock()
	s.state = StateDisposed
	if r.slots[s.key] == s {
		delete(r.slots, s.key)
	}
	delete(r.private, s)
	r.mu.Unlock()

	if err != nil {
		logging.Warn(subsystem, "disposing %s failed: %v", s.key, err)
		return &LifecycleError{Key: s.key, Phase: "dispose", Err: err}
	}
	logging.Debug(subsystem, "disposed %s", s.key)
	return nil
}

// SlotInfo is a read-only view of one slot.
type SlotInfo struct {
	Key   Key
	State State
	Refs  int
	Err   error
}

// Snapshot returns the live slots in creation order.
func (r *Registry) Snapshot() []SlotInfo {
	r.mu.Lock()
	all := make([]*slot, 0, len(r.slots)+len(r.private))
	for _, s := range r.slots {
		all = append(all, s)
	}
	for s := range r.private {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })

	out := make([]SlotInfo, len(all))
	for i, s := range all {
		err := s.err
		if err == nil {
			err = s.initErr
		}
		out[i] = SlotInfo{Key: s.key, State: s.state, Refs: s.refs, Err: err}
	}
	r.mu.Unlock()
	return out
}

// protect runs fn and converts a panic into an error.
func protect(fn func() (any, error)) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}
