package fixture

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testwright/internal/model"
	"testwright/internal/types"
)

type recorder struct {
	name       string
	inits      atomic.Int32
	disposes   atomic.Int32
	initDelay  time.Duration
	initErr    error
	disposeErr error
}

func (r *recorder) Initialize(ctx context.Context) error {
	r.inits.Add(1)
	if r.initDelay > 0 {
		time.Sleep(r.initDelay)
	}
	return r.initErr
}

func (r *recorder) Dispose(ctx context.Context) error {
	r.disposes.Add(1)
	return r.disposeErr
}

type dualDisposer struct {
	disposed bool
	closed   bool
}

func (d *dualDisposer) Dispose(context.Context) error {
	d.disposed = true
	return nil
}

func (d *dualDisposer) Close() error {
	d.closed = true
	return nil
}

type closerOnly struct{ closed bool }

func (c *closerOnly) Close() error {
	c.closed = true
	return nil
}

func countingFactory(calls *atomic.Int32, newInstance func() any) Factory {
	return func(context.Context) (any, error) {
		calls.Add(1)
		return newInstance(), nil
	}
}

func TestKeyFor(t *testing.T) {
	owner := Owner{Class: "Calc", Assembly: "math", Session: "s-1"}
	db := types.Define("Database").Of()

	tests := []struct {
		name string
		ref  model.FixtureRef
		want Key
	}{
		{"none", model.FixtureRef{Type: db, Scope: model.ScopeNone}, Key{"Database", model.ScopeNone, ""}},
		{"class", model.FixtureRef{Type: db, Scope: model.ScopePerClass}, Key{"Database", model.ScopePerClass, "Calc"}},
		{"assembly", model.FixtureRef{Type: db, Scope: model.ScopePerAssembly}, Key{"Database", model.ScopePerAssembly, "math"}},
		{"session", model.FixtureRef{Type: db, Scope: model.ScopePerTestSession}, Key{"Database", model.ScopePerTestSession, "s-1"}},
		{"keyed", model.FixtureRef{Type: db, Scope: model.ScopeKeyed, Key: "primary"}, Key{"Database", model.ScopeKeyed, "primary"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyFor(tt.ref, owner))
		})
	}
	assert.Equal(t, "Database[keyed:primary]", Key{"Database", model.ScopeKeyed, "primary"}.String())
}

func TestRegistry_ScopeSharing(t *testing.T) {
	ctx := context.Background()
	kinds := []model.ScopeKind{model.ScopePerClass, model.ScopePerAssembly, model.ScopePerTestSession, model.ScopeKeyed}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			r := NewRegistry()
			var calls atomic.Int32
			key := Key{Type: "Db", Kind: kind, Owner: "o"}
			factory := countingFactory(&calls, func() any { return &recorder{} })

			a, err := r.Get(ctx, key, factory)
			require.NoError(t, err)
			b, err := r.Get(ctx, key, factory)
			require.NoError(t, err)

			assert.Same(t, a.Instance(), b.Instance())
			assert.Equal(t, int32(1), calls.Load())
			require.NoError(t, r.Close(ctx))
		})
	}

	t.Run("none", func(t *testing.T) {
		r := NewRegistry()
		var calls atomic.Int32
		key := Key{Type: "Db", Kind: model.ScopeNone}
		factory := countingFactory(&calls, func() any { return &recorder{} })

		a, err := r.Get(ctx, key, factory)
		require.NoError(t, err)
		b, err := r.Get(ctx, key, factory)
		require.NoError(t, err)

		assert.NotSame(t, a.Instance(), b.Instance())
		assert.Equal(t, int32(2), calls.Load())
		require.NoError(t, r.Close(ctx))
	})
}

func TestRegistry_SingleInitializationUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	rec := &recorder{initDelay: 20 * time.Millisecond}
	var calls atomic.Int32
	key := Key{Type: "Db", Kind: model.ScopePerTestSession, Owner: "s"}

	const n = 32
	var wg sync.WaitGroup
	instances := make([]any, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := r.Get(ctx, key, countingFactory(&calls, func() any {
				time.Sleep(5 * time.Millisecond)
				return rec
			}))
			if err != nil {
				errs[i] = err
				return
			}
			instances[i] = h.Instance()
			errs[i] = r.EnsureInitialized(ctx, h)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, rec, instances[i])
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), rec.inits.Load())
	require.NoError(t, r.Close(ctx))
}

func TestRegistry_CreationFailureReachesEveryConsumer(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	boom := errors.New("connection refused")
	var calls atomic.Int32
	key := Key{Type: "Db", Kind: model.ScopePerClass, Owner: "C"}
	factory := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, boom
	}

	for i := 0; i < 3; i++ {
		_, err := r.Get(ctx, key, factory)
		var le *LifecycleError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, "create", le.Phase)
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_InitializationFailureReachesEveryConsumer(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	boom := errors.New("migrations failed")
	rec := &recorder{initErr: boom}
	key := Key{Type: "Db", Kind: model.ScopeKeyed, Owner: "k"}

	h1, err := r.Get(ctx, key, func(context.Context) (any, error) { return rec, nil })
	require.NoError(t, err)
	h2, err := r.Get(ctx, key, func(context.Context) (any, error) { return rec, nil })
	require.NoError(t, err)

	assert.ErrorIs(t, r.EnsureInitialized(ctx, h1), boom)
	assert.ErrorIs(t, r.EnsureInitialized(ctx, h2), boom)
	assert.Equal(t, int32(1), rec.inits.Load())
	assert.Equal(t, StateFailed, h1.State())
	require.NoError(t, r.Close(ctx))
}

func TestRegistry_PanickingFactory(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(context.Background(), Key{Type: "Db", Kind: model.ScopePerClass, Owner: "C"},
		func(context.Context) (any, error) { panic("nope") })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: nope")
}

func TestRegistry_PerClassDisposedOnDrainAtBoundary(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	rec := &recorder{}
	key := Key{Type: "Db", Kind: model.ScopePerClass, Owner: "Calc"}

	h, err := r.Get(ctx, key, func(context.Context) (any, error) { return rec, nil })
	require.NoError(t, err)
	require.NoError(t, r.RegisterUsage(h))
	require.NoError(t, r.RegisterUsage(h))

	require.NoError(t, r.Release(ctx, h))
	require.NoError(t, r.Release(ctx, h))
	assert.Equal(t, int32(0), rec.disposes.Load(), "boundary not crossed yet")

	require.NoError(t, r.CompleteScope(ctx, model.ScopePerClass, "Calc"))
	assert.Equal(t, int32(1), rec.disposes.Load())
	assert.Equal(t, StateDisposed, h.State())
}

func TestRegistry_PerClassBoundaryBeforeLastRelease(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	rec := &recorder{}
	key := Key{Type: "Db", Kind: model.ScopePerClass, Owner: "Calc"}

	h, err := r.Get(ctx, key, func(context.Context) (any, error) { return rec, nil })
	require.NoError(t, err)
	require.NoError(t, r.RegisterUsage(h))

	require.NoError(t, r.CompleteScope(ctx, model.ScopePerClass, "Calc"))
	assert.Equal(t, int32(0), rec.disposes.Load(), "still in use")

	require.NoError(t, r.Release(ctx, h))
	assert.Equal(t, int32(1), rec.disposes.Load())

	// Other owners are unaffected.
	require.NoError(t, r.CompleteScope(ctx, model.ScopePerClass, "Other"))
	assert.Equal(t, int32(1), rec.disposes.Load())
}

func TestRegistry_KeyedDisposesAtZero(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	rec := &recorder{}

	h, err := r.Get(ctx, Key{Type: "Db", Kind: model.ScopeKeyed, Owner: "k"}, func(context.Context) (any, error) { return rec, nil })
	require.NoError(t, err)
	require.NoError(t, r.RegisterUsage(h))
	require.NoError(t, r.RegisterUsage(h))

	require.NoError(t, r.Release(ctx, h))
	assert.Equal(t, int32(0), rec.disposes.Load())
	require.NoError(t, r.Release(ctx, h))
	assert.Equal(t, int32(1), rec.disposes.Load())

	var le *LifecycleError
	require.ErrorAs(t, r.RegisterUsage(h), &le)
	assert.ErrorIs(t, le, ErrDisposed)
}

func TestRegistry_UnsharedDisposedPerConsumer(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	a, b := &recorder{}, &recorder{}
	next := []*recorder{a, b}
	factory := func(context.Context) (any, error) {
		rec := next[0]
		next = next[1:]
		return rec, nil
	}

	ha, err := r.Get(ctx, Key{Type: "Tmp", Kind: model.ScopeNone}, factory)
	require.NoError(t, err)
	hb, err := r.Get(ctx, Key{Type: "Tmp", Kind: model.ScopeNone}, factory)
	require.NoError(t, err)

	require.NoError(t, r.Release(ctx, ha))
	assert.Equal(t, int32(1), a.disposes.Load())
	assert.Equal(t, int32(0), b.disposes.Load())

	require.NoError(t, r.Close(ctx))
	assert.Equal(t, int32(1), b.disposes.Load())
	assert.Equal(t, StateDisposed, hb.State())
}

func TestRegistry_OverRelease(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	h, err := r.Get(ctx, Key{Type: "Db", Kind: model.ScopeKeyed, Owner: "k"}, func(context.Context) (any, error) { return 1, nil })
	require.NoError(t, err)

	assert.ErrorIs(t, r.Release(ctx, h), ErrReleased)
}

func TestRegistry_PrefersAsyncDisposal(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	dual := &dualDisposer{}
	closer := &closerOnly{}

	_, err := r.Get(ctx, Key{Type: "Dual", Kind: model.ScopePerTestSession, Owner: "s"}, func(context.Context) (any, error) { return dual, nil })
	require.NoError(t, err)
	_, err = r.Get(ctx, Key{Type: "Closer", Kind: model.ScopePerTestSession, Owner: "s"}, func(context.Context) (any, error) { return closer, nil })
	require.NoError(t, err)

	require.NoError(t, r.Close(ctx))
	assert.True(t, dual.disposed)
	assert.False(t, dual.closed)
	assert.True(t, closer.closed)
}

func TestRegistry_BatchDisposalContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	boom := errors.New("disk busy")
	recs := []*recorder{{name: "a"}, {name: "b", disposeErr: boom}, {name: "c"}}

	for _, rec := range recs {
		rec := rec
		_, err := r.Get(ctx, Key{Type: rec.name, Kind: model.ScopePerAssembly, Owner: "asm"},
			func(context.Context) (any, error) { return rec, nil })
		require.NoError(t, err)
	}

	err := r.CompleteScope(ctx, model.ScopePerAssembly, "asm")
	require.ErrorIs(t, err, boom)
	for _, rec := range recs {
		assert.Equal(t, int32(1), rec.disposes.Load(), rec.name)
	}
	assert.Empty(t, r.Snapshot())
}

func TestRegistry_ClosedRejectsGet(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	require.NoError(t, r.Close(ctx))

	_, err := r.Get(ctx, Key{Type: "Db", Kind: model.ScopeKeyed, Owner: "k"}, func(context.Context) (any, error) { return 1, nil })
	assert.Error(t, err)
}

func TestRegistry_Snapshot(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	h, err := r.Get(ctx, Key{Type: "A", Kind: model.ScopeKeyed, Owner: "1"}, func(context.Context) (any, error) { return &recorder{}, nil })
	require.NoError(t, err)
	require.NoError(t, r.RegisterUsage(h))
	require.NoError(t, r.EnsureInitialized(ctx, h))
	_, err = r.Get(ctx, Key{Type: "B", Kind: model.ScopeNone}, func(context.Context) (any, error) { return 2, nil })
	require.NoError(t, err)

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "A", snap[0].Key.Type)
	assert.Equal(t, StateReady, snap[0].State)
	assert.Equal(t, 1, snap[0].Refs)
	assert.Equal(t, "B", snap[1].Key.Type)
	assert.Equal(t, StateCreated, snap[1].State)
	require.NoError(t, r.Close(ctx))
}
