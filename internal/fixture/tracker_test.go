package fixture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testwright/internal/model"
)

func TestTracker_ScopeBoundaries(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	tr := NewTracker(r, "session-1")

	classA, classB, asm, session := &recorder{}, &recorder{}, &recorder{}, &recorder{}
	get := func(key Key, rec *recorder) *Handle {
		h, err := r.Get(ctx, key, func(context.Context) (any, error) { return rec, nil })
		require.NoError(t, err)
		require.NoError(t, r.RegisterUsage(h))
		return h
	}

	newUsage := func(id, class string, recA *recorder, classKey Key) Usage {
		return Usage{
			TestID:   id,
			Class:    class,
			Assembly: "asm",
			Handles: []*Handle{
				get(classKey, recA),
				get(Key{Type: "Asm", Kind: model.ScopePerAssembly, Owner: "asm"}, asm),
				get(Key{Type: "Session", Kind: model.ScopePerTestSession, Owner: "session-1"}, session),
			},
		}
	}

	keyA := Key{Type: "Db", Kind: model.ScopePerClass, Owner: "A"}
	keyB := Key{Type: "Db", Kind: model.ScopePerClass, Owner: "B"}
	tests := []Usage{
		newUsage("a1", "A", classA, keyA),
		newUsage("a2", "A", classA, keyA),
		newUsage("b1", "B", classB, keyB),
	}
	for _, u := range tests {
		require.NoError(t, tr.Register(u))
	}
	assert.Error(t, tr.Register(tests[0]), "duplicate registration")

	for _, u := range tests {
		require.NoError(t, tr.Begin(ctx, u))
	}
	assert.Equal(t, int32(1), classA.inits.Load())
	assert.Equal(t, int32(1), asm.inits.Load())

	require.NoError(t, tr.Finish(ctx, tests[0]))
	assert.Equal(t, int32(0), classA.disposes.Load(), "A still has a running test")

	require.NoError(t, tr.Finish(ctx, tests[1]))
	assert.Equal(t, int32(1), classA.disposes.Load())
	assert.Equal(t, int32(0), classB.disposes.Load())
	assert.Equal(t, int32(0), asm.disposes.Load())

	require.NoError(t, tr.Finish(ctx, tests[2]))
	assert.Equal(t, int32(1), classB.disposes.Load())
	assert.Equal(t, int32(1), asm.disposes.Load())
	assert.Equal(t, int32(0), session.disposes.Load(), "session outlives assemblies")

	assert.Error(t, tr.Finish(ctx, tests[2]), "finished twice")

	require.NoError(t, tr.End(ctx))
	assert.Equal(t, int32(1), session.disposes.Load())
}
