package datasource

import (
	"context"
	"reflect"
	"sync"

	"testwright/internal/fixture"
	"testwright/internal/model"
)

// Context carries the explicit construction state handed to Open.
type Context struct {
	Info     model.GenerationInfo
	Registry *fixture.Registry
	Owner    fixture.Owner
	// Initialized deduplicates per-row initialization across sources. It may
	// be shared by several contexts.
	Initialized *InitSet
}

// WithInfo returns a copy of c describing a different declaration level.
func (c *Context) WithInfo(info model.GenerationInfo) *Context {
	cp := *c
	cp.Info = info
	return &cp
}

// InitSet remembers which values have already been initialized.
type InitSet struct {
	mu   sync.Mutex
	done map[any]bool
}

// NewInitSet returns an empty set.
func NewInitSet() *InitSet {
	return &InitSet{done: make(map[any]bool)}
}

// claim reports whether the caller should initialize v. Non-comparable
// values are always initialized.
func (s *InitSet) claim(v any) bool {
	if s == nil || !reflect.TypeOf(v).Comparable() {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done[v] {
		return false
	}
	s.done[v] = true
	return true
}

// FixtureSink records the fixture handles acquired while materializing rows.
type FixtureSink struct {
	mu      sync.Mutex
	handles []*fixture.Handle
}

// Handles returns the recorded handles in acquisition order.
func (s *FixtureSink) Handles() []*fixture.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fixture.Handle(nil), s.handles...)
}

func (s *FixtureSink) add(h *fixture.Handle) {
	s.mu.Lock()
	s.handles = append(s.handles, h)
	s.mu.Unlock()
}

type sinkKey struct{}

// WithFixtureSink returns a context that records fixture handles acquired by
// row factories invoked with it.
func WithFixtureSink(ctx context.Context) (context.Context, *FixtureSink) {
	sink := &FixtureSink{}
	return context.WithValue(ctx, sinkKey{}, sink), sink
}

func sinkFrom(ctx context.Context) *FixtureSink {
	s, _ := ctx.Value(sinkKey{}).(*FixtureSink)
	return s
}
