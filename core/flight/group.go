// Package flight collapses concurrent executions of the same keyed operation
// into one. The in-flight registry is a concurrent map and a caller only
// becomes the leader when its atomic insertion wins.
package flight

import (
	"context"

	cmap "github.com/orcaman/concurrent-map/v2"
)

type call[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// Group runs at most one fn per key at a time.
// The zero value is not usable; create groups with NewGroup.
type Group[V any] struct {
	calls cmap.ConcurrentMap[string, *call[V]]
}

// NewGroup returns an empty group.
func NewGroup[V any]() *Group[V] {
	return &Group[V]{calls: cmap.New[*call[V]]()}
}

// Do executes fn for key unless an execution is already in flight, in which
// case it waits for that one. fn runs on its own goroutine so that a caller
// whose ctx ends stops waiting without abandoning the other waiters.
// shared reports whether the result came from another caller's execution.
func (g *Group[V]) Do(ctx context.Context, key string, fn func() (V, error)) (value V, err error, shared bool) {
	for {
		c := &call[V]{done: make(chan struct{})}
		if g.calls.SetIfAbsent(key, c) {
			go g.run(key, c, fn)
			return wait(ctx, c, false)
		}
		if existing, ok := g.calls.Get(key); ok {
			return wait(ctx, existing, true)
		}
		// the previous call finished between the two lookups
	}
}

// InFlight reports whether an execution for key is pending.
func (g *Group[V]) InFlight(key string) bool {
	return g.calls.Has(key)
}

func (g *Group[V]) run(key string, c *call[V], fn func() (V, error)) {
	// the key is released before waiters wake, so a caller that saw this
	// result never joins it again
	defer func() {
		g.calls.Remove(key)
		close(c.done)
	}()
	c.value, c.err = fn()
}

func wait[V any](ctx context.Context, c *call[V], shared bool) (V, error, bool) {
	select {
	case <-c.done:
		return c.value, c.err, shared
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err(), shared
	}
}
