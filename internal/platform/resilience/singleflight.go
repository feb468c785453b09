package resilience

import (
	"context"
	"sync"
)

// SingleFlight deduplicates concurrent calls for the same key. The zero value
// is ready to use.
type SingleFlight[V any] struct {
	mu    sync.Mutex
	calls map[string]*call[V]
}

type call[V any] struct {
	done    chan struct{}
	val     V
	err     error
	waiters int
}

// Do runs fn once per key among concurrent callers. The call is registered
// before fn starts, so a second caller arriving at any point before fn returns
// joins it instead of starting another. shared reports whether the result
// came from another caller's fn.
//
// A caller whose ctx is done stops waiting and gets ctx.Err(); the shared call
// keeps running for the others.
func (g *SingleFlight[V]) Do(ctx context.Context, key string, fn func() (V, error)) (v V, err error, shared bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call[V])
	}

	if c, ok := g.calls[key]; ok {
		c.waiters++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, c.err, true
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err(), true
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()
	close(c.done)

	return c.val, c.err, false
}

// Pending reports whether a call for key is in flight.
func (g *SingleFlight[V]) Pending(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.calls[key]
	return ok
}

// Waiters returns how many callers joined the in-flight call for key.
func (g *SingleFlight[V]) Waiters(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.calls[key]; ok {
		return c.waiters
	}
	return 0
}
