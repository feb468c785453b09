package cache

import (
	"context"
	"fmt"

	"github.com/riskibarqy/whereismatch/internal/platform/resilience"
)

// Producer fetches the value for a key that is neither cached nor in flight.
type Producer[V any] func(ctx context.Context) (V, error)

// Coalescer resolves keys through a QueryCache and keeps at most one producer
// call in flight per key.
type Coalescer[V any] struct {
	cache    *QueryCache[V]
	flight   resilience.SingleFlight[V]
	recorder Recorder
}

func NewCoalescer[V any](cache *QueryCache[V], recorder Recorder) *Coalescer[V] {
	if recorder == nil {
		recorder = NopRecorder()
	}
	return &Coalescer[V]{
		cache:    cache,
		recorder: recorder,
	}
}

// Resolve returns the cached value for key, joins a pending call for key, or
// runs producer and caches its result.
//
// The producer runs detached from ctx cancellation: a caller that gives up
// does not abort the fetch, and the result still lands in the cache. A failed
// producer caches nothing, so the next Resolve issues a fresh call.
func (c *Coalescer[V]) Resolve(ctx context.Context, key string, producer Producer[V]) (V, error) {
	if producer == nil {
		var zero V
		return zero, fmt.Errorf("producer is required")
	}

	if value, ok := c.cache.Get(key); ok {
		return value, nil
	}

	detached := context.WithoutCancel(ctx)
	value, err, shared := c.flight.Do(ctx, key, func() (V, error) {
		// A call that completed between the cache check and registration
		// has already stored its value. The miss above was already counted.
		if cached, ok := c.cache.Peek(key); ok {
			return cached, nil
		}

		loaded, loadErr := producer(detached)
		if loadErr != nil {
			c.recorder.RequestFailed()
			return loaded, loadErr
		}
		c.cache.Put(key, loaded)
		return loaded, nil
	})
	if shared {
		c.recorder.RequestCoalesced()
	}
	return value, err
}

// Pending reports whether a producer call for key is in flight.
func (c *Coalescer[V]) Pending(key string) bool {
	return c.flight.Pending(key)
}

// Cache exposes the backing cache.
func (c *Coalescer[V]) Cache() *QueryCache[V] {
	return c.cache
}
