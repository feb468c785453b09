package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultQueryCacheCapacity covers roughly three weeks of daily browsing plus
// a few filter variants.
const DefaultQueryCacheCapacity = 24

// Recorder receives cache and coalescer events. Implementations must be safe
// for concurrent use.
type Recorder interface {
	CacheHit()
	CacheMiss()
	CacheEviction()
	RequestCoalesced()
	RequestFailed()
}

type nopRecorder struct{}

func (nopRecorder) CacheHit()         {}
func (nopRecorder) CacheMiss()        {}
func (nopRecorder) CacheEviction()    {}
func (nopRecorder) RequestCoalesced() {}
func (nopRecorder) RequestFailed()    {}

// NopRecorder discards every event.
func NopRecorder() Recorder { return nopRecorder{} }

// QueryCache is a bounded least-recently-used map from a canonical query key
// to a fetched result. Entries never expire; they leave only under capacity
// pressure.
type QueryCache[V any] struct {
	entries  *lru.Cache[string, V]
	capacity int
	recorder Recorder
}

func NewQueryCache[V any](capacity int, recorder Recorder) (*QueryCache[V], error) {
	if capacity <= 0 {
		capacity = DefaultQueryCacheCapacity
	}
	if recorder == nil {
		recorder = NopRecorder()
	}

	entries, err := lru.NewWithEvict[string, V](capacity, func(string, V) {
		recorder.CacheEviction()
	})
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}

	return &QueryCache[V]{
		entries:  entries,
		capacity: capacity,
		recorder: recorder,
	}, nil
}

// Get returns the value for key and marks it most recently used.
func (c *QueryCache[V]) Get(key string) (V, bool) {
	value, ok := c.entries.Get(key)
	if ok {
		c.recorder.CacheHit()
	} else {
		c.recorder.CacheMiss()
	}
	return value, ok
}

// Contains reports presence without touching recency.
func (c *QueryCache[V]) Contains(key string) bool {
	return c.entries.Contains(key)
}

// Peek returns the value for key without touching recency or the hit and
// miss counters.
func (c *QueryCache[V]) Peek(key string) (V, bool) {
	return c.entries.Peek(key)
}

// Put stores value under key at the most recent position. A refreshed key
// becomes the newest entry. When the cache is over capacity the single least
// recently used entry is evicted.
func (c *QueryCache[V]) Put(key string, value V) {
	c.entries.Add(key, value)
}

func (c *QueryCache[V]) Len() int {
	return c.entries.Len()
}

func (c *QueryCache[V]) Capacity() int {
	return c.capacity
}

// Keys returns the cached keys from least to most recently used.
func (c *QueryCache[V]) Keys() []string {
	return c.entries.Keys()
}
