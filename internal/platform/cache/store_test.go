package cache

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, recorder Recorder) *QueryCache[[]string] {
	t.Helper()
	c, err := NewQueryCache[[]string](DefaultQueryCacheCapacity, recorder)
	require.NoError(t, err)
	return c
}

func TestQueryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, nil)
	for i := 0; i < 25; i++ {
		c.Put(fmt.Sprintf("k%02d", i), []string{fmt.Sprint(i)})
	}

	assert.Equal(t, 24, c.Len())
	assert.False(t, c.Contains("k00"), "oldest key must be evicted")
	for i := 1; i < 25; i++ {
		assert.True(t, c.Contains(fmt.Sprintf("k%02d", i)))
	}
}

func TestQueryCache_GetProtectsFromEviction(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, nil)
	for i := 0; i < 24; i++ {
		c.Put(fmt.Sprintf("k%02d", i), nil)
	}

	_, ok := c.Get("k00")
	require.True(t, ok)

	for i := 0; i < 23; i++ {
		c.Put(fmt.Sprintf("new%02d", i), nil)
	}

	assert.True(t, c.Contains("k00"), "accessed key must survive 23 inserts")
	assert.Equal(t, 24, c.Len())

	c.Put("one-more", nil)
	assert.False(t, c.Contains("k00"), "accessed key is now the least recent")
}

func TestQueryCache_PutRefreshMovesToNewest(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, nil)
	c.Put("a", []string{"1"})
	c.Put("b", []string{"2"})
	c.Put("a", []string{"3"})

	assert.Equal(t, []string{"b", "a"}, c.Keys())
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"3"}, v)
}

func TestQueryCache_GetDoesNotEvict(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, nil)
	for i := 0; i < 24; i++ {
		c.Put(fmt.Sprintf("k%02d", i), nil)
	}
	for i := 0; i < 100; i++ {
		_, _ = c.Get(fmt.Sprintf("missing%d", i))
	}
	assert.Equal(t, 24, c.Len())
}

func TestQueryCache_AtMostOneEvictionPerPut(t *testing.T) {
	t.Parallel()

	rec := &countingRecorder{}
	c := newTestCache(t, rec)
	for i := 0; i < 30; i++ {
		before := rec.evictions.Load()
		c.Put(fmt.Sprintf("k%02d", i), nil)
		assert.LessOrEqual(t, rec.evictions.Load()-before, int64(1))
		assert.LessOrEqual(t, c.Len(), 24)
	}
	assert.Equal(t, int64(6), rec.evictions.Load())
}

func TestQueryCache_PeekIsNotCounted(t *testing.T) {
	t.Parallel()

	rec := &countingRecorder{}
	c := newTestCache(t, rec)
	c.Put("a", []string{"1"})
	c.Put("b", []string{"2"})

	v, ok := c.Peek("a")
	require.True(t, ok)
	assert.Equal(t, []string{"1"}, v)
	_, ok = c.Peek("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, c.Keys(), "peek keeps recency")
	assert.Zero(t, rec.hits.Load())
	assert.Zero(t, rec.misses.Load())
}

func TestQueryCache_DefaultsCapacity(t *testing.T) {
	t.Parallel()

	c, err := NewQueryCache[int](0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultQueryCacheCapacity, c.Capacity())
}

type countingRecorder struct {
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	coalesced atomic.Int64
	failed    atomic.Int64
}

func (r *countingRecorder) CacheHit()         { r.hits.Add(1) }
func (r *countingRecorder) CacheMiss()        { r.misses.Add(1) }
func (r *countingRecorder) CacheEviction()    { r.evictions.Add(1) }
func (r *countingRecorder) RequestCoalesced() { r.coalesced.Add(1) }
func (r *countingRecorder) RequestFailed()    { r.failed.Add(1) }
