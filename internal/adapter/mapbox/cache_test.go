package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingSearcher struct {
	calls  int
	places []domain.Place
	err    error
}

func (m *countingSearcher) Search(_ context.Context, _ string) ([]domain.Place, error) {
	m.calls++
	return m.places, m.err
}

func place(name string) []domain.Place {
	return []domain.Place{{Name: name, Lat: 40.75, Lng: -73.98}}
}

// --- CachedSearcher tests ---

func TestCachedSearcher_CacheHit(t *testing.T) {
	inner := &countingSearcher{places: place("Bryant Park")}
	metrics := testMetrics()
	cached := NewCachedSearcher(inner, 10, metrics)

	r1, err := cached.Search(context.Background(), "Bryant")
	require.NoError(t, err)
	assert.Equal(t, "Bryant Park", r1[0].Name)

	r2, err := cached.Search(context.Background(), "  bryant ")
	require.NoError(t, err)
	assert.Equal(t, "Bryant Park", r2[0].Name)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedSearcher_DifferentKeysMiss(t *testing.T) {
	inner := &countingSearcher{places: place("Place")}
	cached := NewCachedSearcher(inner, 10, testMetrics())

	_, _ = cached.Search(context.Background(), "chelsea")
	_, _ = cached.Search(context.Background(), "tribeca")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedSearcher_DoesNotCacheEmptyOrErrors(t *testing.T) {
	inner := &countingSearcher{}
	cached := NewCachedSearcher(inner, 10, testMetrics())

	_, _ = cached.Search(context.Background(), "nowhere")
	_, _ = cached.Search(context.Background(), "nowhere")
	assert.Equal(t, 2, inner.calls)

	inner.err = errors.New("timeout")
	_, err := cached.Search(context.Background(), "nowhere")
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", place("A"))
	c.put("b", place("B"))

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result[0].Name)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", place("A"))
	c.put("b", place("B"))
	c.put("c", place("C")) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	result, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", result[0].Name)

	result, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", result[0].Name)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", place("A"))
	c.put("b", place("B"))

	c.get("a")

	// Insert "c": should evict "b" (LRU), not "a"
	c.put("c", place("C"))

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", place("A1"))
	c.put("a", place("A2"))

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result[0].Name)
}
