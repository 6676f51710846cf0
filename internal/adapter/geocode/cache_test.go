package geocode

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmsecure/outbreak-sync-service/internal/domain"
	"github.com/farmsecure/outbreak-sync-service/internal/observability"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	result *domain.GeocodeResult
}

func (m *countingGeocoder) Resolve(_ context.Context, _ string) (*domain.GeocodeResult, error) {
	m.calls++
	return m.result, nil
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{result: cityResult(21.0, 105.8)}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	r1, err := cached.Resolve(context.Background(), "Hanoi, Vietnam")
	require.NoError(t, err)
	require.NotNil(t, r1)

	r2, err := cached.Resolve(context.Background(), "Hanoi, Vietnam")
	require.NoError(t, err)
	require.NotNil(t, r2)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedGeocoder_KeyNormalization(t *testing.T) {
	inner := &countingGeocoder{result: cityResult(21.0, 105.8)}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Resolve(context.Background(), "Hanoi, Vietnam")
	require.NoError(t, err)
	_, err = cached.Resolve(context.Background(), "  hanoi, vietnam ")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoder_DoesNotCacheUnresolved(t *testing.T) {
	inner := &countingGeocoder{result: nil}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	for i := 0; i < 3; i++ {
		result, err := cached.Resolve(context.Background(), "Atlantis")
		require.NoError(t, err)
		assert.Nil(t, result)
	}

	assert.Equal(t, 3, inner.calls, "unresolved lookups should not be cached")
}

func TestCachedGeocoder_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingGeocoder{result: cityResult(1, 1)}
	cached := NewCachedGeocoder(inner, 2, observability.NewMetricsForTesting())

	for _, loc := range []string{"a", "b", "c"} {
		_, err := cached.Resolve(context.Background(), loc)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls)

	// "a" was evicted, "c" is still cached.
	_, err := cached.Resolve(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)

	_, err = cached.Resolve(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls)
}

func TestLRUCache_MoveToFrontOnGet(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", cityResult(1, 1))
	c.put("b", cityResult(2, 2))

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.get("a")
	require.True(t, ok)

	c.put("c", cityResult(3, 3))

	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("b")
	assert.False(t, ok)
}

func TestLRUCache_ManyEntries(t *testing.T) {
	c := newLRUCache(100)
	for i := 0; i < 250; i++ {
		c.put(fmt.Sprintf("loc-%d", i), cityResult(float64(i), 0))
	}

	_, ok := c.get("loc-0")
	assert.False(t, ok)

	v, ok := c.get("loc-249")
	require.True(t, ok)
	assert.Equal(t, 249.0, v.Lat)
}
