package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/climate-dashboard/internal/kv"
	"github.com/i474232898/climate-dashboard/internal/metrics"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

type series struct {
	Points []float64 `json:"points"`
}

func newTestCache(store kv.Store, clock *fakeClock) *Cache {
	return New(store, WithName("test"), WithClock(clock.now))
}

func countingFetcher(calls *int, v series) func(context.Context) (series, error) {
	return func(context.Context) (series, error) {
		*calls++
		return v, nil
	}
}

func TestGetFetchesOnceWithinTTL(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	clock := &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
	c := newTestCache(store, clock)

	calls := 0
	fetch := countingFetcher(&calls, series{Points: []float64{414.5, 416.2}})

	first, err := Get(ctx, c, "co2", 5*time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	raw, err := store.Get(ctx, "co2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":1700000000000,"data":{"points":[414.5,416.2]}}`, string(raw))

	clock.advance(4 * time.Minute)
	second, err := Get(ctx, c, "co2", 5*time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "fetcher must not run while the record is fresh")
	assert.Equal(t, first, second)

	again, err := store.Get(ctx, "co2")
	require.NoError(t, err)
	assert.Equal(t, raw, again, "a hit must not rewrite the record")
}

func TestGetRefetchesAfterExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.UnixMilli(1_000_000)}
	c := newTestCache(kv.NewMemoryStore(), clock)

	calls := 0
	fetch := countingFetcher(&calls, series{Points: []float64{1}})

	_, err := Get(ctx, c, "methane", time.Minute, fetch)
	require.NoError(t, err)

	// Exactly at the TTL boundary the record is stale.
	clock.advance(time.Minute)
	_, err = Get(ctx, c, "methane", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	age, ok := c.Age(ctx, "methane")
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), age)
}

func TestGetDiscardsCorruptRecord(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	clock := &fakeClock{t: time.UnixMilli(5_000)}
	c := newTestCache(store, clock)

	cases := map[string]string{
		"not json":      "{not json",
		"no timestamp":  `{"data":{"points":[1]}}`,
		"no data":       `{"timestamp":5000}`,
		"wrong shape":   `{"timestamp":5000,"data":"oops"}`,
		"bare array":    `[1,2,3]`,
		"empty payload": ``,
	}

	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "weather-Rome", []byte(corrupt)))

			calls := 0
			var got series
			var err error
			assert.NotPanics(t, func() {
				got, err = Get(ctx, c, "weather-Rome", time.Hour, countingFetcher(&calls, series{Points: []float64{7}}))
			})
			require.NoError(t, err)
			assert.Equal(t, 1, calls)
			assert.Equal(t, []float64{7}, got.Points)

			raw, err := store.Get(ctx, "weather-Rome")
			require.NoError(t, err)
			var env map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(raw, &env))
			assert.Contains(t, env, "timestamp")
			assert.Contains(t, env, "data")
		})
	}
}

func TestGetDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	c := newTestCache(store, &fakeClock{t: time.UnixMilli(0)})

	boom := errors.New("upstream down")
	calls := 0
	failing := func(context.Context) (series, error) {
		calls++
		return series{}, boom
	}

	_, err := Get(ctx, c, "nitrous-oxide", time.Hour, failing)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())

	_, err = Get(ctx, c, "nitrous-oxide", time.Hour, failing)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls, "a failed fetch must be retried on the next call")
}

type failingStore struct{ kv.Store }

func (failingStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestGetReturnsDataWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	c := New(failingStore{kv.NewMemoryStore()})

	calls := 0
	got, err := Get(ctx, c, "ocean-warming", time.Hour, countingFetcher(&calls, series{Points: []float64{0.3}}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3}, got.Points)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(kv.NewMemoryStore(), &fakeClock{t: time.UnixMilli(0)})

	calls := 0
	fetch := countingFetcher(&calls, series{})
	_, _ = Get(ctx, c, "polar-ice", time.Hour, fetch)
	require.NoError(t, c.Invalidate(ctx, "polar-ice"))
	_, _ = Get(ctx, c, "polar-ice", time.Hour, fetch)

	assert.Equal(t, 2, calls)

	_, ok := c.Age(ctx, "absent")
	assert.False(t, ok)
}

func TestLookupMetrics(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	m := metrics.New("test")
	c := New(store, WithName("climate"), WithMetrics(m), WithClock((&fakeClock{t: time.UnixMilli(0)}).now))

	calls := 0
	fetch := countingFetcher(&calls, series{})
	_, _ = Get(ctx, c, "co2", time.Hour, fetch)
	_, _ = Get(ctx, c, "co2", time.Hour, fetch)
	require.NoError(t, store.Set(ctx, "co2", []byte("garbage")))
	_, _ = Get(ctx, c, "co2", time.Hour, fetch)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1.0, counterValue(t, m, "climate", metrics.CacheHit))
	assert.Equal(t, 1.0, counterValue(t, m, "climate", metrics.CacheMiss))
	assert.Equal(t, 1.0, counterValue(t, m, "climate", metrics.CacheCorrupt))
}

func counterValue(t *testing.T, m *metrics.Collector, family, result string) float64 {
	t.Helper()
	return testutil.ToFloat64(m.CacheLookups.WithLabelValues(family, result))
}
