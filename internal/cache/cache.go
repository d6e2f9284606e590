// Package cache memoizes expensive fetches in a kv.Store with a time-to-live.
//
// Each record is persisted as a single JSON blob:
//
//	{"timestamp": <unix ms>, "data": <value>}
//
// A record is fresh while now-timestamp < ttl. Records that fail to decode
// are removed and treated as absent. Failed fetches are never cached.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/climate-dashboard/internal/kv"
	"github.com/i474232898/climate-dashboard/internal/metrics"
)

// Cache is a time-boxed memo over a kv.Store.
type Cache struct {
	name    string
	store   kv.Store
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Collector
}

// Option configures a Cache.
type Option func(*Cache)

// WithName sets the name used for log fields and metric labels.
func WithName(name string) Option {
	return func(c *Cache) { c.name = name }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates a Cache backed by store.
func New(store kv.Store, opts ...Option) *Cache {
	c := &Cache{
		name:   "default",
		store:  store,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the persisted form of a record.
type envelope struct {
	Timestamp *int64          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Get returns the cached value under key if it is younger than ttl.
// Otherwise it calls fetch, persists the result and returns it. An error from
// fetch is returned unchanged and nothing is written.
func Get[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := lookup[T](ctx, c, key, ttl); ok {
		return v, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := put(ctx, c, key, v); err != nil {
		// The caller still gets fresh data; the next call simply refetches.
		c.logger.Warn("cache write failed", zap.String("cache", c.name), zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

func lookup[T any](ctx context.Context, c *Cache, key string, ttl time.Duration) (T, bool) {
	var zero T

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			c.logger.Warn("cache read failed", zap.String("cache", c.name), zap.String("key", key), zap.Error(err))
		}
		c.metrics.RecordCacheLookup(c.name, metrics.CacheMiss)
		return zero, false
	}

	v, ts, err := decode[T](raw)
	if err != nil {
		c.logger.Info("discarding corrupt cache record", zap.String("cache", c.name), zap.String("key", key), zap.Error(err))
		if rmErr := c.store.Remove(ctx, key); rmErr != nil {
			c.logger.Warn("cache remove failed", zap.String("cache", c.name), zap.String("key", key), zap.Error(rmErr))
		}
		c.metrics.RecordCacheLookup(c.name, metrics.CacheCorrupt)
		return zero, false
	}

	if c.now().UnixMilli()-ts >= ttl.Milliseconds() {
		c.logger.Debug("cache record stale", zap.String("cache", c.name), zap.String("key", key))
		c.metrics.RecordCacheLookup(c.name, metrics.CacheMiss)
		return zero, false
	}

	c.metrics.RecordCacheLookup(c.name, metrics.CacheHit)
	return v, true
}

func decode[T any](raw []byte) (T, int64, error) {
	var zero T

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, 0, err
	}
	if env.Timestamp == nil {
		return zero, 0, errors.New("record has no timestamp")
	}
	if len(env.Data) == 0 {
		return zero, 0, errors.New("record has no data")
	}

	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return zero, 0, fmt.Errorf("decode data: %w", err)
	}
	return v, *env.Timestamp, nil
}

func put[T any](ctx context.Context, c *Cache, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode data: %w", err)
	}
	ts := c.now().UnixMilli()
	raw, err := json.Marshal(envelope{Timestamp: &ts, Data: data})
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, raw)
}

// Invalidate drops the record under key so the next Get refetches.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.store.Remove(ctx, key)
}

// Age reports how old the record under key is. ok is false when there is no
// readable record.
func (c *Cache) Age(ctx context.Context, key string) (age time.Duration, ok bool) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		return 0, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Timestamp == nil {
		return 0, false
	}
	return c.now().Sub(time.UnixMilli(*env.Timestamp)), true
}
