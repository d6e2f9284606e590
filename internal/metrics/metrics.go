package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Cache lookup outcomes.
const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheCorrupt = "corrupt"
)

// Collector holds the Prometheus metrics for the dashboard backend.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	CacheLookups     *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
}

// New creates a Collector with its own registry.
func New(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by key family and outcome",
		},
		[]string{"family", "result"},
	)

	upstreamRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Outbound requests to upstream APIs by outcome",
		},
		[]string{"upstream", "outcome"},
	)

	upstreamDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Outbound request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)

	registry.MustRegister(
		cacheLookups,
		upstreamRequests,
		upstreamDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry:         registry,
		CacheLookups:     cacheLookups,
		UpstreamRequests: upstreamRequests,
		UpstreamDuration: upstreamDuration,
	}
}

// Registry returns the registry backing the /metrics endpoint.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return prometheus.NewRegistry()
	}
	return c.registry
}

// RecordCacheLookup counts a cache lookup for the given key family.
func (c *Collector) RecordCacheLookup(family, result string) {
	if c == nil {
		return
	}
	c.CacheLookups.WithLabelValues(family, result).Inc()
}

// RecordUpstream counts one outbound request and observes its duration.
func (c *Collector) RecordUpstream(upstream, outcome string, took time.Duration) {
	if c == nil {
		return
	}
	c.UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
	c.UpstreamDuration.WithLabelValues(upstream).Observe(took.Seconds())
}
