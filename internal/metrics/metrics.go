// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records cache, provider and search counters on a private
// Prometheus registry. A CLI run writes them out once in the textfile
// exposition format.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/kinpath/internal/provider"
	"github.com/pdiddy/kinpath/internal/relcache"
	"github.com/pdiddy/kinpath/pkg/types"
)

const namespace = "kinpath"

// Provider request outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics holds the registry and the collectors kinpath updates directly.
type Metrics struct {
	registry *prometheus.Registry

	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	searches         *prometheus.CounterVec
	expanded         prometheus.Counter
	rounds           prometheus.Histogram
	paths            prometheus.Histogram
}

// New creates a registry with every kinpath collector registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Relative lookups sent to the upstream provider, by outcome.",
		}, []string{"provider", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Latency of upstream relative lookups.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		}, []string{"provider"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "total",
			Help:      "Kinship searches, by method and outcome.",
		}, []string{"method", "outcome"}),
		expanded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "expanded_nodes_total",
			Help:      "Nodes enqueued by bidirectional searches.",
		}),
		rounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "rounds",
			Help:      "Rounds run per bidirectional search.",
			Buckets:   prometheus.LinearBuckets(1, 1, 12),
		}),
		paths: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "paths",
			Help:      "Paths returned per search.",
			Buckets:   prometheus.LinearBuckets(0, 1, 9),
		}),
	}
	m.registry.MustRegister(m.providerRequests, m.providerLatency, m.searches, m.expanded, m.rounds, m.paths)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveCache exports the statistics of c as counters and its size as a
// gauge. The values are read from c at collection time.
func (m *Metrics) ObserveCache(c *relcache.Cache) {
	counter := func(name, help string, read func(relcache.Stats) uint64) prometheus.CounterFunc {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(read(c.Stats())) })
	}
	m.registry.MustRegister(
		counter("hits_total", "Relative cache hits.", func(s relcache.Stats) uint64 { return s.Hits }),
		counter("misses_total", "Relative cache misses, including expired entries.", func(s relcache.Stats) uint64 { return s.Misses }),
		counter("evictions_total", "Entries evicted to stay within capacity.", func(s relcache.Stats) uint64 { return s.Evictions }),
		counter("expirations_total", "Entries dropped because their TTL elapsed.", func(s relcache.Stats) uint64 { return s.Expirations }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Entries currently held by the relative cache.",
		}, func() float64 { return float64(c.Len()) }),
	)
}

// InstrumentProvider wraps p so every lookup is counted and timed.
func (m *Metrics) InstrumentProvider(p provider.Provider) provider.Provider {
	return &instrumented{upstream: p, m: m}
}

type instrumented struct {
	upstream provider.Provider
	m        *Metrics
}

func (i *instrumented) Name() string { return i.upstream.Name() }

func (i *instrumented) FetchRelatives(ctx context.Context, id types.PersonID) types.RelativesRecord {
	start := time.Now()
	rec := i.upstream.FetchRelatives(ctx, id)
	name := i.upstream.Name()
	i.m.providerLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	outcome := OutcomeOK
	if !rec.FetchedOK {
		outcome = OutcomeFailed
	}
	i.m.providerRequests.WithLabelValues(name, outcome).Inc()
	return rec
}

// ObserveResult records one finished search. It has the signature expected
// by kinship.WithObserver.
func (m *Metrics) ObserveResult(res types.Result) {
	outcome := "not_found"
	switch {
	case res.Found():
		outcome = "found"
	case res.Truncated:
		outcome = "truncated"
	}
	m.searches.WithLabelValues(res.Method, outcome).Inc()
	m.paths.Observe(float64(len(res.Paths)))
	if res.Method == types.MethodBidirectional {
		m.expanded.Add(float64(res.Stats.Expanded))
		m.rounds.Observe(float64(res.Stats.Rounds))
	}
}

// WriteTextfile writes the current values to path in the node-exporter
// textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
