// Copyright 2024 The Erigon Authors
// (modifications)
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package metrics registers profsink's Prometheus collectors, the
// ambient observability surface carried regardless of spec.md's
// Non-goals excluding the presentation layer (SPEC_FULL.md's AMBIENT
// STACK section).
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/symbolizer"
)

// Registry holds every collector profsink exposes, constructed once at
// startup and threaded down to the callers that observe it -- the
// same explicit-injection convention internal/applog uses for its
// logger.
type Registry struct {
	reg *prometheus.Registry

	IngestedSamples    prometheus.Counter
	BatchCommitLatency prometheus.Histogram
	SymbQueuePending   prometheus.Gauge
	SymbQueueInFlight  prometheus.Gauge
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec

	cacheMu  sync.Mutex
	lastHits map[string]float64
	lastMiss map[string]float64
}

// New builds a Registry with every metric registered against a fresh
// prometheus.Registry, rather than the global DefaultRegisterer, so
// tests can construct more than one without collisions.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Registry{
		reg: reg,
		IngestedSamples: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "profsink",
			Name:      "ingested_samples_total",
			Help:      "Samples accepted by ExportProfiles across all profiles.",
		}),
		BatchCommitLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "profsink",
			Name:      "batch_commit_seconds",
			Help:      "Latency of one ingestion batch commit to dbstore.",
			Buckets:   prometheus.DefBuckets,
		}),
		SymbQueuePending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "profsink",
			Name:      "symbolizer_queue_pending",
			Help:      "Executables waiting in the symbolizer controller's pending queue.",
		}),
		SymbQueueInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "profsink",
			Name:      "symbolizer_queue_inflight",
			Help:      "Executables currently being fetched by the symbolizer controller.",
		}),
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "profsink",
			Name:      "kv_cache_hits_total",
			Help:      "dbstore value-cache hits, by table.",
		}, []string{"table"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "profsink",
			Name:      "kv_cache_misses_total",
			Help:      "dbstore value-cache misses, by table.",
		}, []string{"table"}),
		lastHits: make(map[string]float64),
		lastMiss: make(map[string]float64),
	}
	return m
}

// ObserveController copies a symbolizer.Controller's current queue
// depth into the pending/in-flight gauges. Callers poll this on a
// timer; Controller has no notion of metrics itself.
func (m *Registry) ObserveController(c *symbolizer.Controller) {
	m.SymbQueuePending.Set(float64(c.PendingLen()))
	m.SymbQueueInFlight.Set(float64(c.InFlightLen()))
}

// ObserveCache copies store's per-table cumulative cache hit/miss
// counters into the CacheHits/CacheMisses vectors. Prometheus counters
// only move forward, so this adds the delta since the previous call to
// each series -- never negative, because dbstore's counters are
// themselves cumulative for the process lifetime.
func (m *Registry) ObserveCache(store *dbstore.Store) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()

	for name, t := range store.NamedTables() {
		hits, misses := t.CacheStats()
		if delta := float64(hits) - m.lastHits[name]; delta > 0 {
			m.CacheHits.WithLabelValues(name).Add(delta)
		}
		if delta := float64(misses) - m.lastMiss[name]; delta > 0 {
			m.CacheMisses.WithLabelValues(name).Add(delta)
		}
		m.lastHits[name] = float64(hits)
		m.lastMiss[name] = float64(misses)
	}
}

// Handler returns the http.Handler to mount at /metrics.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
