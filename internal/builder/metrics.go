// Botwbuild is an incremental mod build pipeline for The Legend of Zelda: Breath of the Wild.
// Copyright (C) 2025 Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package builder

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one Builder's lifetime. A
// Builder that never calls NewMetrics simply skips instrumentation; every
// Observe* method is nil-receiver safe.
type Metrics struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	rstbEntries   prometheus.Gauge
}

// NewMetrics constructs a fresh, self-contained registry (not the global
// default one) so multiple builds in one process, or tests, never collide.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "botwbuild",
		Name:      "stage_duration_seconds",
		Help:      "Duration of each build pipeline stage.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
	}, []string{"stage"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "botwbuild",
		Name:      "compile_cache_hits_total",
		Help:      "Compile cache hits.",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "botwbuild",
		Name:      "compile_cache_misses_total",
		Help:      "Compile cache misses.",
	})
	rstbEntries := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "botwbuild",
		Name:      "rstb_entries",
		Help:      "Number of entries currently recorded in the resource size table.",
	})

	reg.MustRegister(stageDuration, cacheHits, cacheMisses, rstbEntries)

	return &Metrics{
		registry:      reg,
		stageDuration: stageDuration,
		cacheHits:     cacheHits,
		cacheMisses:   cacheMisses,
		rstbEntries:   rstbEntries,
	}
}

// Handler exposes the registry in Prometheus text format for `botwbuild
// serve`.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStage records how long a named pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// CacheHit increments the compile-cache hit counter.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss increments the compile-cache miss counter.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// SetRSTBEntries records the current RSTB entry count.
func (m *Metrics) SetRSTBEntries(n int) {
	if m == nil {
		return
	}
	m.rstbEntries.Set(float64(n))
}
