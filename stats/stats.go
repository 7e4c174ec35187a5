// File: stats/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process-wide request statistics: monotonically increasing atomic counters
// mutated by every worker and controller action. Reads never block writers;
// a snapshot is eventually consistent across fields, which is all the
// reporter needs.

package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Statistics aggregates request, swap and skip counters plus per-operator
// breakdowns. All methods are safe for concurrent use.
type Statistics struct {
	start time.Time

	total atomic.Uint64
	swaps atomic.Uint64
	skips atomic.Uint64

	mu    sync.RWMutex
	perOp map[string]*atomic.Uint64

	promRequests *prometheus.CounterVec
	promSwaps    prometheus.Counter
	promLatency  prometheus.Histogram
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Uptime      time.Duration
	Total       uint64
	Swaps       uint64
	Skipped     uint64
	PerOperator map[string]uint64
}

// New creates statistics, optionally registering Prometheus collectors.
// A nil registerer disables export; counters still work.
func New(reg prometheus.Registerer) *Statistics {
	s := &Statistics{
		start: time.Now(),
		perOp: make(map[string]*atomic.Uint64),
	}
	if reg != nil {
		s.promRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hotswap_requests_total",
			Help: "Score requests served, by operator identity.",
		}, []string{"operator"})
		s.promSwaps = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotswap_swaps_total",
			Help: "Completed hot swaps.",
		})
		s.promLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hotswap_compute_duration_seconds",
			Help:    "Latency of a single ComputeScore call.",
			Buckets: prometheus.ExponentialBuckets(1e-7, 10, 8),
		})
		reg.MustRegister(s.promRequests, s.promSwaps, s.promLatency)
	}
	return s
}

// RecordRequest counts one served request under the operator identity.
func (s *Statistics) RecordRequest(operator string, elapsed time.Duration) {
	s.total.Add(1)
	s.counter(operator).Add(1)
	if s.promRequests != nil {
		s.promRequests.WithLabelValues(operator).Inc()
		s.promLatency.Observe(elapsed.Seconds())
	}
}

// RecordSwap counts one completed hot swap.
func (s *Statistics) RecordSwap() {
	s.swaps.Add(1)
	if s.promSwaps != nil {
		s.promSwaps.Inc()
	}
}

// RecordSkip counts one round a worker skipped because no bundle was
// installed yet.
func (s *Statistics) RecordSkip() {
	s.skips.Add(1)
}

// Total returns the total request count.
func (s *Statistics) Total() uint64 { return s.total.Load() }

// Swaps returns the completed hot-swap count.
func (s *Statistics) Swaps() uint64 { return s.swaps.Load() }

// Get returns a copy of all counters.
func (s *Statistics) Get() Snapshot {
	snap := Snapshot{
		Uptime:  time.Since(s.start),
		Total:   s.total.Load(),
		Swaps:   s.swaps.Load(),
		Skipped: s.skips.Load(),
	}
	s.mu.RLock()
	snap.PerOperator = make(map[string]uint64, len(s.perOp))
	for name, c := range s.perOp {
		snap.PerOperator[name] = c.Load()
	}
	s.mu.RUnlock()
	return snap
}

func (s *Statistics) counter(name string) *atomic.Uint64 {
	s.mu.RLock()
	c := s.perOp[name]
	s.mu.RUnlock()
	if c != nil {
		return c
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.perOp[name]; c != nil {
		return c
	}
	c = new(atomic.Uint64)
	s.perOp[name] = c
	return c
}
