// File: stats/reporter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Periodic console reporter. A single goroutine owns the console block so
// lines from one report never interleave with another report.

package stats

import (
	"context"
	"log"
	"sort"
	"time"
)

// Reporter prints a counter snapshot at fixed intervals.
type Reporter struct {
	stats    *Statistics
	interval time.Duration
}

// NewReporter creates a reporter over st.
func NewReporter(st *Statistics, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Reporter{stats: st, interval: interval}
}

// Run prints until ctx is canceled, then prints one final report.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.PrintOnce()
		case <-ctx.Done():
			r.PrintOnce()
			return nil
		}
	}
}

// PrintOnce emits a single report block.
func (r *Reporter) PrintOnce() {
	snap := r.stats.Get()
	log.Printf("========== statistics ==========")
	log.Printf("uptime:         %v", snap.Uptime.Round(time.Millisecond))
	log.Printf("total requests: %d", snap.Total)
	names := make([]string, 0, len(snap.PerOperator))
	for name := range snap.PerOperator {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		log.Printf("%s requests: %d", name, snap.PerOperator[name])
	}
	if snap.Skipped > 0 {
		log.Printf("skipped rounds: %d", snap.Skipped)
	}
	log.Printf("hot updates:    %d", snap.Swaps)
	log.Printf("================================")
}
