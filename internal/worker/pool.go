// File: internal/worker/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker pool generating representative scoring traffic. Each worker runs
// a bounded number of rounds: build a fresh feature record, snapshot the
// slot, invoke the operator, record the outcome, yield. Workers coordinate
// with nothing except the shared slot and the shared counters.

package worker

import (
	"context"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/momentics/hotswap-op/affinity"
	"github.com/momentics/hotswap-op/api"
	"github.com/momentics/hotswap-op/slot"
	"github.com/momentics/hotswap-op/stats"
)

// Config sizes the traffic pool.
type Config struct {
	Workers   int           // number of concurrent workers
	Rounds    int           // rounds per worker; <= 0 runs until ctx cancels
	Interval  time.Duration // inter-round sleep
	PinCPU    bool          // bind each worker's OS thread to a CPU
	LogRounds bool          // log one line per served round
}

// DefaultConfig mirrors the reference demo: four workers, twenty rounds,
// 300ms pacing.
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		Rounds:    20,
		Interval:  300 * time.Millisecond,
		LogRounds: true,
	}
}

// Pool drives traffic against a slot.
type Pool struct {
	cfg   Config
	slot  *slot.Slot
	stats *stats.Statistics

	active sync.WaitGroup
}

// NewPool creates a pool over the shared slot and statistics.
func NewPool(cfg Config, s *slot.Slot, st *stats.Statistics) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Pool{cfg: cfg, slot: s, stats: st}
}

// Run starts all workers and blocks until every worker has finished its
// rounds or ctx is canceled.
func (p *Pool) Run(ctx context.Context) error {
	for i := 0; i < p.cfg.Workers; i++ {
		p.active.Add(1)
		go p.runWorker(ctx, i)
	}
	p.active.Wait()
	return nil
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.active.Done()

	if p.cfg.PinCPU {
		if err := affinity.Pin(id % runtime.NumCPU()); err != nil {
			log.Printf("[worker-%02d] cpu pinning unavailable: %v", id, err)
		}
	}

	for round := 0; p.cfg.Rounds <= 0 || round < p.cfg.Rounds; round++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p.serveRound(id, round)

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.cfg.Interval):
		}
	}
	if p.cfg.LogRounds {
		log.Printf("[worker-%02d] finished all rounds", id)
	}
}

// serveRound is one unit of traffic. A snapshot failure is a soft miss:
// log, count, move on. It cannot happen once the controller has published
// the initial bundle.
func (p *Pool) serveRound(id, round int) {
	f := api.Feature{
		UserID:     id,
		ItemID:     round,
		UserSignal: float64(id)*0.1 + float64(round)*0.05,
		ItemSignal: float64(id)*0.2 + float64(round)*0.1,
	}

	snap, err := p.slot.Snapshot()
	if err != nil {
		log.Printf("[worker-%02d] round %02d skipped: %v", id, round, err)
		p.stats.RecordSkip()
		return
	}

	start := time.Now()
	score := snap.Operator().ComputeScore(f)
	elapsed := time.Since(start)
	name := snap.Operator().Name()
	snap.Release()

	p.stats.RecordRequest(name, elapsed)
	if p.cfg.LogRounds {
		log.Printf("[worker-%02d] round %02d | op %-16s | score %8.3f | %s",
			id, round, name, score, elapsed)
	}
}
