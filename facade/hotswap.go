// File: facade/hotswap.go
// Unified facade layer for the hotswap-op library.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the HotSwap struct, which aggregates all core
// components behind a single facade: the hot-swap slot, the module loader,
// the traffic worker pool, the swap controller, the retired-bundle reaper,
// statistics with optional Prometheus export, the artifact watcher, and
// the runtime control surface. It exposes methods to start/stop the
// system, perform swaps, run scripted swap sequences, and retrieve runtime
// services.

package facade

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hotswap-op/adapters"
	"github.com/momentics/hotswap-op/api"
	"github.com/momentics/hotswap-op/control"
	"github.com/momentics/hotswap-op/controller"
	"github.com/momentics/hotswap-op/internal/reaper"
	"github.com/momentics/hotswap-op/internal/worker"
	"github.com/momentics/hotswap-op/loader"
	"github.com/momentics/hotswap-op/slot"
	"github.com/momentics/hotswap-op/stats"
)

// Config holds parameters immutable per run.
type Config struct {
	InitialModule  string        // module published before traffic starts; "" starts empty
	Workers        int           // number of traffic workers
	Rounds         int           // rounds per worker; <= 0 runs until Stop
	WorkerInterval time.Duration // inter-round sleep per worker
	PinWorkers     bool          // bind worker threads to CPUs
	LogRounds      bool          // per-round console lines
	GraceDelay     time.Duration // retired-bundle release delay; latency knob only
	ReportInterval time.Duration // statistics report period; <= 0 disables the reporter
	MetricsAddr    string        // Prometheus listen address; "" disables export
	WatchModules   bool          // republish when a loaded artifact is rewritten
	WatchDebounce  time.Duration // artifact watcher debounce window
}

// DefaultConfig returns the reference demo shape: four workers, twenty
// rounds, 300ms pacing, a report every two seconds, no grace delay.
func DefaultConfig() *Config {
	return &Config{
		Workers:        4,
		Rounds:         20,
		WorkerInterval: 300 * time.Millisecond,
		LogRounds:      true,
		GraceDelay:     0,
		ReportInterval: 2 * time.Second,
	}
}

// Option customizes facade construction.
type Option func(*options)

type options struct {
	opener loader.ModuleOpener
}

// WithModuleOpener replaces the Go plugin opener, e.g. with the fake
// in-memory opener for tests and demos.
func WithModuleOpener(o loader.ModuleOpener) Option {
	return func(opts *options) { opts.opener = o }
}

// HotSwap is the main facade type.
type HotSwap struct {
	cfg *Config

	slot     *slot.Slot
	loader   *loader.Loader
	stats    *stats.Statistics
	registry *prometheus.Registry
	reporter *stats.Reporter
	reaper   *reaper.Reaper
	pool     *worker.Pool
	ctrl     *controller.Controller
	controlA *adapters.ControlAdapter
	watcher  *control.ArtifactWatcher

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	aux         *errgroup.Group
	trafficDone chan error
	stopMetrics func(context.Context) error

	knownMu sync.Mutex
	known   map[string]bool // module paths this facade has loaded
}

// New assembles a facade from cfg. Nothing runs until Start.
func New(cfg *Config, opts ...Option) (*HotSwap, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	h := &HotSwap{
		cfg:   cfg,
		slot:  slot.New(),
		known: make(map[string]bool),
	}
	var promReg prometheus.Registerer
	if cfg.MetricsAddr != "" {
		h.registry = prometheus.NewRegistry()
		promReg = h.registry
	}
	h.stats = stats.New(promReg)
	h.loader = loader.New(o.opener)
	h.reaper = reaper.New(cfg.GraceDelay)
	h.ctrl = controller.New(h.loader, h.slot, h.stats, h.reaper)
	h.pool = worker.NewPool(worker.Config{
		Workers:   cfg.Workers,
		Rounds:    cfg.Rounds,
		Interval:  cfg.WorkerInterval,
		PinCPU:    cfg.PinWorkers,
		LogRounds: cfg.LogRounds,
	}, h.slot, h.stats)
	if cfg.ReportInterval > 0 {
		h.reporter = stats.NewReporter(h.stats, cfg.ReportInterval)
	}

	h.controlA = adapters.NewControlAdapter()
	h.controlA.RegisterDebugProbe("slot.operator", func() any { return h.slot.CurrentName() })
	h.controlA.RegisterDebugProbe("slot.refs", func() any { return h.slot.CurrentRefs() })
	h.controlA.RegisterDebugProbe("reaper.pending", func() any { return h.reaper.Pending() })
	h.controlA.RegisterDebugProbe("stats.total", func() any { return h.stats.Total() })
	h.controlA.RegisterDebugProbe("stats.swaps", func() any { return h.stats.Swaps() })

	h.ctrl.OnSwap(func(source, operator string) {
		h.controlA.SetMetric("swap.last_source", source)
		h.controlA.SetMetric("swap.last_operator", operator)
		h.trackModule(source)
	})

	if cfg.WatchModules {
		w, err := control.NewArtifactWatcher(cfg.WatchDebounce)
		if err != nil {
			return nil, fmt.Errorf("facade: artifact watcher: %w", err)
		}
		h.watcher = w
		control.RegisterReloadHook(h.onArtifactReload)
	}
	return h, nil
}

// Start publishes the initial module (if configured) and launches traffic,
// reporter, watcher and metrics endpoint. It does not block; use Wait for
// traffic completion and Stop for teardown.
func (h *HotSwap) Start(parent context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return api.ErrAlreadyRunning
	}

	if h.cfg.InitialModule != "" {
		if err := h.publishInitial(h.cfg.InitialModule); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(parent)
	aux, actx := errgroup.WithContext(ctx)
	h.cancel = cancel
	h.aux = aux
	h.trafficDone = make(chan error, 1)

	if h.cfg.MetricsAddr != "" {
		shutdown, err := stats.ServeMetrics(h.cfg.MetricsAddr, h.registry)
		if err != nil {
			cancel()
			return fmt.Errorf("facade: metrics endpoint: %w", err)
		}
		h.stopMetrics = shutdown
		log.Printf("facade: metrics on http://%s/metrics", h.cfg.MetricsAddr)
	}
	if h.reporter != nil {
		aux.Go(func() error { return h.reporter.Run(actx) })
	}
	if h.watcher != nil {
		aux.Go(func() error { return h.watcher.Run(actx) })
	}
	go func() { h.trafficDone <- h.pool.Run(ctx) }()

	h.running = true
	return nil
}

// publishInitial loads and publishes the first bundle directly, without
// counting it as a hot update.
func (h *HotSwap) publishInitial(path string) error {
	b, err := h.loader.Load(path)
	if err != nil {
		return fmt.Errorf("facade: initial module: %w", err)
	}
	if _, err := h.slot.Publish(b); err != nil {
		b.Release()
		return err
	}
	log.Printf("facade: initial operator: %s (bundle %s)", b.Operator().Name(), b.ID())
	h.trackModule(path)
	return nil
}

// Wait blocks until every worker has finished its rounds.
func (h *HotSwap) Wait() error {
	h.mu.Lock()
	done := h.trafficDone
	h.mu.Unlock()
	if done == nil {
		return api.ErrNotRunning
	}
	return <-done
}

// Stop cancels all goroutines and releases auxiliary resources. The
// current bundle stays published; its lifetime is the process lifetime.
func (h *HotSwap) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return api.ErrNotRunning
	}
	h.cancel()
	_ = h.aux.Wait()
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
	if h.stopMetrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.stopMetrics(ctx)
		h.stopMetrics = nil
	}
	h.reaper.Close()
	h.running = false
	return nil
}

// Swap loads path and publishes it as the current operator.
func (h *HotSwap) Swap(path string) error {
	return h.ctrl.Swap(path)
}

// RunScript executes a scripted swap sequence; the first failed step
// aborts the remainder.
func (h *HotSwap) RunScript(ctx context.Context, script *controller.Script) error {
	return h.ctrl.RunScript(ctx, script)
}

// Snapshot exposes the current bundle for callers that integrate their own
// traffic. The caller must Release it.
func (h *HotSwap) Snapshot() (*slot.Bundle, error) {
	return h.slot.Snapshot()
}

// Control returns the runtime control surface.
func (h *HotSwap) Control() api.Control {
	return h.controlA
}

// Stats returns the shared statistics.
func (h *HotSwap) Stats() *stats.Statistics {
	return h.stats
}

// trackModule records a loaded artifact and arms the watcher for it.
func (h *HotSwap) trackModule(path string) {
	h.knownMu.Lock()
	h.known[path] = true
	h.knownMu.Unlock()
	if h.watcher != nil {
		if err := h.watcher.Watch(path); err != nil {
			log.Printf("facade: cannot watch %s: %v", path, err)
		}
	}
}

// onArtifactReload republishes a rewritten module this facade had loaded.
func (h *HotSwap) onArtifactReload(path string) {
	h.knownMu.Lock()
	known := h.known[path]
	h.knownMu.Unlock()
	h.mu.Lock()
	running := h.running
	h.mu.Unlock()
	if !known || !running {
		return
	}
	if err := h.ctrl.Swap(path); err != nil {
		log.Printf("facade: reload of %s failed: %v", path, err)
	}
}
