// File: cmd/hotswap-demo/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Command hotswap-demo reproduces the reference hot-swap scenario: four
// traffic workers score continuously while a scripted controller replaces
// the active operator underneath them, with periodic statistics reports.
//
// Usage:
//
//	# Built-in in-memory operators, original timing (2s/3s/3s swaps):
//	hotswap-demo
//
//	# Real Go plugins and a custom swap script:
//	hotswap-demo --module ./score_op_v1.so --script swaps.yaml
//
//	# Expose Prometheus counters while running:
//	hotswap-demo --metrics-addr :9090
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/momentics/hotswap-op/controller"
	"github.com/momentics/hotswap-op/facade"
	"github.com/momentics/hotswap-op/fake"
)

var flags struct {
	module      string
	script      string
	workers     int
	rounds      int
	interval    time.Duration
	grace       time.Duration
	report      time.Duration
	metricsAddr string
	watch       bool
	pin         bool
	quiet       bool
}

var rootCmd = &cobra.Command{
	Use:          "hotswap-demo",
	Short:        "Hot-swap a scoring operator under live concurrent traffic",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flags.module, "module", "", "initial operator module path (empty selects built-in operators)")
	f.StringVar(&flags.script, "script", "", "YAML swap script; default mirrors the reference scenario")
	f.IntVar(&flags.workers, "workers", 4, "concurrent traffic workers")
	f.IntVar(&flags.rounds, "rounds", 20, "rounds per worker")
	f.DurationVar(&flags.interval, "interval", 300*time.Millisecond, "inter-round sleep per worker")
	f.DurationVar(&flags.grace, "grace", 0, "optional delay before releasing superseded bundles")
	f.DurationVar(&flags.report, "report-interval", 2*time.Second, "statistics report period")
	f.StringVar(&flags.metricsAddr, "metrics-addr", "", "Prometheus listen address, e.g. :9090 (empty disables)")
	f.BoolVar(&flags.watch, "watch", false, "republish when a loaded module artifact is rewritten")
	f.BoolVar(&flags.pin, "pin", false, "pin worker threads to CPUs")
	f.BoolVar(&flags.quiet, "quiet", false, "suppress per-round log lines")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := &facade.Config{
		Workers:        flags.workers,
		Rounds:         flags.rounds,
		WorkerInterval: flags.interval,
		PinWorkers:     flags.pin,
		LogRounds:      !flags.quiet,
		GraceDelay:     flags.grace,
		ReportInterval: flags.report,
		MetricsAddr:    flags.metricsAddr,
		WatchModules:   flags.watch,
	}

	var opts []facade.Option
	if flags.module == "" {
		opener := fake.NewOpener()
		fake.RegisterBuiltins(opener)
		opts = append(opts, facade.WithModuleOpener(opener))
		cfg.InitialModule = fake.PathV1
		log.Printf("no --module given, using built-in operators")
	} else {
		cfg.InitialModule = flags.module
	}

	script, err := demoScript()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, err := facade.New(cfg, opts...)
	if err != nil {
		return err
	}
	log.Printf("starting %d workers x %d rounds", cfg.Workers, cfg.Rounds)
	if err := h.Start(ctx); err != nil {
		return err
	}

	scriptDone := make(chan error, 1)
	go func() { scriptDone <- h.RunScript(ctx, script) }()

	if err := h.Wait(); err != nil {
		log.Printf("traffic: %v", err)
	}
	if err := <-scriptDone; err != nil && ctx.Err() == nil {
		log.Printf("swap script aborted: %v", err)
	}
	if err := h.Stop(); err != nil {
		return err
	}

	snap := h.Stats().Get()
	log.Printf("demo complete: %d requests, %d hot updates, %d skipped rounds",
		snap.Total, snap.Swaps, snap.Skipped)
	return nil
}

// demoScript loads the user script, or falls back to the reference
// sequence: swap at 2s, 5s and 8s from start.
func demoScript() (*controller.Script, error) {
	if flags.script != "" {
		return controller.LoadScript(flags.script)
	}
	alt := []string{fake.PathV2, fake.PathV1, fake.PathV2}
	if flags.module != "" {
		// Without a script the only known module is the initial one;
		// republish it to demonstrate the swap path.
		alt = []string{flags.module, flags.module, flags.module}
	}
	return &controller.Script{Steps: []controller.Step{
		{Delay: controller.Duration(2 * time.Second), Path: alt[0]},
		{Delay: controller.Duration(3 * time.Second), Path: alt[1]},
		{Delay: controller.Duration(3 * time.Second), Path: alt[2]},
	}}, nil
}
