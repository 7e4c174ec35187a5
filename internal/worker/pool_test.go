// File: internal/worker/pool_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package worker

import (
	"context"
	"testing"
	"time"

	"github.com/momentics/hotswap-op/api"
	"github.com/momentics/hotswap-op/slot"
	"github.com/momentics/hotswap-op/stats"
)

type fixedOp struct{ name string }

func (o fixedOp) ComputeScore(f api.Feature) float64 { return f.UserSignal + f.ItemSignal }
func (o fixedOp) Name() string                       { return o.name }

func TestPool_AllRoundsCounted(t *testing.T) {
	s := slot.New()
	b, err := slot.NewBundle(slot.BundleConfig{
		Source:   "mem://fixed",
		Operator: fixedOp{name: "Fixed"},
		Destroy:  func(api.ScoreOperator) {},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Publish(b); err != nil {
		t.Fatal(err)
	}

	st := stats.New(nil)
	p := NewPool(Config{Workers: 4, Rounds: 5, Interval: time.Millisecond}, s, st)
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap := st.Get()
	if snap.Total != 20 {
		t.Fatalf("total = %d, want 20", snap.Total)
	}
	if snap.PerOperator["Fixed"] != 20 {
		t.Fatalf("per-op = %d, want 20", snap.PerOperator["Fixed"])
	}
	if snap.Skipped != 0 {
		t.Fatalf("skipped = %d, want 0", snap.Skipped)
	}
}

func TestPool_UninitializedSlotIsSoftFail(t *testing.T) {
	st := stats.New(nil)
	p := NewPool(Config{Workers: 2, Rounds: 3, Interval: time.Millisecond}, slot.New(), st)
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap := st.Get()
	if snap.Total != 0 {
		t.Fatalf("total = %d, want 0", snap.Total)
	}
	if snap.Skipped != 6 {
		t.Fatalf("skipped = %d, want 6", snap.Skipped)
	}
}

func TestPool_ContextCancelStopsWorkers(t *testing.T) {
	st := stats.New(nil)
	p := NewPool(Config{Workers: 2, Rounds: 0, Interval: time.Millisecond}, slot.New(), st)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop on cancel")
	}
}
