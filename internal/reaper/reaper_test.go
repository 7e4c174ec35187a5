// File: internal/reaper/reaper_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reaper

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hotswap-op/api"
	"github.com/momentics/hotswap-op/slot"
)

type nopOp struct{}

func (nopOp) ComputeScore(api.Feature) float64 { return 0 }
func (nopOp) Name() string                     { return "nop" }

func newBundle(t *testing.T, destroys *atomic.Int64) *slot.Bundle {
	t.Helper()
	b, err := slot.NewBundle(slot.BundleConfig{
		Source:   "mem://nop",
		Operator: nopOp{},
		Destroy:  func(api.ScoreOperator) { destroys.Add(1) },
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestReaper_ZeroGraceReleasesInline(t *testing.T) {
	var destroys atomic.Int64
	r := New(0)
	defer r.Close()

	r.Retire(newBundle(t, &destroys))
	if destroys.Load() != 1 {
		t.Fatal("zero-grace retire did not release inline")
	}
	r.Retire(nil) // first-publish case, must not panic
}

func TestReaper_GraceDelaysRelease(t *testing.T) {
	var destroys atomic.Int64
	r := New(50 * time.Millisecond)
	defer r.Close()

	r.Retire(newBundle(t, &destroys))
	if destroys.Load() != 0 {
		t.Fatal("released before grace elapsed")
	}
	if r.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", r.Pending())
	}

	deadline := time.Now().Add(2 * time.Second)
	for destroys.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if destroys.Load() != 1 {
		t.Fatal("not released after grace elapsed")
	}
}

func TestReaper_CloseDrains(t *testing.T) {
	var destroys atomic.Int64
	r := New(time.Hour)
	for i := 0; i < 3; i++ {
		r.Retire(newBundle(t, &destroys))
	}
	r.Close()
	if destroys.Load() != 3 {
		t.Fatalf("close released %d bundles, want 3", destroys.Load())
	}
	r.Close() // idempotent
}
