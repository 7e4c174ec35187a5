// File: controller/controller_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/momentics/hotswap-op/api"
	"github.com/momentics/hotswap-op/fake"
	"github.com/momentics/hotswap-op/loader"
	"github.com/momentics/hotswap-op/slot"
	"github.com/momentics/hotswap-op/stats"
)

func newController(t *testing.T) (*Controller, *slot.Slot, *stats.Statistics) {
	t.Helper()
	opener := fake.NewOpener()
	fake.RegisterBuiltins(opener)
	s := slot.New()
	st := stats.New(nil)
	return New(loader.New(opener), s, st, nil), s, st
}

func TestController_SwapPublishes(t *testing.T) {
	c, s, st := newController(t)

	if err := c.Swap(fake.PathV1); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if got := s.CurrentName(); got != "ScoreOperatorV1" {
		t.Fatalf("current = %s, want ScoreOperatorV1", got)
	}
	if err := c.Swap(fake.PathV2); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if got := s.CurrentName(); got != "ScoreOperatorV2" {
		t.Fatalf("current = %s, want ScoreOperatorV2", got)
	}
	if st.Swaps() != 2 {
		t.Fatalf("swaps = %d, want 2", st.Swaps())
	}
}

func TestController_FailedSwapIsNoOp(t *testing.T) {
	c, s, st := newController(t)
	if err := c.Swap(fake.PathV1); err != nil {
		t.Fatal(err)
	}

	before, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	beforeID := before.ID()
	before.Release()

	if err := c.Swap("/nonexistent.module"); !errors.Is(err, api.ErrModuleNotFound) {
		t.Fatalf("want ErrModuleNotFound, got %v", err)
	}

	after, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot after failed swap: %v", err)
	}
	defer after.Release()
	if after.ID() != beforeID {
		t.Fatal("failed swap replaced the active bundle")
	}
	if st.Swaps() != 1 {
		t.Fatalf("swaps = %d, want 1", st.Swaps())
	}
}

func TestController_RunScriptAbortsOnFailure(t *testing.T) {
	c, s, _ := newController(t)
	script := &Script{Steps: []Step{
		{Delay: Duration(time.Millisecond), Path: fake.PathV1},
		{Delay: Duration(time.Millisecond), Path: "/missing.so"},
		{Delay: Duration(time.Millisecond), Path: fake.PathV2},
	}}

	err := c.RunScript(context.Background(), script)
	if !errors.Is(err, api.ErrModuleNotFound) {
		t.Fatalf("want ErrModuleNotFound, got %v", err)
	}
	// The aborted script must leave the last good bundle active.
	if got := s.CurrentName(); got != "ScoreOperatorV1" {
		t.Fatalf("current = %s, want ScoreOperatorV1", got)
	}
}

func TestController_OnSwapHook(t *testing.T) {
	c, _, _ := newController(t)
	var gotSource, gotOperator string
	c.OnSwap(func(source, operator string) {
		gotSource, gotOperator = source, operator
	})
	if err := c.Swap(fake.PathV2); err != nil {
		t.Fatal(err)
	}
	if gotSource != fake.PathV2 || gotOperator != "ScoreOperatorV2" {
		t.Fatalf("hook saw (%s, %s)", gotSource, gotOperator)
	}
}

func TestParseScript(t *testing.T) {
	script, err := ParseScript([]byte(`
steps:
  - delay: 2s
    path: ./score_op_v2.so
  - delay: 300ms
    path: ./score_op_v1.so
`))
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if len(script.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(script.Steps))
	}
	if script.Steps[0].Delay.Std() != 2*time.Second {
		t.Fatalf("delay = %v", script.Steps[0].Delay.Std())
	}
	if script.Steps[1].Path != "./score_op_v1.so" {
		t.Fatalf("path = %s", script.Steps[1].Path)
	}
}

func TestParseScript_BadDuration(t *testing.T) {
	_, err := ParseScript([]byte("steps:\n  - delay: soon\n    path: x.so\n"))
	if err == nil {
		t.Fatal("want error for invalid duration")
	}
}
