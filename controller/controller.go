// File: controller/controller.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Swap controller: sequences replacement operations over time. A swap is
// load-then-publish; if the load fails, publish is never called and the
// previously active bundle stays fully usable, so a failed swap is a no-op
// from the perspective of ongoing traffic.

package controller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/momentics/hotswap-op/slot"
	"github.com/momentics/hotswap-op/stats"
)

// Loader loads a ready-to-publish bundle from a module path.
type Loader interface {
	Load(path string) (*slot.Bundle, error)
}

// Retirer takes over the superseded bundle's reference after a swap.
type Retirer interface {
	Retire(*slot.Bundle)
}

// releaseNow drops superseded references immediately when no reaper is
// configured; correctness needs nothing more.
type releaseNow struct{}

func (releaseNow) Retire(b *slot.Bundle) {
	if b != nil {
		b.Release()
	}
}

// Controller performs swaps against one slot.
type Controller struct {
	loader Loader
	slot   *slot.Slot
	stats  *stats.Statistics
	retire Retirer

	mu     sync.Mutex
	onSwap []func(source, operator string)
}

// New creates a controller. A nil retirer releases superseded bundles
// immediately.
func New(l Loader, s *slot.Slot, st *stats.Statistics, r Retirer) *Controller {
	if r == nil {
		r = releaseNow{}
	}
	return &Controller{loader: l, slot: s, stats: st, retire: r}
}

// OnSwap registers a hook invoked after each successful swap with the
// module source and the new operator identity.
func (c *Controller) OnSwap(fn func(source, operator string)) {
	c.mu.Lock()
	c.onSwap = append(c.onSwap, fn)
	c.mu.Unlock()
}

// Swap loads the module at path and publishes it. On load failure the slot
// is untouched and the error propagates to the caller; in-flight readers
// never observe a failed swap.
func (c *Controller) Swap(path string) error {
	log.Printf("[hotswap] swapping to: %s", path)

	b, err := c.loader.Load(path)
	if err != nil {
		log.Printf("[hotswap] load failed, previous operator stays active: %v", err)
		return err
	}
	name := b.Operator().Name()

	old, err := c.slot.Publish(b)
	if err != nil {
		// Publish rejects only nil bundles; treat as internal.
		b.Release()
		return err
	}
	c.stats.RecordSwap()
	log.Printf("[hotswap] switched to: %s (bundle %s)", name, b.ID())

	c.retire.Retire(old)
	c.notify(path, name)
	return nil
}

// RunScript executes steps in order: wait, swap, continue. The first
// failure aborts the remaining script; the slot keeps serving the last
// successfully published bundle.
func (c *Controller) RunScript(ctx context.Context, script *Script) error {
	for i, step := range script.Steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step.Delay.Std()):
		}
		if err := c.Swap(step.Path); err != nil {
			return fmt.Errorf("script step %d (%s): %w", i, step.Path, err)
		}
	}
	return nil
}

func (c *Controller) notify(source, operator string) {
	c.mu.Lock()
	hooks := make([]func(string, string), len(c.onSwap))
	copy(hooks, c.onSwap)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn(source, operator)
	}
}
