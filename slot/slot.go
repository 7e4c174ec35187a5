// File: slot/slot.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Slot is the single shared, atomically updatable reference to the current
// bundle. Readers snapshot it without locks and without ever blocking on a
// publish; publishers swap the pointer without waiting for readers. The
// reference count on the bundle, not any grace delay, is what makes the
// superseded bundle safe to tear down.

package slot

import (
	"sync/atomic"

	"github.com/momentics/hotswap-op/api"
)

// Slot holds exactly one live reference to the current bundle after the
// first publish. The zero value is ready to use and uninitialized.
type Slot struct {
	current atomic.Pointer[Bundle]
}

// New returns an empty slot. Snapshot fails with ErrSlotUninitialized
// until the first Publish.
func New() *Slot {
	return &Slot{}
}

// Snapshot obtains a strong reference to whatever bundle is current at the
// moment of the call. It never blocks and is safe from any number of
// goroutines concurrently with publishes. The caller must Release the
// returned bundle exactly once.
//
// A snapshot that starts after a Publish returned observes that publish's
// bundle or a later one, never an older one. A snapshot concurrent with a
// publish may observe either side of the swap; both are valid.
func (s *Slot) Snapshot() (*Bundle, error) {
	for {
		b := s.current.Load()
		if b == nil {
			return nil, api.ErrSlotUninitialized
		}
		if b.retain() {
			return b, nil
		}
		// Lost a race with the final release of a just-replaced bundle;
		// the pointer has moved on, reload it.
	}
}

// Publish atomically installs b as the current bundle, consuming the
// caller's reference to it. It returns the superseded bundle with its slot
// reference transferred to the caller, who must Release it (directly or
// via a reaper) exactly once; nil on the first publish.
//
// Publish never waits for readers: snapshots taken before the swap keep
// the old bundle alive until they release it.
func (s *Slot) Publish(b *Bundle) (*Bundle, error) {
	if b == nil {
		return nil, api.ErrInvalidArgument
	}
	old := s.current.Swap(b)
	return old, nil
}

// Initialized reports whether a bundle has ever been published.
func (s *Slot) Initialized() bool {
	return s.current.Load() != nil
}

// CurrentName reports the operator name of the current bundle without
// taking a reference, for probes and log lines. Empty before first publish.
func (s *Slot) CurrentName() string {
	b, err := s.Snapshot()
	if err != nil {
		return ""
	}
	defer b.Release()
	return b.Operator().Name()
}

// CurrentRefs reports the reference count of the current bundle, for debug
// probes. Zero before first publish.
func (s *Slot) CurrentRefs() int64 {
	if b := s.current.Load(); b != nil {
		return b.Refs()
	}
	return 0
}
