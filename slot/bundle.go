// File: slot/bundle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bundle is the unit of hot swap: a loaded module handle, the live operator
// instance it produced, and the destructor that tears both down in order
// (instance before module, always). Lifetime is governed by a reference
// count: the slot holds one reference while the bundle is current, every
// snapshot holds one more, and teardown runs exactly once when the count
// reaches zero.

package slot

import (
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/momentics/hotswap-op/api"
)

// BundleConfig carries everything needed to assemble a bundle.
// All fields except Module are required.
type BundleConfig struct {
	Source   string                  // path the module was loaded from
	Operator api.ScoreOperator       // live instance, never nil
	Destroy  api.DestroyOperatorFunc // releases Operator, never nil
	Module   io.Closer               // module handle, closed after Destroy; may be nil
}

// Bundle is a fully constructed, reference-counted hot-swap unit.
// A Bundle is observable only in its constructed state: NewBundle returns
// it complete, and teardown is reachable only after the last Release.
type Bundle struct {
	id       string
	source   string
	op       api.ScoreOperator
	destroy  api.DestroyOperatorFunc
	module   io.Closer
	loadedAt time.Time

	refs     atomic.Int64
	torndown atomic.Bool
}

// NewBundle assembles a bundle with one reference owned by the caller.
// The caller transfers that reference by publishing into a Slot, or drops
// it with Release on an unpublished bundle.
func NewBundle(cfg BundleConfig) (*Bundle, error) {
	if cfg.Operator == nil || cfg.Destroy == nil {
		return nil, api.ErrInvalidArgument
	}
	b := &Bundle{
		id:       uuid.NewString(),
		source:   cfg.Source,
		op:       cfg.Operator,
		destroy:  cfg.Destroy,
		module:   cfg.Module,
		loadedAt: time.Now(),
	}
	b.refs.Store(1)
	return b, nil
}

// ID returns the unique bundle identity, used to correlate log lines and
// telemetry across a bundle's lifetime.
func (b *Bundle) ID() string { return b.id }

// Source returns the path the bundle's module was loaded from.
func (b *Bundle) Source() string { return b.source }

// LoadedAt returns the time the bundle was assembled.
func (b *Bundle) LoadedAt() time.Time { return b.loadedAt }

// Operator returns the live operator instance. Valid only while the caller
// holds a reference.
func (b *Bundle) Operator() api.ScoreOperator { return b.op }

// Refs reports the current reference count. Observational only; the value
// may be stale by the time it is read.
func (b *Bundle) Refs() int64 { return b.refs.Load() }

// retain takes one additional reference. It fails if the count already
// reached zero, which means the bundle is being (or has been) torn down;
// Slot.Snapshot retries against the then-current bundle in that case.
func (b *Bundle) retain() bool {
	for {
		n := b.refs.Load()
		if n <= 0 {
			return false
		}
		if b.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops one reference. When the last reference is dropped the
// bundle is torn down: destructor first, then module close. Teardown runs
// exactly once; close failures are logged and never escalate.
func (b *Bundle) Release() {
	n := b.refs.Add(-1)
	switch {
	case n > 0:
		return
	case n < 0:
		// Caller bug: over-released. Refuse to tear down twice.
		log.Printf("slot: bundle %s over-released (refs=%d)", b.id, n)
		return
	}
	b.teardown()
}

// teardown destroys the operator instance, then closes the module handle.
// Only reachable from the final Release; the torndown flag guards against
// any future misuse slipping through the count.
func (b *Bundle) teardown() {
	if !b.torndown.CompareAndSwap(false, true) {
		return
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("slot: bundle %s destructor panic: %v", b.id, r)
			}
		}()
		b.destroy(b.op)
	}()
	if b.module != nil {
		if err := b.module.Close(); err != nil {
			log.Printf("slot: bundle %s module close failed: %v", b.id, err)
		}
	}
}
