// File: internal/reaper/reaper.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reaper defers the release of superseded bundles by a bounded grace delay.
// This is purely a teardown-latency smoothing knob: the reference count
// already guarantees a retired bundle outlives its last snapshot, so the
// delay contributes nothing to safety and defaults to zero.

package reaper

import (
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/momentics/hotswap-op/slot"
)

type retired struct {
	bundle *slot.Bundle
	due    time.Time
}

// Reaper holds retired bundles in FIFO order until their grace delay
// elapses, then drops the reference it was handed.
type Reaper struct {
	grace time.Duration

	mu sync.Mutex
	q  *queue.Queue

	wake     chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a reaper. With grace <= 0, Retire releases inline and no
// background goroutine is started.
func New(grace time.Duration) *Reaper {
	r := &Reaper{
		grace:  grace,
		q:      queue.New(),
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	if grace > 0 {
		go r.run()
	} else {
		close(r.done)
	}
	return r
}

// Retire takes over the caller's reference to b and releases it after the
// grace delay. Nil bundles (first publish) are ignored.
func (r *Reaper) Retire(b *slot.Bundle) {
	if b == nil {
		return
	}
	if r.grace <= 0 {
		b.Release()
		return
	}
	r.mu.Lock()
	r.q.Add(retired{bundle: b, due: time.Now().Add(r.grace)})
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Pending reports how many bundles await release.
func (r *Reaper) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.q.Length()
}

// Close stops the reaper and releases everything still queued.
func (r *Reaper) Close() {
	r.stopOnce.Do(func() {
		if r.grace > 0 {
			close(r.stopCh)
			<-r.done
		}
		r.mu.Lock()
		for r.q.Length() > 0 {
			r.q.Remove().(retired).bundle.Release()
		}
		r.mu.Unlock()
	})
}

func (r *Reaper) run() {
	defer close(r.done)
	for {
		r.mu.Lock()
		if r.q.Length() == 0 {
			r.mu.Unlock()
			select {
			case <-r.wake:
				continue
			case <-r.stopCh:
				return
			}
		}
		head := r.q.Peek().(retired)
		wait := time.Until(head.due)
		if wait <= 0 {
			r.q.Remove()
			r.mu.Unlock()
			head.bundle.Release()
			continue
		}
		r.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-r.wake:
			timer.Stop()
		case <-r.stopCh:
			timer.Stop()
			return
		}
	}
}
