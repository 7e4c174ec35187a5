// Package fake
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// In-memory module opener for tests and demos. Registered module specs
// stand in for on-disk plugin artifacts so the loader, slot and facade can
// be exercised without building shared objects.

package fake

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/hotswap-op/api"
	"github.com/momentics/hotswap-op/loader"
)

// ModuleSpec describes one registered in-memory module.
// A nil New or Destroy simulates a missing entry point.
type ModuleSpec struct {
	New     api.CreateOperatorFunc
	Destroy api.DestroyOperatorFunc
}

// Opener is a loader.ModuleOpener backed by a registry of specs.
type Opener struct {
	mu      sync.RWMutex
	modules map[string]ModuleSpec
	opens   atomic.Int64
	closes  atomic.Int64
}

// NewOpener creates an empty registry.
func NewOpener() *Opener {
	return &Opener{modules: make(map[string]ModuleSpec)}
}

// Register installs or replaces the spec served for path.
func (o *Opener) Register(path string, spec ModuleSpec) {
	o.mu.Lock()
	o.modules[path] = spec
	o.mu.Unlock()
}

// Open resolves a registered path. Unknown paths fail like a missing
// shared object would.
func (o *Opener) Open(path string) (loader.Module, error) {
	o.mu.RLock()
	spec, ok := o.modules[path]
	o.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no such module: %s", path)
	}
	o.opens.Add(1)
	return &module{spec: spec, opener: o}, nil
}

// Opens reports how many modules were opened.
func (o *Opener) Opens() int64 { return o.opens.Load() }

// Closes reports how many module handles were closed.
func (o *Opener) Closes() int64 { return o.closes.Load() }

type module struct {
	spec   ModuleSpec
	opener *Opener
	closed atomic.Bool
}

func (m *module) Lookup(symbol string) (any, error) {
	switch symbol {
	case api.SymbolNewOperator:
		if m.spec.New != nil {
			return m.spec.New, nil
		}
	case api.SymbolDestroyOperator:
		if m.spec.Destroy != nil {
			return m.spec.Destroy, nil
		}
	}
	return nil, fmt.Errorf("symbol %q not found", symbol)
}

func (m *module) Close() error {
	if m.closed.Swap(true) {
		return fmt.Errorf("module closed twice")
	}
	m.opener.closes.Add(1)
	return nil
}
