// File: loader/loader.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Loader resolves a module by path, validates that it exports the factory
// and destructor entry points, instantiates one operator, and assembles an
// immutable ready-to-publish bundle. On any failure the partially opened
// module handle is unwound before returning; nothing leaks.

package loader

import (
	"fmt"
	"log"

	"github.com/momentics/hotswap-op/api"
	"github.com/momentics/hotswap-op/slot"
)

// Loader builds bundles from loadable modules.
type Loader struct {
	opener ModuleOpener
}

// New creates a loader. A nil opener selects the Go plugin facility.
func New(opener ModuleOpener) *Loader {
	if opener == nil {
		opener = PluginOpener{}
	}
	return &Loader{opener: opener}
}

// Load opens the module at path and assembles a bundle with one reference
// owned by the caller.
//
// Failure taxonomy: api.ErrModuleNotFound when the module cannot be opened,
// api.ErrSymbolResolution when either entry point is missing or has the
// wrong shape, api.ErrInstantiationFailed when the factory yields no
// instance. All are recoverable; the caller's previously published bundle
// is untouched by a failed load.
func (l *Loader) Load(path string) (*slot.Bundle, error) {
	mod, err := l.opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", api.ErrModuleNotFound, path, err)
	}

	create, err := lookupFactory(mod)
	if err != nil {
		unwind(mod, path)
		return nil, err
	}
	destroy, err := lookupDestructor(mod)
	if err != nil {
		unwind(mod, path)
		return nil, err
	}

	op := create()
	if op == nil {
		unwind(mod, path)
		return nil, fmt.Errorf("%w: %s: factory returned nil", api.ErrInstantiationFailed, path)
	}

	b, err := slot.NewBundle(slot.BundleConfig{
		Source:   path,
		Operator: op,
		Destroy:  destroy,
		Module:   mod,
	})
	if err != nil {
		destroy(op)
		unwind(mod, path)
		return nil, err
	}
	return b, nil
}

func lookupFactory(mod Module) (api.CreateOperatorFunc, error) {
	sym, err := mod.Lookup(api.SymbolNewOperator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrSymbolResolution, err)
	}
	switch fn := sym.(type) {
	case api.CreateOperatorFunc:
		return fn, nil
	case func() api.ScoreOperator:
		return fn, nil
	}
	return nil, fmt.Errorf("%w: %s has unexpected type %T",
		api.ErrSymbolResolution, api.SymbolNewOperator, sym)
}

func lookupDestructor(mod Module) (api.DestroyOperatorFunc, error) {
	sym, err := mod.Lookup(api.SymbolDestroyOperator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrSymbolResolution, err)
	}
	switch fn := sym.(type) {
	case api.DestroyOperatorFunc:
		return fn, nil
	case func(api.ScoreOperator):
		return fn, nil
	}
	return nil, fmt.Errorf("%w: %s has unexpected type %T",
		api.ErrSymbolResolution, api.SymbolDestroyOperator, sym)
}

// unwind closes a module handle after a failed load. Best effort: a close
// failure here is logged, the load error is what propagates.
func unwind(mod Module, path string) {
	if err := mod.Close(); err != nil {
		log.Printf("loader: unwind close of %s failed: %v", path, err)
	}
}
