// File: loader/module.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Module and ModuleOpener abstract the host dynamic-loading facility so the
// loader can be exercised against in-memory modules in tests (see the fake
// package) while production uses Go's plugin loader.

package loader

import (
	"fmt"
	"plugin"
)

// Module is an opened loadable module. Lookup resolves an exported entry
// point by name; Close releases the OS-level handle once the owning bundle
// is torn down.
type Module interface {
	Lookup(symbol string) (any, error)
	Close() error
}

// ModuleOpener resolves a module by path.
type ModuleOpener interface {
	Open(path string) (Module, error)
}

// PluginOpener opens modules with the Go runtime's plugin facility.
type PluginOpener struct{}

// Open resolves path as a Go plugin.
func (PluginOpener) Open(path string) (Module, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return pluginModule{p: p}, nil
}

type pluginModule struct {
	p *plugin.Plugin
}

func (m pluginModule) Lookup(symbol string) (any, error) {
	sym, err := m.p.Lookup(symbol)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", symbol, err)
	}
	return sym, nil
}

// Close is a no-op: the Go runtime keeps plugins mapped for the life of the
// process. The handle is retained so other openers can release for real.
func (m pluginModule) Close() error { return nil }
