// File: control/hotreload.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Global hot-reload hooks for module artifact changes. Hooks receive the
// path of the changed artifact; the facade wires them to the swap
// controller so a rebuilt module is republished automatically.

package control

import "sync"

var (
	reloadMu    sync.RWMutex
	reloadHooks []func(path string)
)

// RegisterReloadHook adds a new module reload listener.
func RegisterReloadHook(fn func(path string)) {
	reloadMu.Lock()
	reloadHooks = append(reloadHooks, fn)
	reloadMu.Unlock()
}

// TriggerHotReload dispatches all reload hooks asynchronously.
func TriggerHotReload(path string) {
	reloadMu.RLock()
	hooks := make([]func(string), len(reloadHooks))
	copy(hooks, reloadHooks)
	reloadMu.RUnlock()
	for _, fn := range hooks {
		go fn(path)
	}
}

// TriggerHotReloadSync invokes all reload hooks synchronously (for test
// determinism).
func TriggerHotReloadSync(path string) {
	reloadMu.RLock()
	hooks := make([]func(string), len(reloadHooks))
	copy(hooks, reloadHooks)
	reloadMu.RUnlock()
	for _, fn := range hooks {
		fn(path)
	}
}
