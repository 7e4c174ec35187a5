// File: control/watcher.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Module artifact watcher. Watches the directories of registered module
// files and fires the global reload hooks when a watched artifact is
// rewritten. Events are debounced per path so a rebuild that touches the
// file several times triggers one reload.

package control

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ArtifactWatcher watches loadable module files for rewrites.
type ArtifactWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu    sync.Mutex
	files map[string]bool // absolute artifact paths
	dirs  map[string]bool // watched parent directories
}

// NewArtifactWatcher creates a watcher. Debounce bounds how soon after the
// last write a reload fires; zero selects 200ms.
func NewArtifactWatcher(debounce time.Duration) (*ArtifactWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &ArtifactWatcher{
		watcher:  fw,
		debounce: debounce,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}, nil
}

// Watch registers one artifact path. The parent directory is watched so
// rename-and-replace rebuilds are still observed.
func (w *ArtifactWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[abs] = true
	dir := filepath.Dir(abs)
	if w.dirs[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	return nil
}

// Run processes events until ctx is canceled. Reloads fire through the
// package-level hot-reload hooks.
func (w *ArtifactWatcher) Run(ctx context.Context) error {
	pending := make(map[string]time.Time)
	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			tracked := w.files[abs]
			w.mu.Unlock()
			if tracked {
				pending[abs] = time.Now().Add(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("control: artifact watcher: %v", err)
		case now := <-tick.C:
			for path, due := range pending {
				if now.After(due) {
					delete(pending, path)
					log.Printf("control: artifact changed, triggering reload: %s", path)
					TriggerHotReload(path)
				}
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *ArtifactWatcher) Close() error {
	return w.watcher.Close()
}
