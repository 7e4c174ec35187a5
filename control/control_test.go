// File: control/control_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package control

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestConfigStore_SetAndSnapshot(t *testing.T) {
	cs := NewConfigStore()
	cs.SetConfig(map[string]any{"workers": 4, "interval": "300ms"})

	snap := cs.GetSnapshot()
	if snap["workers"] != 4 {
		t.Fatalf("workers = %v", snap["workers"])
	}
	// Snapshot is a copy, mutating it must not leak back.
	snap["workers"] = 99
	if cs.GetSnapshot()["workers"] != 4 {
		t.Fatal("snapshot aliases internal state")
	}
}

func TestConfigStore_ReloadListener(t *testing.T) {
	cs := NewConfigStore()
	called := make(chan struct{}, 4)
	cs.OnReload(func() { called <- struct{}{} })

	cs.SetConfig(map[string]any{"k": "v"})
	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("reload listener not invoked")
	}
}

func TestConfigStore_MergeYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("workers: 8\nmodule: ./v1.so\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cs := NewConfigStore()
	if err := cs.MergeYAMLFile(path); err != nil {
		t.Fatalf("MergeYAMLFile: %v", err)
	}
	snap := cs.GetSnapshot()
	if snap["workers"] != 8 {
		t.Fatalf("workers = %v", snap["workers"])
	}
	if snap["module"] != "./v1.so" {
		t.Fatalf("module = %v", snap["module"])
	}
}

func TestHotReloadHooks_Sync(t *testing.T) {
	var count atomic.Int64
	var lastPath atomic.Value
	RegisterReloadHook(func(path string) {
		if path == "test://hook" {
			count.Add(1)
			lastPath.Store(path)
		}
	})
	TriggerHotReloadSync("test://hook")
	if count.Load() != 1 {
		t.Fatalf("hook ran %d times, want 1", count.Load())
	}
	if lastPath.Load() != "test://hook" {
		t.Fatalf("hook saw path %v", lastPath.Load())
	}
}

func TestMetricsRegistry(t *testing.T) {
	mr := NewMetricsRegistry()
	mr.Set("swaps", 3)
	mr.Set("workers", 4)
	snap := mr.GetSnapshot()
	if snap["swaps"] != 3 || snap["workers"] != 4 {
		t.Fatalf("snapshot = %v", snap)
	}
	if mr.LastUpdated().IsZero() {
		t.Fatal("LastUpdated not set")
	}
}

func TestDebugProbes(t *testing.T) {
	dp := NewDebugProbes()
	RegisterPlatformProbes(dp)
	dp.RegisterProbe("bundle.refs", func() any { return int64(2) })

	state := dp.DumpState()
	if state["bundle.refs"] != int64(2) {
		t.Fatalf("probe = %v", state["bundle.refs"])
	}
	if _, ok := state["platform.cpus"]; !ok {
		t.Fatal("platform probes missing")
	}
}

func TestArtifactWatcher_FiresOnRewrite(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "score_op.so")
	if err := os.WriteFile(artifact, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewArtifactWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewArtifactWatcher: %v", err)
	}
	defer w.Close()
	if err := w.Watch(artifact); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	fired := make(chan string, 1)
	abs, _ := filepath.Abs(artifact)
	RegisterReloadHook(func(path string) {
		if path == abs {
			select {
			case fired <- path:
			default:
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// Give the watcher a moment to arm before rewriting the artifact.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(artifact, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("reload hook never fired for rewritten artifact")
	}
}
