// File: adapters/control_adapter_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package adapters

import "testing"

func TestControlAdapter_StatsMergesProbesAndMetrics(t *testing.T) {
	c := NewControlAdapter()
	c.SetMetric("swap.count", uint64(3))
	c.RegisterDebugProbe("bundle.refs", func() any { return int64(1) })

	stats := c.Stats()
	if stats["swap.count"] != uint64(3) {
		t.Fatalf("metric missing: %v", stats)
	}
	if stats["debug.bundle.refs"] != int64(1) {
		t.Fatalf("probe missing: %v", stats)
	}
	if _, ok := stats["debug.platform.cpus"]; !ok {
		t.Fatal("platform probes not registered")
	}
}

func TestControlAdapter_Config(t *testing.T) {
	c := NewControlAdapter()
	if err := c.SetConfig(map[string]any{"module": "./v1.so"}); err != nil {
		t.Fatal(err)
	}
	if c.GetConfig()["module"] != "./v1.so" {
		t.Fatal("config not stored")
	}
}
