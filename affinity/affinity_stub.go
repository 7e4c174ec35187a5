//go:build !linux && !windows

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub for platforms without thread-affinity support.

package affinity

import "fmt"

func setAffinityPlatform(cpuID int) error {
	return fmt.Errorf("affinity: pinning not supported on this platform")
}
