// Package slot
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free hot-swap core for hotswap-op.
// Implements the reference-counted Bundle and the atomically swappable Slot.
// Readers never lock, publishers never wait on readers, and a superseded
// bundle is destroyed exactly once when its last holder releases it.
// See bundle.go and slot.go for implementation details.
package slot
