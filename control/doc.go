// Package control
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime control plane for hotswap-op: dynamic configuration with reload
// listeners, module artifact watching, runtime metrics registry, and debug
// probe introspection. Everything here is observational or configurational;
// the swap correctness story lives entirely in the slot package.
package control
