// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Public contracts for hotswap-op: the score operator capability, the
// loadable-module entry points, structured errors, and the runtime
// control surface. Implementations live in slot, loader, control and
// the internal packages; this package carries no behavior of its own.
package api
