// Package loader
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Module loading layer for hotswap-op. Resolves loadable modules by path,
// validates the exported factory/destructor entry points, and packages the
// module handle, operator instance and destructor into a slot.Bundle.
package loader
