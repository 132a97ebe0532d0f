// SPDX-License-Identifier: MIT

package inject

import "errors"

// ErrNilTarget indicates Index or Update called with a nil target on an
// injector holding matrix-bound data.
var ErrNilTarget = errors.New("inject: nil target")
