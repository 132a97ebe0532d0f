// SPDX-License-Identifier: MIT

package samples

import "errors"

var (
	// ErrNoSegments indicates a store built from an empty segment list.
	ErrNoSegments = errors.New("samples: no segments")

	// ErrSampleShape indicates inconsistent column counts between segments, or a
	// segment file whose shape differs from the declared one.
	ErrSampleShape = errors.New("samples: inconsistent sample shape")

	// ErrIndexOutOfRange indicates a sample index outside [0, Cols).
	ErrIndexOutOfRange = errors.New("samples: sample index out of range")
)
