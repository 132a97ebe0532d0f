// SPDX-License-Identifier: MIT
// Package: presamples/builder
//
// errors.go - sentinel errors for the builder package.
//
// Error policy:
//   • Only sentinel variables (package-level) are exposed.
//   • Callers MUST use errors.Is(err, ErrX) to branch on semantics.
//   • Implementations attach context using `%w` via builderErrorf.

package builder

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch indicates records and sample rows of different lengths, or
// ragged sample rows.
var ErrShapeMismatch = errors.New("builder: records and samples disagree in shape")

// ErrEmptyResource indicates a resource without records, fields or samples.
var ErrEmptyResource = errors.New("builder: empty resource")

// ErrConstructFailed indicates a nil constructor or a failed file write.
var ErrConstructFailed = errors.New("builder: construction failed")

// builderErrorf wraps err with the constructor name.
func builderErrorf(method string, err error) error {
	return fmt.Errorf("builder.%s: %w", method, err)
}
