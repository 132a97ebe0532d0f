// SPDX-License-Identifier: MIT

package npy

import (
	"errors"
	"fmt"
)

// Sentinel errors for the npy package.
var (
	// ErrNotNpy indicates that the magic prefix "\x93NUMPY" is missing.
	ErrNotNpy = errors.New("npy: not an npy file")

	// ErrUnsupportedVersion indicates a header version other than 1, 2 or 3.
	ErrUnsupportedVersion = errors.New("npy: unsupported format version")

	// ErrBadHeader indicates a malformed header dictionary.
	ErrBadHeader = errors.New("npy: malformed header")

	// ErrUnsupportedDtype indicates a dtype descriptor this package cannot decode.
	ErrUnsupportedDtype = errors.New("npy: unsupported dtype")

	// ErrShape indicates an array whose shape does not fit the requested use.
	ErrShape = errors.New("npy: unexpected shape")

	// ErrOutOfRange indicates a column index outside [0, cols).
	ErrOutOfRange = errors.New("npy: column out of range")

	// ErrClosed indicates use of an Array after Close.
	ErrClosed = errors.New("npy: array is closed")
)

// pathErrorf attaches the file path to an error.
func pathErrorf(path string, err error) error {
	return fmt.Errorf("npy %s: %w", path, err)
}
