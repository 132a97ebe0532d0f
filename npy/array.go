// SPDX-License-Identifier: MIT

package npy

import (
	"bufio"
	"fmt"
	"os"
)

// backing gives byte-range access to an opened array file.
// The mapped implementation returns sub-slices of the mapping and never copies.
type backing interface {
	bytesAt(off int64, n int) ([]byte, error)
	close() error
}

// Array is a read-only 2-D numeric array opened lazily from disk.
// Elements are decoded on demand; no column is materialized until requested.
type Array struct {
	path       string
	header     Header
	rows, cols int
	src        backing
}

// Open maps a 2-D numeric .npy file for reading.
// Stage 1: decode header and validate shape/dtype.
// Stage 2: verify the file holds rows*cols elements after the header.
// Stage 3: map (or, on platforms without mmap, attach) the file.
func Open(path string) (*Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pathErrorf(path, err)
	}

	h, err := ReadHeader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, pathErrorf(path, err)
	}
	if len(h.Shape) != 2 {
		f.Close()
		return nil, pathErrorf(path, fmt.Errorf("samples shape %v: %w", h.Shape, ErrShape))
	}
	if h.Dtype.Structured() {
		f.Close()
		return nil, pathErrorf(path, fmt.Errorf("samples dtype %s: %w", h.Dtype, ErrUnsupportedDtype))
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, pathErrorf(path, err)
	}
	if err = checkBody(h, st.Size()); err != nil {
		f.Close()
		return nil, pathErrorf(path, err)
	}

	src, err := attach(f, st.Size())
	if err != nil {
		return nil, pathErrorf(path, err)
	}

	return &Array{path: path, header: h, rows: h.Shape[0], cols: h.Shape[1], src: src}, nil
}

// Path returns the file the array was opened from.
func (a *Array) Path() string { return a.path }

// Shape returns (rows, cols).
func (a *Array) Shape() (rows, cols int) { return a.rows, a.cols }

// Dtype returns the element dtype.
func (a *Array) Dtype() Dtype { return a.header.Dtype }

// offset returns the byte offset of element (i, j) honoring memory order.
func (a *Array) offset(i, j int) int64 {
	var flat int
	if a.header.FortranOrder {
		flat = j*a.rows + i
	} else {
		flat = i*a.cols + j
	}

	return a.header.DataOffset + int64(flat*a.header.Dtype.Size)
}

// Column decodes column j into dst, which must have length Rows.
// Complexity: O(rows) element reads; one page touch per element for C order.
func (a *Array) Column(j int, dst []float64) error {
	if a.src == nil {
		return pathErrorf(a.path, ErrClosed)
	}
	if j < 0 || j >= a.cols {
		return pathErrorf(a.path, fmt.Errorf("column %d of %d: %w", j, a.cols, ErrOutOfRange))
	}
	if len(dst) != a.rows {
		return pathErrorf(a.path, fmt.Errorf("destination length %d != rows %d: %w", len(dst), a.rows, ErrShape))
	}

	d := a.header.Dtype
	for i := range dst {
		b, err := a.src.bytesAt(a.offset(i, j), d.Size)
		if err != nil {
			return pathErrorf(a.path, err)
		}
		dst[i] = d.Float(b)
	}

	return nil
}

// Close releases the mapping. Close is idempotent.
func (a *Array) Close() error {
	if a.src == nil {
		return nil
	}
	err := a.src.close()
	a.src = nil

	return err
}
