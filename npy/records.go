// SPDX-License-Identifier: MIT

package npy

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Records is a column-oriented view of a 1-D structured array whose fields
// are all integral. Columns are mutable in place.
type Records struct {
	dtype   Dtype
	n       int
	columns map[string][]int64
}

// NewRecords allocates an n-row table with the given structured dtype.
func NewRecords(d Dtype, n int) (*Records, error) {
	if !d.Structured() {
		return nil, fmt.Errorf("records need a structured dtype, got %s: %w", d, ErrUnsupportedDtype)
	}
	for _, f := range d.Fields {
		if !f.Type.Integral() {
			return nil, fmt.Errorf("field %q (%s): %w", f.Name, f.Type, ErrUnsupportedDtype)
		}
	}
	if n < 0 {
		return nil, fmt.Errorf("%d rows: %w", n, ErrShape)
	}
	r := &Records{dtype: d, n: n, columns: make(map[string][]int64, len(d.Fields))}
	for _, f := range d.Fields {
		r.columns[f.Name] = make([]int64, n)
	}

	return r, nil
}

// ReadRecords loads a structured .npy file fully into memory.
// Identifier tables are small relative to sample arrays, so no mapping is used.
func ReadRecords(path string) (*Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pathErrorf(path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, pathErrorf(path, err)
	}
	if len(h.Shape) != 1 {
		return nil, pathErrorf(path, fmt.Errorf("records shape %v: %w", h.Shape, ErrShape))
	}

	st, err := f.Stat()
	if err != nil {
		return nil, pathErrorf(path, err)
	}
	if err = checkBody(h, st.Size()); err != nil {
		return nil, pathErrorf(path, err)
	}

	r, err := NewRecords(h.Dtype, h.Shape[0])
	if err != nil {
		return nil, pathErrorf(path, err)
	}

	row := make([]byte, h.Dtype.Size)
	for i := 0; i < r.n; i++ {
		if _, err = io.ReadFull(br, row); err != nil {
			return nil, pathErrorf(path, fmt.Errorf("row %d: %w", i, err))
		}
		for _, fd := range h.Dtype.Fields {
			r.columns[fd.Name][i] = fd.Type.Int(row[fd.Offset : fd.Offset+fd.Type.Size])
		}
	}

	return r, nil
}

// Dtype returns the record layout.
func (r *Records) Dtype() Dtype { return r.dtype }

// Len returns the number of rows.
func (r *Records) Len() int { return r.n }

// Has reports whether the table carries the named field.
func (r *Records) Has(name string) bool {
	_, ok := r.columns[name]
	return ok
}

// Column returns the backing slice of a field; writes are visible to the table.
// A nil slice is returned for an unknown field.
func (r *Records) Column(name string) []int64 {
	return r.columns[name]
}

// Concat appends the rows of others after r's rows into a new table.
// All tables must share r's dtype exactly.
func (r *Records) Concat(others ...*Records) (*Records, error) {
	total := r.n
	for i, o := range others {
		if !o.dtype.Equal(r.dtype) {
			return nil, fmt.Errorf("table %d: dtype %s != %s: %w", i+1, o.dtype, r.dtype, ErrUnsupportedDtype)
		}
		total += o.n
	}

	out, err := NewRecords(r.dtype, total)
	if err != nil {
		return nil, err
	}
	for _, f := range r.dtype.Fields {
		dst := out.columns[f.Name]
		off := copy(dst, r.columns[f.Name])
		for _, o := range others {
			off += copy(dst[off:], o.columns[f.Name])
		}
	}

	return out, nil
}
