// SPDX-License-Identifier: MIT

// Package matrix - Sparse storage (dictionary of keys).
//
// Purpose:
//   - Hold large, mostly-empty matrices where only written cells occupy memory.
//   - Keep the same safety contract as Dense: bounds errors, never panics.
//   - Deterministic iteration: Do visits stored cells in (row, col) order.
//
// AI-Hints:
//   - Set with v == 0 keeps an explicit stored zero (NNZ counts it); use Delete to drop a cell.
//   - Prefer Sparse for LCA-sized models; Dense for fixtures.

package matrix

import (
	"fmt"
	"sort"
)

// Sparse is a dictionary-of-keys matrix. Unset cells read as zero.
type Sparse struct {
	r, c  int              // logical dimensions
	cells map[cell]float64 // stored entries
}

var _ Matrix = (*Sparse)(nil)

// sparseErrorf mirrors denseErrorf for the Sparse receiver.
func sparseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Sparse.%s(%d,%d): %w", method, row, col, err)
}

// NewSparse creates an empty rows×cols Sparse matrix.
// Returns ErrInvalidDimensions if rows<=0 or cols<=0.
// Complexity: O(1).
func NewSparse(rows, cols int) (*Sparse, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Sparse{r: rows, c: cols, cells: make(map[cell]float64)}, nil
}

// Rows returns the row count.
func (s *Sparse) Rows() int { return s.r }

// Cols returns the column count.
func (s *Sparse) Cols() int { return s.c }

func (s *Sparse) inBounds(row, col int) bool {
	return row >= 0 && row < s.r && col >= 0 && col < s.c
}

// At returns the stored value at (row, col), zero when the cell is empty.
func (s *Sparse) At(row, col int) (float64, error) {
	if !s.inBounds(row, col) {
		return 0, sparseErrorf(ctxAt, row, col, ErrOutOfRange)
	}

	return s.cells[cell{row, col}], nil
}

// Set stores v at (row, col).
func (s *Sparse) Set(row, col int, v float64) error {
	if !s.inBounds(row, col) {
		return sparseErrorf(ctxSet, row, col, ErrOutOfRange)
	}
	s.cells[cell{row, col}] = v

	return nil
}

// Delete removes the stored cell at (row, col), if any.
func (s *Sparse) Delete(row, col int) {
	delete(s.cells, cell{row, col})
}

// NNZ reports the number of stored cells (explicit zeros included).
func (s *Sparse) NNZ() int { return len(s.cells) }

// Clone returns a deep copy.
// Complexity: O(NNZ).
func (s *Sparse) Clone() Matrix {
	out := &Sparse{r: s.r, c: s.c, cells: make(map[cell]float64, len(s.cells))}
	for k, v := range s.cells {
		out.cells[k] = v
	}

	return out
}

// Do visits every stored cell in ascending (row, col) order until f returns false.
// Complexity: O(NNZ log NNZ) for the ordering pass.
func (s *Sparse) Do(f func(i, j int, v float64) bool) {
	keys := make([]cell, 0, len(s.cells))
	for k := range s.cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].i != keys[b].i {
			return keys[a].i < keys[b].i
		}
		return keys[a].j < keys[b].j
	})
	for _, k := range keys {
		if !f(k.i, k.j, s.cells[k]) {
			return
		}
	}
}

// Sum returns the sum of all stored values in deterministic cell order.
func (s *Sparse) Sum() float64 {
	var total float64
	s.Do(func(_, _ int, v float64) bool {
		total += v
		return true
	})

	return total
}
