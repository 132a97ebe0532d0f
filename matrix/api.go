// SPDX-License-Identifier: MIT
// Package matrix - public API facades.
//
// Purpose:
//   - Provide thin entry points shared by Dense and Sparse.
//   - Each facade delegates to the concrete implementation; fallbacks use the Matrix interface.
//
// AI-Hints:
//   - Prefer passing *Dense or *Sparse to Sum to unlock the storage fast-paths.

package matrix

// ValidateNotNil returns ErrNilMatrix when m is nil.
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return ErrNilMatrix
	}

	return nil
}

// Sum returns the sum of all elements of m.
// Fast-paths: *Dense (flat loop), *Sparse (stored cells only).
// Fallback: At over every cell in row-major order.
// Complexity: O(r*c) fallback, O(NNZ) for Sparse.
func Sum(m Matrix) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, err
	}
	switch t := m.(type) {
	case *Dense:
		return t.Sum(), nil
	case *Sparse:
		return t.Sum(), nil
	}

	var (
		total float64
		v     float64
		err   error
	)
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			if v, err = m.At(i, j); err != nil {
				return 0, matrixErrorf("Sum", err)
			}
			total += v
		}
	}

	return total, nil
}
