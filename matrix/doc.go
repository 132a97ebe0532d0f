// SPDX-License-Identifier: MIT

// Package matrix provides the target matrices that presample values are
// injected into.
//
// The matrix package provides:
//
//   - Matrix, the minimal mutable 2-D surface the injector writes through
//     (Rows, Cols, At, Set, Clone).
//   - Dense, a row-major flat buffer for small models and tests.
//   - Sparse, a dictionary-of-keys store for large, mostly-empty models
//     such as technosphere and biosphere matrices.
//
// Matrices are owned by the caller. The injector never stores them; it looks
// them up by name on every call.
package matrix
