// SPDX-License-Identifier: MIT

// Package npy reads and writes NumPy ".npy" files.
//
// The npy package provides:
//
//   - ReadHeader: version 1.0/2.0/3.0 header decoding (magic, dtype descriptor,
//     memory order, shape, data offset).
//   - Dtype: scalar and structured (record) dtypes, little- and big-endian.
//   - ReadRecords: structured 1-D arrays decoded into a column-oriented Records table.
//   - Open: 2-D numeric arrays mapped read-only; Column copies one column
//     without touching the others.
//   - WriteArray / WriteRecords: the inverse, used by package builders and tests.
//
// Only the fields consumed by presample packages are supported: integer and
// bool record fields, numeric (int/uint/float) array elements.
package npy
