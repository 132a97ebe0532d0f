// SPDX-License-Identifier: MIT

// Package samples provides Store, a lazily opened, horizontally segmented
// view over one or more on-disk sample arrays.
//
// Each segment is a 2-D .npy file of shape (rows_k, cols). The store is the
// row-wise concatenation of its segments: a logical (Σ rows_k) × cols array.
// Segments must agree on cols (the sample/iteration axis).
//
// Sample(i) returns column i across all segments. Segment files are mapped
// on first use and kept open until Close; no segment is ever read beyond the
// requested column.
package samples
