// SPDX-License-Identifier: MIT

// Package loader reads presample package directories into memory.
//
// Load turns one directory into a Package:
//
//   - the manifest is decoded and validated,
//   - matrix-bound resources are grouped by kind (stable: declaration order is
//     kept inside a kind) and each group is consolidated into one ResourceGroup,
//   - named-parameter resources are kept as metadata for the parameters package,
//   - a Sequencer is built from the manifest seed or the caller's override.
//
// Consolidate verifies that every member of a group targets the same matrix
// with the same label schema, concatenates the identifier tables row-wise and
// spans one samples.Store over all members' arrays, so table row i and store
// row i always describe the same matrix cell.
//
// Every error is raised during Load; a failed Load returns no Package.
package loader
