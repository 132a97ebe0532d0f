// SPDX-License-Identifier: MIT

// Package builder writes presample packages to disk.
//
// What it produces (one directory per Build call):
//
//	datapackage.json            manifest (name, id, seed, resources)
//	{id}.{k}.indices.npy        identifier table of resource k (structured, integer fields)
//	{id}.{k}.samples.npy        sample array of resource k (rows = records, cols = samples)
//	{id}.{k}.names.json         parameter names of resource k (parameter resources only)
//
// Constructors (Matrix, Technosphere, Biosphere, Characterization, Parameters)
// append resources in call order. Position ("to") fields start equal to the raw
// identifiers; the injector rewrites them in memory, never on disk.
//
// AI-Hints:
//   - Use WithSeed in tests to freeze the package's index stream.
//   - Use WithSequential to make sample column k visible at iteration k.
//   - Compose several constructors of the same kind to exercise consolidation.
package builder
