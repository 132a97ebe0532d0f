// Package presamples injects precomputed sample arrays into the matrices of a
// repeated (Monte Carlo) computation.
//
// A presample package is a directory holding a datapackage.json manifest and
// .npy arrays: identifier tables naming matrix cells by raw id, and sample
// arrays with one column per precomputed draw.
//
// Under the hood, everything is organized in small subpackages:
//
//	npy/        - .npy headers, scalar and structured dtypes, mapped arrays, writers
//	manifest/   - datapackage.json model and validation
//	samples/    - Store: one column at a time across several arrays
//	sequencer/  - Sequencer: seeded or sequential index per package
//	loader/     - Load, Consolidate, ResourceGroup (one-shot id resolution)
//	target/     - the caller's model: named matrices and dictionaries
//	matrix/     - Dense and Sparse matrices implementing the write surface
//	inject/     - Injector: Index, Update, AdvanceAll
//	parameters/ - named-parameter values at the current index
//	builder/    - writes packages (fixtures and the create command)
//	config/     - YAML files read by cmd/presamples
//
// Typical loop:
//
//	inj, err := inject.New([]string{"pkg"}, inject.WithSeed(42))
//	inj.Index(model)
//	for i := 0; i < n; i++ {
//		inj.Update(model)
//		// solve
//		inj.AdvanceAll()
//	}
package presamples
