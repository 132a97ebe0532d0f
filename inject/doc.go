// SPDX-License-Identifier: MIT

// Package inject drives presample packages against a caller's model.
//
// Lifecycle of one computation:
//
//	inj, _ := inject.New(dirs)             // load and consolidate every package
//	for !allIndexed { inj.Index(model) }   // resolve ids once dictionaries exist
//	for iter := 0; iter < n; iter++ {
//		inj.Update(model)                  // write the current draw
//		solve(model)
//		inj.AdvanceAll()                   // next index, every package
//	}
//
// Index and Update never fail on partial models: a missing dictionary leaves a
// group unindexed, and a missing or filtered-out matrix is skipped. Both are
// no-ops when no package carries matrix-bound data.
//
// An Injector is not safe for concurrent use. The model must not be mutated by
// other goroutines while Index or Update run.
package inject
