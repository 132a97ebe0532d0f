// SPDX-License-Identifier: MIT
// Package loader: sentinel errors.
// All load failures are fatal and classified by these sentinels; match them
// with errors.Is. Packages are immutable inputs, so none is retried.

package loader

import (
	"errors"

	"github.com/katalvlaran/presamples/manifest"
	"github.com/katalvlaran/presamples/samples"
)

var (
	// ErrManifest indicates a missing or malformed datapackage.json.
	ErrManifest = manifest.ErrManifest

	// ErrInvalidPackage indicates a directory rejected by the package validator,
	// or a referenced file that cannot be read.
	ErrInvalidPackage = errors.New("loader: invalid presample package")

	// ErrConflictingMatrixTarget indicates members of one kind naming different matrices.
	ErrConflictingMatrixTarget = errors.New("loader: conflicting matrix target")

	// ErrConflictingLabelSchema indicates members of one kind with different
	// row (or column) label/dictionary triples.
	ErrConflictingLabelSchema = errors.New("loader: conflicting label schema")

	// ErrIncompatibleIndexSchema indicates identifier tables with different field
	// layouts, or a table lacking a field named by the labels.
	ErrIncompatibleIndexSchema = errors.New("loader: incompatible index schema")

	// ErrSampleShape indicates inconsistent sample column counts or a table/array
	// row count mismatch.
	ErrSampleShape = samples.ErrSampleShape

	// ErrEmptyGroup indicates Consolidate was called with no resources.
	ErrEmptyGroup = errors.New("loader: empty resource group")

	// ErrAlreadyIndexed indicates a second resolution attempt on one group.
	ErrAlreadyIndexed = errors.New("loader: resource group already indexed")
)
