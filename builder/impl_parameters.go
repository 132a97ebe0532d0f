// SPDX-License-Identifier: MIT
// Package: presamples/builder
//
// impl_parameters.go - named-parameter resources.
//
// Layout of one parameter resource k:
//   {id}.{k}.names.json   JSON list of names, one per sample row
//   {id}.{k}.samples.npy  float64 array, Rows = len(names), Cols = samples

package builder

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/katalvlaran/presamples/manifest"
	"github.com/katalvlaran/presamples/npy"
)

// Parameters writes a named-parameter resource labeled label. values[i] holds
// the samples of names[i].
func Parameters(label string, names []string, values [][]float64) Constructor {
	return func(cfg *builderConfig) error {
		if len(names) == 0 {
			return builderErrorf("Parameters", ErrEmptyResource)
		}
		if len(names) != len(values) {
			return builderErrorf("Parameters", ErrShapeMismatch)
		}
		cols, err := sampleWidth(values)
		if err != nil {
			return builderErrorf("Parameters", err)
		}

		stem := cfg.nextStem()
		namesFile := stem + ".names.json"
		samplesFile := stem + ".samples.npy"

		raw, err := json.Marshal(names)
		if err != nil {
			return builderErrorf("Parameters", err)
		}
		if err := os.WriteFile(filepath.Join(cfg.dir, namesFile), raw, 0o644); err != nil {
			return builderErrorf("Parameters", ErrConstructFailed)
		}
		if err := npy.WriteArray(filepath.Join(cfg.dir, samplesFile), len(values), cols, flatten(values)); err != nil {
			return builderErrorf("Parameters", err)
		}

		cfg.resources = append(cfg.resources, manifest.Resource{
			Label:   label,
			Profile: "data-resource",
			Names:   &manifest.FileRef{Filepath: namesFile, Format: "json", Mediatype: "application/json"},
			Samples: &manifest.SamplesRef{
				Filepath:  samplesFile,
				Format:    "npy",
				Mediatype: "application/octet-stream",
				Shape:     []int{len(values), cols},
			},
		})

		return nil
	}
}
