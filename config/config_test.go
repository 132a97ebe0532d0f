// SPDX-License-Identifier: MIT
package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/katalvlaran/presamples/config"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "f.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

// TestLoad reads a file over the defaults.
func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeFile(t, `
packages: [a, b]
seed: 7
matrices: [technosphere_matrix]
`))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, cfg.Packages)
	require.NotNil(t, cfg.Seed)
	require.Equal(t, uint64(7), *cfg.Seed)
	require.Equal(t, 1, cfg.Iterations)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, []string{"technosphere_matrix"}, cfg.Matrices)
}

// TestLoadInvalid rejects unknown keys, bad values and missing files.
func TestLoadInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"unknown key": "packagez: [a]",
		"log level":   "log_level: loud",
		"iterations":  "iterations: -1",
		"empty dir":   `packages: [""]`,
		"syntax":      "packages: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, body))
			require.ErrorIs(t, err, config.ErrConfig)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, config.ErrConfig)
}

// TestLoadPackageSpec decodes every resource section.
func TestLoadPackageSpec(t *testing.T) {
	spec, err := config.LoadPackageSpec(writeFile(t, `
name: demo
sequential: true
technosphere:
  - {input: 1, output: 100, type: 1, samples: [1, 2]}
biosphere:
  - {input: 7, output: 100, samples: [3, 4]}
characterization:
  - {flow: 7, samples: [5, 6]}
parameters:
  - label: p
    names: [x]
    samples: [[0.5, 0.6]]
`))
	require.NoError(t, err)
	require.Equal(t, "demo", spec.Name)
	require.True(t, spec.Sequential)
	require.Equal(t, int64(1), spec.Technosphere[0].Type)
	require.Equal(t, []float64{3, 4}, spec.Biosphere[0].Samples)
	require.Equal(t, [][]float64{{0.5, 0.6}}, spec.Parameters[0].Samples)

	_, err = config.LoadPackageSpec(writeFile(t, "name: x\nseed: 1\nsequential: true\n"))
	require.ErrorIs(t, err, config.ErrConfig)
	_, err = config.LoadPackageSpec(writeFile(t, "technosphere: [{input: 1, output: 1, type: 9, samples: [1]}]"))
	require.ErrorIs(t, err, config.ErrConfig)
}
