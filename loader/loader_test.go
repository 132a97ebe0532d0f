// SPDX-License-Identifier: MIT
package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/katalvlaran/presamples/builder"
	"github.com/katalvlaran/presamples/loader"
	"github.com/katalvlaran/presamples/manifest"
	"github.com/katalvlaran/presamples/npy"
	"github.com/katalvlaran/presamples/sequencer"
	"github.com/katalvlaran/presamples/target"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func build(t *testing.T, opts []builder.Option, cons ...builder.Constructor) string {
	t.Helper()
	dir := t.TempDir()
	_, err := builder.Build(dir, opts, cons...)
	require.NoError(t, err)
	return dir
}

func seeded(seed uint64) []builder.Option {
	return []builder.Option{builder.WithID("p"), builder.WithSeed(seed)}
}

// generic returns a diagonal resource of kind k on matrix mx.
func generic(kind, mx string, fields []string, records [][]int64, cols int) builder.Constructor {
	types := make([]npy.Dtype, len(fields))
	for i := range types {
		types[i] = npy.Uint32
	}
	values := make([][]float64, len(records))
	for i := range values {
		values[i] = make([]float64, cols)
	}
	return builder.Matrix(builder.MatrixSpec{
		Kind: kind, Matrix: mx, Fields: fields, Types: types,
		Row:     builder.Axis{From: fields[0], To: fields[len(fields)-1], Dict: "d"},
		Records: records, Samples: values,
	})
}

// offDiagonal returns a resource of kind k on matrix "m" with columns resolved through colDict.
func offDiagonal(kind, colDict string, fields []string) builder.Constructor {
	types := make([]npy.Dtype, len(fields))
	record := make([]int64, len(fields))
	for i := range types {
		types[i] = npy.Uint32
		record[i] = 1
	}
	return builder.Matrix(builder.MatrixSpec{
		Kind: kind, Matrix: "m", Fields: fields, Types: types,
		Row:     builder.Axis{From: "a", To: "b", Dict: "d"},
		Col:     &builder.Axis{From: "c", To: "e", Dict: colDict},
		Records: [][]int64{record}, Samples: [][]float64{{1, 2}},
	})
}

// TestLoadConsolidatesByKind checks grouping, concatenation order and metadata.
func TestLoadConsolidatesByKind(t *testing.T) {
	dir := build(t, seeded(3),
		builder.Technosphere(builder.TechnosphereExchange{Input: 1, Output: 1, Type: manifest.TypeProduction, Samples: []float64{1, 2}}),
		builder.Characterization(builder.Factor{Flow: 5, Samples: []float64{7, 8}}),
		builder.Technosphere(
			builder.TechnosphereExchange{Input: 2, Output: 1, Type: manifest.TypeTechnosphere, Samples: []float64{3, 4}},
			builder.TechnosphereExchange{Input: 3, Output: 1, Type: manifest.TypeSubstitution, Samples: []float64{5, 6}},
		),
		builder.Parameters("p", []string{"x"}, [][]float64{{0, 1}}),
	)

	p, err := loader.Load(dir)
	require.NoError(t, err)
	defer p.Close()

	require.Equal(t, "p", p.ID)
	require.Equal(t, manifest.FixedSeed(3), p.Seed)
	require.Len(t, p.ParameterResources, 1)
	require.False(t, p.Empty())
	require.Len(t, p.Groups, 2)

	cf, tech := p.Groups[0], p.Groups[1] // sorted by kind: "cf" < "technosphere"
	require.Equal(t, "cf", cf.Kind)
	require.True(t, cf.Diagonal())
	require.Equal(t, builder.TechnosphereMx, tech.Matrix)
	require.Equal(t, 3, tech.Len())
	require.Equal(t, []int64{1, 2, 3}, tech.Indices.Column("input"))
	require.Equal(t, 2, tech.Samples.Cols())
	require.Equal(t, loader.Unindexed, tech.State())

	col, err := tech.Samples.Sample(1)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 4, 6}, col)
	require.Equal(t, 2, p.Sequencer.Count())
}

// TestLoadSeedPolicy covers fixed, overridden, sequential and absent seeds.
func TestLoadSeedPolicy(t *testing.T) {
	res := builder.Characterization(builder.Factor{Flow: 1, Samples: []float64{0, 1, 2, 3, 4, 5, 6, 7}})

	fixed := build(t, seeded(11), res)
	a, err := loader.Load(fixed)
	require.NoError(t, err)
	b, err := loader.Load(fixed)
	require.NoError(t, err)
	require.Equal(t, a.Sequencer.Current(), b.Sequencer.Current())

	o, err := loader.Load(fixed, loader.WithSeed(99))
	require.NoError(t, err)
	require.Equal(t, manifest.FixedSeed(99), o.Seed)
	require.Equal(t, uint64(99), o.Sequencer.Seed())

	seq := build(t, []builder.Option{builder.WithSequential()}, res)
	s, err := loader.Load(seq)
	require.NoError(t, err)
	require.Equal(t, sequencer.Sequential, s.Sequencer.Mode())
	require.Equal(t, 0, s.Sequencer.Current())

	s, err = loader.Load(seq, loader.WithSeed(4))
	require.NoError(t, err)
	require.Equal(t, sequencer.Random, s.Sequencer.Mode())

	none := build(t, []builder.Option{builder.WithoutSeed()}, res)
	n, err := loader.Load(none)
	require.NoError(t, err)
	require.True(t, n.Seed.Present)
	require.False(t, n.Seed.Sequential)
}

// TestLoadEmptyPackage loads a package without matrix data.
func TestLoadEmptyPackage(t *testing.T) {
	p, err := loader.Load(build(t, seeded(1)))
	require.NoError(t, err)
	require.True(t, p.Empty())
	require.Equal(t, 1, p.Sequencer.Count())
	require.NoError(t, p.Close())
}

// TestLoadErrors checks the sentinel of every fatal load condition.
func TestLoadErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := loader.Load(missing)
	require.ErrorIs(t, err, loader.ErrInvalidPackage)

	_, err = loader.Load(t.TempDir())
	require.ErrorIs(t, err, loader.ErrManifest)

	cases := map[string]struct {
		cons []builder.Constructor
		want error
	}{
		"matrix target": {
			[]builder.Constructor{
				generic("k", "m1", []string{"a", "b"}, [][]int64{{1, 1}}, 2),
				generic("k", "m2", []string{"a", "b"}, [][]int64{{1, 1}}, 2),
			},
			loader.ErrConflictingMatrixTarget,
		},
		"label schema": {
			[]builder.Constructor{
				generic("k", "m", []string{"a", "b"}, [][]int64{{1, 1}}, 2),
				generic("k", "m", []string{"a", "c"}, [][]int64{{1, 1}}, 2),
			},
			loader.ErrConflictingLabelSchema,
		},
		"index schema": {
			[]builder.Constructor{
				generic("k", "m", []string{"a", "b"}, [][]int64{{1, 1}}, 2),
				generic("k", "m", []string{"a", "x", "b"}, [][]int64{{1, 0, 1}}, 2),
			},
			loader.ErrIncompatibleIndexSchema,
		},
		"col label schema": {
			[]builder.Constructor{
				offDiagonal("k", "c1", []string{"a", "b", "c", "e"}),
				offDiagonal("k", "c2", []string{"a", "b", "c", "e"}),
			},
			loader.ErrConflictingLabelSchema,
		},
		"columns on one member": {
			[]builder.Constructor{
				generic("k", "m", []string{"a", "b"}, [][]int64{{1, 1}}, 2),
				offDiagonal("k", "c1", []string{"a", "b", "c", "e"}),
			},
			loader.ErrConflictingLabelSchema,
		},
		"technosphere without type": {
			[]builder.Constructor{
				offDiagonal(manifest.KindTechnosphere, "c1", []string{"a", "b", "c", "e"}),
			},
			loader.ErrIncompatibleIndexSchema,
		},
		"sample width in group": {
			[]builder.Constructor{
				generic("k", "m", []string{"a", "b"}, [][]int64{{1, 1}}, 2),
				generic("k", "m", []string{"a", "b"}, [][]int64{{1, 1}}, 3),
			},
			loader.ErrSampleShape,
		},
		"sample width in package": {
			[]builder.Constructor{
				generic("k", "m", []string{"a", "b"}, [][]int64{{1, 1}}, 2),
				generic("j", "n", []string{"a", "b"}, [][]int64{{1, 1}}, 3),
			},
			loader.ErrSampleShape,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loader.Load(build(t, seeded(1), tc.cons...))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

// TestLoadMissingArray reports ErrInvalidPackage for a removed identifier table.
func TestLoadMissingArray(t *testing.T) {
	dir := build(t, seeded(1), builder.Characterization(builder.Factor{Flow: 1, Samples: []float64{1}}))
	require.NoError(t, os.Remove(filepath.Join(dir, "p.0.indices.npy")))
	_, err := loader.Load(dir)
	require.ErrorIs(t, err, loader.ErrInvalidPackage)
}

// TestLoadCorruptTable rejects an identifier table whose header claims more
// rows than the file holds.
func TestLoadCorruptTable(t *testing.T) {
	dir := build(t, seeded(1), builder.Characterization(builder.Factor{Flow: 1, Samples: []float64{1}}))

	dict := "{'descr': [('flow', '<u4'), ('row', '<u4')], 'fortran_order': False, 'shape': (4611686018427387904,), }\n"
	raw := append([]byte("\x93NUMPY\x01\x00"), byte(len(dict)), byte(len(dict)>>8))
	raw = append(raw, dict...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.0.indices.npy"), raw, 0o644))

	var err error
	require.NotPanics(t, func() { _, err = loader.Load(dir) })
	require.ErrorIs(t, err, loader.ErrInvalidPackage)
	require.ErrorIs(t, err, npy.ErrShape)
}

// TestLoadOptions checks the validator hook and logger wiring.
func TestLoadOptions(t *testing.T) {
	dir := build(t, seeded(1))
	boom := errors.New("checksum mismatch")
	_, err := loader.Load(dir, loader.WithValidator(func(string) error { return boom }))
	require.ErrorIs(t, err, loader.ErrInvalidPackage)

	core, logs := observer.New(zap.DebugLevel)
	_, err = loader.Load(dir, loader.WithLogger(zap.New(core)))
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("presample package loaded").Len())

	require.Panics(t, func() { loader.WithLogger(nil) })
	require.Panics(t, func() { loader.WithValidator(nil) })
}

// TestResolveOneShot checks resolution, Unresolved markers and the one-shot gate.
func TestResolveOneShot(t *testing.T) {
	dir := build(t, seeded(1), builder.Biosphere(
		builder.Exchange{Input: 10, Output: 20, Samples: []float64{1}},
		builder.Exchange{Input: 11, Output: 20, Samples: []float64{2}},
	))
	p, err := loader.Load(dir)
	require.NoError(t, err)
	g := p.Groups[0]

	rows := target.Map{10: 4}
	cols := target.Map{20: 0}
	require.Error(t, g.Resolve(rows, nil))
	require.NoError(t, g.Resolve(rows, cols))
	require.True(t, g.Indexed())
	require.Equal(t, []int64{4, loader.Unresolved}, g.RowPositions())
	require.Equal(t, []int64{0, 0}, g.ColPositions())
	require.Equal(t, []int64{10, 11}, g.Indices.Column("input"))
	require.Equal(t, 1, g.Unresolved())

	require.ErrorIs(t, g.Resolve(target.Map{10: 9, 11: 9}, cols), loader.ErrAlreadyIndexed)
	require.Equal(t, []int64{4, loader.Unresolved}, g.RowPositions())
}

// TestConsolidateEmpty rejects an empty group.
func TestConsolidateEmpty(t *testing.T) {
	_, err := loader.Consolidate(t.TempDir(), nil)
	require.ErrorIs(t, err, loader.ErrEmptyGroup)
}
