// SPDX-License-Identifier: MIT
package inject_test

import (
	"testing"

	"github.com/katalvlaran/presamples/builder"
	"github.com/katalvlaran/presamples/inject"
	"github.com/katalvlaran/presamples/loader"
	"github.com/katalvlaran/presamples/manifest"
	"github.com/katalvlaran/presamples/matrix"
	"github.com/katalvlaran/presamples/npy"
	"github.com/katalvlaran/presamples/target"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func pkg(t *testing.T, opts []builder.Option, cons ...builder.Constructor) string {
	t.Helper()
	dir := t.TempDir()
	_, err := builder.Build(dir, opts, cons...)
	require.NoError(t, err)
	return dir
}

func newInjector(t *testing.T, dirs []string, opts ...inject.Option) *inject.Injector {
	t.Helper()
	inj, err := inject.New(dirs, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, inj.Close()) })
	return inj
}

func sparse(t *testing.T, r, c int) *matrix.Sparse {
	t.Helper()
	m, err := matrix.NewSparse(r, c)
	require.NoError(t, err)
	return m
}

func at(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err)
	return v
}

// seq returns n samples 0, 1, ..., n-1 scaled by k.
func seq(n int, k float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = k * float64(i)
	}
	return out
}

// model exposes a technosphere and biosphere matrix with all dictionaries.
func model(t *testing.T) *target.Model {
	return target.NewModel().
		SetMatrix(builder.TechnosphereMx, sparse(t, 2, 3)).
		SetMatrix(builder.BiosphereMx, sparse(t, 2, 3)).
		SetMatrix(builder.CharacterizeMx, sparse(t, 2, 2)).
		SetDictionary(builder.ProductDict, target.Map{1: 0, 2: 1}).
		SetDictionary(builder.ActivityDict, target.Map{100: 0, 101: 1, 102: 2}).
		SetDictionary(builder.BiosphereDict, target.Map{7: 0, 8: 1})
}

// TestTechnosphereSignFixUp flips consumer inputs only.
func TestTechnosphereSignFixUp(t *testing.T) {
	dir := pkg(t, []builder.Option{builder.WithSeed(1)}, builder.Technosphere(
		builder.TechnosphereExchange{Input: 1, Output: 100, Type: manifest.TypeProduction, Samples: []float64{10}},
		builder.TechnosphereExchange{Input: 1, Output: 101, Type: manifest.TypeTechnosphere, Samples: []float64{11}},
		builder.TechnosphereExchange{Input: 2, Output: 102, Type: manifest.TypeSubstitution, Samples: []float64{12}},
	))
	inj := newInjector(t, []string{dir})
	m := model(t)

	require.NoError(t, inj.Index(m))
	require.NoError(t, inj.Update(m))

	tech, _ := m.Matrix(builder.TechnosphereMx)
	require.Equal(t, 10.0, at(t, tech, 0, 0))
	require.Equal(t, -11.0, at(t, tech, 0, 1))
	require.Equal(t, 12.0, at(t, tech, 1, 2))
	require.Equal(t, 3, tech.(*matrix.Sparse).NNZ())
}

// TestDiagonalAndOffDiagonal checks write positions and the package sum.
func TestDiagonalAndOffDiagonal(t *testing.T) {
	dir := pkg(t, []builder.Option{builder.WithSeed(5)},
		builder.Characterization(
			builder.Factor{Flow: 7, Samples: seq(4, 1)},
			builder.Factor{Flow: 8, Samples: seq(4, 2)},
		),
		builder.Biosphere(
			builder.Exchange{Input: 7, Output: 100, Samples: seq(4, 3)},
			builder.Exchange{Input: 8, Output: 102, Samples: seq(4, 5)},
		),
	)
	inj := newInjector(t, []string{dir})
	m := model(t)
	require.NoError(t, inj.Index(m))
	require.True(t, inj.Indexed())
	require.NoError(t, inj.Update(m))

	i := float64(inj.Packages()[0].Sequencer.Current())
	cf, _ := m.Matrix(builder.CharacterizeMx)
	require.Equal(t, i, at(t, cf, 0, 0))
	require.Equal(t, 2*i, at(t, cf, 1, 1))
	require.Equal(t, 0.0, at(t, cf, 0, 1))

	bio, _ := m.Matrix(builder.BiosphereMx)
	require.Equal(t, 3*i, at(t, bio, 0, 0))
	require.Equal(t, 5*i, at(t, bio, 1, 2))
	sum, err := matrix.Sum(bio)
	require.NoError(t, err)
	require.Equal(t, 8*i, sum)
}

// TestDeterminism compares two injectors with the same seed over many iterations.
func TestDeterminism(t *testing.T) {
	con := builder.Characterization(builder.Factor{Flow: 7, Samples: seq(50, 1)})
	a := newInjector(t, []string{pkg(t, []builder.Option{builder.WithSeed(21)}, con)})
	b := newInjector(t, []string{pkg(t, []builder.Option{builder.WithSeed(21)}, con)})
	ma, mb := model(t), model(t)
	require.NoError(t, a.Index(ma))
	require.NoError(t, b.Index(mb))

	cfa, _ := ma.Matrix(builder.CharacterizeMx)
	cfb, _ := mb.Matrix(builder.CharacterizeMx)
	for n := 0; n < 20; n++ {
		require.NoError(t, a.Update(ma))
		require.NoError(t, b.Update(mb))
		require.Equal(t, at(t, cfa, 0, 0), at(t, cfb, 0, 0), "iteration %d", n)
		require.NoError(t, a.AdvanceAll())
		require.NoError(t, b.AdvanceAll())
	}
}

// TestIndexGatingAndIdempotence covers staged dictionaries and the one-shot rule.
func TestIndexGatingAndIdempotence(t *testing.T) {
	dir := pkg(t, []builder.Option{builder.WithSeed(2)},
		builder.Biosphere(builder.Exchange{Input: 7, Output: 101, Samples: []float64{4}}))
	inj := newInjector(t, []string{dir})
	g := inj.Packages()[0].Groups[0]

	m := target.NewModel().SetMatrix(builder.BiosphereMx, sparse(t, 2, 3))
	require.NoError(t, inj.Index(m))
	require.False(t, g.Indexed())

	m.SetDictionary(builder.BiosphereDict, target.Map{7: 1})
	require.NoError(t, inj.Index(m))
	require.False(t, g.Indexed(), "column dictionary still missing")

	m.SetDictionary(builder.ActivityDict, target.Map{101: 2})
	require.NoError(t, inj.Index(m))
	require.True(t, g.Indexed())
	require.Equal(t, []int64{1}, g.RowPositions())
	require.Equal(t, []int64{2}, g.ColPositions())

	m.SetDictionary(builder.BiosphereDict, target.Map{7: 0})
	require.NoError(t, inj.Index(m))
	require.Equal(t, []int64{1}, g.RowPositions())

	require.NoError(t, inj.Update(m))
	bio, _ := m.Matrix(builder.BiosphereMx)
	require.Equal(t, 4.0, at(t, bio, 1, 2))
}

// TestUpdateSkips covers missing matrices, filters and unresolved identifiers.
func TestUpdateSkips(t *testing.T) {
	dir := pkg(t, []builder.Option{builder.WithSeed(3)},
		builder.Characterization(
			builder.Factor{Flow: 7, Samples: []float64{1}},
			builder.Factor{Flow: 99, Samples: []float64{2}},
		),
		builder.Biosphere(builder.Exchange{Input: 8, Output: 100, Samples: []float64{3}}),
	)
	inj := newInjector(t, []string{dir})

	full := model(t)
	require.NoError(t, inj.Index(full))
	require.Equal(t, 1, inj.Packages()[0].Groups[1].Unresolved())

	partial := target.NewModel().SetMatrix(builder.BiosphereMx, sparse(t, 2, 3))
	require.NoError(t, inj.Update(partial))
	bio, _ := partial.Matrix(builder.BiosphereMx)
	require.Equal(t, 3.0, at(t, bio, 1, 0))

	require.NoError(t, inj.Update(full, builder.CharacterizeMx))
	cf, _ := full.Matrix(builder.CharacterizeMx)
	require.Equal(t, 1.0, at(t, cf, 0, 0))
	require.Equal(t, 1, cf.(*matrix.Sparse).NNZ(), "unresolved flow 99 not written")
	untouched, _ := full.Matrix(builder.BiosphereMx)
	require.Equal(t, 0, untouched.(*matrix.Sparse).NNZ())

	fresh := model(t)
	require.NoError(t, inj.Update(fresh, []string{}...))
	for _, name := range fresh.MatrixNames() {
		mx, _ := fresh.Matrix(name)
		require.Equal(t, 0, mx.(*matrix.Sparse).NNZ(), "empty filter wrote %s", name)
	}
}

// TestUpdatePropagatesWriteErrors surfaces out-of-range positions.
func TestUpdatePropagatesWriteErrors(t *testing.T) {
	dir := pkg(t, []builder.Option{builder.WithSeed(3)},
		builder.Characterization(builder.Factor{Flow: 7, Samples: []float64{1}}))
	inj := newInjector(t, []string{dir})

	m := target.NewModel().
		SetMatrix(builder.CharacterizeMx, sparse(t, 1, 1)).
		SetDictionary(builder.BiosphereDict, target.Map{7: 5})
	require.NoError(t, inj.Index(m))
	require.ErrorIs(t, inj.Update(m), matrix.ErrOutOfRange)
}

// TestEmptyInjector checks the empty gate and the nil-target guard.
func TestEmptyInjector(t *testing.T) {
	empty := newInjector(t, []string{pkg(t, nil, builder.Parameters("p", []string{"x"}, [][]float64{{1}}))})
	require.True(t, empty.Empty())
	require.Equal(t, 1, empty.Len())
	require.NoError(t, empty.Index(nil))
	require.NoError(t, empty.Update(nil))

	none := newInjector(t, nil)
	require.True(t, none.Empty())
	require.Equal(t, 0, none.Len())

	full := newInjector(t, []string{pkg(t, nil, builder.Characterization(builder.Factor{Flow: 7, Samples: []float64{1}}))})
	require.False(t, full.Empty())
	require.ErrorIs(t, full.Index(nil), inject.ErrNilTarget)
	require.ErrorIs(t, full.Update(nil), inject.ErrNilTarget)
	require.Equal(t, "Injector with 1 packages and 1 resource groups", full.String())
}

// TestNewLoadErrors aborts construction on a consolidation conflict.
func TestNewLoadErrors(t *testing.T) {
	good := pkg(t, nil, builder.Characterization(builder.Factor{Flow: 7, Samples: []float64{1}}))
	spec := func(mx string) builder.Constructor {
		return builder.Matrix(builder.MatrixSpec{
			Kind: "cf", Matrix: mx, Fields: []string{"flow", "row"},
			Types:   []npy.Dtype{npy.Uint32, npy.Uint32},
			Row:     builder.Axis{From: "flow", To: "row", Dict: builder.BiosphereDict},
			Records: [][]int64{{7, 7}}, Samples: [][]float64{{1}},
		})
	}
	bad := pkg(t, nil, spec("a"), spec("b"))

	_, err := inject.New([]string{good, bad})
	require.ErrorIs(t, err, loader.ErrConflictingMatrixTarget)
}

// TestTechnosphereRequiresType refuses technosphere tables without exchange types.
func TestTechnosphereRequiresType(t *testing.T) {
	dir := pkg(t, nil, builder.Matrix(builder.MatrixSpec{
		Kind: manifest.KindTechnosphere, Matrix: builder.TechnosphereMx,
		Fields:  []string{"input", "output", "row", "col"},
		Types:   []npy.Dtype{npy.Uint32, npy.Uint32, npy.Uint32, npy.Uint32},
		Row:     builder.Axis{From: "input", To: "row", Dict: builder.ProductDict},
		Col:     &builder.Axis{From: "output", To: "col", Dict: builder.ActivityDict},
		Records: [][]int64{{1, 100, 1, 100}}, Samples: [][]float64{{5}},
	}))

	_, err := inject.New([]string{dir})
	require.ErrorIs(t, err, loader.ErrIncompatibleIndexSchema)
}

// TestParametersFollowAdvance checks lock-step parameter values in sequential mode.
func TestParametersFollowAdvance(t *testing.T) {
	dir := pkg(t, []builder.Option{builder.WithSequential()},
		builder.Characterization(builder.Factor{Flow: 7, Samples: seq(3, 1)}),
		builder.Parameters("p", []string{"x"}, [][]float64{seq(3, 10)}),
	)
	inj := newInjector(t, []string{dir})
	m := model(t)
	require.NoError(t, inj.Index(m))

	params, err := inj.Parameters()
	require.NoError(t, err)
	require.Len(t, params, 1)
	cf, _ := m.Matrix(builder.CharacterizeMx)

	for step := 0; step < 4; step++ {
		want := float64(step % 3)
		require.NoError(t, inj.Update(m))
		require.Equal(t, want, at(t, cf, 0, 0))
		x, ok := params[0].Value("x")
		require.True(t, ok)
		require.Equal(t, 10*want, x)
		require.NoError(t, inj.AdvanceAll())
	}
}

// TestOptions checks seed override, logging and the validator passthrough.
func TestOptions(t *testing.T) {
	dir := pkg(t, []builder.Option{builder.WithSeed(1)},
		builder.Characterization(builder.Factor{Flow: 7, Samples: seq(10, 1)}))

	core, logs := observer.New(zap.DebugLevel)
	inj := newInjector(t, []string{dir, dir}, inject.WithSeed(77), inject.WithLogger(zap.New(core)))
	for _, p := range inj.Packages() {
		require.Equal(t, uint64(77), p.Sequencer.Seed())
	}
	require.NoError(t, inj.Index(target.NewModel()))
	require.Equal(t, 2, logs.FilterMessage("resource group skipped").Len())
	require.Equal(t, 2, logs.FilterMessage("presample package loaded").Len())

	_, err := inject.New([]string{dir}, inject.WithValidator(func(string) error { return loader.ErrInvalidPackage }))
	require.ErrorIs(t, err, loader.ErrInvalidPackage)

	require.Panics(t, func() { inject.WithLogger(nil) })
	require.Panics(t, func() { inject.WithValidator(nil) })
}
