// SPDX-License-Identifier: MIT

package loader

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/katalvlaran/presamples/manifest"
	"github.com/katalvlaran/presamples/npy"
	"github.com/katalvlaran/presamples/samples"
	"github.com/katalvlaran/presamples/sequencer"
)

// Package is one loaded presample directory.
type Package struct {
	Name string
	ID   string
	Dir  string

	// Seed is the effective seed: the override if given, else the manifest's.
	Seed manifest.Seed

	Sequencer *sequencer.Sequencer
	Groups    []*ResourceGroup

	// ParameterResources holds the named-parameter resources, unopened.
	ParameterResources []manifest.Resource
}

// Empty reports whether the package carries no matrix-bound data.
func (p *Package) Empty() bool { return len(p.Groups) == 0 }

// String implements fmt.Stringer.
func (p *Package) String() string {
	return fmt.Sprintf("Package %q (%s) with %d resource groups", p.Name, p.ID, len(p.Groups))
}

// Close releases every sample mapping held by the package.
func (p *Package) Close() error {
	var errs []error
	for _, g := range p.Groups {
		errs = append(errs, g.Samples.Close())
	}

	return errors.Join(errs...)
}

// Load reads dir into a Package.
// Stage 1 (Validate): run the directory validator.
// Stage 2 (Manifest): decode datapackage.json.
// Stage 3 (Group): stable-sort matrix resources by kind, consolidate each kind.
// Stage 4 (Sequence): check one sample count per package, build the Sequencer.
func Load(dir string, opts ...Option) (*Package, error) {
	cfg := newConfig(opts...)
	log := cfg.logger.With(zap.String("dir", dir))

	if err := cfg.validator(dir); err != nil {
		return nil, fmt.Errorf("Load(%s): %w: %v", dir, ErrInvalidPackage, err)
	}
	m, err := manifest.Read(dir)
	if err != nil {
		return nil, fmt.Errorf("Load(%s): %w", dir, err)
	}

	p := &Package{
		Name:               m.Name,
		ID:                 m.ID,
		Dir:                dir,
		ParameterResources: m.ParameterResources(),
	}

	for _, group := range groupByKind(m.MatrixResources()) {
		g, err := Consolidate(dir, group)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("Load(%s): %w", dir, err)
		}
		p.Groups = append(p.Groups, g)
	}

	count, err := sampleCount(m, p.Groups)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("Load(%s): %w", dir, err)
	}
	if p.Seed, p.Sequencer, err = buildSequencer(m.Seed, cfg.seed, count); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("Load(%s): %w", dir, err)
	}

	log.Debug("presample package loaded",
		zap.String("name", p.Name),
		zap.String("id", p.ID),
		zap.Int("groups", len(p.Groups)),
		zap.Int("parameter_resources", len(p.ParameterResources)),
		zap.Int("samples", count),
		zap.Stringer("mode", p.Sequencer.Mode()),
		zap.Uint64("seed", p.Seed.Value),
	)

	return p, nil
}

// groupByKind stable-sorts by Type and splits into runs of equal Type.
func groupByKind(resources []manifest.Resource) [][]manifest.Resource {
	sorted := append([]manifest.Resource(nil), resources...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Type < sorted[j].Type })

	var out [][]manifest.Resource
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end].Type == sorted[start].Type {
			end++
		}
		out = append(out, sorted[start:end])
		start = end
	}

	return out
}

// sampleCount returns the package-wide column count. ncols from the manifest
// wins when set; otherwise the first declared array decides. All arrays must agree.
func sampleCount(m *manifest.Manifest, groups []*ResourceGroup) (int, error) {
	count := m.Ncols
	check := func(what string, cols int) error {
		if count == 0 {
			count = cols
		}
		if cols != count {
			return fmt.Errorf("%s has %d samples, package has %d: %w", what, cols, count, ErrSampleShape)
		}
		return nil
	}

	for _, g := range groups {
		if err := check("group "+g.Kind, g.Samples.Cols()); err != nil {
			return 0, err
		}
	}
	for _, r := range m.ParameterResources() {
		if err := check("parameters "+r.Names.Filepath, r.Samples.Shape[1]); err != nil {
			return 0, err
		}
	}
	if count == 0 {
		// Packages without arrays still get a (trivial) sequencer.
		count = 1
	}

	return count, nil
}

// buildSequencer applies the seed policy: an override replaces the manifest
// seed; "sequential" walks indices in order; a missing seed draws one.
func buildSequencer(declared manifest.Seed, override *uint64, count int) (manifest.Seed, *sequencer.Sequencer, error) {
	seed := declared
	if override != nil {
		seed = manifest.FixedSeed(*override)
	}
	if seed.Sequential {
		s, err := sequencer.NewSequential(count)
		return seed, s, err
	}
	if !seed.Present {
		seed = manifest.FixedSeed(rand.Uint64())
	}
	s, err := sequencer.New(seed.Value, count)

	return seed, s, err
}

// Consolidate merges same-kind resources of one package into a ResourceGroup.
// Stage 1: metadata equality (matrix, row triple, column triple if declared).
// Stage 2: load identifier tables; layouts must match and carry the labeled fields.
// Stage 3: concatenate tables and span one Store over the sample arrays, same order.
// The first member's metadata is used once every member has been checked equal.
func Consolidate(dir string, group []manifest.Resource) (*ResourceGroup, error) {
	if len(group) == 0 {
		return nil, ErrEmptyGroup
	}
	first := group[0]

	withCols := false
	for _, r := range group {
		withCols = withCols || r.HasColumns()
	}
	for _, r := range group[1:] {
		if r.Matrix != first.Matrix {
			return nil, fmt.Errorf("kind %q: matrices %q and %q: %w", first.Type, first.Matrix, r.Matrix, ErrConflictingMatrixTarget)
		}
		if rowLabels(r) != rowLabels(first) {
			return nil, fmt.Errorf("kind %q: row labels %v and %v: %w", first.Type, rowLabels(first), rowLabels(r), ErrConflictingLabelSchema)
		}
		if withCols && colLabels(r) != colLabels(first) {
			return nil, fmt.Errorf("kind %q: column labels %v and %v: %w", first.Type, colLabels(first), colLabels(r), ErrConflictingLabelSchema)
		}
	}

	tables := make([]*npy.Records, len(group))
	segments := make([]samples.Segment, len(group))
	for i, r := range group {
		if r.Indices == nil || r.Samples == nil || len(r.Samples.Shape) != 2 {
			return nil, fmt.Errorf("kind %q: resource %d lacks indices or samples: %w", first.Type, i, ErrManifest)
		}
		t, err := npy.ReadRecords(filepath.Join(dir, r.Indices.Filepath))
		if err != nil {
			return nil, fmt.Errorf("kind %q: %w: %w", first.Type, ErrInvalidPackage, err)
		}
		if i > 0 && !t.Dtype().Equal(tables[0].Dtype()) {
			return nil, fmt.Errorf("kind %q: %s vs %s: %w", first.Type, tables[0].Dtype(), t.Dtype(), ErrIncompatibleIndexSchema)
		}
		if t.Len() != r.Samples.Shape[0] {
			return nil, fmt.Errorf("kind %q: %s has %d records, samples declare %d rows: %w",
				first.Type, r.Indices.Filepath, t.Len(), r.Samples.Shape[0], ErrSampleShape)
		}
		tables[i] = t
		segments[i] = samples.Segment{
			Path: filepath.Join(dir, r.Samples.Filepath),
			Rows: r.Samples.Shape[0],
			Cols: r.Samples.Shape[1],
		}
	}

	g := &ResourceGroup{Kind: first.Type, Matrix: first.Matrix, Row: rowLabels(first)}
	if withCols {
		c := colLabels(first)
		g.Col = &c
	}
	for _, field := range g.fields() {
		if !tables[0].Has(field) {
			return nil, fmt.Errorf("kind %q: table %s lacks field %q: %w", first.Type, tables[0].Dtype(), field, ErrIncompatibleIndexSchema)
		}
	}

	merged, err := tables[0].Concat(tables[1:]...)
	if err != nil {
		return nil, fmt.Errorf("kind %q: %w: %v", first.Type, ErrIncompatibleIndexSchema, err)
	}
	store, err := samples.New(segments)
	if err != nil {
		return nil, fmt.Errorf("kind %q: %w", first.Type, err)
	}
	g.Indices, g.Samples = merged, store

	return g, nil
}

func rowLabels(r manifest.Resource) Labels {
	return Labels{From: r.RowFromLabel, To: r.RowToLabel, Dict: r.RowDict}
}

func colLabels(r manifest.Resource) Labels {
	return Labels{From: r.ColFromLabel, To: r.ColToLabel, Dict: r.ColDict}
}

// fields lists every table field the labels refer to, plus the exchange type
// field for technosphere groups.
func (g *ResourceGroup) fields() []string {
	out := []string{g.Row.From, g.Row.To}
	if g.Col != nil {
		out = append(out, g.Col.From, g.Col.To)
	}
	if g.Kind == manifest.KindTechnosphere {
		out = append(out, manifest.TypeField)
	}

	return out
}
