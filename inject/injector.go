// SPDX-License-Identifier: MIT

package inject

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/presamples/loader"
	"github.com/katalvlaran/presamples/manifest"
	"github.com/katalvlaran/presamples/parameters"
	"github.com/katalvlaran/presamples/target"
)

// Injector holds every loaded package and writes their draws into a target.
type Injector struct {
	packages []*loader.Package
	groups   int
	logger   *zap.Logger

	// params is nil until Parameters is first called.
	params []*parameters.Mapping
}

// New loads every directory in order. Any load error aborts construction and
// releases what was already loaded.
func New(dirs []string, opts ...Option) (*Injector, error) {
	cfg := newConfig(opts...)
	inj := &Injector{logger: cfg.logger}
	for _, dir := range dirs {
		p, err := loader.Load(dir, cfg.load...)
		if err != nil {
			_ = inj.Close()
			return nil, fmt.Errorf("New: %w", err)
		}
		inj.packages = append(inj.packages, p)
		inj.groups += len(p.Groups)
	}

	return inj, nil
}

// Len returns the number of loaded packages, including packages that carry
// only named parameters. Use Empty to ask whether any matrix data is loaded.
func (inj *Injector) Len() int { return len(inj.packages) }

// Empty reports whether no package carries matrix-bound data.
func (inj *Injector) Empty() bool { return inj.groups == 0 }

// Packages returns the loaded packages in load order.
func (inj *Injector) Packages() []*loader.Package {
	return append([]*loader.Package(nil), inj.packages...)
}

// String implements fmt.Stringer.
func (inj *Injector) String() string {
	return fmt.Sprintf("Injector with %d packages and %d resource groups", len(inj.packages), inj.groups)
}

// Indexed reports whether every resource group has been resolved.
func (inj *Injector) Indexed() bool {
	for _, p := range inj.packages {
		for _, g := range p.Groups {
			if !g.Indexed() {
				return false
			}
		}
	}

	return true
}

// Index resolves raw identifiers of every unindexed group whose dictionaries t
// already exposes. Groups missing a dictionary stay unindexed; a later call
// resolves them. Indexed groups are never resolved again.
func (inj *Injector) Index(t target.Target) error {
	if inj.Empty() {
		return nil
	}
	if t == nil {
		return fmt.Errorf("Index: %w", ErrNilTarget)
	}

	for _, p := range inj.packages {
		for _, g := range p.Groups {
			if g.Indexed() {
				continue
			}
			rows, ok := t.Dictionary(g.Row.Dict)
			if !ok {
				inj.skip("index", p, g, "row dictionary "+g.Row.Dict+" not available")
				continue
			}
			var cols target.Dictionary
			if g.Col != nil {
				if cols, ok = t.Dictionary(g.Col.Dict); !ok {
					inj.skip("index", p, g, "column dictionary "+g.Col.Dict+" not available")
					continue
				}
			}
			if err := g.Resolve(rows, cols); err != nil {
				return fmt.Errorf("Index: package %s: %w", p.ID, err)
			}
			if n := g.Unresolved(); n > 0 {
				inj.logger.Debug("identifiers not found in dictionaries",
					zap.String("package", p.ID),
					zap.String("kind", g.Kind),
					zap.Int("unresolved", n),
				)
			}
		}
	}

	return nil
}

// Update writes the current draw of every package into t. Called without
// matrices, every matrix is written. A non-nil matrices slice is a filter:
// only the named matrices are written, and an empty slice (Update(t,
// []string{}...)) writes none. Matrices absent from t are skipped. Rows
// marked loader.Unresolved are not written.
func (inj *Injector) Update(t target.Target, matrices ...string) error {
	if inj.Empty() {
		return nil
	}
	if t == nil {
		return fmt.Errorf("Update: %w", ErrNilTarget)
	}

	var filter map[string]bool
	if matrices != nil {
		filter = make(map[string]bool, len(matrices))
		for _, name := range matrices {
			filter[name] = true
		}
	}

	for _, p := range inj.packages {
		index := p.Sequencer.Current()
		for _, g := range p.Groups {
			if filter != nil && !filter[g.Matrix] {
				inj.skip("update", p, g, "matrix filtered out")
				continue
			}
			mx, ok := t.Matrix(g.Matrix)
			if !ok || mx == nil {
				inj.skip("update", p, g, "matrix not in target")
				continue
			}
			values, err := g.Samples.Sample(index)
			if err != nil {
				return fmt.Errorf("Update: package %s, %s: %w", p.ID, g.Kind, err)
			}
			if g.Kind == manifest.KindTechnosphere {
				flipConsumers(values, g.Indices.Column(manifest.TypeField))
			}
			if err = write(mx, g.RowPositions(), g.ColPositions(), values); err != nil {
				return fmt.Errorf("Update: package %s, %s: %w", p.ID, g.Matrix, err)
			}
		}
	}

	return nil
}

// setter is the single matrix method Update needs.
type setter interface {
	Set(i, j int, v float64) error
}

// write sets m[rows[k], cols[k]] = values[k], skipping unresolved positions.
func write(m setter, rows, cols []int64, values []float64) error {
	for k, v := range values {
		if rows[k] == loader.Unresolved || cols[k] == loader.Unresolved {
			continue
		}
		if err := m.Set(int(rows[k]), int(cols[k]), v); err != nil {
			return err
		}
	}

	return nil
}

// flipConsumers negates technosphere inputs; production and other exchange
// types keep their sign.
func flipConsumers(values []float64, types []int64) {
	for k, typ := range types {
		if typ == manifest.TypeTechnosphere {
			values[k] = -values[k]
		}
	}
}

// AdvanceAll moves every package to its next index, then reloads opened
// parameter mappings at the new index. Call once per outer iteration.
func (inj *Injector) AdvanceAll() error {
	for _, p := range inj.packages {
		p.Sequencer.Advance()
	}
	if inj.params == nil {
		return nil
	}
	for k, m := range inj.params {
		if err := m.SetIndex(inj.packages[k].Sequencer.Current()); err != nil {
			return fmt.Errorf("AdvanceAll: package %s: %w", inj.packages[k].ID, err)
		}
	}

	return nil
}

// Parameters returns one named-parameter mapping per package, in load order,
// positioned at the package's current index. Mappings are opened on first
// call and advance with AdvanceAll afterwards.
func (inj *Injector) Parameters() ([]*parameters.Mapping, error) {
	if inj.params != nil {
		return append([]*parameters.Mapping(nil), inj.params...), nil
	}

	params := make([]*parameters.Mapping, 0, len(inj.packages))
	for _, p := range inj.packages {
		m, err := parameters.Open(p.Dir, p.ParameterResources)
		if err == nil {
			err = m.SetIndex(p.Sequencer.Current())
		}
		if err != nil {
			for _, opened := range params {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("Parameters: package %s: %w", p.ID, err)
		}
		params = append(params, m)
	}
	inj.params = params

	return append([]*parameters.Mapping(nil), params...), nil
}

// Close releases every mapped sample array. The Injector must not be used afterwards.
func (inj *Injector) Close() error {
	var errs []error
	for _, p := range inj.packages {
		errs = append(errs, p.Close())
	}
	for _, m := range inj.params {
		errs = append(errs, m.Close())
	}

	return errors.Join(errs...)
}

func (inj *Injector) skip(op string, p *loader.Package, g *loader.ResourceGroup, reason string) {
	inj.logger.Debug("resource group skipped",
		zap.String("op", op),
		zap.String("package", p.ID),
		zap.String("kind", g.Kind),
		zap.String("matrix", g.Matrix),
		zap.String("reason", reason),
	)
}
