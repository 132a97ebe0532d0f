// SPDX-License-Identifier: MIT

package loader

import (
	"fmt"
	"math"

	"github.com/katalvlaran/presamples/npy"
	"github.com/katalvlaran/presamples/samples"
	"github.com/katalvlaran/presamples/target"
)

// Unresolved is written into a position column for identifiers the dictionary
// does not know. Writes for such rows are skipped by the injector.
const Unresolved int64 = math.MaxUint32

// IndexState is the one-shot resolution state of a ResourceGroup.
// The only legal transition is Unindexed → Indexed.
type IndexState uint8

const (
	// Unindexed groups still hold raw identifiers in their position columns.
	Unindexed IndexState = iota
	// Indexed groups hold resolved matrix positions; they are never re-resolved.
	Indexed
)

// String implements fmt.Stringer.
func (s IndexState) String() string {
	if s == Indexed {
		return "indexed"
	}
	return "unindexed"
}

// Labels names the raw-identifier field, the resolved-position field and the
// dictionary resolving one axis.
type Labels struct {
	From string
	To   string
	Dict string
}

// ResourceGroup is every resource of one kind inside one package, merged.
type ResourceGroup struct {
	Kind   string
	Matrix string
	Row    Labels
	Col    *Labels // nil for diagonal groups

	Indices *npy.Records   // raw identifiers; To columns are rewritten by Resolve
	Samples *samples.Store // Samples.Rows() == Indices.Len()

	state      IndexState
	unresolved int
}

// Diagonal reports whether values land on matrix[p, p].
func (g *ResourceGroup) Diagonal() bool { return g.Col == nil }

// State returns the resolution state.
func (g *ResourceGroup) State() IndexState { return g.state }

// Indexed is shorthand for State() == Indexed.
func (g *ResourceGroup) Indexed() bool { return g.state == Indexed }

// Unresolved returns how many identifiers (rows plus columns) were missing
// from their dictionaries at resolution time.
func (g *ResourceGroup) Unresolved() int { return g.unresolved }

// Len returns the number of records (matrix cells) in the group.
func (g *ResourceGroup) Len() int { return g.Indices.Len() }

// RowPositions returns the resolved (or, before Resolve, raw) row positions.
func (g *ResourceGroup) RowPositions() []int64 { return g.Indices.Column(g.Row.To) }

// ColPositions returns column positions; for diagonal groups it is RowPositions.
func (g *ResourceGroup) ColPositions() []int64 {
	if g.Col == nil {
		return g.RowPositions()
	}
	return g.Indices.Column(g.Col.To)
}

// Resolve rewrites the To columns through the dictionaries and moves the group
// to Indexed. cols must be non-nil exactly when the group declares columns.
// A second call returns ErrAlreadyIndexed and changes nothing.
// Complexity: O(Len) dictionary lookups per axis.
func (g *ResourceGroup) Resolve(rows, cols target.Dictionary) error {
	if g.state == Indexed {
		return fmt.Errorf("%s/%s: %w", g.Kind, g.Matrix, ErrAlreadyIndexed)
	}
	if rows == nil || (g.Col != nil) != (cols != nil) {
		return fmt.Errorf("%s/%s: dictionaries do not match the group axes", g.Kind, g.Matrix)
	}

	missing := resolveAxis(g.Indices.Column(g.Row.From), g.Indices.Column(g.Row.To), rows)
	if g.Col != nil {
		missing += resolveAxis(g.Indices.Column(g.Col.From), g.Indices.Column(g.Col.To), cols)
	}
	g.unresolved = missing
	g.state = Indexed

	return nil
}

// resolveAxis maps from[i] through d into to[i]; unknown ids become Unresolved.
// from and to may alias when one field serves both roles.
func resolveAxis(from, to []int64, d target.Dictionary) int {
	var missing int
	for i, id := range from {
		pos, ok := d.Lookup(id)
		if !ok {
			to[i] = Unresolved
			missing++
			continue
		}
		to[i] = int64(pos)
	}

	return missing
}
