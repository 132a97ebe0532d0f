// SPDX-License-Identifier: MIT

// Package parameters exposes named-parameter resources of a presample package
// as a name → value mapping at the package's current sample index.
package parameters

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/katalvlaran/presamples/manifest"
	"github.com/katalvlaran/presamples/samples"
)

var (
	// ErrNames indicates an unreadable or malformed names file.
	ErrNames = errors.New("parameters: invalid names file")

	// ErrDuplicateName indicates a name declared twice within one package.
	ErrDuplicateName = errors.New("parameters: duplicate parameter name")
)

// Mapping holds every named parameter of one package. Values are read from
// disk on SetIndex only.
type Mapping struct {
	names  []string
	pos    map[string]int
	store  *samples.Store
	values []float64
	index  int
}

// Open builds a Mapping over the parameter resources of one package rooted at
// dir. Resources are concatenated in order; the sample column is not read
// until SetIndex.
func Open(dir string, resources []manifest.Resource) (*Mapping, error) {
	m := &Mapping{pos: make(map[string]int), index: -1}
	var segments []samples.Segment
	for _, r := range resources {
		names, err := readNames(filepath.Join(dir, r.Names.Filepath))
		if err != nil {
			return nil, err
		}
		if r.Samples == nil || len(r.Samples.Shape) != 2 || r.Samples.Shape[0] != len(names) {
			return nil, fmt.Errorf("%s: %d names for declared samples %v: %w",
				r.Names.Filepath, len(names), r.Samples, samples.ErrSampleShape)
		}
		for _, n := range names {
			if _, dup := m.pos[n]; dup {
				return nil, fmt.Errorf("%q: %w", n, ErrDuplicateName)
			}
			m.pos[n] = len(m.names)
			m.names = append(m.names, n)
		}
		segments = append(segments, samples.Segment{
			Path: filepath.Join(dir, r.Samples.Filepath),
			Rows: r.Samples.Shape[0],
			Cols: r.Samples.Shape[1],
		})
	}
	if len(segments) == 0 {
		return m, nil
	}

	store, err := samples.New(segments)
	if err != nil {
		return nil, err
	}
	m.store = store

	return m, nil
}

func readNames(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNames, err)
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNames, path, err)
	}

	return names, nil
}

// SetIndex loads sample column index for every parameter.
func (m *Mapping) SetIndex(index int) error {
	if m.store == nil {
		m.index = index
		return nil
	}
	values, err := m.store.Sample(index)
	if err != nil {
		return err
	}
	m.values, m.index = values, index

	return nil
}

// Index returns the column last loaded, or -1.
func (m *Mapping) Index() int { return m.index }

// Len returns the number of parameters.
func (m *Mapping) Len() int { return len(m.names) }

// Names returns parameter names in declaration order.
func (m *Mapping) Names() []string { return append([]string(nil), m.names...) }

// Value returns the current value of name. ok is false for unknown names or
// before the first SetIndex.
func (m *Mapping) Value(name string) (v float64, ok bool) {
	i, known := m.pos[name]
	if !known || m.values == nil {
		return 0, false
	}

	return m.values[i], true
}

// Values returns a copy of the current name → value mapping.
func (m *Mapping) Values() map[string]float64 {
	out := make(map[string]float64, len(m.values))
	for i, v := range m.values {
		out[m.names[i]] = v
	}

	return out
}

// String lists names and current values, sorted by name.
func (m *Mapping) String() string {
	names := m.Names()
	sort.Strings(names)
	s := fmt.Sprintf("Mapping(index=%d)", m.index)
	for _, n := range names {
		v, _ := m.Value(n)
		s += fmt.Sprintf(" %s=%g", n, v)
	}

	return s
}

// Close releases the sample mappings.
func (m *Mapping) Close() error {
	if m.store == nil {
		return nil
	}

	return m.store.Close()
}
