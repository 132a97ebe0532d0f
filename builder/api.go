// SPDX-License-Identifier: MIT
// Package: presamples/builder
//
// api.go - thin public entry-points for the builder package.
//
// Design contract:
//   - One orchestrator: Build(dir, opts, cons...). Resolves cfg, runs cons in order, writes the manifest.
//   - All public factories are declared in impl_*.go next to their file layouts.
//   - Functional options (Option) resolve into a builderConfig (no global state).
//   - Determinism: same inputs/options and constructor order ⇒ identical files (ids aside).

package builder

import (
	"fmt"
	"os"

	"github.com/katalvlaran/presamples/manifest"
)

// Constructor writes one resource's files into cfg.dir and appends its
// manifest entry. Constructors validate early and return sentinel errors.
type Constructor func(cfg *builderConfig) error

// Build creates dir (if needed), applies all constructors in order and writes
// datapackage.json last. The returned manifest is the one written.
// Any constructor error is wrapped with "Build: %w"; files already written are
// left in place.
func Build(dir string, opts []Option, cons ...Constructor) (*manifest.Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("Build: %w: %v", ErrConstructFailed, err)
	}
	cfg := newBuilderConfig(dir, opts...)

	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("Build: nil constructor at index %d: %w", i, ErrConstructFailed)
		}
		if err := fn(cfg); err != nil {
			return nil, fmt.Errorf("Build: %w", err)
		}
	}

	m := &manifest.Manifest{
		Name:      cfg.name,
		ID:        cfg.id,
		Profile:   "data-package",
		Seed:      cfg.seed,
		Resources: cfg.resources,
	}
	if m.Resources == nil {
		m.Resources = []manifest.Resource{}
	}
	if err := manifest.Write(dir, m); err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}

	return m, nil
}
