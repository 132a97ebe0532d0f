// SPDX-License-Identifier: MIT
// Package: presamples/builder
//
// config.go - internal configuration and deterministic defaults.
//
// Deterministic defaults:
//   • name = "presamples"
//   • id   = uuid.NewString()   (the only non-deterministic default)
//   • seed = FixedSeed(0)

package builder

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/katalvlaran/presamples/manifest"
)

const defaultName = "presamples"

// builderConfig aggregates all knobs; constructors receive a pointer so they
// can append resources in order.
type builderConfig struct {
	dir  string
	name string
	id   string
	seed manifest.Seed

	resources []manifest.Resource
}

// newBuilderConfig applies options in order over the defaults.
func newBuilderConfig(dir string, opts ...Option) *builderConfig {
	cfg := &builderConfig{
		dir:  dir,
		name: defaultName,
		id:   uuid.NewString(),
		seed: manifest.FixedSeed(0),
	}
	for _, o := range opts {
		o(cfg)
	}

	return cfg
}

// nextStem returns "{id}.{k}" for the next resource.
func (c *builderConfig) nextStem() string {
	return c.id + "." + strconv.Itoa(len(c.resources))
}
