// SPDX-License-Identifier: MIT
// Package: presamples/builder
//
// options.go - functional options for Build.
//
// Contract:
//   • Options are functional (type Option func(*builderConfig)).
//   • Option constructors panic on meaningless inputs.
//   • Determinism is explicit: seeding is done via WithSeed or WithSequential.

package builder

import "github.com/katalvlaran/presamples/manifest"

// Option customizes Build by mutating a builderConfig before files are written.
type Option func(*builderConfig)

// WithName sets the package name. Panics on "".
func WithName(name string) Option {
	if name == "" {
		panic("builder: WithName(\"\")")
	}
	return func(c *builderConfig) { c.name = name }
}

// WithID sets the package id (default: a random UUID). Panics on "".
func WithID(id string) Option {
	if id == "" {
		panic("builder: WithID(\"\")")
	}
	return func(c *builderConfig) { c.id = id }
}

// WithSeed records a fixed seed in the manifest.
func WithSeed(seed uint64) Option {
	return func(c *builderConfig) { c.seed = manifest.FixedSeed(seed) }
}

// WithSequential records the "sequential" seed in the manifest.
func WithSequential() Option {
	return func(c *builderConfig) { c.seed = manifest.SequentialSeed() }
}

// WithoutSeed records a null seed (each load draws its own).
func WithoutSeed() Option {
	return func(c *builderConfig) { c.seed = manifest.Seed{} }
}
