// SPDX-License-Identifier: MIT
// Package loader: functional options.
//
// Contract:
//   • Options are functional (type Option func(*config)).
//   • Option constructors panic on meaningless inputs (nil logger/validator).
//   • Later options override earlier ones.

package loader

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Option customizes Load.
type Option func(*config)

// config aggregates every Load knob; passed by value.
type config struct {
	seed      *uint64
	logger    *zap.Logger
	validator func(dir string) error
}

func newConfig(opts ...Option) config {
	cfg := config{
		logger:    zap.NewNop(),
		validator: ValidateDir,
	}
	for _, o := range opts {
		o(&cfg)
	}

	return cfg
}

// WithSeed overrides the manifest seed package-wide, including "sequential".
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = &seed }
}

// WithLogger routes load diagnostics to l. Panics on nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("loader: WithLogger(nil)")
	}
	return func(c *config) { c.logger = l }
}

// WithValidator replaces the directory validator run before the manifest is read,
// e.g. with a checksum verifier. Panics on nil.
func WithValidator(fn func(dir string) error) Option {
	if fn == nil {
		panic("loader: WithValidator(nil)")
	}
	return func(c *config) { c.validator = fn }
}

// ValidateDir is the default validator: dir must exist and be a directory.
func ValidateDir(dir string) error {
	st, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	return nil
}
