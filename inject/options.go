// SPDX-License-Identifier: MIT

package inject

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/presamples/loader"
)

// Option customizes New.
type Option func(*config)

type config struct {
	logger *zap.Logger
	load   []loader.Option
}

func newConfig(opts ...Option) config {
	cfg := config{logger: zap.NewNop()}
	for _, o := range opts {
		o(&cfg)
	}

	return cfg
}

// WithSeed overrides the seed of every loaded package.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.load = append(c.load, loader.WithSeed(seed)) }
}

// WithLogger routes injector and loader diagnostics to l. Panics on nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("inject: WithLogger(nil)")
	}
	return func(c *config) {
		c.logger = l
		c.load = append(c.load, loader.WithLogger(l))
	}
}

// WithValidator replaces the directory validator run before each package loads.
// Panics on nil.
func WithValidator(fn func(dir string) error) Option {
	if fn == nil {
		panic("inject: WithValidator(nil)")
	}
	return func(c *config) { c.load = append(c.load, loader.WithValidator(fn)) }
}
