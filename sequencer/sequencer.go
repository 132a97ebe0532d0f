// SPDX-License-Identifier: MIT

// Package sequencer - deterministic per-package sample index streams.
//
// Goals:
//   - Determinism: same seed and same number of Advance calls ⇒ identical index.
//   - Ownership: each Sequencer owns its RNG; there is no process-wide source.
//   - One stream per package: every resource group of a package reads the same
//     Current index within an iteration, so columns stay mutually consistent.
//
// Concurrency:
//   - A Sequencer is NOT goroutine-safe. Parallel workers must each own one,
//     seeded identically (same stream) or per worker (independent streams).
package sequencer

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrEmptyRange indicates a sequencer over zero samples.
var ErrEmptyRange = errors.New("sequencer: sample count must be > 0")

// Mode selects how indices are produced.
type Mode int

const (
	// Random draws uniformly from [0, count) with a seeded PCG source.
	Random Mode = iota
	// Sequential walks 0, 1, ..., count-1 and wraps around.
	Sequential
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == Sequential {
		return "sequential"
	}
	return "random"
}

// Sequencer yields the current sample index of one package.
type Sequencer struct {
	mode  Mode
	seed  uint64
	count int
	rng   *rand.Rand
	index int
	steps int
}

// New returns a Random sequencer over [0, count) seeded with seed.
// The first index is drawn immediately so Current is valid before any Advance.
func New(seed uint64, count int) (*Sequencer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count %d: %w", count, ErrEmptyRange)
	}
	s := &Sequencer{mode: Random, seed: seed, count: count}
	s.Reset()

	return s, nil
}

// NewSequential returns a Sequential sequencer over [0, count), starting at 0.
func NewSequential(count int) (*Sequencer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count %d: %w", count, ErrEmptyRange)
	}
	s := &Sequencer{mode: Sequential, count: count}
	s.Reset()

	return s, nil
}

// Reset rewinds the sequencer to the state New left it in.
func (s *Sequencer) Reset() {
	s.steps = 0
	if s.mode == Sequential {
		s.index = 0
		return
	}
	s.rng = rand.New(rand.NewPCG(s.seed, streamFor(s.seed)))
	s.index = s.rng.IntN(s.count)
}

// Advance derives the next index. Call once per outer iteration.
// Complexity: O(1).
func (s *Sequencer) Advance() {
	s.steps++
	if s.mode == Sequential {
		s.index = s.steps % s.count
		return
	}
	s.index = s.rng.IntN(s.count)
}

// Current returns the most recently produced index. Reading does not advance.
func (s *Sequencer) Current() int { return s.index }

// Seed returns the seed the stream was built from (0 for Sequential).
func (s *Sequencer) Seed() uint64 { return s.seed }

// Mode returns the index production mode.
func (s *Sequencer) Mode() Mode { return s.mode }

// Count returns the size of the index range.
func (s *Sequencer) Count() int { return s.count }

// Steps returns how many times Advance has been called since construction or Reset.
func (s *Sequencer) Steps() int { return s.steps }

// streamFor mixes the seed into PCG's second state word.
// SplitMix64 finalizer; small seed changes give well-spread streams.
func streamFor(seed uint64) uint64 {
	x := seed + 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
