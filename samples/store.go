// SPDX-License-Identifier: MIT

package samples

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/katalvlaran/presamples/npy"
)

// Segment is one on-disk sample array with its declared shape.
type Segment struct {
	Path string
	Rows int
	Cols int
}

// Store is the logical row-wise concatenation of its segments.
// A Store is not safe for concurrent use.
type Store struct {
	segments []Segment
	offsets  []int        // first logical row of each segment
	arrays   []*npy.Array // opened lazily; nil until first Sample
	rows     int
	cols     int
	rng      *rand.Rand // only used by Draw
}

// New validates the declared shapes and returns a Store. No file is opened.
// Stage 1: reject an empty list. Stage 2: require equal column counts.
// Stage 3: compute per-segment row offsets.
func New(segments []Segment) (*Store, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	s := &Store{
		segments: append([]Segment(nil), segments...),
		offsets:  make([]int, len(segments)),
		arrays:   make([]*npy.Array, len(segments)),
		cols:     segments[0].Cols,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for i, seg := range segments {
		if seg.Rows < 0 || seg.Cols <= 0 {
			return nil, fmt.Errorf("segment %s shape (%d, %d): %w", seg.Path, seg.Rows, seg.Cols, ErrSampleShape)
		}
		if seg.Cols != s.cols {
			return nil, fmt.Errorf("segment %s has %d columns, expected %d: %w", seg.Path, seg.Cols, s.cols, ErrSampleShape)
		}
		s.offsets[i] = s.rows
		s.rows += seg.Rows
	}

	return s, nil
}

// Rows returns the total row count across segments.
func (s *Store) Rows() int { return s.rows }

// Cols returns the shared sample count.
func (s *Store) Cols() int { return s.cols }

// Segments returns a copy of the segment list in concatenation order.
func (s *Store) Segments() []Segment { return append([]Segment(nil), s.segments...) }

// open maps segment k on first use and checks the on-disk shape.
func (s *Store) open(k int) (*npy.Array, error) {
	if a := s.arrays[k]; a != nil {
		return a, nil
	}
	seg := s.segments[k]
	a, err := npy.Open(seg.Path)
	if err != nil {
		return nil, err
	}
	if r, c := a.Shape(); r != seg.Rows || c != seg.Cols {
		_ = a.Close()
		return nil, fmt.Errorf("segment %s is (%d, %d) on disk, declared (%d, %d): %w",
			seg.Path, r, c, seg.Rows, seg.Cols, ErrSampleShape)
	}
	s.arrays[k] = a

	return a, nil
}

// Sample returns column index across all segments, in segment order.
// Complexity: O(Rows) element reads.
func (s *Store) Sample(index int) ([]float64, error) {
	if index < 0 || index >= s.cols {
		return nil, fmt.Errorf("index %d of %d: %w", index, s.cols, ErrIndexOutOfRange)
	}

	out := make([]float64, s.rows)
	for k, seg := range s.segments {
		if seg.Rows == 0 {
			continue
		}
		a, err := s.open(k)
		if err != nil {
			return nil, err
		}
		if err = a.Column(index, out[s.offsets[k]:s.offsets[k]+seg.Rows]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Draw picks a fresh uniform index from the store's own source and samples it.
// The injection path never uses Draw; it always passes an explicit index.
func (s *Store) Draw() ([]float64, int, error) {
	i := s.rng.IntN(s.cols)
	v, err := s.Sample(i)

	return v, i, err
}

// Close unmaps every opened segment. The Store may be reused; segments reopen on demand.
func (s *Store) Close() error {
	var errs []error
	for k, a := range s.arrays {
		if a == nil {
			continue
		}
		errs = append(errs, a.Close())
		s.arrays[k] = nil
	}

	return errors.Join(errs...)
}
