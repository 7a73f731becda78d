// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package matrix

import (
	"fmt"
	"math/rand/v2"
	"runtime/debug"

	"github.com/ajroetker/go-tilebench/tilebench"
)

// DefaultSeed is the seed of the reference benchmark.
const DefaultSeed = 42

// pcgStream is the fixed PCG stream selector; only the seed varies.
const pcgStream = 0x9e3779b97f4a7c15

// Uniform yields values uniformly distributed in [0, 1).
type Uniform interface {
	Float64() float64
}

// Source returns a Uniform generator for a seed. Equal seeds must yield
// equal sequences.
type Source func(seed uint64) Uniform

// PCGSource is the default Source, a PCG generator from math/rand/v2.
func PCGSource(seed uint64) Uniform {
	return rand.New(rand.NewPCG(seed, pcgStream))
}

// Factory builds the matrices of each benchmark trial.
//
// With FixedSeed set every pair is filled from Seed, so all trials run on
// numerically identical input and only scheduling and runtime noise vary
// between them. Without it pair k is filled from Seed+k.
type Factory struct {
	// N is the matrix dimension.
	N int

	// Seed is the generator seed of the first pair.
	Seed uint64

	// FixedSeed reuses Seed for every pair.
	FixedSeed bool

	// Source creates the generator; nil means PCGSource.
	Source Source

	// Limit caps the bytes a single request may allocate. Zero means the
	// host's available memory, or no cap when the host does not report it.
	Limit uint64

	// Available reports the host's available memory when Limit is zero;
	// nil means tilebench.AvailableMemory.
	Available func() (uint64, error)

	pairs uint64
}

// NewFactory returns a factory for n×n matrices using the reference seed
// and PCGSource.
func NewFactory(n int, seed uint64, fixedSeed bool) (*Factory, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: dimension %d < 1", tilebench.ErrInvalidConfiguration, n)
	}
	return &Factory{N: n, Seed: seed, FixedSeed: fixedSeed}, nil
}

// Pairs returns the number of pairs built so far.
func (f *Factory) Pairs() uint64 { return f.pairs }

// Reserve checks that count more n×n matrices fit in the memory limit.
//
// Without a Limit, a request the host cannot satisfy forces a garbage
// collection first, so matrices of earlier trials that are no longer
// referenced are returned to the host before the figure is read again.
func (f *Factory) Reserve(count int) error {
	need := uint64(count) * BytesFor(f.N)
	if f.Limit != 0 {
		return checkFits(need, f.Limit, count, f.N)
	}

	available := f.Available
	if available == nil {
		available = tilebench.AvailableMemory
	}
	avail, err := available()
	if err != nil {
		// Unknown: let the runtime decide.
		return nil
	}
	if need <= avail {
		return nil
	}
	debug.FreeOSMemory()
	if avail, err = available(); err != nil {
		return nil
	}
	return checkFits(need, avail, count, f.N)
}

func checkFits(need, limit uint64, count, n int) error {
	if need > limit {
		return fmt.Errorf("%w: %d matrices of %d×%d need %d bytes, %d available",
			tilebench.ErrAllocationFailure, count, n, n, need, limit)
	}
	return nil
}

// NewPair builds the A and B inputs of one trial. Entries are drawn from a
// single generator stream, alternating A[i][j] and B[i][j] in row-major
// order.
func (f *Factory) NewPair() (a, b *Dense, err error) {
	if err := f.Reserve(2); err != nil {
		return nil, nil, err
	}
	if a, err = NewDense(f.N); err != nil {
		return nil, nil, err
	}
	if b, err = NewDense(f.N); err != nil {
		return nil, nil, err
	}

	seed := f.Seed
	if !f.FixedSeed {
		seed += f.pairs
	}
	f.pairs++

	src := f.Source
	if src == nil {
		src = PCGSource
	}
	rng := src(seed)
	for idx := range a.Data {
		a.Data[idx] = rng.Float64()
		b.Data[idx] = rng.Float64()
	}
	return a, b, nil
}

// NewOutput builds a zeroed C for one trial.
func (f *Factory) NewOutput() (*Dense, error) {
	if err := f.Reserve(1); err != nil {
		return nil, err
	}
	return NewDense(f.N)
}

// Trial holds the three matrices of one timed multiplication.
type Trial struct {
	A, B, C *Dense
}

// NewTrial reserves memory for all three matrices up front, then builds
// them. Either all three are returned or none.
func (f *Factory) NewTrial() (*Trial, error) {
	if err := f.Reserve(3); err != nil {
		return nil, err
	}
	a, b, err := f.NewPair()
	if err != nil {
		return nil, err
	}
	c, err := f.NewOutput()
	if err != nil {
		return nil, err
	}
	return &Trial{A: a, B: b, C: c}, nil
}
