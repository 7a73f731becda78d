// Copyright 2025 go-tilebench Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics derives speedup, efficiency and the per-thread-count
// optimum block size from a measured sweep table.
//
// For a block size b and thread count t:
//
//	speedup(t, b)    = T(t0, b) / T(t, b)
//	efficiency(t, b) = 100 · speedup(t, b) · t0 / t
//
// where t0 is the baseline thread count: 1 when the sweep measured it,
// otherwise the smallest thread count measured. With t0 = 1 these are the
// usual definitions, and the baseline row always has speedup 1 and
// efficiency 100.
//
// The optimum of a thread count is the block size with the smallest mean
// time. Block sizes are scanned in ascending order and only a strictly
// smaller time replaces the current best, so the smallest block wins ties.
package metrics

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ajroetker/go-tilebench/tilebench"
	"github.com/ajroetker/go-tilebench/tilebench/sweep"
)

// ErrNoBaseline is returned for metrics that need a baseline time the
// sweep does not have.
var ErrNoBaseline = errors.New("metrics: baseline measurement unavailable")

// Cell holds the derived metrics of one configuration.
type Cell struct {
	Threads   int `json:"threads"`
	BlockSize int `json:"block_size"`

	// Time is the mean trial time in seconds. Valid when Available.
	Time float64 `json:"time_s"`

	// Speedup and Efficiency are valid when Scaled.
	Speedup    float64 `json:"speedup"`
	Efficiency float64 `json:"efficiency_pct"`

	Available bool `json:"available"`
	Scaled    bool `json:"scaled"`

	// Err is the cause when the configuration is unavailable, or
	// ErrNoBaseline when only the baseline is missing.
	Err error `json:"-"`
}

// Optimum is the fastest block size of one thread count.
type Optimum struct {
	Threads   int     `json:"threads"`
	BlockSize int     `json:"block_size"`
	Time      float64 `json:"time_s"`
}

// Report is the immutable result of Analyze.
type Report struct {
	n        int
	trials   int
	baseline int
	threads  []int
	blocks   []int
	cells    map[tilebench.Configuration]Cell
	optima   map[int]Optimum
}

// Analyze derives the metrics of every configuration in table. The table
// is only read.
func Analyze(table *sweep.Table) (*Report, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil table", tilebench.ErrInvalidConfiguration)
	}
	threads := table.ThreadCounts()
	blocks := table.BlockSizes()
	if len(threads) == 0 || len(blocks) == 0 {
		return nil, fmt.Errorf("%w: empty table", tilebench.ErrInvalidConfiguration)
	}

	baseline := threads[0]
	rep := &Report{
		n:        table.N,
		trials:   table.Trials,
		baseline: baseline,
		threads:  threads,
		blocks:   blocks,
		cells:    make(map[tilebench.Configuration]Cell, len(threads)*len(blocks)),
		optima:   make(map[int]Optimum, len(threads)),
	}

	for _, b := range blocks {
		base := table.Result(baseline, b)
		for _, t := range threads {
			r := table.Result(t, b)
			cell := Cell{Threads: t, BlockSize: b}
			switch {
			case !r.Available():
				cell.Err = r.Err
				if cell.Err == nil {
					cell.Err = sweep.ErrNotMeasured
				}
			case !base.Available():
				cell.Available = true
				cell.Time = r.Mean
				cell.Err = fmt.Errorf("%w: threads=%d block=%d", ErrNoBaseline, baseline, b)
			default:
				cell.Available = true
				cell.Scaled = true
				cell.Time = r.Mean
				cell.Speedup = speedup(base.Mean, r.Mean, t == baseline)
				cell.Efficiency = cell.Speedup / float64(t) * float64(baseline) * 100
			}
			rep.cells[tilebench.Configuration{Threads: t, BlockSize: b}] = cell
		}
	}

	for _, t := range threads {
		var best Optimum
		found := false
		for _, b := range blocks {
			cell := rep.cells[tilebench.Configuration{Threads: t, BlockSize: b}]
			if !cell.Available {
				continue
			}
			if !found || cell.Time < best.Time {
				best = Optimum{Threads: t, BlockSize: b, Time: cell.Time}
				found = true
			}
		}
		if found {
			rep.optima[t] = best
		}
	}
	return rep, nil
}

// speedup returns base/t, exactly 1 for the baseline itself.
func speedup(base, t float64, isBaseline bool) float64 {
	if isBaseline {
		return 1
	}
	return base / t
}

// N returns the matrix dimension, 0 when unknown.
func (r *Report) N() int { return r.n }

// Trials returns the number of trials per configuration.
func (r *Report) Trials() int { return r.trials }

// Baseline returns the thread count speedups are relative to.
func (r *Report) Baseline() int { return r.baseline }

// ThreadCounts returns the thread domain in ascending order.
func (r *Report) ThreadCounts() []int { return slices.Clone(r.threads) }

// BlockSizes returns the block-size domain in ascending order.
func (r *Report) BlockSizes() []int { return slices.Clone(r.blocks) }

// Cell returns the metrics of (threads, block). The boolean is false when
// the configuration is not part of the report.
func (r *Report) Cell(threads, block int) (Cell, bool) {
	c, ok := r.cells[tilebench.Configuration{Threads: threads, BlockSize: block}]
	return c, ok
}

// Cells returns every cell, block size ascending then thread count
// ascending.
func (r *Report) Cells() []Cell {
	out := make([]Cell, 0, len(r.cells))
	for _, b := range r.blocks {
		for _, t := range r.threads {
			out = append(out, r.cells[tilebench.Configuration{Threads: t, BlockSize: b}])
		}
	}
	return out
}

// Optimum returns the best block size for a thread count. The boolean is
// false when no block size was available at that thread count.
func (r *Report) Optimum(threads int) (Optimum, bool) {
	o, ok := r.optima[threads]
	return o, ok
}

// Optima returns the optimum of every thread count that has one, in
// ascending thread order.
func (r *Report) Optima() []Optimum {
	out := make([]Optimum, 0, len(r.optima))
	for _, t := range r.threads {
		if o, ok := r.optima[t]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Best returns the fastest configuration overall. Ties go to the smaller
// thread count, then the smaller block size.
func (r *Report) Best() (Optimum, bool) {
	optima := r.Optima()
	if len(optima) == 0 {
		return Optimum{}, false
	}
	best := optima[0]
	for _, o := range optima[1:] {
		if o.Time < best.Time {
			best = o
		}
	}
	return best, true
}
