// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package sweep

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ajroetker/go-tilebench/tilebench"
)

// ErrNotMeasured is the cause recorded for a configuration the sweep never
// reached, or that an imported benchmark run did not contain.
var ErrNotMeasured = errors.New("sweep: configuration not measured")

// Result is the measurement of one configuration.
type Result struct {
	Config tilebench.Configuration

	// Mean is the running mean of Samples, in seconds.
	Mean float64

	// Samples holds each trial's elapsed seconds in run order.
	Samples []float64

	// Checksum is the sum of C from the last trial, zero for imported
	// results.
	Checksum float64

	// Err is the cause when the configuration is unavailable.
	Err error
}

// Available reports whether r holds a usable mean.
func (r *Result) Available() bool {
	return r != nil && r.Err == nil && len(r.Samples) > 0
}

// Min returns the fastest trial, or 0 without samples.
func (r *Result) Min() float64 {
	if len(r.Samples) == 0 {
		return 0
	}
	return floats.Min(r.Samples)
}

// StdDev returns the sample standard deviation, or 0 with fewer than two
// samples.
func (r *Result) StdDev() float64 {
	if len(r.Samples) < 2 {
		return 0
	}
	return stat.StdDev(r.Samples, nil)
}

// add folds one sample into the running mean.
func (r *Result) add(seconds float64) {
	r.Samples = append(r.Samples, seconds)
	r.Mean += (seconds - r.Mean) / float64(len(r.Samples))
}

// Table holds the results of a sweep, one Result per configuration.
//
// A Table is not safe for concurrent use. The driver is its only writer
// and readers look at it once the sweep has finished.
type Table struct {
	// N is the matrix dimension, 0 when unknown.
	N int

	// Trials is the number of trials each configuration was meant to run.
	Trials int

	threads []int
	blocks  []int
	results map[tilebench.Configuration]*Result
}

// NewTable returns a table for the cross product of threads and blocks.
// Every cell starts unavailable with ErrNotMeasured.
func NewTable(n, trials int, threads, blocks []int) *Table {
	t := &Table{
		N:       n,
		Trials:  trials,
		threads: slices.Clone(threads),
		blocks:  slices.Clone(blocks),
		results: make(map[tilebench.Configuration]*Result, len(threads)*len(blocks)),
	}
	for _, b := range blocks {
		for _, th := range threads {
			cfg := tilebench.Configuration{Threads: th, BlockSize: b}
			t.results[cfg] = &Result{Config: cfg, Err: ErrNotMeasured}
		}
	}
	return t
}

// ThreadCounts returns the thread domain in ascending order.
func (t *Table) ThreadCounts() []int {
	s := slices.Clone(t.threads)
	slices.Sort(s)
	return s
}

// BlockSizes returns the block-size domain in ascending order.
func (t *Table) BlockSizes() []int {
	s := slices.Clone(t.blocks)
	slices.Sort(s)
	return s
}

// Result returns the result for (threads, block), or nil when the
// configuration is outside the table.
func (t *Table) Result(threads, block int) *Result {
	return t.results[tilebench.Configuration{Threads: threads, BlockSize: block}]
}

// Results returns every result, block size ascending then thread count
// ascending.
func (t *Table) Results() []*Result {
	out := make([]*Result, 0, len(t.results))
	for _, b := range t.BlockSizes() {
		for _, th := range t.ThreadCounts() {
			out = append(out, t.Result(th, b))
		}
	}
	return out
}

// Available returns the number of available results.
func (t *Table) Available() int {
	count := 0
	for _, r := range t.results {
		if r.Available() {
			count++
		}
	}
	return count
}

func (t *Table) cell(cfg tilebench.Configuration) (*Result, error) {
	r, ok := t.results[cfg]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not part of the table", tilebench.ErrInvalidConfiguration, cfg)
	}
	return r, nil
}

// begin clears the cell of cfg before its first trial.
func (t *Table) begin(cfg tilebench.Configuration) error {
	r, err := t.cell(cfg)
	if err != nil {
		return err
	}
	*r = Result{Config: cfg}
	return nil
}

// Record folds one trial of cfg into its result. The first sample of a
// configuration that was never measured makes it available.
func (t *Table) Record(cfg tilebench.Configuration, seconds, checksum float64) error {
	r, err := t.cell(cfg)
	if err != nil {
		return err
	}
	if r.Err == ErrNotMeasured {
		r.Err = nil
	}
	r.add(seconds)
	r.Checksum = checksum
	return nil
}

// MarkUnavailable records why cfg has no usable mean. Samples already taken
// are kept for diagnostics.
func (t *Table) MarkUnavailable(cfg tilebench.Configuration, cause error) error {
	r, err := t.cell(cfg)
	if err != nil {
		return err
	}
	r.Err = cause
	return nil
}
