// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package sweep

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"

	"github.com/samber/lo"
	"golang.org/x/tools/benchmark/parse"

	"github.com/ajroetker/go-tilebench/tilebench"
)

// ErrNoBenchmarks is returned when the input holds no tiled-kernel results.
var ErrNoBenchmarks = errors.New("sweep: no BenchmarkTiledMultiply results found")

// benchName matches BenchmarkTiledMultiply/threads=T/block=B with the
// optional -GOMAXPROCS suffix added by the testing package.
var benchName = regexp.MustCompile(`^BenchmarkTiledMultiply/threads=(\d+)/block=(\d+)(?:-\d+)?$`)

// ImportBenchmarks builds a Table from `go test -bench` output. Each
// repetition of a benchmark (-count) becomes one sample; ns/op is converted
// to seconds. Lines for other benchmarks are ignored, and configurations
// missing from the run stay unavailable with ErrNotMeasured.
//
// The returned Table has N = 0, since benchmark names do not carry the
// matrix dimension.
func ImportBenchmarks(r io.Reader) (*Table, error) {
	set, err := parse.ParseSet(r)
	if err != nil {
		return nil, fmt.Errorf("sweep: parsing benchmarks: %w", err)
	}

	samples := make(map[tilebench.Configuration][]float64)
	for name, runs := range set {
		m := benchName.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		threads, _ := strconv.Atoi(m[1])
		block, _ := strconv.Atoi(m[2])
		cfg := tilebench.Configuration{Threads: threads, BlockSize: block}
		if threads < 1 || block < 1 {
			return nil, fmt.Errorf("%w: benchmark %s", tilebench.ErrInvalidConfiguration, name)
		}
		for _, run := range runs {
			samples[cfg] = append(samples[cfg], run.NsPerOp/1e9)
		}
	}
	if len(samples) == 0 {
		return nil, ErrNoBenchmarks
	}

	configs := lo.Keys(samples)
	threads := lo.Uniq(lo.Map(configs, func(c tilebench.Configuration, _ int) int { return c.Threads }))
	blocks := lo.Uniq(lo.Map(configs, func(c tilebench.Configuration, _ int) int { return c.BlockSize }))
	slices.Sort(threads)
	slices.Sort(blocks)
	trials := lo.Max(lo.Map(lo.Values(samples), func(s []float64, _ int) int { return len(s) }))

	table := NewTable(0, trials, threads, blocks)
	for cfg, secs := range samples {
		if err := table.begin(cfg); err != nil {
			return nil, err
		}
		for _, s := range secs {
			if err := table.Record(cfg, s, 0); err != nil {
				return nil, err
			}
		}
	}
	return table, nil
}
