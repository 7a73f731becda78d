// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package sweep

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const benchOutput = `goos: linux
goarch: amd64
pkg: github.com/ajroetker/go-tilebench/tilebench/matmul
BenchmarkTiledMultiply/threads=1/block=4-8         	      10	 200000000 ns/op	 157.29 MB/s
BenchmarkTiledMultiply/threads=1/block=4-8         	      10	 220000000 ns/op	 142.99 MB/s
BenchmarkTiledMultiply/threads=2/block=4-8         	      20	 100000000 ns/op	 314.57 MB/s
BenchmarkTiledMultiply/threads=2/block=4-8         	      20	 120000000 ns/op	 262.14 MB/s
BenchmarkTiledMultiply/threads=1/block=8-8         	      10	 150000000 ns/op	 209.72 MB/s
BenchmarkNaiveMultiply-8                           	       5	 900000000 ns/op
PASS
ok  	github.com/ajroetker/go-tilebench/tilebench/matmul	12.345s
`

func TestImportBenchmarks(t *testing.T) {
	table, err := ImportBenchmarks(strings.NewReader(benchOutput))
	require.NoError(t, err)

	assert.Zero(t, table.N)
	assert.Equal(t, 2, table.Trials)
	assert.Equal(t, []int{1, 2}, table.ThreadCounts())
	assert.Equal(t, []int{4, 8}, table.BlockSizes())
	assert.Equal(t, 3, table.Available())

	r := table.Result(1, 4)
	require.True(t, r.Available())
	assert.Equal(t, []float64{0.2, 0.22}, r.Samples)
	assert.InDelta(t, 0.21, r.Mean, 1e-12)

	assert.InDelta(t, 0.11, table.Result(2, 4).Mean, 1e-12)
	assert.InDelta(t, 0.15, table.Result(1, 8).Mean, 1e-12)

	// threads=2/block=8 was not part of the run.
	missing := table.Result(2, 8)
	require.NotNil(t, missing)
	assert.ErrorIs(t, missing.Err, ErrNotMeasured)
}

func TestImportBenchmarksEmpty(t *testing.T) {
	_, err := ImportBenchmarks(strings.NewReader("BenchmarkNaiveMultiply-8  5  900000000 ns/op\n"))
	require.ErrorIs(t, err, ErrNoBenchmarks)
}
