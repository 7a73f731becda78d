// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package sweep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-tilebench/tilebench"
)

func TestResultStatistics(t *testing.T) {
	var r Result
	for _, s := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		r.add(s)
	}
	assert.True(t, r.Available())
	assert.InDelta(t, 5.0, r.Mean, 1e-12)
	assert.Equal(t, 2.0, r.Min())
	// Sample (n-1) standard deviation.
	assert.InDelta(t, math.Sqrt(32.0/7), r.StdDev(), 1e-12)

	var one Result
	one.add(3)
	assert.Equal(t, 3.0, one.Mean)
	assert.Zero(t, one.StdDev())

	var empty Result
	assert.False(t, empty.Available())
	assert.Zero(t, empty.Min())
}

func TestTable(t *testing.T) {
	table := NewTable(8, 2, []int{4, 1, 2}, []int{8, 2})
	assert.Equal(t, []int{1, 2, 4}, table.ThreadCounts())
	assert.Equal(t, []int{2, 8}, table.BlockSizes())
	assert.Zero(t, table.Available())
	assert.Nil(t, table.Result(3, 2))

	cfg := tilebench.Configuration{Threads: 2, BlockSize: 8}
	require.NoError(t, table.begin(cfg))
	require.NoError(t, table.Record(cfg, 1.5, 10))
	require.NoError(t, table.Record(cfg, 2.5, 11))

	r := table.Result(2, 8)
	assert.True(t, r.Available())
	assert.Equal(t, 2.0, r.Mean)
	assert.Equal(t, 11.0, r.Checksum)
	assert.Equal(t, 1, table.Available())
	assert.ErrorIs(t, table.Result(1, 8).Err, ErrNotMeasured)

	require.NoError(t, table.MarkUnavailable(cfg, tilebench.ErrAllocationFailure))
	assert.False(t, r.Available())
	assert.Len(t, r.Samples, 2)

	outside := tilebench.Configuration{Threads: 3, BlockSize: 8}
	require.ErrorIs(t, table.Record(outside, 1, 0), tilebench.ErrInvalidConfiguration)

	var order []tilebench.Configuration
	for _, r := range table.Results() {
		order = append(order, r.Config)
	}
	assert.Equal(t, []tilebench.Configuration{
		{Threads: 1, BlockSize: 2}, {Threads: 2, BlockSize: 2}, {Threads: 4, BlockSize: 2},
		{Threads: 1, BlockSize: 8}, {Threads: 2, BlockSize: 8}, {Threads: 4, BlockSize: 8},
	}, order)
}
