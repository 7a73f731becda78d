// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-tilebench/tilebench/matrix"
	"github.com/ajroetker/go-tilebench/tilebench/workerpool"
)

func TestChecksum(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	m, err := matrix.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	require.NoError(t, err)

	require.Equal(t, 45.0, Checksum(nil, 1, m))
	require.Equal(t, 45.0, Checksum(pool, 2, m))
	require.Equal(t, 45.0, Checksum(pool, 4, m))
}

func TestChecksumReproducible(t *testing.T) {
	pool := workerpool.New(8)
	defer pool.Close()

	a, b := randomPair(t, 64)
	c := mustDense(t, 64)
	require.NoError(t, TiledMultiply(a, b, c, Options{Threads: 8, BlockSize: 8, Pool: pool}))

	first := Checksum(pool, 8, c)
	for range 5 {
		require.Equal(t, first, Checksum(pool, 8, c))
	}
	require.InEpsilon(t, Checksum(nil, 1, c), first, 1e-12)
}
