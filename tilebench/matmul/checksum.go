// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"github.com/ajroetker/go-tilebench/tilebench/matrix"
	"github.com/ajroetker/go-tilebench/tilebench/workerpool"
)

// Checksum returns the sum of all elements of c, computed by up to threads
// workers of pool. Each worker sums a contiguous band of rows and the
// partial sums are tree-combined, so the value is reproducible for a given
// thread count. A nil pool sums on the caller.
//
// Sweeps log it per trial: equal inputs must give equal checksums, and it
// keeps the product observable.
func Checksum(pool *workerpool.Pool, threads int, c *matrix.Dense) float64 {
	sumRows := func(acc float64, start, end int) float64 {
		for _, v := range c.Data[start*c.N : end*c.N] {
			acc += v
		}
		return acc
	}
	if pool == nil || threads <= 1 {
		return sumRows(0, 0, c.N)
	}
	return workerpool.Reduce(pool, threads, c.N, 0.0, sumRows,
		func(x, y float64) float64 { return x + y })
}
