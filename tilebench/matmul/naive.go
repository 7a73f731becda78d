// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"fmt"

	"github.com/ajroetker/go-tilebench/tilebench"
	"github.com/ajroetker/go-tilebench/tilebench/matrix"
)

// NaiveMultiply computes C = A * B with the textbook i, j, k triple loop.
// It is the reference the tiled kernel is tested against.
func NaiveMultiply(a, b, c *matrix.Dense) error {
	if a == nil || b == nil || c == nil {
		return fmt.Errorf("%w: nil matrix", tilebench.ErrInvalidConfiguration)
	}
	n := a.N
	if b.N != n || c.N != n {
		return fmt.Errorf("%w: dimension mismatch A=%d B=%d C=%d",
			tilebench.ErrInvalidConfiguration, a.N, b.N, c.N)
	}
	for i := range n {
		for j := range n {
			var sum float64
			for k := range n {
				sum += a.Data[i*n+k] * b.Data[k*n+j]
			}
			c.Data[i*n+j] = sum
		}
	}
	return nil
}
