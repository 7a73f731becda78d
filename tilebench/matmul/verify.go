// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/ajroetker/go-tilebench/tilebench"
	"github.com/ajroetker/go-tilebench/tilebench/matrix"
)

// DefaultTolerance is the relative tolerance used when verifying results.
const DefaultTolerance = 1e-9

// ErrVerification is returned when a product differs from the reference.
var ErrVerification = errors.New("matmul: result does not match reference")

// Mismatch describes the worst element found by Verify.
type Mismatch struct {
	Row, Col  int
	Got, Want float64
}

// Reference computes A * B with gonum's BLAS-backed mat.Dense.Mul.
// A and B are wrapped without copying and are not modified.
func Reference(a, b *matrix.Dense) (*matrix.Dense, error) {
	if a == nil || b == nil || a.N != b.N {
		return nil, fmt.Errorf("%w: reference needs two matrices of equal dimension", tilebench.ErrInvalidConfiguration)
	}
	n := a.N
	am := mat.NewDense(n, n, a.Data)
	bm := mat.NewDense(n, n, b.Data)

	out, err := matrix.NewDense(n)
	if err != nil {
		return nil, err
	}
	cm := mat.NewDense(n, n, out.Data)
	cm.Mul(am, bm)
	return out, nil
}

// Verify checks c against the gonum reference product of a and b, using
// relative tolerance tol (absolute for elements near zero). On failure the
// error wraps ErrVerification and names the worst element.
func Verify(a, b, c *matrix.Dense, tol float64) error {
	if c == nil {
		return fmt.Errorf("%w: nil matrix", tilebench.ErrInvalidConfiguration)
	}
	want, err := Reference(a, b)
	if err != nil {
		return err
	}
	if c.N != want.N {
		return fmt.Errorf("%w: dimension %d, want %d", tilebench.ErrInvalidConfiguration, c.N, want.N)
	}
	if m, ok := Compare(c, want, tol); !ok {
		return fmt.Errorf("%w: C[%d][%d] = %v, want %v (tol %g)",
			ErrVerification, m.Row, m.Col, m.Got, m.Want, tol)
	}
	return nil
}

// Compare reports whether got and want agree element-wise within tol and,
// when they do not, the element with the largest absolute difference.
func Compare(got, want *matrix.Dense, tol float64) (Mismatch, bool) {
	var worst Mismatch
	worstDiff := -1.0
	ok := true
	for idx, w := range want.Data {
		g := got.Data[idx]
		if scalar.EqualWithinAbsOrRel(g, w, tol, tol) {
			continue
		}
		ok = false
		if d := math.Abs(g - w); d > worstDiff || math.IsNaN(d) {
			worstDiff = d
			worst = Mismatch{Row: idx / want.N, Col: idx % want.N, Got: g, Want: w}
		}
	}
	return worst, ok
}
