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

// Package matrix provides the square float64 matrices fed to the tiled
// kernel and the factory that fills them for each benchmark trial.
//
// Matrices are stored row-major in a single flat slice: element (i, j)
// lives at Data[i*N+j], so a row is a contiguous run of N values.
package matrix

import (
	"fmt"
	"math"
	"runtime"

	"github.com/ajroetker/go-tilebench/tilebench"
)

// Dense is an N×N row-major matrix of float64.
type Dense struct {
	N    int
	Data []float64
}

// NewDense allocates a zeroed n×n matrix. An allocation the runtime refuses
// (size overflow) is reported as tilebench.ErrAllocationFailure instead of a
// panic.
func NewDense(n int) (m *Dense, err error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: dimension %d < 1", tilebench.ErrInvalidConfiguration, n)
	}
	if n > maxDimension {
		return nil, fmt.Errorf("%w: %d×%d float64 elements overflow", tilebench.ErrAllocationFailure, n, n)
	}
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(runtime.Error); ok {
				m, err = nil, fmt.Errorf("%w: %d×%d: %v", tilebench.ErrAllocationFailure, n, n, re)
				return
			}
			panic(r)
		}
	}()
	return &Dense{N: n, Data: make([]float64, n*n)}, nil
}

// FromRows builds a matrix from a square slice of rows. It is meant for
// tests and small examples.
func FromRows(rows [][]float64) (*Dense, error) {
	m, err := NewDense(len(rows))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != m.N {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d",
				tilebench.ErrInvalidConfiguration, i, len(row), m.N)
		}
		copy(m.Row(i), row)
	}
	return m, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) (*Dense, error) {
	m, err := NewDense(n)
	if err != nil {
		return nil, err
	}
	for i := range n {
		m.Data[i*n+i] = 1
	}
	return m, nil
}

// At returns element (i, j). It panics on out-of-range indices, like slice
// indexing.
func (m *Dense) At(i, j int) float64 { return m.Data[i*m.N+j] }

// Set stores v at (i, j).
func (m *Dense) Set(i, j int, v float64) { m.Data[i*m.N+j] = v }

// Row returns row i as a slice sharing the matrix storage.
func (m *Dense) Row(i int) []float64 { return m.Data[i*m.N : (i+1)*m.N] }

// Zero clears every element.
func (m *Dense) Zero() { clear(m.Data) }

// Bytes is the storage footprint of the matrix.
func (m *Dense) Bytes() uint64 { return BytesFor(m.N) }

// Equal reports whether m and o have the same dimension and bitwise
// identical elements.
func (m *Dense) Equal(o *Dense) bool {
	if m.N != o.N {
		return false
	}
	for i, v := range m.Data {
		if v != o.Data[i] {
			return false
		}
	}
	return true
}

// Rows copies the matrix into a slice of rows.
func (m *Dense) Rows() [][]float64 {
	rows := make([][]float64, m.N)
	for i := range rows {
		rows[i] = append([]float64(nil), m.Row(i)...)
	}
	return rows
}

// elementSize is the size of one float64 in bytes.
const elementSize = 8

// maxDimension bounds n so that n*n*elementSize cannot overflow an int.
var maxDimension = int(math.Sqrt(float64(math.MaxInt/elementSize))) - 1

// BytesFor returns the storage footprint of one n×n matrix.
func BytesFor(n int) uint64 {
	return uint64(n) * uint64(n) * elementSize
}
