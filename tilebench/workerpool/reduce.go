// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

// Reduce computes a parallel reduction over [0, n) with at most workers
// workers. Each worker folds its contiguous chunk into a private partial
// starting from zero, and the partials are then combined pairwise in a
// tree, so there is a single join point and no lock.
//
// combine must be associative. With a fixed worker count the chunking and
// the combine order are fixed too, so floating-point results are
// reproducible run to run.
func Reduce[T any](p *Pool, workers, n int, zero T, fold func(acc T, start, end int) T, combine func(a, b T) T) T {
	if n <= 0 {
		return zero
	}
	workers = p.workersFor(workers, n)
	partials := make([]T, workers)
	for i := range partials {
		partials[i] = zero
	}

	p.ParallelForN(workers, n, func(slot, start, end int) {
		partials[slot] = fold(partials[slot], start, end)
	})

	return TreeCombine(partials, combine)
}

// TreeCombine combines values pairwise: (v0+v1)+(v2+v3)... in log2(len)
// rounds. It overwrites values and returns the combined result. An empty
// slice returns the zero T.
func TreeCombine[T any](values []T, combine func(a, b T) T) T {
	if len(values) == 0 {
		var zero T
		return zero
	}
	for stride := 1; stride < len(values); stride *= 2 {
		for i := 0; i+stride < len(values); i += 2 * stride {
			values[i] = combine(values[i], values[i+stride])
		}
	}
	return values[0]
}
