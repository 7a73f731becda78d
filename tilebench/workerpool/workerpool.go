// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent, reusable worker pool for parallel
// computation. A Pool is created once and reused across many operations,
// and every operation states explicitly how many of the pool's workers it
// may use, so a pool sized for the largest thread count can run a smaller
// configuration with the remaining workers parked.
//
// Usage:
//
//	pool := workerpool.New(16)
//	defer pool.Close()
//
//	// Hand out tiles on demand to 4 of the 16 workers.
//	pool.ParallelForAtomicN(4, numTiles, func(worker, tile int) {
//	    computeTile(tile)
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Pool is a persistent worker pool that can be reused across many parallel
// operations. Workers are spawned once at creation and reused.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool

	// tasks[w] counts the work items run by worker goroutine w. Each counter
	// sits on its own cache line so the bookkeeping does not add false
	// sharing to the timings it is meant to explain.
	tasks []paddedCounter
	calls atomic.Int64
}

type paddedCounter struct {
	n atomic.Int64
	_ cpu.CacheLinePad
}

// workItem represents one worker slot of a single parallel operation.
type workItem struct {
	fn      func(slot int)
	slot    int
	barrier *sync.WaitGroup
}

// New creates a new worker pool with the specified number of workers.
// Workers are spawned immediately and persist until Close is called.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		// Buffer enough for all workers to have pending work
		workC: make(chan workItem, numWorkers*2),
		tasks: make([]paddedCounter, numWorkers),
	}

	// Spawn persistent workers
	for id := range numWorkers {
		go p.worker(id)
	}

	return p
}

// worker is the main loop for each persistent worker goroutine. Idle
// workers block on the channel receive and consume no CPU.
func (p *Pool) worker(id int) {
	for item := range p.workC {
		p.tasks[id].n.Add(1)
		item.fn(item.slot)
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the worker pool. All pending work will complete.
// Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// workersFor clamps a requested worker count to [1, min(pool size, n)].
func (p *Pool) workersFor(workers, n int) int {
	if workers <= 0 || workers > p.numWorkers {
		workers = p.numWorkers
	}
	return max(1, min(workers, n))
}

// dispatch sends one item per slot and blocks until all of them ran.
func (p *Pool) dispatch(slots int, fn func(slot int)) {
	p.calls.Add(1)
	var wg sync.WaitGroup
	wg.Add(slots)
	for slot := range slots {
		p.workC <- workItem{fn: fn, slot: slot, barrier: &wg}
	}
	wg.Wait()
}

// ParallelFor executes fn for each index in [0, n) using every worker.
// Each worker processes one contiguous range of indices.
// Blocks until all work completes.
//
// fn receives (start, end) indices where work should process [start, end).
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	p.ParallelForN(p.numWorkers, n, func(_, start, end int) { fn(start, end) })
}

// ParallelForN is ParallelFor restricted to at most workers workers. This
// is a static, equal split: worker s gets the s-th contiguous chunk.
//
// fn receives the worker slot in [0, workers) and the range [start, end).
func (p *Pool) ParallelForN(workers, n int, fn func(slot, start, end int)) {
	if n <= 0 {
		return
	}

	workers = p.workersFor(workers, n)

	// Fallback to sequential if pool is closed or only one worker is asked for
	if workers == 1 || p.closed.Load() {
		fn(0, 0, n)
		return
	}

	// Calculate chunk size (ensure all items are covered)
	chunkSize := (n + workers - 1) / workers

	p.dispatch(workers, func(slot int) {
		start := slot * chunkSize
		if start >= n {
			// No work for this worker
			return
		}
		fn(slot, start, min(start+chunkSize, n))
	})
}

// ParallelForAtomic executes fn for each index in [0, n) using atomic work
// stealing. This provides better load balancing when work per item varies.
// Blocks until all work completes.
//
// fn receives the index to process.
func (p *Pool) ParallelForAtomic(n int, fn func(i int)) {
	p.ParallelForAtomicN(p.numWorkers, n, func(_, i int) { fn(i) })
}

// ParallelForAtomicN is ParallelForAtomic restricted to at most workers
// workers. Indices are handed out one at a time, on demand.
//
// fn receives the worker slot in [0, workers) and the index to process.
func (p *Pool) ParallelForAtomicN(workers, n int, fn func(slot, i int)) {
	p.ParallelForAtomicBatchedN(workers, n, 1, func(slot, start, end int) {
		for i := start; i < end; i++ {
			fn(slot, i)
		}
	})
}

// ParallelForAtomicBatched executes fn for batches of indices using atomic
// work stealing. Combines the load balancing of atomic distribution with
// reduced atomic operation overhead by processing multiple items per grab.
//
// fn receives (start, end) indices where work should process [start, end).
// batchSize controls how many items are grabbed per atomic operation.
func (p *Pool) ParallelForAtomicBatched(n int, batchSize int, fn func(start, end int)) {
	p.ParallelForAtomicBatchedN(p.numWorkers, n, batchSize, func(_, start, end int) { fn(start, end) })
}

// ParallelForAtomicBatchedN is ParallelForAtomicBatched restricted to at
// most workers workers.
func (p *Pool) ParallelForAtomicBatchedN(workers, n, batchSize int, fn func(slot, start, end int)) {
	if n <= 0 {
		return
	}

	if batchSize <= 0 {
		batchSize = 1
	}

	// Calculate number of batches
	numBatches := (n + batchSize - 1) / batchSize
	workers = p.workersFor(workers, numBatches)

	if workers == 1 || p.closed.Load() {
		fn(0, 0, n)
		return
	}

	var nextBatch atomic.Int64
	p.dispatch(workers, func(slot int) {
		for {
			batch := int(nextBatch.Add(1)) - 1
			start := batch * batchSize
			if start >= n {
				return
			}
			fn(slot, start, min(start+batchSize, n))
		}
	})
}

// Stats is a snapshot of the pool's bookkeeping.
type Stats struct {
	// Calls is the number of parallel operations dispatched to workers.
	// Operations that ran inline on the caller are not counted.
	Calls int64

	// Tasks holds, per worker goroutine, the number of work items it ran.
	Tasks []int64
}

// Busy returns the number of worker goroutines that ran at least one item.
func (s Stats) Busy() int {
	busy := 0
	for _, n := range s.Tasks {
		if n > 0 {
			busy++
		}
	}
	return busy
}

// Sub returns the per-worker difference s - prev, for measuring one call.
func (s Stats) Sub(prev Stats) Stats {
	d := Stats{Calls: s.Calls - prev.Calls, Tasks: make([]int64, len(s.Tasks))}
	for i := range s.Tasks {
		d.Tasks[i] = s.Tasks[i]
		if i < len(prev.Tasks) {
			d.Tasks[i] -= prev.Tasks[i]
		}
	}
	return d
}

// Stats returns a snapshot of the pool's counters. Take one before and one
// after an operation and Sub them to verify which workers took part.
func (p *Pool) Stats() Stats {
	s := Stats{Calls: p.calls.Load(), Tasks: make([]int64, len(p.tasks))}
	for i := range p.tasks {
		s.Tasks[i] = p.tasks[i].n.Load()
	}
	return s
}
