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

package matmul

import (
	"fmt"
	"strings"

	"github.com/ajroetker/go-tilebench/tilebench"
	"github.com/ajroetker/go-tilebench/tilebench/matrix"
	"github.com/ajroetker/go-tilebench/tilebench/workerpool"
)

// Schedule selects how output tiles are distributed to workers.
type Schedule int

const (
	// ScheduleDynamic hands tiles out on demand through an atomic counter.
	ScheduleDynamic Schedule = iota

	// ScheduleStatic gives each worker one contiguous, equal share of tiles.
	ScheduleStatic
)

// String returns "dynamic" or "static".
func (s Schedule) String() string {
	switch s {
	case ScheduleDynamic:
		return "dynamic"
	case ScheduleStatic:
		return "static"
	default:
		return "unknown"
	}
}

// ParseSchedule parses "dynamic" or "static" (case-insensitive).
func ParseSchedule(s string) (Schedule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dynamic", "":
		return ScheduleDynamic, nil
	case "static":
		return ScheduleStatic, nil
	}
	return 0, fmt.Errorf("%w: unknown schedule %q", tilebench.ErrInvalidConfiguration, s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Schedule) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Schedule) UnmarshalText(text []byte) error {
	v, err := ParseSchedule(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Options configures one TiledMultiply call.
type Options struct {
	// Threads is the number of workers, >= 1.
	Threads int

	// BlockSize is the tile edge, in [1, n].
	BlockSize int

	// Schedule selects on-demand (default) or static tile distribution.
	Schedule Schedule

	// Chunk is the number of tiles a worker grabs per request under
	// ScheduleDynamic. Zero means one.
	Chunk int

	// Pool, when set, is used instead of a per-call pool. It must have at
	// least Threads workers; the surplus stays parked for the call.
	Pool *workerpool.Pool
}

// Configuration returns the (threads, block size) pair of o.
func (o Options) Configuration() tilebench.Configuration {
	return tilebench.Configuration{Threads: o.Threads, BlockSize: o.BlockSize}
}

func validate(a, b, c *matrix.Dense, opts Options) error {
	if a == nil || b == nil || c == nil {
		return fmt.Errorf("%w: nil matrix", tilebench.ErrInvalidConfiguration)
	}
	n := a.N
	if b.N != n || c.N != n {
		return fmt.Errorf("%w: dimension mismatch A=%d B=%d C=%d",
			tilebench.ErrInvalidConfiguration, a.N, b.N, c.N)
	}
	if len(a.Data) != n*n || len(b.Data) != n*n || len(c.Data) != n*n {
		return fmt.Errorf("%w: storage does not match dimension %d", tilebench.ErrInvalidConfiguration, n)
	}
	if err := opts.Configuration().Validate(n); err != nil {
		return err
	}
	if opts.Chunk < 0 {
		return fmt.Errorf("%w: chunk %d < 0", tilebench.ErrInvalidConfiguration, opts.Chunk)
	}
	if opts.Pool != nil && opts.Pool.NumWorkers() < opts.Threads {
		return fmt.Errorf("%w: %s exceeds pool of %d workers",
			tilebench.ErrInvalidConfiguration, opts.Configuration(), opts.Pool.NumWorkers())
	}
	return nil
}

// NumTiles returns the number of tiles along one edge: ceil(n / block).
func NumTiles(n, block int) int {
	return (n + block - 1) / block
}

// TileOrigin returns the (ii, jj) offset of output tile t, where tiles are
// numbered row-major over a tilesPerEdge × tilesPerEdge grid.
func TileOrigin(t, tilesPerEdge, block int) (ii, jj int) {
	return (t / tilesPerEdge) * block, (t % tilesPerEdge) * block
}

// TiledMultiply accumulates A * B into C using block×block tiles spread
// over opts.Threads workers.
//
//   - A, B, C are n×n (row-major)
//   - C must be zero on entry for C = A * B; matrix.NewDense and
//     matrix.Factory.NewOutput return zeroed storage, and Dense.Zero clears
//     a reused one
//   - A and B are only read
//
// Invalid options are rejected with tilebench.ErrInvalidConfiguration before
// any work starts. Once started, the call always runs to completion.
//
// Every C element sums its k contributions in ascending k order whichever
// worker owns its tile, so C is bitwise identical for any thread count and
// schedule.
func TiledMultiply(a, b, c *matrix.Dense, opts Options) error {
	if err := validate(a, b, c, opts); err != nil {
		return err
	}

	n, block := a.N, opts.BlockSize
	tilesPerEdge := NumTiles(n, block)
	numTiles := tilesPerEdge * tilesPerEdge

	run := func(start, end int) {
		for t := start; t < end; t++ {
			ii, jj := TileOrigin(t, tilesPerEdge, block)
			multiplyTile(a.Data, b.Data, c.Data, n, block, ii, jj)
		}
	}

	// A single thread runs on the caller, like a one-thread parallel region.
	if opts.Threads == 1 {
		run(0, numTiles)
		return nil
	}

	pool := opts.Pool
	if pool == nil {
		pool = workerpool.New(opts.Threads)
		defer pool.Close()
	}

	switch opts.Schedule {
	case ScheduleStatic:
		pool.ParallelForN(opts.Threads, numTiles, func(_, start, end int) {
			run(start, end)
		})
	default:
		pool.ParallelForAtomicBatchedN(opts.Threads, numTiles, max(opts.Chunk, 1), func(_, start, end int) {
			run(start, end)
		})
	}
	return nil
}

// multiplyTile adds the contribution of every k-tile to output tile
// (ii, jj), in ascending k order. Upper bounds are clamped to n, so
// boundary tiles are simply smaller.
func multiplyTile(a, b, c []float64, n, block, ii, jj int) {
	iMax := min(ii+block, n)
	jMax := min(jj+block, n)

	for kk := 0; kk < n; kk += block {
		kMax := min(kk+block, n)
		for i := ii; i < iMax; i++ {
			aRow := a[i*n+kk : i*n+kMax]
			cRow := c[i*n+jj : i*n+jMax]
			for p, aik := range aRow {
				k := kk + p
				bRow := b[k*n+jj : k*n+jMax]
				for j, bkj := range bRow {
					cRow[j] += aik * bkj
				}
			}
		}
	}
}
