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

package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-tilebench/tilebench"
	"github.com/ajroetker/go-tilebench/tilebench/matmul"
	"github.com/ajroetker/go-tilebench/tilebench/matrix"
)

// fakeClock only moves when advanced.
type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration { return c.now }

// timedKernel runs the real kernel and advances clock by cost(opts).
func timedKernel(clock *fakeClock, cost func(matmul.Options) time.Duration) Kernel {
	return func(a, b, c *matrix.Dense, opts matmul.Options) error {
		if err := matmul.TiledMultiply(a, b, c, opts); err != nil {
			return err
		}
		clock.now += cost(opts)
		return nil
	}
}

// amdahl is a cost model where a tenth of the work is serial.
func amdahl(opts matmul.Options) time.Duration {
	base := time.Duration(opts.BlockSize) * time.Second
	return base/10 + (base*9/10)/time.Duration(opts.Threads)
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.N = 16
	cfg.ThreadCounts = []int{1, 2, 4}
	cfg.BlockSizes = []int{2, 4, 16}
	cfg.Trials = 3
	return cfg
}

func TestRunSweep(t *testing.T) {
	clock := &fakeClock{}
	cfg := smallConfig()
	cfg.Verify = true

	d, err := NewDriver(cfg, WithClock(clock), WithKernel(timedKernel(clock, amdahl)))
	require.NoError(t, err)

	table, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tilebench.StateMeasured, d.Tracker().State())
	assert.Equal(t, 9, table.Available())
	assert.Equal(t, 16, table.N)

	var checksum float64
	for i, r := range table.Results() {
		require.True(t, r.Available(), "%s", r.Config)
		require.Len(t, r.Samples, 3)
		want := amdahl(matmul.Options{Threads: r.Config.Threads, BlockSize: r.Config.BlockSize}).Seconds()
		assert.InDelta(t, want, r.Mean, 1e-12, "%s", r.Config)
		assert.InDelta(t, 0, r.StdDev(), 1e-12)

		// Same inputs every trial and a deterministic kernel.
		if i == 0 {
			checksum = r.Checksum
		}
		assert.Equal(t, checksum, r.Checksum, "%s", r.Config)
	}
}

func TestRunHostClock(t *testing.T) {
	cfg := smallConfig()
	cfg.N = 8
	cfg.BlockSizes = []int{2, 8}
	cfg.Trials = 2

	d, err := NewDriver(cfg)
	require.NoError(t, err)
	table, err := d.Run(context.Background())
	require.NoError(t, err)
	for _, r := range table.Results() {
		require.True(t, r.Available())
		assert.GreaterOrEqual(t, r.Mean, 0.0)
	}
}

func TestRunReusePool(t *testing.T) {
	clock := &fakeClock{}
	cfg := smallConfig()
	cfg.ReusePool = true
	cfg.Schedule = matmul.ScheduleStatic

	var seen []int
	kernel := func(a, b, c *matrix.Dense, opts matmul.Options) error {
		require.NotNil(t, opts.Pool)
		require.Equal(t, 4, opts.Pool.NumWorkers())
		require.Equal(t, matmul.ScheduleStatic, opts.Schedule)
		seen = append(seen, opts.Threads)
		return matmul.TiledMultiply(a, b, c, opts)
	}
	d, err := NewDriver(cfg, WithClock(clock), WithKernel(kernel))
	require.NoError(t, err)
	table, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, table.Available())
	assert.Len(t, seen, 27)
}

func TestRunVaryingSeed(t *testing.T) {
	clock := &fakeClock{}
	cfg := smallConfig()
	cfg.FixedSeed = false
	cfg.ThreadCounts = []int{1}
	cfg.BlockSizes = []int{4}

	var firsts []float64
	kernel := func(a, b, c *matrix.Dense, opts matmul.Options) error {
		firsts = append(firsts, a.Data[0])
		return matmul.TiledMultiply(a, b, c, opts)
	}
	d, err := NewDriver(cfg, WithClock(clock), WithKernel(kernel))
	require.NoError(t, err)
	_, err = d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, firsts, 3)
	assert.NotEqual(t, firsts[0], firsts[1])
	assert.NotEqual(t, firsts[1], firsts[2])
}

var errBoom = errors.New("boom")

// failingKernel fails every configuration with two threads.
func failingKernel(clock *fakeClock) Kernel {
	inner := timedKernel(clock, amdahl)
	return func(a, b, c *matrix.Dense, opts matmul.Options) error {
		if opts.Threads == 2 {
			return errBoom
		}
		return inner(a, b, c, opts)
	}
}

func TestRunResilient(t *testing.T) {
	clock := &fakeClock{}
	d, err := NewDriver(smallConfig(), WithClock(clock), WithKernel(failingKernel(clock)))
	require.NoError(t, err)

	table, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tilebench.StateMeasured, d.Tracker().State())
	assert.Equal(t, 6, table.Available())

	for _, block := range []int{2, 4, 16} {
		r := table.Result(2, block)
		require.False(t, r.Available())
		require.ErrorIs(t, r.Err, errBoom)
		var f *tilebench.Failure
		require.ErrorAs(t, r.Err, &f)
		assert.Equal(t, tilebench.StateComputing, f.State)
		assert.Equal(t, tilebench.Configuration{Threads: 2, BlockSize: block}, f.Config)
		require.True(t, table.Result(1, block).Available())
		require.True(t, table.Result(4, block).Available())
	}
}

func TestRunStrict(t *testing.T) {
	clock := &fakeClock{}
	cfg := smallConfig()
	cfg.Policy = PolicyStrict
	d, err := NewDriver(cfg, WithClock(clock), WithKernel(failingKernel(clock)))
	require.NoError(t, err)

	table, err := d.Run(context.Background())
	require.ErrorIs(t, err, errBoom)

	var f *tilebench.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, tilebench.StateComputing, f.State)
	assert.Equal(t, tilebench.Configuration{Threads: 2, BlockSize: 2}, f.Config)
	assert.Equal(t, tilebench.StateFailed, d.Tracker().State())

	// Only the first configuration ran.
	assert.Equal(t, 1, table.Available())
	assert.ErrorIs(t, table.Result(2, 2).Err, errBoom)
	assert.ErrorIs(t, table.Result(4, 2).Err, ErrNotMeasured)
}

func TestRunAllocationFailure(t *testing.T) {
	clock := &fakeClock{}
	cfg := smallConfig()
	cfg.MemoryLimit = 1

	d, err := NewDriver(cfg, WithClock(clock))
	require.NoError(t, err)
	table, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, table.Available())
	for _, r := range table.Results() {
		assert.ErrorIs(t, r.Err, tilebench.ErrAllocationFailure)
	}
	assert.Equal(t, tilebench.StateMeasured, d.Tracker().State())

	cfg.Policy = PolicyStrict
	d, err = NewDriver(cfg, WithClock(clock))
	require.NoError(t, err)
	_, err = d.Run(context.Background())
	var f *tilebench.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, tilebench.StateGenerating, f.State)
	assert.ErrorIs(t, err, tilebench.ErrAllocationFailure)
}

func TestRunCancelled(t *testing.T) {
	clock := &fakeClock{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	kernel := func(a, b, c *matrix.Dense, opts matmul.Options) error {
		calls++
		cancel()
		return matmul.TiledMultiply(a, b, c, opts)
	}
	d, err := NewDriver(smallConfig(), WithClock(clock), WithKernel(kernel))
	require.NoError(t, err)

	table, err := d.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "the kernel call in progress completes, nothing after it starts")
	assert.Equal(t, tilebench.StateFailed, d.Tracker().State())

	first := table.Result(1, 2)
	assert.Len(t, first.Samples, 1)
	assert.ErrorIs(t, first.Err, context.Canceled)
	assert.ErrorIs(t, table.Result(2, 2).Err, ErrNotMeasured)
}

func TestRunTwice(t *testing.T) {
	clock := &fakeClock{}
	cfg := smallConfig()
	cfg.Trials = 1
	d, err := NewDriver(cfg, WithClock(clock))
	require.NoError(t, err)
	_, err = d.Run(context.Background())
	require.NoError(t, err)

	_, err = d.Run(context.Background())
	require.ErrorIs(t, err, tilebench.ErrIllegalTransition)
}

func TestNewDriverInvalid(t *testing.T) {
	cfg := smallConfig()
	cfg.BlockSizes = []int{4, 32}
	_, err := NewDriver(cfg, WithClock(&fakeClock{}))
	require.ErrorIs(t, err, tilebench.ErrInvalidConfiguration)
}

func TestNewDriverBrokenClock(t *testing.T) {
	readings := []time.Duration{time.Second, 0}
	backwards := tilebench.ClockFunc(func() time.Duration {
		r := readings[0]
		readings = readings[1:]
		return r
	})
	_, err := NewDriver(smallConfig(), WithClock(backwards))
	require.ErrorIs(t, err, tilebench.ErrTimerUnavailable)
}

func TestRunResilientLogsState(t *testing.T) {
	clock := &fakeClock{}
	log, hook := test.NewNullLogger()
	d, err := NewDriver(smallConfig(), WithClock(clock), WithKernel(failingKernel(clock)), WithLogger(log))
	require.NoError(t, err)
	_, err = d.Run(context.Background())
	require.NoError(t, err)

	var warned int
	for _, e := range hook.AllEntries() {
		if e.Level != logrus.WarnLevel {
			continue
		}
		warned++
		assert.Equal(t, tilebench.StateComputing.String(), e.Data["state"])
		assert.Equal(t, 2, e.Data["threads"])
	}
	assert.Equal(t, 3, warned)
}

func TestRunClockFailsMidSweep(t *testing.T) {
	// Readings go backwards on the second trial of the first configuration.
	readings := []time.Duration{0, 1, 10, 20, 30, 25}
	clock := tilebench.ClockFunc(func() time.Duration {
		if len(readings) == 0 {
			return time.Hour
		}
		r := readings[0]
		readings = readings[1:]
		return r
	})
	d, err := NewDriver(smallConfig(), WithClock(clock))
	require.NoError(t, err)

	table, err := d.Run(context.Background())
	require.ErrorIs(t, err, tilebench.ErrTimerUnavailable)
	assert.Equal(t, tilebench.StateFailed, d.Tracker().State())

	first := table.Result(1, 2)
	assert.Len(t, first.Samples, 1)
	assert.ErrorIs(t, first.Err, tilebench.ErrTimerUnavailable)
	assert.ErrorIs(t, table.Result(2, 2).Err, ErrNotMeasured)
}

func TestRunKernelGetsZeroedOutput(t *testing.T) {
	clock := &fakeClock{}
	cfg := smallConfig()
	cfg.Verify = true
	kernel := func(a, b, c *matrix.Dense, opts matmul.Options) error {
		for _, v := range c.Data {
			require.Zero(t, v)
		}
		return matmul.TiledMultiply(a, b, c, opts)
	}
	d, err := NewDriver(cfg, WithClock(clock), WithKernel(kernel))
	require.NoError(t, err)
	table, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, table.Available())
}
