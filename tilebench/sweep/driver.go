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
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ajroetker/go-tilebench/tilebench"
	"github.com/ajroetker/go-tilebench/tilebench/matmul"
	"github.com/ajroetker/go-tilebench/tilebench/matrix"
	"github.com/ajroetker/go-tilebench/tilebench/workerpool"
)

// Kernel is the multiplication being timed. matmul.TiledMultiply is the
// default.
type Kernel func(a, b, c *matrix.Dense, opts matmul.Options) error

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the progress logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Driver) { d.log = log }
}

// WithClock replaces the host monotonic clock.
func WithClock(c tilebench.Clock) Option {
	return func(d *Driver) { d.clock = c }
}

// WithSource replaces the factory's uniform generator.
func WithSource(src matrix.Source) Option {
	return func(d *Driver) { d.factory.Source = src }
}

// WithKernel replaces the timed kernel.
func WithKernel(k Kernel) Option {
	return func(d *Driver) { d.kernel = k }
}

// WithTracker makes the driver report its progress to t, which must be in
// StateIdle.
func WithTracker(t *tilebench.Tracker) Option {
	return func(d *Driver) { d.tracker = t }
}

// Driver runs a sweep.
type Driver struct {
	cfg     Config
	log     logrus.FieldLogger
	clock   tilebench.Clock
	factory *matrix.Factory
	kernel  Kernel
	tracker *tilebench.Tracker
}

// NewDriver validates cfg and probes the clock. Every configuration is
// checked here, so a sweep never starts with an invalid one. A clock that
// cannot be read fails with tilebench.ErrTimerUnavailable.
func NewDriver(cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	factory, err := matrix.NewFactory(cfg.N, cfg.Seed, cfg.FixedSeed)
	if err != nil {
		return nil, err
	}
	factory.Limit = cfg.MemoryLimit

	d := &Driver{
		cfg:     cfg,
		factory: factory,
		kernel:  matmul.TiledMultiply,
		tracker: tilebench.NewTracker(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.log = l
	}
	if d.clock == nil {
		if d.clock, err = tilebench.MonotonicClock(); err != nil {
			return nil, err
		}
	} else if err := tilebench.ProbeClock(d.clock); err != nil {
		return nil, err
	}
	return d, nil
}

// Config returns the sweep configuration.
func (d *Driver) Config() Config { return d.cfg }

// Tracker returns the pipeline tracker the driver reports to.
func (d *Driver) Tracker() *tilebench.Tracker { return d.tracker }

// Run times every configuration and returns the table, leaving the tracker
// in StateMeasured.
//
// A failing configuration is marked unavailable with a *tilebench.Failure
// naming the state it failed in. Under PolicyStrict it also stops the
// sweep and is returned; a clock failure stops the sweep under either
// policy. Cancelling ctx stops the sweep
// between two trials and returns the partial table with ctx.Err(); a kernel
// call in progress always completes.
func (d *Driver) Run(ctx context.Context) (*Table, error) {
	cfg := d.cfg
	table := NewTable(cfg.N, cfg.Trials, cfg.ThreadCounts, cfg.BlockSizes)

	var pool *workerpool.Pool
	if cfg.ReusePool {
		pool = workerpool.New(cfg.MaxThreads())
		defer pool.Close()
	}

	d.log.WithFields(logrus.Fields{
		"n":          cfg.N,
		"threads":    cfg.ThreadCounts,
		"blocks":     cfg.BlockSizes,
		"trials":     cfg.Trials,
		"policy":     cfg.Policy,
		"schedule":   cfg.Schedule,
		"reuse_pool": cfg.ReusePool,
	}).Info("Starting sweep")

	for _, c := range cfg.Configurations() {
		err := d.runConfiguration(ctx, table, c, pool)
		if err == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			_ = table.MarkUnavailable(c, d.tracker.Fail(c, ctxErr))
			d.log.WithError(ctxErr).Warn("Sweep cancelled")
			return table, ctxErr
		}
		failure := &tilebench.Failure{State: d.tracker.State(), Config: c, Err: err}
		_ = table.MarkUnavailable(c, failure)
		if fatal(err) || cfg.Policy == PolicyStrict {
			return table, d.tracker.Fail(c, failure)
		}
		d.log.WithError(err).WithFields(logrus.Fields{
			"threads": c.Threads,
			"block":   c.BlockSize,
			"state":   failure.State.String(),
		}).Warn("Configuration unavailable, continuing")
	}

	if err := d.tracker.Transition(tilebench.StateMeasured); err != nil {
		return table, d.tracker.Fail(tilebench.Configuration{}, err)
	}
	d.log.WithField("available", table.Available()).Info("Sweep measured")
	return table, nil
}

// fatal reports errors that stop the sweep whatever the policy: the
// pipeline is out of order, or no later timing can be trusted.
func fatal(err error) bool {
	return errors.Is(err, tilebench.ErrIllegalTransition) || errors.Is(err, tilebench.ErrTimerUnavailable)
}

// runConfiguration times cfg.Trials trials of one configuration.
func (d *Driver) runConfiguration(ctx context.Context, table *Table, c tilebench.Configuration, pool *workerpool.Pool) error {
	if err := table.begin(c); err != nil {
		return err
	}
	opts := matmul.Options{
		Threads:   c.Threads,
		BlockSize: c.BlockSize,
		Schedule:  d.cfg.Schedule,
		Chunk:     d.cfg.Chunk,
		Pool:      pool,
	}

	for trial := range d.cfg.Trials {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := d.tracker.Transition(tilebench.StateGenerating); err != nil {
			return err
		}
		tr, err := d.factory.NewTrial()
		if err != nil {
			return err
		}

		if err := d.tracker.Transition(tilebench.StateComputing); err != nil {
			return err
		}
		start := d.clock.Now()
		err = d.kernel(tr.A, tr.B, tr.C, opts)
		end := d.clock.Now()
		if err != nil {
			return err
		}
		elapsed, err := tilebench.Elapsed(d.clock, start, end)
		if err != nil {
			return err
		}

		if d.cfg.Verify && trial == 0 {
			if err := matmul.Verify(tr.A, tr.B, tr.C, matmul.DefaultTolerance); err != nil {
				return err
			}
		}

		seconds := elapsed.Seconds()
		sum := matmul.Checksum(pool, c.Threads, tr.C)
		if err := table.Record(c, seconds, sum); err != nil {
			return err
		}
		d.log.WithFields(logrus.Fields{
			"threads":  c.Threads,
			"block":    c.BlockSize,
			"trial":    trial + 1,
			"seconds":  seconds,
			"checksum": sum,
		}).Debug("Trial done")
	}

	r := table.Result(c.Threads, c.BlockSize)
	d.log.WithFields(logrus.Fields{
		"threads": c.Threads,
		"block":   c.BlockSize,
		"seconds": r.Mean,
		"stddev":  r.StdDev(),
	}).Infof("Measured %s", c)
	return nil
}
