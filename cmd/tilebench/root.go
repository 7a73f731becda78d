// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajroetker/go-tilebench/tilebench"
	"github.com/ajroetker/go-tilebench/tilebench/matmul"
	"github.com/ajroetker/go-tilebench/tilebench/metrics"
	"github.com/ajroetker/go-tilebench/tilebench/report"
	"github.com/ajroetker/go-tilebench/tilebench/sweep"
)

// options holds the command-line flags.
type options struct {
	configPath  string
	n           int
	threads     []int
	blocks      []int
	trials      int
	seed        uint64
	fixedSeed   bool
	policy      string
	schedule    string
	chunk       int
	reusePool   bool
	verify      bool
	memoryLimit uint64
	out         string
	jsonPath    string
	logLevel    string
	logJSON     bool
}

func newRootCmd(log *logrus.Logger) (*cobra.Command, *options) {
	opts := &options{}
	def := sweep.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "tilebench",
		Short: "Sweep tiled matrix multiplication over thread counts and block sizes",
		Long: `tilebench times C = A * B with a tiled, thread-parallel kernel for every
(thread count, block size) pair, then reports speedup, efficiency and the
best block size of each thread count.

Without flags it runs the reference sweep: n=4096, threads 1,2,4,...,16,
block sizes 2,4,8,16,32 and 5 trials per configuration.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(log, opts, cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.sweepConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return runSweep(cmd.Context(), log, opts, cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML sweep configuration file")
	f.IntVar(&opts.n, "n", def.N, "matrix dimension")
	f.IntSliceVar(&opts.threads, "threads", def.ThreadCounts, "thread counts to sweep")
	f.IntSliceVar(&opts.blocks, "blocks", def.BlockSizes, "block sizes to sweep")
	f.IntVar(&opts.trials, "trials", def.Trials, "timed trials per configuration")
	f.Uint64Var(&opts.seed, "seed", def.Seed, "matrix generator seed")
	f.BoolVar(&opts.fixedSeed, "fixed-seed", def.FixedSeed, "use the same seed for every trial")
	f.StringVar(&opts.policy, "policy", def.Policy.String(), "failure policy: resilient or strict")
	f.StringVar(&opts.schedule, "schedule", def.Schedule.String(), "tile schedule: dynamic or static")
	f.IntVar(&opts.chunk, "chunk", def.Chunk, "tiles per request under the dynamic schedule (0 = 1)")
	f.BoolVar(&opts.reusePool, "reuse-pool", def.ReusePool, "share one worker pool across configurations")
	f.BoolVar(&opts.verify, "verify", def.Verify, "check the first trial of each configuration against a reference product")
	f.Uint64Var(&opts.memoryLimit, "memory-limit", def.MemoryLimit, "bytes one trial may allocate (0 = available memory)")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.out, "out", report.DefaultResultsFile, "CSV results file")
	pf.StringVar(&opts.jsonPath, "json", "", "also write a JSON report to this file")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.BoolVar(&opts.logJSON, "log-json", false, "log in JSON format")

	cmd.AddCommand(newImportCmd(log, opts))
	return cmd, opts
}

func setupLogging(log *logrus.Logger, opts *options, w io.Writer) error {
	level, err := logrus.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", tilebench.ErrInvalidConfiguration, err)
	}
	log.SetLevel(level)
	log.SetOutput(w)
	if opts.logJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}

// sweepConfig layers defaults, the YAML file, the environment and the flags
// that were set explicitly, in that order.
func (o *options) sweepConfig(flags *pflag.FlagSet) (sweep.Config, error) {
	cfg := sweep.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = sweep.LoadConfig(o.configPath); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	if flags.Changed("n") {
		cfg.N = o.n
	}
	if flags.Changed("threads") {
		cfg.ThreadCounts = o.threads
	}
	if flags.Changed("blocks") {
		cfg.BlockSizes = o.blocks
	}
	if flags.Changed("trials") {
		cfg.Trials = o.trials
	}
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("fixed-seed") {
		cfg.FixedSeed = o.fixedSeed
	}
	if flags.Changed("policy") {
		p, err := sweep.ParsePolicy(o.policy)
		if err != nil {
			return cfg, err
		}
		cfg.Policy = p
	}
	if flags.Changed("schedule") {
		s, err := matmul.ParseSchedule(o.schedule)
		if err != nil {
			return cfg, err
		}
		cfg.Schedule = s
	}
	if flags.Changed("chunk") {
		cfg.Chunk = o.chunk
	}
	if flags.Changed("reuse-pool") {
		cfg.ReusePool = o.reusePool
	}
	if flags.Changed("verify") {
		cfg.Verify = o.verify
	}
	if flags.Changed("memory-limit") {
		cfg.MemoryLimit = o.memoryLimit
	}
	return cfg, cfg.Validate()
}

func runSweep(ctx context.Context, log *logrus.Logger, opts *options, cfg sweep.Config, stdout io.Writer) error {
	platform := tilebench.DetectPlatform()
	log.WithFields(logrus.Fields{
		"os":       platform.OS,
		"arch":     platform.Arch,
		"cpus":     platform.NumCPU,
		"features": platform.Features,
	}).Info("Host")

	d, err := sweep.NewDriver(cfg, sweep.WithLogger(log))
	if err != nil {
		return err
	}
	table, err := d.Run(ctx)
	if err != nil {
		return err
	}
	return analyzeAndPublish(ctx, log, d.Tracker(), table, opts, platform, stdout)
}

// analyzeAndPublish takes a measured table through the Analyzed and
// Reported states.
func analyzeAndPublish(ctx context.Context, log logrus.FieldLogger, tracker *tilebench.Tracker,
	table *sweep.Table, opts *options, platform tilebench.Platform, stdout io.Writer) error {
	rep, err := metrics.Analyze(table)
	if err != nil {
		return tracker.Fail(tilebench.Configuration{}, err)
	}
	if err := tracker.Transition(tilebench.StateAnalyzed); err != nil {
		return tracker.Fail(tilebench.Configuration{}, err)
	}

	sinks := []report.Sink{
		report.WriterSink{Label: "stdout", W: stdout, Render: report.ConsoleWriter(report.ConsoleOptions{})},
	}
	if opts.out != "" {
		sinks = append(sinks, report.FileSink{Path: opts.out, Render: report.CSVWriter})
	}
	if opts.jsonPath != "" {
		sinks = append(sinks, report.FileSink{Path: opts.jsonPath, Render: report.JSONWriter(platform)})
	}
	if err := report.Publish(ctx, rep, sinks...); err != nil {
		return tracker.Fail(tilebench.Configuration{}, err)
	}
	if err := tracker.Transition(tilebench.StateReported); err != nil {
		return tracker.Fail(tilebench.Configuration{}, err)
	}

	if opts.out != "" {
		log.WithField("path", opts.out).Info("Results saved")
	}
	return nil
}

// openInput opens path, or stdin for "-".
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}
