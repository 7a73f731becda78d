// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ajroetker/go-tilebench/tilebench"
	"github.com/ajroetker/go-tilebench/tilebench/sweep"
)

func newImportCmd(log *logrus.Logger, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <bench.txt|->",
		Short: "Report metrics from go test -bench output",
		Long: `import reads the output of

	go test -bench 'BenchmarkTiledMultiply' -count 5 ./tilebench/matmul

and reports it like a sweep. Benchmarks other than
BenchmarkTiledMultiply/threads=T/block=B are ignored. Use "-" for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			tracker := tilebench.NewTracker()
			table, err := sweep.ImportBenchmarks(in)
			if err != nil {
				return tracker.Fail(tilebench.Configuration{}, err)
			}
			if err := tracker.Transition(tilebench.StateMeasured); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"threads": table.ThreadCounts(),
				"blocks":  table.BlockSizes(),
				"cells":   table.Available(),
			}).Info("Imported benchmarks")
			return analyzeAndPublish(cmd.Context(), log, tracker, table, opts,
				tilebench.DetectPlatform(), cmd.OutOrStdout())
		},
	}
}
