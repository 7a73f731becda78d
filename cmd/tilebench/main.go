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

// Command tilebench sweeps the tiled matrix multiplication kernel over
// thread counts and block sizes, and reports speedup, efficiency and the
// best block size per thread count.
//
// Usage:
//
//	tilebench                                  # reference sweep, n=4096
//	tilebench --n 1024 --threads 1,2,4 --blocks 8,16,32 --trials 3
//	tilebench --config sweep.yaml --policy strict --json results.json
//	tilebench import bench.txt                 # from go test -bench output
//
// Settings are read from the defaults, then the --config YAML file, then
// the TILEBENCH_N, TILEBENCH_TRIALS, TILEBENCH_FIXED_SEED and
// TILEBENCH_POLICY environment variables, then the command-line flags.
//
// The results are written to problem4_results.txt (see --out) and printed
// to stdout. The exit status is 1 when the sweep is invalid, the clock
// cannot be read, or a configuration fails under the strict policy.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	atexit.Register(stop)

	log := logrus.New()
	log.SetOutput(os.Stderr)

	root, _ := newRootCmd(log)
	if err := root.ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("tilebench failed")
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
