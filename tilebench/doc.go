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

// Package tilebench holds the types shared by every stage of the tiled
// matrix multiplication benchmark: the (threads, block size) Configuration,
// the sentinel errors, the pipeline state machine and the host probes
// (CPU features, monotonic clock, available memory).
//
// The stages themselves live in subpackages:
//
//	matrix     builds the input matrices
//	matmul     runs the tiled, thread-parallel kernel
//	workerpool schedules tiles onto workers
//	sweep      times the kernel over every configuration
//	metrics    derives speedup, efficiency and the best block size
//	report     writes the CSV artifact and console report
//
// Example usage:
//
//	cfg := sweep.DefaultConfig()
//	drv, err := sweep.NewDriver(cfg)
//	if err != nil {
//	    return err
//	}
//	table, err := drv.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	rep, err := metrics.Analyze(table)
package tilebench
