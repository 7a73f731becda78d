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

// Package sweep times the tiled kernel over every (thread count, block size)
// configuration and collects the results in a Table.
//
// A sweep runs configurations strictly one after another, block size in the
// outer loop and thread count in the inner one. Each configuration is timed
// Config.Trials times; every trial gets freshly generated matrices, and only
// the kernel call (including pool spin-up and join) is inside the timed
// region.
//
// # Failure policy
//
// PolicyResilient marks a failing configuration unavailable, keeps its cause
// and moves on. PolicyStrict stops the sweep at the first failure and
// returns a *tilebench.Failure naming the configuration and the pipeline
// state. Either way every configuration is treated alike.
//
// # Configuration sources
//
// DefaultConfig is the reference sweep: n=4096, threads
// {1,2,4,6,8,10,12,14,16}, blocks {2,4,8,16,32}, 5 trials. LoadConfig
// overlays a YAML file and ApplyEnv the TILEBENCH_* environment variables.
// Command-line flags are applied last by the caller.
//
// # Importing Go benchmarks
//
// ImportBenchmarks builds a Table from `go test -bench` output of
// BenchmarkTiledMultiply/threads=T/block=B, so the same metrics and reports
// can be produced from the standard benchmark harness.
package sweep
