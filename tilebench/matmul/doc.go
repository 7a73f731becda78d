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

// Package matmul provides the tiled, thread-parallel matrix multiplication
// kernel measured by the benchmark, plus the reference and verification
// helpers used to check it.
//
// The n×n output is cut into block×block tiles. Each (ii, jj) output tile
// is one unit of parallel work: tiles never overlap, so workers write C
// without any synchronization. Within a tile the loops run i → k → j with
// A[i][k] hoisted, so both the C row and the B row are walked sequentially.
//
// Example usage:
//
//	// C = A * B into a zeroed C, 8 threads, 32×32 tiles handed out on demand
//	err := matmul.TiledMultiply(a, b, c, matmul.Options{
//	    Threads:   8,
//	    BlockSize: 32,
//	})
//
// Tiles are handed to workers on demand by default, since boundary tiles
// (when the block size does not divide n) do less work than interior ones.
// A static equal split is available for comparison.
package matmul
