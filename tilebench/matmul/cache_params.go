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

// DefaultL1Bytes is the L1 data cache size assumed when none is given.
// 32KB is typical for x86-64 and most ARM64 cores.
const DefaultL1Bytes = 32 << 10

// TileFootprint returns the bytes touched by one step of the tile loop:
// a block×block tile each of A, B and C in float64.
func TileFootprint(block int) int {
	return 3 * block * block * 8
}

// CacheFitBlockSize returns the largest power-of-two block size whose three
// float64 tiles fit in l1Bytes. For 32KB it returns 32 (24KB of tiles).
// It never returns less than 1.
//
// The sweep does not use it to pick block sizes; it is reported next to the
// measured optimum as a cache-model prediction.
func CacheFitBlockSize(l1Bytes int) int {
	if l1Bytes <= 0 {
		l1Bytes = DefaultL1Bytes
	}
	block := 1
	for TileFootprint(block*2) <= l1Bytes {
		block *= 2
	}
	return block
}
