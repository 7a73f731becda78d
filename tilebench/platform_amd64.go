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

//go:build amd64

package tilebench

import "golang.org/x/sys/cpu"

func init() {
	if NoCPUDetectEnv() {
		return
	}
	detectCPUFeatures()
}

func detectCPUFeatures() {
	if cpu.X86.HasSSE2 {
		currentFeatures = append(currentFeatures, "sse2")
	}
	if cpu.X86.HasAVX {
		currentFeatures = append(currentFeatures, "avx")
	}
	if cpu.X86.HasAVX2 {
		currentFeatures = append(currentFeatures, "avx2")
	}
	if cpu.X86.HasFMA {
		currentFeatures = append(currentFeatures, "fma")
	}
	// The Go compiler does not auto-vectorize, but AVX-512 parts have
	// different frequency behavior under load, which shows up in timings.
	if cpu.X86.HasAVX512F {
		currentFeatures = append(currentFeatures, "avx512f")
	}
}
