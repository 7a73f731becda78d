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

package tilebench

import (
	"os"
	"runtime"
	"strconv"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Platform describes the host a sweep ran on. It is recorded next to the
// timings since speedup curves are only comparable on the same hardware.
type Platform struct {
	OS            string   `json:"os"`
	Arch          string   `json:"arch"`
	NumCPU        int      `json:"num_cpu"`
	GOMAXPROCS    int      `json:"gomaxprocs"`
	CacheLineSize int      `json:"cache_line_size"`
	Features      []string `json:"features"`
	MemoryBytes   uint64   `json:"available_memory_bytes"`
}

// currentFeatures lists the CPU features relevant to the kernel's inner
// loop (vector widths, FMA). Set by init() in platform_*.go files.
var currentFeatures []string

// CacheLineSize is the cache line size assumed by golang.org/x/sys/cpu for
// this architecture. Per-worker counters are padded to it.
const CacheLineSize = int(unsafe.Sizeof(cpu.CacheLinePad{}))

// NoCPUDetectEnv checks if the TILEBENCH_NO_CPU_DETECT environment variable
// is set. When set, no CPU features are reported; useful to make reports
// from different machines diff cleanly.
func NoCPUDetectEnv() bool {
	val := os.Getenv("TILEBENCH_NO_CPU_DETECT")
	if val == "" {
		return false
	}
	// Any non-empty value is considered true, but also parse as bool
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// CPUFeatures returns the detected CPU features.
func CPUFeatures() []string {
	return append([]string(nil), currentFeatures...)
}

// DetectPlatform gathers information about the current host.
func DetectPlatform() Platform {
	mem, _ := AvailableMemory()
	return Platform{
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		NumCPU:        runtime.NumCPU(),
		GOMAXPROCS:    runtime.GOMAXPROCS(0),
		CacheLineSize: CacheLineSize,
		Features:      CPUFeatures(),
		MemoryBytes:   mem,
	}
}
