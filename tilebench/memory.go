// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package tilebench

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/mem"
)

// errMemoryUnknown is returned by AvailableMemory when the host does not
// expose a free-memory figure.
var errMemoryUnknown = errors.New("tilebench: available memory unknown")

// AvailableMemory returns the bytes the host can hand out without
// swapping, reclaimable page cache included (MemAvailable on Linux). On
// hosts without such a figure it returns 0 and an error; callers treat
// that as "no limit".
func AvailableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errMemoryUnknown, err)
	}
	if vm.Available == 0 {
		return 0, errMemoryUnknown
	}
	return vm.Available, nil
}
