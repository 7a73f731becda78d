// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

//go:build linux

package tilebench

import (
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// unixClock reads CLOCK_MONOTONIC directly. A failed read returns 0 and is
// kept for Err.
type unixClock struct {
	failure atomic.Pointer[error]
}

func (c *unixClock) Now() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		c.failure.CompareAndSwap(nil, &err)
		return 0
	}
	return time.Duration(ts.Nano())
}

// Err returns the first read failure, or nil.
func (c *unixClock) Err() error {
	if p := c.failure.Load(); p != nil {
		return fmt.Errorf("%w: clock_gettime(CLOCK_MONOTONIC): %v", ErrTimerUnavailable, *p)
	}
	return nil
}

func platformClock() (Clock, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return nil, fmt.Errorf("%w: clock_gettime(CLOCK_MONOTONIC): %v", ErrTimerUnavailable, err)
	}
	return &unixClock{}, nil
}
