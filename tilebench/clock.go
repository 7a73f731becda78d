// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package tilebench

import (
	"fmt"
	"time"
)

// Clock is a monotonic clock. Now returns the time elapsed since an
// arbitrary fixed origin; only differences between two readings matter.
type Clock interface {
	Now() time.Duration
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Duration

// Now calls f.
func (f ClockFunc) Now() time.Duration { return f() }

// runtimeClock reads the monotonic reading carried by time.Time.
type runtimeClock struct {
	origin time.Time
}

func (c runtimeClock) Now() time.Duration { return time.Since(c.origin) }

// MonotonicClock returns the host's monotonic clock. It fails with
// ErrTimerUnavailable when the clock cannot be read or goes backwards.
func MonotonicClock() (Clock, error) {
	c, err := platformClock()
	if err != nil {
		return nil, err
	}
	if err := ProbeClock(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ProbeClock reads c twice and checks that it does not go backwards.
func ProbeClock(c Clock) error {
	if c == nil {
		return fmt.Errorf("%w: nil clock", ErrTimerUnavailable)
	}
	first := c.Now()
	second := c.Now()
	if second < first {
		return fmt.Errorf("%w: clock went backwards (%v -> %v)", ErrTimerUnavailable, first, second)
	}
	return nil
}

// ClockErr returns the read failure recorded by c, or nil. Clocks that can
// fail after construction record it through an Err method.
func ClockErr(c Clock) error {
	if f, ok := c.(interface{ Err() error }); ok {
		return f.Err()
	}
	return nil
}

// Elapsed returns end-start for two readings of c. It fails with
// ErrTimerUnavailable when c recorded a read failure or went backwards.
func Elapsed(c Clock, start, end time.Duration) (time.Duration, error) {
	if err := ClockErr(c); err != nil {
		return 0, err
	}
	if end < start {
		return 0, fmt.Errorf("%w: clock went backwards (%v -> %v)", ErrTimerUnavailable, start, end)
	}
	return end - start, nil
}
