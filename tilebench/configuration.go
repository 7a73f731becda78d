// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package tilebench

import "fmt"

// Configuration is one (thread count, block size) pair under measurement.
type Configuration struct {
	Threads   int `json:"threads" yaml:"threads"`
	BlockSize int `json:"block_size" yaml:"block_size"`
}

// String returns "threads=T block=B".
func (c Configuration) String() string {
	return fmt.Sprintf("threads=%d block=%d", c.Threads, c.BlockSize)
}

// Validate checks c against a matrix of dimension n. Thread counts below
// one, block sizes below one and block sizes above n are rejected with
// ErrInvalidConfiguration.
func (c Configuration) Validate(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: dimension %d < 1", ErrInvalidConfiguration, n)
	}
	if c.Threads < 1 {
		return fmt.Errorf("%w: %s: thread count < 1", ErrInvalidConfiguration, c)
	}
	if c.BlockSize < 1 {
		return fmt.Errorf("%w: %s: block size < 1", ErrInvalidConfiguration, c)
	}
	if c.BlockSize > n {
		return fmt.Errorf("%w: %s: block size > dimension %d", ErrInvalidConfiguration, c, n)
	}
	return nil
}
