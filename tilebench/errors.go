// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package tilebench

import "errors"

var (
	// ErrAllocationFailure is returned when the matrices of a trial cannot be
	// allocated within the available memory.
	ErrAllocationFailure = errors.New("tilebench: allocation failure")

	// ErrInvalidConfiguration is returned for thread counts below one, block
	// sizes below one or above the matrix dimension, and malformed sweeps.
	// It is always reported before any timing starts.
	ErrInvalidConfiguration = errors.New("tilebench: invalid configuration")

	// ErrTimerUnavailable is returned when no monotonic clock can be read.
	ErrTimerUnavailable = errors.New("tilebench: monotonic timer unavailable")

	// ErrIllegalTransition is returned by Tracker for a transition the
	// pipeline does not allow.
	ErrIllegalTransition = errors.New("tilebench: illegal state transition")
)
