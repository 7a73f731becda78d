// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

//go:build !linux

package tilebench

import "time"

func platformClock() (Clock, error) {
	return runtimeClock{origin: time.Now()}, nil
}
