// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package tilebench

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigurationValidate(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Configuration
		n    int
		ok   bool
	}{
		{"reference", Configuration{Threads: 16, BlockSize: 32}, 4096, true},
		{"block equals n", Configuration{Threads: 1, BlockSize: 10}, 10, true},
		{"block one", Configuration{Threads: 1, BlockSize: 1}, 2, true},
		{"zero threads", Configuration{Threads: 0, BlockSize: 4}, 8, false},
		{"negative threads", Configuration{Threads: -2, BlockSize: 4}, 8, false},
		{"zero block", Configuration{Threads: 1, BlockSize: 0}, 8, false},
		{"block above n", Configuration{Threads: 1, BlockSize: 9}, 8, false},
		{"zero dimension", Configuration{Threads: 1, BlockSize: 1}, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate(tc.n)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestConfigurationString(t *testing.T) {
	require.Equal(t, "threads=4 block=16", Configuration{Threads: 4, BlockSize: 16}.String())
}
