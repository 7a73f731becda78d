// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-tilebench/tilebench"
	"github.com/ajroetker/go-tilebench/tilebench/metrics"
	"github.com/ajroetker/go-tilebench/tilebench/sweep"
)

// sampleReport has threads {1,2}, blocks {2,4}; (2,4) is unavailable.
func sampleReport(t *testing.T) *metrics.Report {
	t.Helper()
	table := sweep.NewTable(4096, 5, []int{1, 2}, []int{2, 4})
	record := func(threads, block int, secs float64) {
		require.NoError(t, table.Record(tilebench.Configuration{Threads: threads, BlockSize: block}, secs, 0))
	}
	record(1, 2, 10.0)
	record(2, 2, 4.0)
	record(1, 4, 8.0)
	require.NoError(t, table.MarkUnavailable(tilebench.Configuration{Threads: 2, BlockSize: 4}, tilebench.ErrAllocationFailure))

	rep, err := metrics.Analyze(table)
	require.NoError(t, err)
	return rep
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport(t)))

	want := "Threads,Block2_Time,Block2_Speedup,Block4_Time,Block4_Speedup\n" +
		"1,10.0000,1.00,8.0000,1.00\n" +
		"2,4.0000,2.50,NA,NA\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteCSV mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteConsole(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConsole(&buf, sampleReport(t), ConsoleOptions{}))
	out := buf.String()

	for _, line := range []string{
		"Block Matrix Multiplication (4,096x4,096, 5 trials)",
		"SPEEDUP ANALYSIS BY BLOCK SIZE",
		"Block Size 2:",
		"Threads | Time (s)  | Speedup | Efficiency",
		"   1    |   10.0000 |    1.00 |  100.00%",
		"   2    |    4.0000 |    2.50 |  125.00%",
		"   2    |        NA |      NA |      NA ",
		"Threads | Block2 | Block4",
		"--------|--------|--------",
		"   1    |   1.00 |   1.00 |",
		"   2    |   2.50 |     NA |",
		"Threads  1: Best block size =  4 (Time: 8.0000 s)",
		"Threads  2: Best block size =  2 (Time: 4.0000 s)",
		"Fastest overall: 2 threads, block size 2 (Time: 4.0000 s)",
		"Cache model: block size 32 keeps three tiles within a 32 KB L1",
	} {
		assert.Contains(t, out, line+"\n")
	}
}

func TestWriteConsoleNoOptimum(t *testing.T) {
	table := sweep.NewTable(8, 1, []int{1, 2}, []int{2})
	require.NoError(t, table.Record(tilebench.Configuration{Threads: 1, BlockSize: 2}, 1, 0))
	rep, err := metrics.Analyze(table)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteConsole(&buf, rep, ConsoleOptions{L1Bytes: 96 << 10}))
	assert.Contains(t, buf.String(), "Threads  2: no block size available\n")
	assert.Contains(t, buf.String(), "block size 64 keeps three tiles within a 96 KB L1")
}

func TestWriteJSON(t *testing.T) {
	hw := tilebench.Platform{OS: "linux", Arch: "amd64", NumCPU: 16, CacheLineSize: 64}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport(t), hw))

	var got Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, hw.NumCPU, got.Hardware.NumCPU)
	assert.Equal(t, 4096, got.N)
	assert.Equal(t, 1, got.BaselineThread)
	require.Len(t, got.Cells, 4)
	require.NotNil(t, got.Best)
	assert.Equal(t, metrics.Optimum{Threads: 2, BlockSize: 2, Time: 4.0}, *got.Best)

	last := got.Cells[3]
	assert.Equal(t, 2, last.Threads)
	assert.Equal(t, 4, last.BlockSize)
	assert.False(t, last.Available)
	assert.Contains(t, last.Error, "allocation failure")
}

func TestNewExportTimestamp(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	exp := NewExport(sampleReport(t), tilebench.Platform{}, at)
	assert.Equal(t, time.UTC, exp.Timestamp.Location())
	assert.True(t, exp.Timestamp.Equal(at))
}

func TestPublish(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, DefaultResultsFile)
	jsonPath := filepath.Join(dir, "results.json")
	var console bytes.Buffer

	rep := sampleReport(t)
	err := Publish(context.Background(), rep,
		FileSink{Path: csvPath, Render: CSVWriter},
		FileSink{Path: jsonPath, Render: JSONWriter(tilebench.DetectPlatform())},
		WriterSink{Label: "console", W: &console, Render: ConsoleWriter(ConsoleOptions{})},
	)
	require.NoError(t, err)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Threads,Block2_Time"))

	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	assert.Contains(t, console.String(), "OPTIMAL CONFIGURATIONS")
}

func TestPublishError(t *testing.T) {
	errDisk := errors.New("disk full")
	failing := WriterSink{Label: "broken", W: io.Discard, Render: func(io.Writer, *metrics.Report) error {
		return errDisk
	}}
	err := Publish(context.Background(), sampleReport(t),
		failing,
		FileSink{Path: filepath.Join(t.TempDir(), "missing-dir", "out.txt"), Render: CSVWriter},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report: publishing to")
}
