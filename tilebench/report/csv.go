// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ajroetker/go-tilebench/tilebench/metrics"
)

// DefaultResultsFile is the name of the CSV artifact of a sweep.
const DefaultResultsFile = "problem4_results.txt"

// notAvailable is written for cells without a value.
const notAvailable = "NA"

// WriteCSV writes the results artifact: a header
//
//	Threads,Block{b}_Time,Block{b}_Speedup,...
//
// followed by one row per thread count with the mean time (%.4f) and
// speedup (%.2f) of every block size. Unavailable values are written as NA.
func WriteCSV(w io.Writer, rep *metrics.Report) error {
	bw := bufio.NewWriter(w)
	blocks := rep.BlockSizes()

	fmt.Fprint(bw, "Threads")
	for _, b := range blocks {
		fmt.Fprintf(bw, ",Block%d_Time,Block%d_Speedup", b, b)
	}
	fmt.Fprintln(bw)

	for _, t := range rep.ThreadCounts() {
		fmt.Fprintf(bw, "%d", t)
		for _, b := range blocks {
			c, _ := rep.Cell(t, b)
			fmt.Fprintf(bw, ",%s,%s", timeOr(c, "%.4f", notAvailable), speedupOr(c, "%.2f", notAvailable))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// timeOr formats the mean time of c, or returns na when c is unavailable.
func timeOr(c metrics.Cell, format, na string) string {
	if !c.Available {
		return na
	}
	return fmt.Sprintf(format, c.Time)
}

// speedupOr formats the speedup of c, or returns na when it has none.
func speedupOr(c metrics.Cell, format, na string) string {
	if !c.Scaled {
		return na
	}
	return fmt.Sprintf(format, c.Speedup)
}

// efficiencyOr formats the efficiency of c, or returns na when it has none.
func efficiencyOr(c metrics.Cell, format, na string) string {
	if !c.Scaled {
		return na
	}
	return fmt.Sprintf(format, c.Efficiency)
}
