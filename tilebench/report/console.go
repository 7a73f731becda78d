// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ajroetker/go-tilebench/tilebench/matmul"
	"github.com/ajroetker/go-tilebench/tilebench/metrics"
)

const rule = "================================================================="

// ConsoleOptions tunes WriteConsole.
type ConsoleOptions struct {
	// L1Bytes is the L1 data cache size used for the block-size hint.
	// Zero means matmul.DefaultL1Bytes.
	L1Bytes int

	// Language selects number grouping in the header. Zero means English.
	Language language.Tag
}

// WriteConsole writes the human-readable report: one speedup table per
// block size, the speedup comparison grid and the optimal block size of
// each thread count.
func WriteConsole(w io.Writer, rep *metrics.Report, opts ConsoleOptions) error {
	bw := bufio.NewWriter(w)
	tag := opts.Language
	if tag == language.Und {
		tag = language.English
	}
	p := message.NewPrinter(tag)

	section(bw, "")
	if rep.N() > 0 {
		p.Fprintf(bw, "Block Matrix Multiplication (%dx%d, %d trials)\n", rep.N(), rep.N(), rep.Trials())
	} else {
		p.Fprintf(bw, "Block Matrix Multiplication (imported, up to %d samples)\n", rep.Trials())
	}
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw)

	writeSpeedupTables(bw, rep)
	writeComparison(bw, rep)
	writeOptima(bw, rep, opts.L1Bytes)
	return bw.Flush()
}

// section writes a ruled section title. An empty title writes the opening
// rule only.
func section(w io.Writer, title string) {
	fmt.Fprintln(w, rule)
	if title != "" {
		fmt.Fprintln(w, title)
		fmt.Fprintln(w, rule)
	}
}

func writeSpeedupTables(w io.Writer, rep *metrics.Report) {
	fmt.Fprintln(w)
	section(w, "SPEEDUP ANALYSIS BY BLOCK SIZE")
	fmt.Fprintln(w)

	for _, b := range rep.BlockSizes() {
		fmt.Fprintf(w, "Block Size %d:\n", b)
		fmt.Fprintln(w, "Threads | Time (s)  | Speedup | Efficiency")
		fmt.Fprintln(w, "--------|-----------|---------|------------")
		for _, t := range rep.ThreadCounts() {
			c, _ := rep.Cell(t, b)
			eff := efficiencyOr(c, "%7.2f%%", fmt.Sprintf("%7s ", notAvailable))
			fmt.Fprintf(w, "  %2d    | %9s | %7s | %s\n",
				t, timeOr(c, "%9.4f", notAvailable), speedupOr(c, "%7.2f", notAvailable), eff)
		}
		fmt.Fprintln(w)
	}
}

func writeComparison(w io.Writer, rep *metrics.Report) {
	blocks := rep.BlockSizes()
	names := lo.Map(blocks, func(b int, _ int) string { return fmt.Sprintf("Block%d", b) })
	dashes := lo.Map(names, func(name string, _ int) string { return strings.Repeat("-", len(name)+2) })

	fmt.Fprintln(w)
	section(w, "SPEEDUP COMPARISON (All Block Sizes)")
	fmt.Fprintln(w, "Threads | "+strings.Join(names, " | "))
	fmt.Fprintln(w, "--------|"+strings.Join(dashes, "|"))

	for _, t := range rep.ThreadCounts() {
		fmt.Fprintf(w, "  %2d    |", t)
		for _, b := range blocks {
			c, _ := rep.Cell(t, b)
			fmt.Fprintf(w, " %6s |", speedupOr(c, "%6.2f", notAvailable))
		}
		fmt.Fprintln(w)
	}
}

func writeOptima(w io.Writer, rep *metrics.Report, l1Bytes int) {
	fmt.Fprintln(w)
	section(w, "OPTIMAL CONFIGURATIONS")
	for _, t := range rep.ThreadCounts() {
		o, ok := rep.Optimum(t)
		if !ok {
			fmt.Fprintf(w, "Threads %2d: no block size available\n", t)
			continue
		}
		fmt.Fprintf(w, "Threads %2d: Best block size = %2d (Time: %.4f s)\n", t, o.BlockSize, o.Time)
	}

	if l1Bytes <= 0 {
		l1Bytes = matmul.DefaultL1Bytes
	}
	if best, ok := rep.Best(); ok {
		fmt.Fprintf(w, "\nFastest overall: %d threads, block size %d (Time: %.4f s)\n",
			best.Threads, best.BlockSize, best.Time)
	}
	fmt.Fprintf(w, "Cache model: block size %d keeps three tiles within a %d KB L1\n",
		matmul.CacheFitBlockSize(l1Bytes), l1Bytes>>10)
}
