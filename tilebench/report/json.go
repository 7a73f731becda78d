// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ajroetker/go-tilebench/tilebench"
	"github.com/ajroetker/go-tilebench/tilebench/matmul"
	"github.com/ajroetker/go-tilebench/tilebench/metrics"
)

// Export is the JSON document written by WriteJSON.
type Export struct {
	Timestamp      time.Time          `json:"timestamp"`
	Hardware       tilebench.Platform `json:"hardware"`
	N              int                `json:"n"`
	Trials         int                `json:"trials"`
	BaselineThread int                `json:"baseline_threads"`
	CacheFitBlock  int                `json:"cache_fit_block_size"`
	Cells          []ExportCell       `json:"cells"`
	Optima         []metrics.Optimum  `json:"optima"`
	Best           *metrics.Optimum   `json:"best,omitempty"`
}

// ExportCell is a metrics.Cell with its cause rendered as text.
type ExportCell struct {
	metrics.Cell
	Error string `json:"error,omitempty"`
}

// NewExport builds the JSON document of rep.
func NewExport(rep *metrics.Report, hw tilebench.Platform, at time.Time) Export {
	cells := rep.Cells()
	exp := Export{
		Timestamp:      at.UTC(),
		Hardware:       hw,
		N:              rep.N(),
		Trials:         rep.Trials(),
		BaselineThread: rep.Baseline(),
		CacheFitBlock:  matmul.CacheFitBlockSize(matmul.DefaultL1Bytes),
		Cells:          make([]ExportCell, len(cells)),
		Optima:         rep.Optima(),
	}
	for i, c := range cells {
		exp.Cells[i] = ExportCell{Cell: c}
		if c.Err != nil {
			exp.Cells[i].Error = c.Err.Error()
		}
	}
	if best, ok := rep.Best(); ok {
		exp.Best = &best
	}
	return exp
}

// WriteJSON writes rep and the host description hw as indented JSON.
func WriteJSON(w io.Writer, rep *metrics.Report, hw tilebench.Platform) error {
	return JSONWriter(hw)(w, rep)
}

// JSONWriter returns a WriterFunc that writes rep as indented JSON along
// with the host description hw.
func JSONWriter(hw tilebench.Platform) WriterFunc {
	return func(w io.Writer, rep *metrics.Report) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewExport(rep, hw, time.Now()))
	}
}
