// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package report

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-tilebench/tilebench/metrics"
)

// WriterFunc renders a report to w.
type WriterFunc func(w io.Writer, rep *metrics.Report) error

// CSVWriter is WriteCSV as a WriterFunc.
var CSVWriter WriterFunc = WriteCSV

// ConsoleWriter returns WriteConsole with opts as a WriterFunc.
func ConsoleWriter(opts ConsoleOptions) WriterFunc {
	return func(w io.Writer, rep *metrics.Report) error {
		return WriteConsole(w, rep, opts)
	}
}

// Sink is one destination of a report.
type Sink interface {
	// Name identifies the sink in errors.
	Name() string

	// Publish writes rep. It must not modify it.
	Publish(ctx context.Context, rep *metrics.Report) error
}

// FileSink creates (or truncates) Path and renders the report into it.
type FileSink struct {
	Path   string
	Render WriterFunc
}

// Name returns the file path.
func (s FileSink) Name() string { return s.Path }

// Publish writes the report to the file.
func (s FileSink) Publish(ctx context.Context, rep *metrics.Report) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Create(s.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return s.Render(f, rep)
}

// WriterSink renders the report into an existing writer, such as
// os.Stdout. The writer is not closed.
type WriterSink struct {
	Label  string
	W      io.Writer
	Render WriterFunc
}

// Name returns the label.
func (s WriterSink) Name() string { return s.Label }

// Publish writes the report to the writer.
func (s WriterSink) Publish(ctx context.Context, rep *metrics.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Render(s.W, rep)
}

// Publish writes rep to every sink concurrently. The report is immutable,
// so sinks share it without copying. The first error is returned, naming
// its sink; sinks that have not started by then see a cancelled context.
func Publish(ctx context.Context, rep *metrics.Report, sinks ...Sink) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range sinks {
		g.Go(func() error {
			if err := s.Publish(ctx, rep); err != nil {
				return fmt.Errorf("report: publishing to %s: %w", s.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
