// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

// Package report renders a metrics.Report: the CSV results artifact, the
// console report and a JSON export. Publish writes to several sinks at
// once.
package report
