//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of DataSteps.
//
// DataSteps is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DataSteps is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with DataSteps. If not, see https://www.gnu.org/licenses/.

package writers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
)

// Package writers provides DataSteps sinks: schema-aware CSV and JSON-lines
// writers and an in-memory writer.

// CSVWriterError wraps CSV-specific write errors with context.
type CSVWriterError struct {
	Op  string
	Err error
}

func (e *CSVWriterError) Error() string {
	return fmt.Sprintf("csv writer %s: %v", e.Op, e.Err)
}

func (e *CSVWriterError) Unwrap() error {
	return e.Err
}

// CSVWriterStats holds CSV write performance statistics.
type CSVWriterStats struct {
	RecordsWritten  int64
	FlushCount      int64
	FlushDuration   time.Duration
	LastFlushTime   time.Time
	NullValueCounts map[string]int64
}

// CSVWriterOptions configures CSV output.
type CSVWriterOptions struct {
	Comma       rune
	UseCRLF     bool
	WriteHeader bool
	Headers     []string
	BatchSize   int
	// Schema supplies the column order when Headers is empty and the
	// strftime formats of temporal fields.
	Schema *datapackage.Schema
}

// WriterOptionCSV is a functional option.
type WriterOptionCSV func(*CSVWriterOptions)

func WithHeaders(headers []string) WriterOptionCSV {
	return func(opts *CSVWriterOptions) {
		opts.Headers = append([]string(nil), headers...)
	}
}

func WithComma(delim rune) WriterOptionCSV {
	return func(opts *CSVWriterOptions) {
		opts.Comma = delim
	}
}

func WithWriteHeader(write bool) WriterOptionCSV {
	return func(opts *CSVWriterOptions) {
		opts.WriteHeader = write
	}
}

func WithCSVBatchSize(size int) WriterOptionCSV {
	return func(opts *CSVWriterOptions) {
		opts.BatchSize = size
	}
}

func WithUseCRLF(useCRLF bool) WriterOptionCSV {
	return func(opts *CSVWriterOptions) {
		opts.UseCRLF = useCRLF
	}
}

// WithResource lays columns out in the resource's schema order and renders
// temporal values with the field formats.
func WithResource(res *datapackage.Resource) WriterOptionCSV {
	return func(opts *CSVWriterOptions) {
		opts.Schema = res.Schema
	}
}

// CSVWriter implements DataSink for CSV output with stats and batching.
// Rows are rendered to text when written and buffered until the batch fills
// or Flush is called.
type CSVWriter struct {
	writer     *csv.Writer
	closer     io.Closer
	options    CSVWriterOptions
	cols       columns
	pending    [][]string
	stats      CSVWriterStats
	headerDone bool
	errorState bool
	mu         sync.Mutex
}

// columns is the output layout: header names and the schema field behind
// each one, nil for undeclared columns.
type columns struct {
	names  []string
	fields []*datapackage.Field
}

func newColumns(names []string, schema *datapackage.Schema) columns {
	cols := columns{names: names, fields: make([]*datapackage.Field, len(names))}
	if schema != nil {
		for i, name := range names {
			cols.fields[i] = schema.Field(name)
		}
	}
	return cols
}

// render lays a record out as one CSV row. Absent and nil values are empty.
func (c columns) render(record core.Record) []string {
	row := make([]string, len(c.names))
	for i, name := range c.names {
		row[i] = formatValue(record[name], c.fields[i])
	}
	return row
}

// NewCSVWriter creates a new CSV writer. Column order comes from WithHeaders,
// else from the schema given by WithResource, else from the sorted keys of
// the first record.
func NewCSVWriter(w io.WriteCloser, opts ...WriterOptionCSV) (*CSVWriter, error) {
	options := CSVWriterOptions{
		Comma:       ',',
		WriteHeader: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	cw := csv.NewWriter(w)
	cw.Comma = options.Comma
	cw.UseCRLF = options.UseCRLF

	names := options.Headers
	if len(names) == 0 && options.Schema != nil {
		names = options.Schema.FieldNames()
	}

	return &CSVWriter{
		writer:  cw,
		closer:  w,
		options: options,
		cols:    newColumns(names, options.Schema),
		pending: make([][]string, 0, max(options.BatchSize, 1)),
		stats:   CSVWriterStats{NullValueCounts: make(map[string]int64)},
	}, nil
}

// Write implements the DataSink interface.
func (c *CSVWriter) Write(ctx context.Context, record core.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &CSVWriterError{Op: "write", Err: err}
	}
	if c.errorState {
		return &CSVWriterError{Op: "write", Err: fmt.Errorf("writer is in error state")}
	}

	for k, v := range record {
		if v == nil {
			c.stats.NullValueCounts[k]++
		}
	}

	if len(c.cols.names) == 0 {
		keys := make([]string, 0, len(record))
		for key := range record {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		c.cols = newColumns(keys, c.options.Schema)
	}
	if err := c.headerUnsafe(); err != nil {
		c.errorState = true
		return err
	}

	c.pending = append(c.pending, c.cols.render(record))
	c.stats.RecordsWritten++

	if c.options.BatchSize > 0 && len(c.pending) >= c.options.BatchSize {
		if err := c.flushPendingUnsafe(); err != nil {
			c.errorState = true
			return &CSVWriterError{Op: "flush_batch", Err: err}
		}
	}
	return nil
}

// Flush implements the DataSink interface. A writer with known columns and no
// rows still produces its header line.
func (c *CSVWriter) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.cols.names) > 0 {
		if err := c.headerUnsafe(); err != nil {
			return err
		}
	}
	if len(c.pending) > 0 {
		if err := c.flushPendingUnsafe(); err != nil {
			return &CSVWriterError{Op: "flush", Err: err}
		}
		return nil
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return &CSVWriterError{Op: "flush_writer", Err: err}
	}
	return nil
}

// Close implements the DataSink interface.
func (c *CSVWriter) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// headerUnsafe queues the header line once (must hold mutex).
func (c *CSVWriter) headerUnsafe() error {
	if c.headerDone || !c.options.WriteHeader {
		return nil
	}
	if err := c.writer.Write(c.cols.names); err != nil {
		return &CSVWriterError{Op: "write_header", Err: err}
	}
	c.headerDone = true
	return nil
}

// flushPendingUnsafe writes the buffered rows through to the output (must hold mutex).
func (c *CSVWriter) flushPendingUnsafe() error {
	start := time.Now()
	if err := c.writer.WriteAll(c.pending); err != nil {
		return fmt.Errorf("failed to write %d CSV rows: %w", len(c.pending), err)
	}

	c.stats.FlushCount++
	c.stats.LastFlushTime = time.Now()
	c.stats.FlushDuration += time.Since(start)
	c.pending = c.pending[:0]
	return nil
}

// Stats returns a copy of the write statistics.
func (c *CSVWriter) Stats() CSVWriterStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.stats
	out.NullValueCounts = make(map[string]int64, len(c.stats.NullValueCounts))
	for k, v := range c.stats.NullValueCounts {
		out.NullValueCounts[k] = v
	}
	return out
}
