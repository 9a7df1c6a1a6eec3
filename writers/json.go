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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aaronlmathis/datasteps/core"
)

// JSONWriterError wraps JSON-specific write errors with context.
type JSONWriterError struct {
	Op  string
	Err error
}

func (e *JSONWriterError) Error() string {
	return fmt.Sprintf("json writer %s: %v", e.Op, e.Err)
}

func (e *JSONWriterError) Unwrap() error {
	return e.Err
}

// JSONWriterStats holds JSON write performance statistics.
type JSONWriterStats struct {
	RecordsWritten  int64
	FlushCount      int64
	FlushDuration   time.Duration
	LastFlushTime   time.Time
	NullValueCounts map[string]int64
}

// JSONWriterOptions configures JSON-lines output.
type JSONWriterOptions struct {
	BatchSize    int
	FlushOnWrite bool
}

// WriterOptionJSON is a functional option.
type WriterOptionJSON func(*JSONWriterOptions)

// WithJSONBatchSize flushes after every size records. Zero disables batching.
func WithJSONBatchSize(size int) WriterOptionJSON {
	return func(opts *JSONWriterOptions) {
		opts.BatchSize = size
	}
}

// WithFlushOnWrite flushes the buffered output after every record.
func WithFlushOnWrite(flush bool) WriterOptionJSON {
	return func(opts *JSONWriterOptions) {
		opts.FlushOnWrite = flush
	}
}

// JSONWriter implements DataSink for JSON lines files. Decimal values are
// written as JSON numbers; dates and times use their text form.
type JSONWriter struct {
	writer     *bufio.Writer
	closer     io.Closer
	options    JSONWriterOptions
	pending    int
	stats      JSONWriterStats
	errorState bool
	mu         sync.Mutex
}

// NewJSONWriter creates a new JSON writer for line-delimited JSON output.
func NewJSONWriter(w io.WriteCloser, opts ...WriterOptionJSON) *JSONWriter {
	var options JSONWriterOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &JSONWriter{
		writer:  bufio.NewWriter(w),
		closer:  w,
		options: options,
		stats:   JSONWriterStats{NullValueCounts: make(map[string]int64)},
	}
}

// Write implements the DataSink interface.
func (j *JSONWriter) Write(ctx context.Context, record core.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &JSONWriterError{Op: "write", Err: err}
	}
	if j.errorState {
		return &JSONWriterError{Op: "write", Err: fmt.Errorf("writer is in error state")}
	}

	out := make(map[string]interface{}, len(record))
	for k, v := range record {
		if v == nil {
			j.stats.NullValueCounts[k]++
		}
		out[k] = jsonValue(v)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return &JSONWriterError{Op: "marshal", Err: err}
	}
	data = append(data, '\n')
	if _, err := j.writer.Write(data); err != nil {
		j.errorState = true
		return &JSONWriterError{Op: "write", Err: err}
	}
	j.stats.RecordsWritten++
	j.pending++

	if j.options.FlushOnWrite || (j.options.BatchSize > 0 && j.pending >= j.options.BatchSize) {
		if err := j.flushUnsafe(); err != nil {
			j.errorState = true
			return &JSONWriterError{Op: "flush_batch", Err: err}
		}
	}
	return nil
}

// Flush implements the DataSink interface.
func (j *JSONWriter) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.flushUnsafe(); err != nil {
		return &JSONWriterError{Op: "flush", Err: err}
	}
	return nil
}

// Close implements the DataSink interface.
func (j *JSONWriter) Close() error {
	if err := j.Flush(); err != nil {
		return err
	}
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}

func (j *JSONWriter) flushUnsafe() error {
	if j.pending == 0 && j.writer.Buffered() == 0 {
		return nil
	}
	start := time.Now()
	if err := j.writer.Flush(); err != nil {
		return err
	}
	j.stats.FlushCount++
	j.stats.LastFlushTime = time.Now()
	j.stats.FlushDuration += time.Since(start)
	j.pending = 0
	return nil
}

// Stats returns write statistics.
func (j *JSONWriter) Stats() JSONWriterStats {
	j.mu.Lock()
	defer j.mu.Unlock()

	statsCopy := j.stats
	statsCopy.NullValueCounts = make(map[string]int64, len(j.stats.NullValueCounts))
	for k, v := range j.stats.NullValueCounts {
		statsCopy.NullValueCounts[k] = v
	}
	return statsCopy
}
