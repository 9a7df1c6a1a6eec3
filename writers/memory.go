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
	"sync"

	"github.com/aaronlmathis/datasteps/core"
)

// MemoryWriter implements DataSink by collecting records in memory.
type MemoryWriter struct {
	mu      sync.Mutex
	records []core.Record
	flushes int
	closed  bool
}

// NewMemoryWriter creates an empty in-memory sink.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

// Write implements the DataSink interface. The record is copied.
func (m *MemoryWriter) Write(ctx context.Context, record core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record.Clone())
	return nil
}

// Flush implements the DataSink interface.
func (m *MemoryWriter) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return nil
}

// Close implements the DataSink interface.
func (m *MemoryWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Records returns the records written so far.
func (m *MemoryWriter) Records() []core.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Record(nil), m.records...)
}

// Closed reports whether Close was called.
func (m *MemoryWriter) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
