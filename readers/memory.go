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

package readers

import (
	"context"
	"io"
	"sync"

	"github.com/aaronlmathis/datasteps/core"
)

// MemoryReader implements DataSource over records held in memory.
// Each record is returned as a copy.
type MemoryReader struct {
	mu      sync.Mutex
	records []core.Record
	pos     int
	closed  bool
}

// NewMemoryReader creates a reader returning records in order.
func NewMemoryReader(records ...core.Record) *MemoryReader {
	return &MemoryReader{records: records}
}

// Read implements the DataSource interface.
func (m *MemoryReader) Read(ctx context.Context) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.pos >= len(m.records) {
		return nil, io.EOF
	}
	r := m.records[m.pos].Clone()
	m.pos++
	return r, nil
}

// Close implements the DataSource interface.
func (m *MemoryReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
