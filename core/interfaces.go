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

package core

import (
	"context"

	"github.com/aaronlmathis/datasteps/datapackage"
)

// Package core defines the core interfaces for the DataSteps library.
//
// This file contains the primary interfaces for data sources, sinks, transformation,
// filtering, and processing steps.

// DataSource defines the interface for reading one resource's rows.
// Implementations stream records in order (e.g., CSV, JSON lines, memory).
type DataSource interface {
	// Read returns the next record or io.EOF when no more records are available.
	Read(ctx context.Context) (Record, error)
	// Close releases any resources held by the data source.
	Close() error
}

// DataSink defines the interface for consuming a transformed row stream.
type DataSink interface {
	// Write outputs a single record to the sink.
	Write(ctx context.Context, record Record) error
	// Flush ensures all buffered data is written to the sink.
	Flush() error
	// Close releases any resources held by the data sink.
	Close() error
}

// Transformer defines the interface for per-row operations.
// A nil record with a nil error drops the row.
type Transformer interface {
	// Transform applies the transformation to a record and returns the result.
	Transform(ctx context.Context, record Record) (Record, error)
}

// Filter defines the interface for record filtering.
// Filters determine whether a record should be included in the output.
type Filter interface {
	// ShouldInclude returns true if the record should be included in the output.
	ShouldInclude(ctx context.Context, record Record) (bool, error)
}

// Step is one processor in a flow.
//
// A flow calls Bind for every resource with the descriptor as the step receives it,
// then calls UpdateSchema once so the step can publish its descriptor changes to the
// steps that follow. Rows stream only after every step has done both.
type Step interface {
	// Name identifies the step in logs and errors.
	Name() string
	// Bind returns the transformer applied to each row of res in order,
	// or nil when the step does not apply to res.
	Bind(res *datapackage.Resource) (Transformer, error)
	// UpdateSchema applies the step's descriptor changes.
	UpdateSchema(pkg *datapackage.Package) error
}
