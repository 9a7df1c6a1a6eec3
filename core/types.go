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

import "context"

// Package core defines the core types for the DataSteps library.
//
// DataSteps is a library of tabular-data processing steps driven by a small row-expression
// language. Each step receives a stream of records plus a schema descriptor, mutates rows
// and/or schema, and yields results onward.
//
// This file contains the primary types and function adapters.

// Record represents a single row within a resource.
// Field order is carried by the resource schema, not by the map.
type Record map[string]interface{}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// TransformFunc is a function adapter for the Transformer interface.
// Allows ordinary functions to be used as Transformers.
type TransformFunc func(ctx context.Context, record Record) (Record, error)

// Transform implements the Transformer interface for TransformFunc.
func (f TransformFunc) Transform(ctx context.Context, record Record) (Record, error) {
	return f(ctx, record)
}

// FilterFunc is a function adapter for the Filter interface.
// Allows ordinary functions to be used as Filters.
type FilterFunc func(ctx context.Context, record Record) (bool, error)

// ShouldInclude implements the Filter interface for FilterFunc.
func (f FilterFunc) ShouldInclude(ctx context.Context, record Record) (bool, error) {
	return f(ctx, record)
}

// FilterTransformer adapts a Filter to a Transformer.
// Excluded records come back as nil, which a flow treats as a dropped row.
func FilterTransformer(filter Filter) Transformer {
	return TransformFunc(func(ctx context.Context, record Record) (Record, error) {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return nil, err
		}
		if !include {
			return nil, nil
		}
		return record, nil
	})
}

// Chain composes transformers into one, stopping at the first dropped row or error.
func Chain(transformers ...Transformer) Transformer {
	return TransformFunc(func(ctx context.Context, record Record) (Record, error) {
		current := record
		for _, t := range transformers {
			next, err := t.Transform(ctx, current)
			if err != nil {
				return nil, err
			}
			if next == nil {
				return nil, nil
			}
			current = next
		}
		return current, nil
	})
}
