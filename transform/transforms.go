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

package transform

import (
	"context"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/expr"
)

// Select creates a transformer that keeps only the specified fields of each record.
func Select(fields ...string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := make(core.Record, len(fields))
		for _, field := range fields {
			if value, exists := record[field]; exists {
				result[field] = value
			}
		}
		return result, nil
	})
}

// Rename creates a transformer that renames fields according to mapping (old name to new name).
func Rename(mapping map[string]string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := record.Clone()
		renameFields(result, mapping)
		return result, nil
	})
}

// AddField creates a transformer that sets field to a value computed from the record.
func AddField(field string, fn func(core.Record) interface{}) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := record.Clone()
		result[field] = fn(record)
		return result, nil
	})
}

// RemoveFields creates a transformer that removes the specified fields. Absent fields are ignored.
func RemoveFields(fields ...string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := record.Clone()
		removeFields(result, fields)
		return result, nil
	})
}

// renameFields renames keys of record in place.
func renameFields(record core.Record, mapping map[string]string) {
	moved := make(core.Record, len(mapping))
	for oldName, newName := range mapping {
		if value, exists := record[oldName]; exists {
			moved[newName] = value
			delete(record, oldName)
		}
	}
	for k, v := range moved {
		record[k] = v
	}
}

// removeFields deletes keys of record in place.
func removeFields(record core.Record, fields []string) {
	for _, field := range fields {
		delete(record, field)
	}
}

// textOf renders a row value as text. Null renders as the empty string.
func textOf(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	v, err := expr.FromInterface(value)
	if err != nil || v.IsNull() {
		return ""
	}
	return v.String()
}
