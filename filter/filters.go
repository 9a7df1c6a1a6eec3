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

package filter

import (
	"context"
	"errors"
	"fmt"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/aaronlmathis/datasteps/expr"
	"github.com/aaronlmathis/datasteps/logger"
)

// Package filter provides row-filtering for DataSteps: the boolean_filter_rows
// processor and composable core.Filter values backed by boolean expressions.

// Expression creates a filter that includes records for which b holds.
// Records are numbered from 1 in the order the filter sees them, so a filter
// value must not be shared between streams. A nil b includes every record.
func Expression(b *expr.Boolean, missing datapackage.MissingValues) core.Filter {
	row := 0
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		row++
		include, err := expr.Check(b, row, record, missing)
		if err != nil {
			return false, core.AnnotateRow("", row, err)
		}
		return include, nil
	})
}

// And creates a filter that requires all provided filters to pass.
// Every filter sees every record so that row numbering stays aligned.
func And(filters ...core.Filter) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		result := true
		for _, filter := range filters {
			include, err := filter.ShouldInclude(ctx, record)
			if err != nil {
				return false, err
			}
			result = result && include
		}
		return result, nil
	})
}

// Or creates a filter that requires at least one of the provided filters to pass.
// Every filter sees every record so that row numbering stays aligned.
func Or(filters ...core.Filter) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		result := false
		for _, filter := range filters {
			include, err := filter.ShouldInclude(ctx, record)
			if err != nil {
				return false, err
			}
			result = result || include
		}
		return result, nil
	})
}

// Not creates a filter that negates the provided filter.
func Not(filter core.Filter) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return false, err
		}
		return !include, nil
	})
}

// BooleanFilterRowsParams configures boolean_filter_rows.
type BooleanFilterRowsParams struct {
	Resources        []string `yaml:"resources"`
	BooleanStatement string   `yaml:"boolean_statement"`
}

// BooleanFilterRows is the boolean_filter_rows step: rows for which the
// statement is false are dropped.
type BooleanFilterRows struct {
	params    BooleanFilterRowsParams
	statement *expr.Boolean
}

// NewBooleanFilterRows compiles the statement. An empty statement keeps every row.
func NewBooleanFilterRows(params BooleanFilterRowsParams) (*BooleanFilterRows, error) {
	b, err := expr.Compile(params.BooleanStatement)
	if err != nil {
		return nil, fmt.Errorf("boolean_filter_rows: %w", err)
	}
	return &BooleanFilterRows{params: params, statement: b}, nil
}

// Name returns the processor name.
func (s *BooleanFilterRows) Name() string { return "boolean_filter_rows" }

// Bind returns a transformer dropping the rows of res that fail the statement.
func (s *BooleanFilterRows) Bind(res *datapackage.Resource) (core.Transformer, error) {
	m, err := datapackage.NewMatcher(s.params.Resources)
	if err != nil {
		return nil, err
	}
	if !m.Matches(res.Name) {
		return nil, nil
	}
	logger.Debug("filtering rows", "step", s.Name(), "resource", res.Name, "boolean_statement", s.statement.String())

	t := core.FilterTransformer(Expression(s.statement, res.MissingValues()))
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		out, err := t.Transform(ctx, record)
		if err != nil {
			return nil, stepError(s.Name(), err)
		}
		return out, nil
	}), nil
}

// UpdateSchema leaves the descriptor unchanged.
func (s *BooleanFilterRows) UpdateSchema(*datapackage.Package) error {
	return nil
}

// stepError names the step on a row error raised by an Expression filter.
func stepError(step string, err error) error {
	var re *core.RowError
	if errors.As(err, &re) && re.Step == "" {
		return &core.RowError{Step: step, Row: re.Row, Err: re.Err}
	}
	return err
}
