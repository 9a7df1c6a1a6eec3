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
	"fmt"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/aaronlmathis/datasteps/expr"
	"github.com/aaronlmathis/datasteps/logger"
)

// Package transform provides the row-mutating processor steps of DataSteps.
//
// Every step implements core.Step: it is bound once per resource, compiles its
// expressions at bind time and updates the descriptor before rows stream.
// Rows are counted per bound resource starting at 1, and every evaluation
// error is returned as a *core.RowError.

// Common holds the parameters shared by gated processors.
type Common struct {
	// Resources selects the resources the step applies to. Empty means all.
	Resources []string `yaml:"resources"`
	// BooleanStatement gates the step per row. Empty means always.
	BooleanStatement string `yaml:"boolean_statement"`
}

// binding is the per-resource state of a bound step.
type binding struct {
	step    string
	gate    *expr.Boolean
	missing datapackage.MissingValues
	// outputs are added as nil to rows the gate skips when not already present.
	outputs []string
	// drop is removed from every row after processing.
	drop []string
}

// bindResource returns nil when res is not selected by resources.
func bindResource(step string, resources []string, statement string, res *datapackage.Resource) (*binding, error) {
	ok, err := selects(resources, res)
	if err != nil || !ok {
		return nil, err
	}
	gate, err := expr.Compile(statement)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", step, err)
	}
	if gate != nil {
		logger.Debug("compiled row gate", "step", step, "resource", res.Name, "boolean_statement", gate.String())
	}
	return &binding{step: step, gate: gate, missing: res.MissingValues()}, nil
}

func selects(resources []string, res *datapackage.Resource) (bool, error) {
	m, err := datapackage.NewMatcher(resources)
	if err != nil {
		return false, err
	}
	return m.Matches(res.Name), nil
}

// rowFunc mutates a copy of the row. row is the 1-based position in the resource.
type rowFunc func(row int, rec core.Record) error

// transformer wraps fn with the row counter, the gate and error annotation.
// When the gate is false the row passes unchanged apart from outputs and drop,
// so every row leaving the step has the shape its descriptor declares.
func (b *binding) transformer(fn rowFunc) core.Transformer {
	row := 0
	t := core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		row++
		pass, err := expr.Check(b.gate, row, record, b.missing)
		if err != nil {
			return nil, core.AnnotateRow(b.step, row, err)
		}
		out := record.Clone()
		if pass {
			if err := fn(row, out); err != nil {
				return nil, core.AnnotateRow(b.step, row, err)
			}
		} else {
			for _, name := range b.outputs {
				if _, ok := out[name]; !ok {
					out[name] = nil
				}
			}
		}
		return out, nil
	})
	if len(b.drop) == 0 {
		return t
	}
	return core.Chain(t, RemoveFields(b.drop...))
}

// isNull reports whether v is null for this resource.
func (b *binding) isNull(v interface{}) bool {
	if b.missing.IsMissing(v) {
		return true
	}
	val, err := expr.FromInterface(v)
	return err == nil && val.IsNull()
}

// forEachResource applies fn to every resource selected by resources.
func forEachResource(pkg *datapackage.Package, resources []string, fn func(res *datapackage.Resource) error) error {
	m, err := datapackage.NewMatcher(resources)
	if err != nil {
		return err
	}
	for _, res := range pkg.Resources {
		if !m.Matches(res.Name) {
			continue
		}
		if res.Schema == nil {
			res.Schema = &datapackage.Schema{}
		}
		if err := fn(res); err != nil {
			return fmt.Errorf("resource %q: %w", res.Name, err)
		}
	}
	return nil
}

// requireField fails when a row lacks a configured input field.
func requireField(rec core.Record, name string) (interface{}, error) {
	v, ok := rec[name]
	if !ok {
		return nil, &expr.FieldNotFoundError{Field: name}
	}
	return v, nil
}
