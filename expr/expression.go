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

package expr

import (
	"strings"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/shopspring/decimal"
)

// Boolean is a compiled boolean expression. It is immutable and may be shared
// across rows, resources and goroutines.
type Boolean struct {
	source string
	root   boolNode
}

// Compile parses a boolean expression. An empty or blank source yields a nil
// expression, which Check treats as always true.
func Compile(source string) (*Boolean, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}
	root, err := parseBooleanSource(source)
	if err != nil {
		return nil, err
	}
	return &Boolean{source: source, root: root}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and constants.
func MustCompile(source string) *Boolean {
	b, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return b
}

// Evaluate evaluates the expression against row, the rowIndex-th row (1-based) of its stream.
// A nil missing set means the default {""}.
func (b *Boolean) Evaluate(rowIndex int, row core.Record, missing datapackage.MissingValues) (bool, error) {
	return b.root.eval(newEnv(rowIndex, row, missing))
}

// String returns the source text.
func (b *Boolean) String() string {
	if b == nil {
		return ""
	}
	return b.source
}

// Fields returns referenced field names in order of first appearance.
func (b *Boolean) Fields() []string {
	if b == nil {
		return nil
	}
	return collectFields(b.root.collect)
}

// Check evaluates a possibly nil boolean expression. A nil expression always passes.
// Errors are returned as raised by the evaluator; row annotation is the caller's job.
func Check(b *Boolean, rowIndex int, row core.Record, missing datapackage.MissingValues) (bool, error) {
	if b == nil {
		return true, nil
	}
	return b.Evaluate(rowIndex, row, missing)
}

// Math is a compiled arithmetic expression.
type Math struct {
	source string
	root   mathNode
}

// CompileMath parses an arithmetic expression. An empty source yields nil.
func CompileMath(source string) (*Math, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}
	root, err := parseMathSource(source)
	if err != nil {
		return nil, err
	}
	return &Math{source: source, root: root}, nil
}

// Evaluate computes the expression for one row. The result is invalid (null)
// when any operand is null.
func (m *Math) Evaluate(rowIndex int, row core.Record, missing datapackage.MissingValues) (decimal.NullDecimal, error) {
	e := newEnv(rowIndex, row, missing)
	// Every operand is resolved before any operator is applied, so a null
	// anywhere yields null even where another subexpression would fail.
	for _, name := range m.Fields() {
		d, err := resolveNumber(e, name)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		if !d.Valid {
			return decimal.NullDecimal{}, nil
		}
	}
	return m.root.eval(e)
}

// String returns the source text.
func (m *Math) String() string {
	if m == nil {
		return ""
	}
	return m.source
}

// Fields returns referenced field names in order of first appearance.
func (m *Math) Fields() []string {
	if m == nil {
		return nil
	}
	return collectFields(m.root.collect)
}

func newEnv(rowIndex int, row core.Record, missing datapackage.MissingValues) *env {
	if missing == nil {
		missing = datapackage.NewMissingValues()
	}
	return &env{row: row, rowIndex: rowIndex, missing: missing}
}

func collectFields(walk func(add func(string))) []string {
	seen := make(map[string]bool)
	var names []string
	walk(func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})
	return names
}
