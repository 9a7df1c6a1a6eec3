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
	"fmt"
	"regexp"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
)

// SplitColumnParams configures split_column.
type SplitColumnParams struct {
	Common      `yaml:",inline"`
	Fields      []SplitField `yaml:"fields"`
	DeleteInput bool         `yaml:"delete_input"`
}

// SplitField splits InputField into OutputFields using either Pattern
// (one capture group per output) or Delimiter (a regular expression).
type SplitField struct {
	InputField   string   `yaml:"input_field"`
	OutputFields []string `yaml:"output_fields"`
	Pattern      string   `yaml:"pattern"`
	Delimiter    string   `yaml:"delimiter"`
}

// SplitColumn is the split_column step.
type SplitColumn struct {
	params SplitColumnParams
	fields []splitter
}

type splitter struct {
	SplitField
	pattern   *regexp.Regexp
	delimiter *regexp.Regexp
}

// NewSplitColumn validates params and compiles the expressions.
func NewSplitColumn(params SplitColumnParams) (*SplitColumn, error) {
	if len(params.Fields) == 0 {
		return nil, fmt.Errorf("split_column: no fields configured")
	}
	s := &SplitColumn{params: params}
	for _, f := range params.Fields {
		sp := splitter{SplitField: f}
		if f.InputField == "" || len(f.OutputFields) == 0 {
			return nil, fmt.Errorf("split_column: input_field and output_fields are required")
		}
		switch {
		case f.Pattern != "" && f.Delimiter != "":
			return nil, fmt.Errorf("split_column: field %q: pattern and delimiter are mutually exclusive", f.InputField)
		case f.Pattern != "":
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, fmt.Errorf("split_column: field %q: invalid pattern: %w", f.InputField, err)
			}
			if re.NumSubexp() != len(f.OutputFields) {
				return nil, fmt.Errorf("split_column: field %q: pattern has %d groups for %d output fields",
					f.InputField, re.NumSubexp(), len(f.OutputFields))
			}
			sp.pattern = re
		case f.Delimiter != "":
			re, err := regexp.Compile(f.Delimiter)
			if err != nil {
				return nil, fmt.Errorf("split_column: field %q: invalid delimiter: %w", f.InputField, err)
			}
			sp.delimiter = re
		default:
			return nil, fmt.Errorf("split_column: field %q: pattern or delimiter is required", f.InputField)
		}
		s.fields = append(s.fields, sp)
	}
	return s, nil
}

// Name returns the processor name.
func (s *SplitColumn) Name() string { return "split_column" }

// Bind returns the row transformer for res.
func (s *SplitColumn) Bind(res *datapackage.Resource) (core.Transformer, error) {
	b, err := bindResource(s.Name(), s.params.Resources, s.params.BooleanStatement, res)
	if err != nil || b == nil {
		return nil, err
	}
	for _, sp := range s.fields {
		b.outputs = append(b.outputs, sp.OutputFields...)
		if s.params.DeleteInput {
			b.drop = append(b.drop, s.inputsToDrop(sp)...)
		}
	}
	return b.transformer(func(row int, rec core.Record) error {
		for _, sp := range s.fields {
			v, err := requireField(rec, sp.InputField)
			if err != nil {
				return err
			}
			if b.isNull(v) {
				for _, out := range sp.OutputFields {
					rec[out] = nil
				}
				continue
			}
			parts, err := sp.split(textOf(v))
			if err != nil {
				return err
			}
			for i, out := range sp.OutputFields {
				rec[out] = parts[i]
			}
		}
		return nil
	}), nil
}

// inputsToDrop keeps an input that is also one of its own outputs.
func (s *SplitColumn) inputsToDrop(sp splitter) []string {
	for _, out := range sp.OutputFields {
		if out == sp.InputField {
			return nil
		}
	}
	return []string{sp.InputField}
}

func (sp splitter) split(text string) ([]string, error) {
	if sp.pattern != nil {
		m := sp.pattern.FindStringSubmatch(text)
		if m == nil {
			return nil, fmt.Errorf("value %q in %q does not match pattern %q", text, sp.InputField, sp.Pattern)
		}
		return m[1:], nil
	}
	parts := sp.delimiter.Split(text, -1)
	if len(parts) != len(sp.OutputFields) {
		return nil, fmt.Errorf("value %q in %q splits into %d parts, expected %d",
			text, sp.InputField, len(parts), len(sp.OutputFields))
	}
	return parts, nil
}

// UpdateSchema adds the outputs as strings and removes deleted inputs.
func (s *SplitColumn) UpdateSchema(pkg *datapackage.Package) error {
	return forEachResource(pkg, s.params.Resources, func(res *datapackage.Resource) error {
		for _, sp := range s.fields {
			for _, out := range sp.OutputFields {
				res.Schema.AddField(datapackage.Field{Name: out, Type: datapackage.TypeString})
			}
			if s.params.DeleteInput {
				for _, name := range s.inputsToDrop(sp) {
					res.Schema.RemoveField(name)
				}
			}
		}
		return nil
	})
}
