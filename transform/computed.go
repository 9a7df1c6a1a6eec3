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
	"strings"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/aaronlmathis/datasteps/expr"
)

// ComputedFieldsParams configures boolean_add_computed_field.
type ComputedFieldsParams struct {
	Common `yaml:",inline"`
	Fields []ComputedField `yaml:"fields"`
}

// ComputedField sets Target from the first function whose boolean holds.
type ComputedField struct {
	Target    string             `yaml:"target"`
	Type      string             `yaml:"type"`
	Functions []ComputedFunction `yaml:"functions"`
}

// ComputedFunction is one conditional rule of a computed field.
type ComputedFunction struct {
	// Boolean selects the rows the rule applies to. Empty matches every row.
	Boolean string `yaml:"boolean"`
	// Value is a template with {field} substitutions, or an arithmetic
	// expression when MathOperation is set.
	Value         string `yaml:"value"`
	MathOperation bool   `yaml:"math_operation"`
}

// ComputedFields is the boolean_add_computed_field step.
type ComputedFields struct {
	params ComputedFieldsParams
	fields []compiledField
}

type compiledField struct {
	target string
	rules  []compiledRule
}

type compiledRule struct {
	when  *expr.Boolean
	value valueTemplate
}

// NewComputedFields validates params and compiles every expression.
func NewComputedFields(params ComputedFieldsParams) (*ComputedFields, error) {
	if len(params.Fields) == 0 {
		return nil, fmt.Errorf("boolean_add_computed_field: no fields configured")
	}
	s := &ComputedFields{params: params}
	for _, f := range params.Fields {
		if f.Target == "" {
			return nil, fmt.Errorf("boolean_add_computed_field: field target is required")
		}
		cf := compiledField{target: f.Target}
		for _, fn := range f.Functions {
			when, err := expr.Compile(fn.Boolean)
			if err != nil {
				return nil, fmt.Errorf("boolean_add_computed_field: target %q: %w", f.Target, err)
			}
			value, err := compileTemplate(fn.Value, fn.MathOperation)
			if err != nil {
				return nil, fmt.Errorf("boolean_add_computed_field: target %q: %w", f.Target, err)
			}
			cf.rules = append(cf.rules, compiledRule{when: when, value: value})
		}
		s.fields = append(s.fields, cf)
	}
	return s, nil
}

// Name returns the processor name.
func (s *ComputedFields) Name() string { return "boolean_add_computed_field" }

// Bind returns the row transformer for res.
func (s *ComputedFields) Bind(res *datapackage.Resource) (core.Transformer, error) {
	b, err := bindResource(s.Name(), s.params.Resources, s.params.BooleanStatement, res)
	if err != nil || b == nil {
		return nil, err
	}
	for _, f := range s.fields {
		b.outputs = append(b.outputs, f.target)
	}
	return b.transformer(func(row int, rec core.Record) error {
		for _, f := range s.fields {
			if err := s.apply(b, f, row, rec); err != nil {
				return err
			}
		}
		return nil
	}), nil
}

func (s *ComputedFields) apply(b *binding, f compiledField, row int, rec core.Record) error {
	for _, rule := range f.rules {
		ok, err := expr.Check(rule.when, row, rec, b.missing)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		value, err := rule.value.render(row, rec, b.missing)
		if err != nil {
			return err
		}
		rec[f.target] = value
		return nil
	}
	if _, exists := rec[f.target]; !exists {
		rec[f.target] = nil
	}
	return nil
}

// UpdateSchema adds each target, or updates its type when it already exists.
func (s *ComputedFields) UpdateSchema(pkg *datapackage.Package) error {
	return forEachResource(pkg, s.params.Resources, func(res *datapackage.Resource) error {
		for _, f := range s.params.Fields {
			if existing := res.Schema.Field(f.Target); existing != nil {
				if f.Type != "" {
					existing.Type = f.Type
				}
				continue
			}
			res.Schema.AddField(datapackage.Field{Name: f.Target, Type: computedType(f)})
		}
		return nil
	})
}

// computedType is the declared type, else number for arithmetic-only rules, else string.
func computedType(f ComputedField) string {
	if f.Type != "" {
		return f.Type
	}
	if len(f.Functions) == 0 {
		return datapackage.TypeString
	}
	for _, fn := range f.Functions {
		if !fn.MathOperation {
			return datapackage.TypeString
		}
	}
	return datapackage.TypeNumber
}

var templateField = regexp.MustCompile(`\{([^{}]*)\}`)

var nullWords = map[string]bool{"null": true, "NULL": true, "None": true, "NONE": true}

// valueTemplate is the compiled value of a computed rule.
type valueTemplate struct {
	null  bool
	ref   string // set when the template is exactly one field reference
	parts []templatePart
	math  *expr.Math
}

type templatePart struct {
	text  string
	field string
	isRef bool
}

func compileTemplate(value string, math bool) (valueTemplate, error) {
	if math {
		m, err := expr.CompileMath(value)
		if err != nil {
			return valueTemplate{}, err
		}
		if m == nil {
			return valueTemplate{null: true}, nil
		}
		return valueTemplate{math: m}, nil
	}
	trimmed := strings.TrimSpace(value)
	if nullWords[trimmed] {
		return valueTemplate{null: true}, nil
	}
	if loc := templateField.FindStringSubmatchIndex(trimmed); loc != nil && loc[0] == 0 && loc[1] == len(trimmed) {
		return valueTemplate{ref: trimmed[loc[2]:loc[3]]}, nil
	}
	var t valueTemplate
	last := 0
	for _, loc := range templateField.FindAllStringSubmatchIndex(value, -1) {
		if loc[0] > last {
			t.parts = append(t.parts, templatePart{text: value[last:loc[0]]})
		}
		t.parts = append(t.parts, templatePart{field: value[loc[2]:loc[3]], isRef: true})
		last = loc[1]
	}
	if last < len(value) {
		t.parts = append(t.parts, templatePart{text: value[last:]})
	}
	return t, nil
}

func (t valueTemplate) render(row int, rec core.Record, missing datapackage.MissingValues) (interface{}, error) {
	switch {
	case t.null:
		return nil, nil
	case t.math != nil:
		d, err := t.math.Evaluate(row, rec, missing)
		if err != nil {
			return nil, err
		}
		if !d.Valid {
			return nil, nil
		}
		return d.Decimal, nil
	case t.ref != "":
		return requireField(rec, t.ref)
	}
	var sb strings.Builder
	for _, p := range t.parts {
		if !p.isRef {
			sb.WriteString(p.text)
			continue
		}
		v, err := requireField(rec, p.field)
		if err != nil {
			return nil, err
		}
		if !missing.IsMissing(v) {
			sb.WriteString(textOf(v))
		}
	}
	return sb.String(), nil
}
