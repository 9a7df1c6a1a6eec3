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

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/aaronlmathis/datasteps/expr"
	"github.com/shopspring/decimal"
)

// RoundFieldsParams configures round_fields.
type RoundFieldsParams struct {
	Common `yaml:",inline"`
	Fields []RoundField `yaml:"fields"`
}

// RoundField rounds Name to Digits decimal places, half away from zero.
type RoundField struct {
	Name   string `yaml:"name"`
	Digits int32  `yaml:"digits"`
	// PreserveTrailingZeros keeps the scale after rounding, so 1.5 to 2 digits is 1.50.
	PreserveTrailingZeros bool `yaml:"preserve_trailing_zeros"`
	// MaximumPrecision leaves values that already have Digits or fewer places untouched.
	MaximumPrecision bool `yaml:"maximum_precision"`
	// ConvertToInteger stores the result as an integer. Requires Digits of 0.
	ConvertToInteger bool `yaml:"convert_to_integer"`
}

// RoundFields is the round_fields step.
type RoundFields struct {
	params RoundFieldsParams
}

// NewRoundFields validates params.
func NewRoundFields(params RoundFieldsParams) (*RoundFields, error) {
	if len(params.Fields) == 0 {
		return nil, fmt.Errorf("round_fields: no fields configured")
	}
	for _, f := range params.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("round_fields: field name is required")
		}
		if f.Digits < 0 {
			return nil, fmt.Errorf("round_fields: field %q: digits must not be negative", f.Name)
		}
		if f.ConvertToInteger && f.Digits != 0 {
			return nil, fmt.Errorf("round_fields: field %q: convert_to_integer requires digits 0", f.Name)
		}
	}
	return &RoundFields{params: params}, nil
}

// Name returns the processor name.
func (s *RoundFields) Name() string { return "round_fields" }

// Bind returns the row transformer for res.
func (s *RoundFields) Bind(res *datapackage.Resource) (core.Transformer, error) {
	b, err := bindResource(s.Name(), s.params.Resources, s.params.BooleanStatement, res)
	if err != nil || b == nil {
		return nil, err
	}
	return b.transformer(func(row int, rec core.Record) error {
		for _, f := range s.params.Fields {
			v, err := requireField(rec, f.Name)
			if err != nil {
				return err
			}
			if b.isNull(v) {
				continue
			}
			d, err := expr.ToDecimal(v)
			if err != nil {
				return &expr.TypeMismatchError{Reason: fmt.Sprintf("field %q is not a number: %v", f.Name, err)}
			}
			rec[f.Name] = roundValue(d, f)
		}
		return nil
	}), nil
}

func roundValue(d decimal.Decimal, f RoundField) interface{} {
	places := -d.Exponent()
	if !f.MaximumPrecision || places > f.Digits {
		d = d.Round(f.Digits)
	}
	if f.ConvertToInteger {
		return d.IntPart()
	}
	if !f.PreserveTrailingZeros {
		d = trimTrailingZeros(d)
	}
	return d
}

// trimTrailingZeros drops insignificant fractional zeros from the scale.
func trimTrailingZeros(d decimal.Decimal) decimal.Decimal {
	trimmed, err := decimal.NewFromString(d.String())
	if err != nil {
		return d
	}
	return trimmed
}

// UpdateSchema retypes the rounded fields.
func (s *RoundFields) UpdateSchema(pkg *datapackage.Package) error {
	return forEachResource(pkg, s.params.Resources, func(res *datapackage.Resource) error {
		for _, f := range s.params.Fields {
			field := res.Schema.Field(f.Name)
			if field == nil {
				continue
			}
			if f.ConvertToInteger {
				field.Type = datapackage.TypeInteger
			} else {
				field.Type = datapackage.TypeNumber
			}
		}
		return nil
	})
}
