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
	"github.com/shopspring/decimal"
)

// Coordinate formats understood by convert_to_decimal_degrees.
const (
	FormatDMS            = "degrees-minutes-seconds"
	FormatDecimalMinutes = "degrees-decimal_minutes"
)

var sixty = decimal.NewFromInt(60)

// DecimalDegreesParams configures convert_to_decimal_degrees.
type DecimalDegreesParams struct {
	Common `yaml:",inline"`
	Fields []DegreesField `yaml:"fields"`
}

// DegreesField converts InputField into decimal degrees stored in OutputField.
type DegreesField struct {
	InputField  string `yaml:"input_field"`
	OutputField string `yaml:"output_field"`
	Format      string `yaml:"format"`
	// Pattern must define the named groups degrees and minutes, seconds for
	// degrees-minutes-seconds, and optionally directional.
	Pattern string `yaml:"pattern"`
	// Directional applies one of N, S, E or W to every value when the pattern has none.
	Directional       string `yaml:"directional"`
	HandleOutOfBounds bool   `yaml:"handle_out_of_bounds"`
}

// DecimalDegrees is the convert_to_decimal_degrees step.
type DecimalDegrees struct {
	params DecimalDegreesParams
	fields []degreesConverter
}

type degreesConverter struct {
	DegreesField
	re *regexp.Regexp
}

// NewDecimalDegrees validates params and compiles the patterns.
func NewDecimalDegrees(params DecimalDegreesParams) (*DecimalDegrees, error) {
	if len(params.Fields) == 0 {
		return nil, fmt.Errorf("convert_to_decimal_degrees: no fields configured")
	}
	s := &DecimalDegrees{params: params}
	for _, f := range params.Fields {
		c, err := newDegreesConverter(f)
		if err != nil {
			return nil, fmt.Errorf("convert_to_decimal_degrees: field %q: %w", f.InputField, err)
		}
		s.fields = append(s.fields, c)
	}
	return s, nil
}

func newDegreesConverter(f DegreesField) (degreesConverter, error) {
	c := degreesConverter{DegreesField: f}
	if f.InputField == "" || f.OutputField == "" {
		return c, fmt.Errorf("input_field and output_field are required")
	}
	if f.Format != FormatDMS && f.Format != FormatDecimalMinutes {
		return c, fmt.Errorf("unknown format %q", f.Format)
	}
	if f.Pattern == "" {
		return c, fmt.Errorf("pattern is required")
	}
	re, err := regexp.Compile(f.Pattern)
	if err != nil {
		return c, fmt.Errorf("invalid pattern: %w", err)
	}
	required := []string{"degrees", "minutes"}
	if f.Format == FormatDMS {
		required = append(required, "seconds")
	}
	for _, group := range required {
		if re.SubexpIndex(group) < 0 {
			return c, fmt.Errorf("pattern is missing the named group %q", group)
		}
	}
	if f.Directional != "" {
		if _, err := directionSign(f.Directional); err != nil {
			return c, err
		}
	}
	c.re = re
	return c, nil
}

// Name returns the processor name.
func (s *DecimalDegrees) Name() string { return "convert_to_decimal_degrees" }

// Bind returns the row transformer for res.
func (s *DecimalDegrees) Bind(res *datapackage.Resource) (core.Transformer, error) {
	b, err := bindResource(s.Name(), s.params.Resources, s.params.BooleanStatement, res)
	if err != nil || b == nil {
		return nil, err
	}
	for _, c := range s.fields {
		b.outputs = append(b.outputs, c.OutputField)
	}
	return b.transformer(func(row int, rec core.Record) error {
		for _, c := range s.fields {
			v, err := requireField(rec, c.InputField)
			if err != nil {
				return err
			}
			if b.isNull(v) {
				rec[c.OutputField] = nil
				continue
			}
			d, err := c.convert(textOf(v))
			if err != nil {
				return err
			}
			rec[c.OutputField] = d
		}
		return nil
	}), nil
}

func (c degreesConverter) convert(text string) (decimal.Decimal, error) {
	m := c.re.FindStringSubmatch(text)
	if m == nil {
		return decimal.Decimal{}, fmt.Errorf("value %q in %q does not match pattern %q", text, c.InputField, c.Pattern)
	}
	group := func(name string) string {
		if i := c.re.SubexpIndex(name); i >= 0 {
			return strings.TrimSpace(m[i])
		}
		return ""
	}

	degrees, err := decimal.NewFromString(group("degrees"))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("degrees %q in %q is not a number", group("degrees"), c.InputField)
	}
	minutes, err := decimal.NewFromString(group("minutes"))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("minutes %q in %q is not a number", group("minutes"), c.InputField)
	}
	seconds := decimal.Zero
	if c.Format == FormatDMS {
		seconds, err = decimal.NewFromString(group("seconds"))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("seconds %q in %q is not a number", group("seconds"), c.InputField)
		}
	}
	if !c.HandleOutOfBounds {
		if minutes.IsNegative() || minutes.GreaterThanOrEqual(sixty) {
			return decimal.Decimal{}, fmt.Errorf("minutes %s in %q out of bounds [0, 60)", minutes, c.InputField)
		}
		if seconds.IsNegative() || seconds.GreaterThanOrEqual(sixty) {
			return decimal.Decimal{}, fmt.Errorf("seconds %s in %q out of bounds [0, 60)", seconds, c.InputField)
		}
	}

	fraction := minutes.Div(sixty).Add(seconds.Div(sixty.Mul(sixty)))
	result := degrees.Abs().Add(fraction)
	if degrees.IsNegative() || strings.HasPrefix(group("degrees"), "-") {
		result = result.Neg()
	}

	direction := group("directional")
	if direction == "" {
		direction = c.Directional
	}
	if direction != "" {
		sign, err := directionSign(direction)
		if err != nil {
			return decimal.Decimal{}, err
		}
		if sign < 0 {
			if result.IsNegative() {
				return decimal.Decimal{}, fmt.Errorf("value %q in %q is negative and has directional %q", text, c.InputField, direction)
			}
			result = result.Neg()
		}
	}
	return result, nil
}

// directionSign maps N and E to 1, S and W to -1.
func directionSign(direction string) (int, error) {
	switch strings.ToUpper(strings.TrimSpace(direction)) {
	case "N", "E":
		return 1, nil
	case "S", "W":
		return -1, nil
	}
	return 0, fmt.Errorf("invalid directional %q, expected N, S, E or W", direction)
}

// UpdateSchema adds every output field as a number.
func (s *DecimalDegrees) UpdateSchema(pkg *datapackage.Package) error {
	return forEachResource(pkg, s.params.Resources, func(res *datapackage.Resource) error {
		for _, c := range s.fields {
			if existing := res.Schema.Field(c.OutputField); existing != nil {
				existing.Type = datapackage.TypeNumber
				continue
			}
			res.Schema.AddField(datapackage.Field{Name: c.OutputField, Type: datapackage.TypeNumber})
		}
		return nil
	})
}
