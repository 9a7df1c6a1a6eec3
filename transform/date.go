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
	"strings"
	"time"
	_ "time/tzdata"

	"cloud.google.com/go/civil"
	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/aaronlmathis/datasteps/expr"
	"github.com/aaronlmathis/datasteps/logger"
	"github.com/itchyny/timefmt-go"
	"github.com/shopspring/decimal"
)

// Input types understood by convert_date.
const (
	InputPython = "python"
	InputExcel  = "excel"
	InputMatlab = "matlab"
)

// Output types understood by convert_date.
const (
	OutputDateTime = "datetime"
	OutputDate     = "date"
	OutputTime     = "time"
	OutputString   = "string"
)

var (
	excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	// matlabUnixDay is the datenum of 1970-01-01.
	matlabUnixDay = decimal.NewFromInt(719529)
	nanosPerDay   = decimal.NewFromInt(int64(24 * time.Hour))
	// Roughly 10000 years either side of the epoch.
	maxSerialDays = decimal.NewFromInt(3_660_000)
)

// ConvertDateParams configures convert_date.
type ConvertDateParams struct {
	Common `yaml:",inline"`
	Fields []DateField `yaml:"fields"`
}

// DateInput is one source field and its strftime format.
type DateInput struct {
	Field  string `yaml:"field"`
	Format string `yaml:"format"`
}

// DateField converts one or more inputs into OutputField.
type DateField struct {
	Inputs    []DateInput `yaml:"inputs"`
	InputType string      `yaml:"input_type"`
	// InputTimezone names the zone of naive inputs, e.g. "America/New_York".
	InputTimezone string `yaml:"input_timezone"`
	// InputTimezoneUTCOffset is the fixed offset in hours used with InputTimezone
	// names that are not in the tz database (e.g. "EST" with -5).
	InputTimezoneUTCOffset float64 `yaml:"input_timezone_utc_offset"`
	OutputField            string  `yaml:"output_field"`
	OutputFormat           string  `yaml:"output_format"`
	OutputType             string  `yaml:"output_type"`
	OutputTimezone         string  `yaml:"output_timezone"`
}

// ConvertDate is the convert_date step.
type ConvertDate struct {
	params ConvertDateParams
	fields []dateConverter
}

type dateConverter struct {
	DateField
	inputLoc  *time.Location
	outputLoc *time.Location
	format    string
}

// NewConvertDate validates params and resolves time zones.
func NewConvertDate(params ConvertDateParams) (*ConvertDate, error) {
	if len(params.Fields) == 0 {
		return nil, fmt.Errorf("convert_date: no fields configured")
	}
	s := &ConvertDate{params: params}
	for i, f := range params.Fields {
		c, err := newDateConverter(f)
		if err != nil {
			return nil, fmt.Errorf("convert_date: field %d: %w", i, err)
		}
		s.fields = append(s.fields, c)
	}
	return s, nil
}

func newDateConverter(f DateField) (dateConverter, error) {
	c := dateConverter{DateField: f, inputLoc: time.UTC}
	if f.InputType == "" {
		c.InputType = InputPython
	}
	if f.OutputType == "" {
		c.OutputType = OutputDateTime
	}
	if f.OutputField == "" {
		return c, fmt.Errorf("output_field is required")
	}
	if len(f.Inputs) == 0 {
		return c, fmt.Errorf("at least one input is required")
	}

	switch c.InputType {
	case InputPython:
		formats := make([]string, 0, len(f.Inputs))
		for _, in := range f.Inputs {
			if in.Format == "" {
				return c, fmt.Errorf("input %q has no format", in.Field)
			}
			formats = append(formats, in.Format)
		}
		c.format = strings.Join(formats, " ")
	case InputExcel, InputMatlab:
		if len(f.Inputs) != 1 {
			return c, fmt.Errorf("input_type %s takes exactly one input", c.InputType)
		}
	default:
		return c, fmt.Errorf("unknown input_type %q", f.InputType)
	}

	switch c.OutputType {
	case OutputDateTime, OutputDate, OutputTime:
	case OutputString:
		if f.OutputFormat == "" {
			return c, fmt.Errorf("output_format is required for output_type string")
		}
	default:
		return c, fmt.Errorf("unknown output_type %q", f.OutputType)
	}

	if f.InputTimezone != "" {
		loc, err := loadZone(f.InputTimezone, f.InputTimezoneUTCOffset)
		if err != nil {
			return c, err
		}
		c.inputLoc = loc
		if strings.Contains(c.format, "%z") || strings.Contains(c.format, "%Z") {
			logger.Warn("input format carries a zone, input_timezone only applies to naive values",
				"output_field", f.OutputField, "input_timezone", f.InputTimezone)
		}
	}
	if f.OutputTimezone != "" {
		loc, err := loadZone(f.OutputTimezone, 0)
		if err != nil {
			return c, err
		}
		c.outputLoc = loc
	}
	return c, nil
}

// loadZone resolves a tz database name, falling back to a fixed offset in hours.
func loadZone(name string, offsetHours float64) (*time.Location, error) {
	if offsetHours != 0 {
		return time.FixedZone(name, int(offsetHours*3600)), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q (set input_timezone_utc_offset for abbreviations): %w", name, err)
	}
	return loc, nil
}

// Name returns the processor name.
func (s *ConvertDate) Name() string { return "convert_date" }

// Bind returns the row transformer for res.
func (s *ConvertDate) Bind(res *datapackage.Resource) (core.Transformer, error) {
	b, err := bindResource(s.Name(), s.params.Resources, s.params.BooleanStatement, res)
	if err != nil || b == nil {
		return nil, err
	}
	for _, c := range s.fields {
		b.outputs = append(b.outputs, c.OutputField)
	}
	return b.transformer(func(row int, rec core.Record) error {
		for _, c := range s.fields {
			value, err := c.convert(b, rec)
			if err != nil {
				return err
			}
			rec[c.OutputField] = value
		}
		return nil
	}), nil
}

func (c dateConverter) convert(b *binding, rec core.Record) (interface{}, error) {
	values := make([]interface{}, 0, len(c.Inputs))
	for _, in := range c.Inputs {
		v, err := requireField(rec, in.Field)
		if err != nil {
			return nil, err
		}
		if b.isNull(v) {
			return nil, nil
		}
		values = append(values, v)
	}

	var t time.Time
	switch c.InputType {
	case InputExcel:
		days, err := expr.ToDecimal(values[0])
		if err != nil {
			return nil, fmt.Errorf("excel date in %q: %w", c.Inputs[0].Field, err)
		}
		if t, err = fromSerialDays(excelEpoch, days, c.inputLoc); err != nil {
			return nil, fmt.Errorf("excel date in %q: %w", c.Inputs[0].Field, err)
		}
	case InputMatlab:
		days, err := expr.ToDecimal(values[0])
		if err != nil {
			return nil, fmt.Errorf("matlab date in %q: %w", c.Inputs[0].Field, err)
		}
		if t, err = fromSerialDays(time.Unix(0, 0).UTC(), days.Sub(matlabUnixDay), c.inputLoc); err != nil {
			return nil, fmt.Errorf("matlab date in %q: %w", c.Inputs[0].Field, err)
		}
	default:
		// An already typed timestamp carries its own zone.
		if ts, ok := values[0].(time.Time); ok && len(values) == 1 {
			t = ts
			break
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = inputText(v, c.Inputs[i].Format)
		}
		text := strings.Join(parts, " ")
		parsed, err := timefmt.ParseInLocation(text, c.format, c.inputLoc)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q with format %q: %w", text, c.format, err)
		}
		t = parsed
	}

	if c.outputLoc != nil {
		t = t.In(c.outputLoc)
	}
	switch c.OutputType {
	case OutputDate:
		return civil.DateOf(t), nil
	case OutputTime:
		return civil.TimeOf(t), nil
	case OutputString:
		return timefmt.Format(t, c.OutputFormat), nil
	}
	return t, nil
}

// fromSerialDays adds a fractional day count to epoch and reads the wall clock in loc.
// Whole days go through the calendar so serials past the time.Duration range still resolve.
func fromSerialDays(epoch time.Time, days decimal.Decimal, loc *time.Location) (time.Time, error) {
	whole := days.Floor()
	if whole.Abs().GreaterThan(maxSerialDays) {
		return time.Time{}, fmt.Errorf("serial day %s out of range", days)
	}
	frac := days.Sub(whole).Mul(nanosPerDay).Round(0).IntPart()
	wall := epoch.AddDate(0, 0, int(whole.IntPart())).Add(time.Duration(frac))
	return time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), loc), nil
}

// inputText renders one input value for parsing. Typed temporal values are
// printed with their own input format so the joined format still lines up.
func inputText(v interface{}, format string) string {
	switch tv := v.(type) {
	case time.Time:
		return timefmt.Format(tv, format)
	case civil.Date:
		return timefmt.Format(tv.In(time.UTC), format)
	case civil.Time:
		return timefmt.Format(time.Date(1900, 1, 1, tv.Hour, tv.Minute, tv.Second, tv.Nanosecond, time.UTC), format)
	case civil.DateTime:
		return timefmt.Format(tv.In(time.UTC), format)
	}
	return textOf(v)
}

// UpdateSchema adds or retypes every output field.
func (s *ConvertDate) UpdateSchema(pkg *datapackage.Package) error {
	return forEachResource(pkg, s.params.Resources, func(res *datapackage.Resource) error {
		for _, c := range s.fields {
			field := datapackage.Field{Name: c.OutputField, Type: c.OutputType}
			if c.OutputType != OutputString && c.OutputFormat != "" {
				field.Format = c.OutputFormat
			}
			if existing := res.Schema.Field(c.OutputField); existing != nil {
				existing.Type = field.Type
				existing.Format = field.Format
				continue
			}
			res.Schema.AddField(field)
		}
		return nil
	})
}
