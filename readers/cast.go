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

package readers

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/araddon/dateparse"
	"github.com/itchyny/timefmt-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Field formats with special meaning for temporal types.
const (
	formatDefault = "default"
	formatAny     = "any"
)

// caster converts raw text cells into typed row values following a schema.
type caster struct {
	fields  map[string]datapackage.Field
	missing datapackage.MissingValues
}

func newCaster(schema *datapackage.Schema, missing datapackage.MissingValues) *caster {
	c := &caster{fields: make(map[string]datapackage.Field), missing: missing}
	if schema != nil {
		for _, f := range schema.Fields {
			c.fields[f.Name] = f
		}
	}
	return c
}

// cast returns nil for missing values, the raw text for undeclared or string
// fields and a typed value otherwise.
func (c *caster) cast(name, raw string) (interface{}, error) {
	if c.missing.Contains(raw) {
		return nil, nil
	}
	f, ok := c.fields[name]
	if !ok {
		return raw, nil
	}
	v, err := castField(f, raw)
	if err != nil {
		return nil, fmt.Errorf("field %q (%s): %w", name, f.Type, err)
	}
	return v, nil
}

func castField(f datapackage.Field, raw string) (interface{}, error) {
	text := strings.TrimSpace(raw)
	format := strings.TrimPrefix(f.Format, "fmt:")

	switch f.Type {
	case datapackage.TypeNumber:
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return d, nil
	case datapackage.TypeInteger:
		d, err := decimal.NewFromString(text)
		if err != nil || !d.IsInteger() {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return d.IntPart(), nil
	case datapackage.TypeBoolean:
		b, err := cast.ToBoolE(text)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return b, nil
	case datapackage.TypeDate:
		return castDate(text, format)
	case datapackage.TypeDateTime:
		return castDateTime(text, format)
	case datapackage.TypeTime:
		return castTime(text, format)
	}
	return raw, nil
}

func castDate(text, format string) (interface{}, error) {
	switch format {
	case "", formatDefault:
		return civil.ParseDate(text)
	case formatAny:
		t, err := dateparse.ParseIn(text, time.UTC)
		if err != nil {
			return nil, err
		}
		return civil.DateOf(t), nil
	}
	t, err := timefmt.Parse(text, format)
	if err != nil {
		return nil, err
	}
	return civil.DateOf(t), nil
}

func castDateTime(text, format string) (interface{}, error) {
	switch format {
	case "", formatDefault:
		return time.Parse(time.RFC3339Nano, text)
	case formatAny:
		return dateparse.ParseIn(text, time.UTC)
	}
	return timefmt.Parse(text, format)
}

func castTime(text, format string) (interface{}, error) {
	switch format {
	case "", formatDefault:
		return civil.ParseTime(text)
	case formatAny:
		t, err := dateparse.ParseIn("2000-01-01 "+text, time.UTC)
		if err != nil {
			return nil, err
		}
		return civil.TimeOf(t), nil
	}
	t, err := timefmt.Parse(text, format)
	if err != nil {
		return nil, err
	}
	return civil.TimeOf(t), nil
}
