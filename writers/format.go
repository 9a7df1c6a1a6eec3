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

package writers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/itchyny/timefmt-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// formatValue renders a row value as a CSV cell. field may be nil; when it
// carries a strftime format, temporal values use it.
func formatValue(v interface{}, field *datapackage.Field) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return formatDecimal(x)
	case decimal.NullDecimal:
		if !x.Valid {
			return ""
		}
		return formatDecimal(x.Decimal)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if layout := strftime(field); layout != "" {
			return timefmt.Format(x, layout)
		}
		return x.Format(time.RFC3339Nano)
	case civil.Date:
		if layout := strftime(field); layout != "" {
			return timefmt.Format(x.In(time.UTC), layout)
		}
		return x.String()
	case civil.Time:
		if layout := strftime(field); layout != "" {
			return timefmt.Format(time.Date(2000, 1, 1, x.Hour, x.Minute, x.Second, x.Nanosecond, time.UTC), layout)
		}
		return x.String()
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// formatDecimal keeps the value's scale, so 1.50 stays 1.50.
func formatDecimal(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// strftime returns the field's explicit strftime format, if any.
func strftime(field *datapackage.Field) string {
	if field == nil {
		return ""
	}
	format := strings.TrimPrefix(field.Format, "fmt:")
	if format == "" || format == "default" || format == "any" || !strings.Contains(format, "%") {
		return ""
	}
	return format
}

// jsonValue converts values whose default JSON encoding loses meaning.
// Decimals are written as bare numbers rather than quoted strings.
func jsonValue(v interface{}) interface{} {
	switch x := v.(type) {
	case decimal.Decimal:
		return json.Number(formatDecimal(x))
	case decimal.NullDecimal:
		if !x.Valid {
			return nil
		}
		return json.Number(formatDecimal(x.Decimal))
	}
	return v
}
