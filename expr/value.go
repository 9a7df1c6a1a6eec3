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
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Kind is the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindDecimal
	KindText
	KindDateTime
	KindDate
	KindTime
	KindPattern
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindDecimal:
		return "number"
	case KindText:
		return "string"
	case KindDateTime:
		return "datetime"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindPattern:
		return "regex"
	default:
		return "unknown"
	}
}

// Value is an operand during evaluation: a closed set of variants with explicit coercions.
type Value struct {
	kind  Kind
	b     bool
	num   decimal.Decimal
	text  string
	at    time.Time
	date  civil.Date
	clock civil.Time
	re    *regexp.Regexp
}

func Null() Value                          { return Value{kind: KindNull} }
func BoolValue(b bool) Value               { return Value{kind: KindBool, b: b} }
func DecimalValue(d decimal.Decimal) Value { return Value{kind: KindDecimal, num: d} }
func TextValue(s string) Value             { return Value{kind: KindText, text: s} }
func DateTimeValue(t time.Time) Value      { return Value{kind: KindDateTime, at: t} }
func DateValue(d civil.Date) Value         { return Value{kind: KindDate, date: d} }
func TimeValue(t civil.Time) Value         { return Value{kind: KindTime, clock: t} }
func PatternValue(re *regexp.Regexp) Value { return Value{kind: KindPattern, re: re} }

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null domain value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Interface returns the Go representation of v: nil, bool, decimal.Decimal, string,
// time.Time, civil.Date, civil.Time or *regexp.Regexp.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindDecimal:
		return v.num
	case KindText:
		return v.text
	case KindDateTime:
		return v.at
	case KindDate:
		return v.date
	case KindTime:
		return v.clock
	case KindPattern:
		return v.re
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDecimal:
		return v.num.String()
	case KindText:
		return v.text
	case KindDateTime:
		return v.at.Format(time.RFC3339Nano)
	case KindDate:
		return v.date.String()
	case KindTime:
		return v.clock.String()
	case KindPattern:
		return "re'" + v.re.String() + "'"
	default:
		return "?"
	}
}

// FromInterface converts a row value into a Value. Numbers become decimals,
// temporal values keep their precision, strings stay text.
// Missing-value handling is the caller's job.
func FromInterface(raw interface{}) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case string:
		return TextValue(x), nil
	case []byte:
		return TextValue(string(x)), nil
	case bool:
		return BoolValue(x), nil
	case decimal.Decimal:
		return DecimalValue(x), nil
	case *decimal.Decimal:
		if x == nil {
			return Null(), nil
		}
		return DecimalValue(*x), nil
	case decimal.NullDecimal:
		if !x.Valid {
			return Null(), nil
		}
		return DecimalValue(x.Decimal), nil
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return Value{}, &TypeMismatchError{Reason: fmt.Sprintf("invalid number %q", x.String())}
		}
		return DecimalValue(d), nil
	case float32:
		return floatValue(float64(x))
	case float64:
		return floatValue(x)
	case int, int8, int16, int32, int64:
		return DecimalValue(decimal.NewFromInt(cast.ToInt64(x))), nil
	case uint, uint8, uint16, uint32, uint64:
		return DecimalValue(decimal.NewFromBigInt(new(big.Int).SetUint64(cast.ToUint64(x)), 0)), nil
	case time.Time:
		return DateTimeValue(x), nil
	case *time.Time:
		if x == nil {
			return Null(), nil
		}
		return DateTimeValue(*x), nil
	case civil.Date:
		return DateValue(x), nil
	case civil.Time:
		return TimeValue(x), nil
	case civil.DateTime:
		return DateTimeValue(x.In(time.UTC)), nil
	case *regexp.Regexp:
		return PatternValue(x), nil
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return Value{}, &TypeMismatchError{Reason: fmt.Sprintf("unsupported value type %T", raw)}
	}
	return TextValue(s), nil
}

// floatValue converts a float; NaN is treated as missing data.
func floatValue(f float64) (Value, error) {
	if math.IsNaN(f) {
		return Null(), nil
	}
	if math.IsInf(f, 0) {
		return Value{}, &TypeMismatchError{Reason: "infinite values cannot be represented as decimals"}
	}
	return DecimalValue(decimal.NewFromFloat(f)), nil
}

// ToDecimal coerces a non-null row value to a decimal. Numeric strings are accepted.
func ToDecimal(raw interface{}) (decimal.Decimal, error) {
	if s, ok := raw.(string); ok {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("cannot convert %q to a number", s)
		}
		return d, nil
	}
	v, err := FromInterface(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	switch v.kind {
	case KindDecimal:
		return v.num, nil
	case KindBool:
		if v.b {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	case KindText:
		d, err := decimal.NewFromString(strings.TrimSpace(v.text))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("cannot convert %q to a number", v.text)
		}
		return d, nil
	}
	return decimal.Decimal{}, fmt.Errorf("cannot convert %s to a number", v.kind)
}

// parseDateLiteral parses a date, time or datetime literal.
// The literal's shape picks the variant: no clock part gives a date,
// no calendar part gives a time, both give a datetime. Zoneless literals are UTC.
func parseDateLiteral(s string) (Value, error) {
	hasDate := strings.ContainsAny(s, "/-")
	hasClock := strings.Contains(s, ":")
	switch {
	case hasDate && !hasClock:
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return Value{}, fmt.Errorf("invalid date %q: %v", s, err)
		}
		return DateValue(civil.DateOf(t)), nil
	case hasClock && !hasDate:
		t, err := dateparse.ParseIn("2000-01-01 "+s, time.UTC)
		if err != nil {
			return Value{}, fmt.Errorf("invalid time %q: %v", s, err)
		}
		return TimeValue(civil.TimeOf(t)), nil
	default:
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return Value{}, fmt.Errorf("invalid datetime %q: %v", s, err)
		}
		return DateTimeValue(t), nil
	}
}

func quote(s string) string {
	return strconv.Quote(s)
}
