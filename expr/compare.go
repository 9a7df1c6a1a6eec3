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
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// compare applies op to two resolved operands.
//
// Coercion rules:
//   - a regex operand only supports == and != against text (prefix-anchored match) or null
//   - ordering against null is false
//   - booleans compare as 1 and 0
//   - a datetime compared with a date is reduced to its date
//   - otherwise operands must share a kind; mismatched kinds are unequal and unordered
func compare(op compareOp, l, r Value) (bool, error) {
	if l.kind == KindPattern || r.kind == KindPattern {
		return comparePattern(op, l, r)
	}
	if op.ordering() && (l.IsNull() || r.IsNull()) {
		return false, nil
	}

	l, r = promote(l, r)

	if l.kind != r.kind {
		switch op {
		case opEQ:
			return false, nil
		case opNE:
			return true, nil
		default:
			return false, mismatch(string(op), l.kind, r.kind)
		}
	}

	c, err := cmpSameKind(l, r)
	if err != nil {
		return false, err
	}
	switch op {
	case opGT:
		return c > 0, nil
	case opGE:
		return c >= 0, nil
	case opLT:
		return c < 0, nil
	case opLE:
		return c <= 0, nil
	case opEQ:
		return c == 0, nil
	case opNE:
		return c != 0, nil
	}
	return false, fmt.Errorf("unknown comparator %q", op)
}

func comparePattern(op compareOp, l, r Value) (bool, error) {
	if op.ordering() {
		return false, &TypeMismatchError{
			Op: string(op), Left: l.kind, Right: r.kind,
			Reason: fmt.Sprintf("regular expressions only support == and !=, got %s", op),
		}
	}
	pattern, other := l, r
	if pattern.kind != KindPattern {
		pattern, other = r, l
	}
	var matched bool
	switch other.kind {
	case KindText:
		loc := pattern.re.FindStringIndex(other.text)
		matched = loc != nil && loc[0] == 0
	case KindNull:
		matched = false
	default:
		return false, &TypeMismatchError{
			Op: string(op), Left: l.kind, Right: r.kind,
			Reason: fmt.Sprintf("a regular expression can only be compared with a string or null, got %s", other.kind),
		}
	}
	if op == opNE {
		return !matched, nil
	}
	return matched, nil
}

// promote applies the cross-kind coercions that make operands comparable.
func promote(l, r Value) (Value, Value) {
	if l.kind == KindBool && (r.kind == KindDecimal || r.kind == KindBool) {
		l = DecimalValue(boolDecimal(l.b))
	}
	if r.kind == KindBool && l.kind == KindDecimal {
		r = DecimalValue(boolDecimal(r.b))
	}
	if l.kind == KindDateTime && r.kind == KindDate {
		l = DateValue(civil.DateOf(l.at))
	}
	if r.kind == KindDateTime && l.kind == KindDate {
		r = DateValue(civil.DateOf(r.at))
	}
	return l, r
}

func boolDecimal(b bool) decimal.Decimal {
	if b {
		return decimal.NewFromInt(1)
	}
	return decimal.Zero
}

// cmpSameKind orders two values of the same kind.
func cmpSameKind(l, r Value) (int, error) {
	switch l.kind {
	case KindNull:
		return 0, nil
	case KindDecimal:
		return l.num.Cmp(r.num), nil
	case KindText:
		switch {
		case l.text < r.text:
			return -1, nil
		case l.text > r.text:
			return 1, nil
		}
		return 0, nil
	case KindDateTime:
		return l.at.Compare(r.at), nil
	case KindDate:
		switch {
		case l.date.Before(r.date):
			return -1, nil
		case l.date.After(r.date):
			return 1, nil
		}
		return 0, nil
	case KindTime:
		return cmpClock(l.clock, r.clock), nil
	}
	return 0, mismatch("compare", l.kind, r.kind)
}

func cmpClock(a, b civil.Time) int {
	pairs := [][2]int{{a.Hour, b.Hour}, {a.Minute, b.Minute}, {a.Second, b.Second}, {a.Nanosecond, b.Nanosecond}}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// applyArith evaluates one arithmetic operator on two decimals.
func applyArith(op byte, l, r decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case '+':
		return l.Add(r), nil
	case '-':
		return l.Sub(r), nil
	case '*':
		return l.Mul(r), nil
	case '/':
		if r.IsZero() {
			return decimal.Decimal{}, ErrDivisionByZero
		}
		return l.Div(r), nil
	case '^':
		if r.Abs().GreaterThan(maxPowExponent) {
			return decimal.Decimal{}, &TypeMismatchError{Op: "^", Left: KindDecimal, Right: KindDecimal,
				Reason: fmt.Sprintf("exponent %s exceeds the limit of %s", r, maxPowExponent)}
		}
		d, err := l.PowWithPrecision(r, powPrecision)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("cannot raise %s to the power %s: %w", l, r, err)
		}
		return d, nil
	}
	return decimal.Decimal{}, fmt.Errorf("unknown arithmetic operator %q", op)
}

// powPrecision is the number of decimal places kept for fractional powers.
const powPrecision = 16

// maxPowExponent bounds the magnitude of an exponent.
var maxPowExponent = decimal.NewFromInt(10000)
