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
	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/shopspring/decimal"
)

// env is the per-row evaluation input. It is built by the caller for every row;
// compiled trees never hold onto it.
type env struct {
	row      core.Record
	rowIndex int
	missing  datapackage.MissingValues
}

// compareOp is one of the six comparators.
type compareOp string

const (
	opGT compareOp = ">"
	opGE compareOp = ">="
	opLT compareOp = "<"
	opLE compareOp = "<="
	opEQ compareOp = "=="
	opNE compareOp = "!="
)

func (op compareOp) ordering() bool {
	return op != opEQ && op != opNE
}

// logicalOp is AND or OR.
type logicalOp int

const (
	opAnd logicalOp = iota
	opOr
)

// term is a comparison operand.
type term interface {
	resolve(e *env) (Value, error)
	collect(add func(string))
}

// literalTerm is a value fixed at compile time: number, string, date, regex or null.
type literalTerm struct {
	v Value
}

func (t literalTerm) resolve(*env) (Value, error) { return t.v, nil }
func (t literalTerm) collect(func(string))         {}

// fieldTerm references a row field by name.
type fieldTerm struct {
	name string
}

func (t fieldTerm) resolve(e *env) (Value, error) {
	raw, ok := e.row[t.name]
	if !ok {
		return Value{}, &FieldNotFoundError{Field: t.name}
	}
	if e.missing.IsMissing(raw) {
		return Null(), nil
	}
	return FromInterface(raw)
}

func (t fieldTerm) collect(add func(string)) { add(t.name) }

// rowNumberTerm resolves to the caller-supplied 1-based row index.
type rowNumberTerm struct{}

func (rowNumberTerm) resolve(e *env) (Value, error) {
	return DecimalValue(decimal.NewFromInt(int64(e.rowIndex))), nil
}

func (rowNumberTerm) collect(func(string)) {}

// boolNode is a node of a compiled boolean expression.
type boolNode interface {
	eval(e *env) (bool, error)
	collect(add func(string))
}

// comparisonNode compares two terms.
type comparisonNode struct {
	op          compareOp
	left, right term
}

func (n *comparisonNode) eval(e *env) (bool, error) {
	l, err := n.left.resolve(e)
	if err != nil {
		return false, err
	}
	r, err := n.right.resolve(e)
	if err != nil {
		return false, err
	}
	return compare(n.op, l, r)
}

func (n *comparisonNode) collect(add func(string)) {
	n.left.collect(add)
	n.right.collect(add)
}

// logicalNode combines two already evaluated sides. Both sides are always evaluated.
type logicalNode struct {
	op          logicalOp
	left, right boolNode
}

func (n *logicalNode) eval(e *env) (bool, error) {
	l, err := n.left.eval(e)
	if err != nil {
		return false, err
	}
	r, err := n.right.eval(e)
	if err != nil {
		return false, err
	}
	if n.op == opAnd {
		return l && r, nil
	}
	return l || r, nil
}

func (n *logicalNode) collect(add func(string)) {
	n.left.collect(add)
	n.right.collect(add)
}

// groupNode is a parenthesized expression. An empty group is false.
type groupNode struct {
	inner boolNode
}

func (n *groupNode) eval(e *env) (bool, error) {
	if n.inner == nil {
		return false, nil
	}
	return n.inner.eval(e)
}

func (n *groupNode) collect(add func(string)) {
	if n.inner != nil {
		n.inner.collect(add)
	}
}

// mathNode is a node of a compiled arithmetic expression.
// An invalid NullDecimal is the null result.
type mathNode interface {
	eval(e *env) (decimal.NullDecimal, error)
	collect(add func(string))
}

type numberNode struct {
	d decimal.Decimal
}

func (n numberNode) eval(*env) (decimal.NullDecimal, error) {
	return decimal.NewNullDecimal(n.d), nil
}

func (n numberNode) collect(func(string)) {}

type mathFieldNode struct {
	name string
}

func (n mathFieldNode) eval(e *env) (decimal.NullDecimal, error) {
	return resolveNumber(e, n.name)
}

func (n mathFieldNode) collect(add func(string)) { add(n.name) }

// resolveNumber reads a numeric field. Missing values and NaN resolve to null.
func resolveNumber(e *env, name string) (decimal.NullDecimal, error) {
	raw, ok := e.row[name]
	if !ok {
		return decimal.NullDecimal{}, &FieldNotFoundError{Field: name}
	}
	if e.missing.IsMissing(raw) {
		return decimal.NullDecimal{}, nil
	}
	if v, err := FromInterface(raw); err == nil && v.IsNull() {
		return decimal.NullDecimal{}, nil
	}
	d, err := ToDecimal(raw)
	if err != nil {
		return decimal.NullDecimal{}, &TypeMismatchError{
			Reason: "field " + quote(name) + " is not a number: " + err.Error(),
		}
	}
	return decimal.NewNullDecimal(d), nil
}

// binaryNode applies + - * / or ^. Both operands are resolved before the null check.
type binaryNode struct {
	op          byte
	left, right mathNode
}

func (n *binaryNode) eval(e *env) (decimal.NullDecimal, error) {
	l, err := n.left.eval(e)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	r, err := n.right.eval(e)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if !l.Valid || !r.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := applyArith(n.op, l.Decimal, r.Decimal)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func (n *binaryNode) collect(add func(string)) {
	n.left.collect(add)
	n.right.collect(add)
}
