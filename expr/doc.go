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

/*
Package expr compiles and evaluates the row-expression language used by DataSteps processors.

Two grammars share one tokenizer. The boolean grammar drives conditional computation and
row filtering; the arithmetic grammar drives computed numeric values. Expressions are
compiled once per resource and evaluated once per row against the live field values.

# Syntax

	{field name}          field reference
	'text'                string literal
	re'^abc\d+'           regular expression literal (boolean grammar only)
	12/31/1995 11:24:31   date, time or datetime literal (boolean grammar only)
	-1.5e3                number literal
	null NULL None NONE   null
	ROW_NUMBER LINE_NUMBER  1-based position of the row in its stream
	>= <= != == > <       comparators
	AND and && OR or ||   boolean connectives
	^ * / + -             arithmetic operators

# Boolean grammar

A boolean expression is a chain of comparisons joined by connectives. AND and OR share a
single left-associative precedence level, so

	{a} > 1 OR {b} > 2 AND {c} > 3

evaluates as ({a} > 1 OR {b} > 2) AND {c} > 3. Parentheses group explicitly; an empty
group () is false.

Ordering comparisons against a null operand are false. Equality against a regular
expression literal matches from the start of the string. A datetime compared with a date
is reduced to its date first.

# Arithmetic grammar

Terms are numbers and field references. ^ binds tightest, then * and /, then + and -; all
operators are left-associative. Arithmetic is performed on arbitrary-precision decimals.
Any null operand makes the whole result null.

# Usage

	cond, err := expr.Compile("{col1} == 'heresabc' AND {col2} > 5")
	if err != nil {
		return err
	}
	ok, err := expr.Check(cond, rowIndex, row, res.MissingValues())

	sum, err := expr.CompileMath("{a} + {b} * 2")
	v, err := sum.Evaluate(rowIndex, row, res.MissingValues())
	if v.Valid {
		row["total"] = v.Decimal
	}

Evaluation errors are returned unannotated; callers add row context.
*/
package expr
