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
	"errors"
	"fmt"
)

var (
	// ErrFieldNotFound matches any FieldNotFoundError.
	ErrFieldNotFound = errors.New("field not found")
	// ErrTypeMismatch matches any TypeMismatchError.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrDivisionByZero is returned when a divisor evaluates to zero.
	ErrDivisionByZero = errors.New("division by zero")
)

const compileHint = "make sure all strings are surrounded by quotes and all fields are surrounded by braces"

// CompileError reports a malformed expression string.
type CompileError struct {
	Source string
	Pos    int // byte offset of the failure, or -1
	Err    error
}

func (e *CompileError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("failed to parse expression %q at position %d: %v; %s", e.Source, e.Pos, e.Err, compileHint)
	}
	return fmt.Sprintf("failed to parse expression %q: %v; %s", e.Source, e.Err, compileHint)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// FieldNotFoundError reports a field reference whose name is absent from the row.
// A field that exists with a null value is not an error.
type FieldNotFoundError struct {
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("invalid field name %q: field does not exist in the row", e.Field)
}

func (e *FieldNotFoundError) Is(target error) bool {
	return target == ErrFieldNotFound
}

// TypeMismatchError reports operands that no coercion rule can reconcile.
type TypeMismatchError struct {
	Op     string
	Left   Kind
	Right  Kind
	Reason string
}

func (e *TypeMismatchError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("cannot compare %s with %s using %s", e.Left, e.Right, e.Op)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func mismatch(op string, l, r Kind) error {
	return &TypeMismatchError{Op: op, Left: l, Right: r}
}
