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

package core

import (
	"context"
	"fmt"
)

// Package core defines the error handling types for the DataSteps library.
//
// Row processing is fail-fast: the first row error ends the resource stream and the flow.

// RowError annotates an error raised while a step processed a row.
// Row is the 1-based position of the row within the stream the step received.
type RowError struct {
	Step string
	Row  int
	Err  error
}

func (e *RowError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("%v at row %d", e.Err, e.Row)
	}
	return fmt.Sprintf("%s: %v at row %d", e.Step, e.Err, e.Row)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// AnnotateRow wraps err with row context, or returns nil when err is nil.
func AnnotateRow(step string, row int, err error) error {
	if err == nil {
		return nil
	}
	return &RowError{Step: step, Row: row, Err: err}
}

// ErrorHandler observes errors before a flow aborts.
// The returned error replaces the original; returning nil keeps the original.
type ErrorHandler interface {
	// HandleError receives the record being processed and the error it caused.
	HandleError(ctx context.Context, record Record, err error) error
}

// ErrorHandlerFunc is a function adapter for the ErrorHandler interface.
// Allows ordinary functions to be used as error handlers.
type ErrorHandlerFunc func(ctx context.Context, record Record, err error) error

// HandleError implements the ErrorHandler interface for ErrorHandlerFunc.
func (f ErrorHandlerFunc) HandleError(ctx context.Context, record Record, err error) error {
	return f(ctx, record, err)
}
