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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
)

// JSONReaderError wraps structured error information for the JSON reader.
type JSONReaderError struct {
	Op   string
	Line int
	Err  error
}

func (e *JSONReaderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("json reader %s: line %d: %v", e.Op, e.Line, e.Err)
	}
	return fmt.Sprintf("json reader %s: %v", e.Op, e.Err)
}

func (e *JSONReaderError) Unwrap() error {
	return e.Err
}

// ReaderOptionJSON allows functional customization of JSONReader.
type ReaderOptionJSON func(*JSONReader)

// WithJSONResource casts string values of declared fields by the resource's
// schema and turns missing-value strings into nil. Numbers stay json.Number.
func WithJSONResource(res *datapackage.Resource) ReaderOptionJSON {
	return func(j *JSONReader) {
		j.caster = newCaster(res.Schema, res.MissingValues())
	}
}

// WithJSONMaxLineSize raises the longest accepted line, in bytes.
func WithJSONMaxLineSize(n int) ReaderOptionJSON {
	return func(j *JSONReader) { j.scanner.Buffer(make([]byte, 0, 64*1024), n) }
}

// JSONReader implements DataSource for JSON lines files.
type JSONReader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	caster  *caster
	line    int
}

// NewJSONReader creates a new JSON reader for line-delimited JSON.
func NewJSONReader(r io.ReadCloser, options ...ReaderOptionJSON) *JSONReader {
	j := &JSONReader{
		scanner: bufio.NewScanner(r),
		closer:  r,
	}
	for _, opt := range options {
		opt(j)
	}
	return j
}

// Read implements the DataSource interface. Blank lines are skipped.
func (j *JSONReader) Read(ctx context.Context) (core.Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, &JSONReaderError{Op: "read", Err: err}
		}
		if !j.scanner.Scan() {
			if err := j.scanner.Err(); err != nil {
				return nil, &JSONReaderError{Op: "scan", Line: j.line + 1, Err: err}
			}
			return nil, io.EOF
		}
		j.line++
		line := bytes.TrimSpace(j.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record core.Record
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(&record); err != nil {
			return nil, &JSONReaderError{Op: "decode", Line: j.line, Err: err}
		}
		if j.caster != nil {
			if err := j.cast(record); err != nil {
				return nil, &JSONReaderError{Op: "cast", Line: j.line, Err: err}
			}
		}
		return record, nil
	}
}

func (j *JSONReader) cast(record core.Record) error {
	for key, value := range record {
		s, ok := value.(string)
		if !ok {
			continue
		}
		v, err := j.caster.cast(key, s)
		if err != nil {
			return err
		}
		record[key] = v
	}
	return nil
}

// Close implements the DataSource interface.
func (j *JSONReader) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
