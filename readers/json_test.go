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
	"context"
	"encoding/json"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONReader(t *testing.T) {
	input := `{"id": 1, "name": "a"}

{"id": 2.5, "name": null}
`
	src := &nopReadCloser{Reader: strings.NewReader(input)}
	reader := NewJSONReader(src)

	rows := readAll(t, reader)
	assert.Equal(t, []core.Record{
		{"id": json.Number("1"), "name": "a"},
		{"id": json.Number("2.5"), "name": nil},
	}, rows)
	require.NoError(t, reader.Close())
	assert.True(t, src.closed)
}

func TestJSONReader_WithResource(t *testing.T) {
	res := &datapackage.Resource{Schema: &datapackage.Schema{
		Fields:        []datapackage.Field{{Name: "day", Type: datapackage.TypeDate}},
		MissingValues: []string{"-999"},
	}}
	reader := NewJSONReader(&nopReadCloser{Reader: strings.NewReader(`{"day": "2021-06-15", "v": "-999", "n": 3}` + "\n")}, WithJSONResource(res))

	rows := readAll(t, reader)
	require.Len(t, rows, 1)
	assert.Equal(t, civil.Date{Year: 2021, Month: 6, Day: 15}, rows[0]["day"])
	assert.Nil(t, rows[0]["v"])
	assert.Equal(t, json.Number("3"), rows[0]["n"])
}

func TestJSONReader_Errors(t *testing.T) {
	reader := NewJSONReader(&nopReadCloser{Reader: strings.NewReader("{\"a\": 1}\n{broken\n")})
	_, err := reader.Read(context.Background())
	require.NoError(t, err)

	_, err = reader.Read(context.Background())
	var jsonErr *JSONReaderError
	require.ErrorAs(t, err, &jsonErr)
	assert.Equal(t, "decode", jsonErr.Op)
	assert.Equal(t, 2, jsonErr.Line)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewJSONReader(&nopReadCloser{Reader: strings.NewReader("{}\n")}).Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryReader(t *testing.T) {
	rec := core.Record{"a": 1}
	reader := NewMemoryReader(rec)

	got, err := reader.Read(context.Background())
	require.NoError(t, err)
	got["a"] = 2
	assert.Equal(t, 1, rec["a"])

	assert.Empty(t, readAll(t, reader))
	require.NoError(t, reader.Close())
}
