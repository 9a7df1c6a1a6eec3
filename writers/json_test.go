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
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aaronlmathis/datasteps/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLines(t *testing.T, s string) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		dec := json.NewDecoder(strings.NewReader(line))
		dec.UseNumber()
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestJSONWriter_BasicFunctionality(t *testing.T) {
	mock := newMockWriteCloser()
	writer := NewJSONWriter(mock)

	ctx := context.Background()
	require.NoError(t, writer.Write(ctx, core.Record{"id": 1, "name": "John"}))
	require.NoError(t, writer.Write(ctx, core.Record{"id": 2, "name": nil}))

	// Nothing reaches the underlying writer until a flush.
	assert.Empty(t, mock.String())
	require.NoError(t, writer.Close())

	lines := jsonLines(t, mock.String())
	require.Len(t, lines, 2)
	assert.Equal(t, json.Number("1"), lines[0]["id"])
	assert.Nil(t, lines[1]["name"])
	assert.True(t, mock.IsClosed())
}

func TestJSONWriter_BatchedWrites(t *testing.T) {
	mock := newMockWriteCloser()
	writer := NewJSONWriter(mock, WithJSONBatchSize(3))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, writer.Write(ctx, core.Record{"id": i}))
	}
	assert.Len(t, jsonLines(t, mock.String()), 3)

	require.NoError(t, writer.Close())
	stats := writer.Stats()
	assert.Equal(t, int64(5), stats.RecordsWritten)
	assert.Equal(t, int64(2), stats.FlushCount)
	assert.Len(t, jsonLines(t, mock.String()), 5)
}

func TestJSONWriter_FlushOnWrite(t *testing.T) {
	mock := newMockWriteCloser()
	writer := NewJSONWriter(mock, WithFlushOnWrite(true))

	require.NoError(t, writer.Write(context.Background(), core.Record{"a": "b"}))
	assert.Equal(t, "{\"a\":\"b\"}\n", mock.String())
	assert.Equal(t, int64(1), writer.Stats().FlushCount)
}

func TestJSONWriter_TypedValues(t *testing.T) {
	mock := newMockWriteCloser()
	writer := NewJSONWriter(mock)

	require.NoError(t, writer.Write(context.Background(), core.Record{
		"dec":  decimal.RequireFromString("2.50"),
		"date": civil.Date{Year: 2024, Month: 1, Day: 2},
		"ts":   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}))
	require.NoError(t, writer.Close())

	assert.JSONEq(t, `{"dec":2.50,"date":"2024-01-02","ts":"2024-01-02T03:04:05Z"}`, mock.String())
	assert.Contains(t, mock.String(), `"dec":2.50`)
}

func TestJSONWriter_NullValueTracking(t *testing.T) {
	writer := NewJSONWriter(newMockWriteCloser())

	ctx := context.Background()
	require.NoError(t, writer.Write(ctx, core.Record{"name": "John", "email": nil}))
	require.NoError(t, writer.Write(ctx, core.Record{"name": nil, "email": nil}))

	stats := writer.Stats()
	assert.Equal(t, int64(1), stats.NullValueCounts["name"])
	assert.Equal(t, int64(2), stats.NullValueCounts["email"])
}

func TestJSONWriter_ErrorHandling(t *testing.T) {
	t.Run("marshal failure", func(t *testing.T) {
		writer := NewJSONWriter(newMockWriteCloser())
		err := writer.Write(context.Background(), core.Record{"ch": make(chan int)})
		var jsonErr *JSONWriterError
		require.ErrorAs(t, err, &jsonErr)
		assert.Equal(t, "marshal", jsonErr.Op)
	})

	t.Run("flush failure", func(t *testing.T) {
		mock := newMockWriteCloser()
		mock.failWrite = true
		writer := NewJSONWriter(mock, WithFlushOnWrite(true))
		require.Error(t, writer.Write(context.Background(), core.Record{"a": 1}))
		assert.ErrorContains(t, writer.Write(context.Background(), core.Record{"a": 2}), "error state")
	})

	t.Run("cancelled context", func(t *testing.T) {
		writer := NewJSONWriter(newMockWriteCloser())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, writer.Write(ctx, core.Record{"a": 1}), context.Canceled)
	})
}

func TestJSONWriter_ConcurrentSafety(t *testing.T) {
	mock := newMockWriteCloser()
	writer := NewJSONWriter(mock, WithJSONBatchSize(10))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				assert.NoError(t, writer.Write(context.Background(), core.Record{"worker": w, "i": i}))
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, writer.Close())

	assert.Len(t, jsonLines(t, mock.String()), 100)
}

func TestMemoryWriter(t *testing.T) {
	w := NewMemoryWriter()
	rec := core.Record{"a": 1}
	require.NoError(t, w.Write(context.Background(), rec))
	rec["a"] = 2

	require.NoError(t, w.Flush())
	require.NoError(t, w.Close())
	assert.Equal(t, []core.Record{{"a": 1}}, w.Records())
	assert.True(t, w.Closed())
}
