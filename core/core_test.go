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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Clone(t *testing.T) {
	r := Record{"a": 1}
	c := r.Clone()
	c["a"] = 2
	c["b"] = 3
	assert.Equal(t, Record{"a": 1}, r)
}

func TestChain(t *testing.T) {
	add := func(k string) Transformer {
		return TransformFunc(func(ctx context.Context, r Record) (Record, error) {
			out := r.Clone()
			out[k] = true
			return out, nil
		})
	}
	drop := FilterTransformer(FilterFunc(func(ctx context.Context, r Record) (bool, error) {
		return r["keep"] == true, nil
	}))

	got, err := Chain(add("x"), add("y")).Transform(context.Background(), Record{})
	require.NoError(t, err)
	assert.Equal(t, Record{"x": true, "y": true}, got)

	got, err = Chain(drop, add("x")).Transform(context.Background(), Record{})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = Chain().Transform(context.Background(), Record{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, Record{"a": 1}, got)

	boom := errors.New("boom")
	failing := TransformFunc(func(context.Context, Record) (Record, error) { return nil, boom })
	_, err = Chain(failing, add("x")).Transform(context.Background(), Record{})
	assert.ErrorIs(t, err, boom)
}

func TestRowError(t *testing.T) {
	base := errors.New("bad value")

	err := AnnotateRow("split_column", 3, base)
	assert.EqualError(t, err, "split_column: bad value at row 3")
	assert.ErrorIs(t, err, base)

	assert.EqualError(t, AnnotateRow("", 1, base), "bad value at row 1")
	assert.NoError(t, AnnotateRow("x", 1, nil))
}

func TestErrorHandlerFunc(t *testing.T) {
	var seen Record
	h := ErrorHandlerFunc(func(ctx context.Context, r Record, err error) error {
		seen = r
		return err
	})
	err := h.HandleError(context.Background(), Record{"a": 1}, errors.New("x"))
	assert.EqualError(t, err, "x")
	assert.Equal(t, Record{"a": 1}, seen)
}
