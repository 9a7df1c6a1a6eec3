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

package transform

import (
	"context"
	"testing"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicTransformers(t *testing.T) {
	ctx := context.Background()
	in := core.Record{"a": 1, "b": 2, "c": 3}

	got, err := Select("a", "c", "missing").Transform(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, core.Record{"a": 1, "c": 3}, got)

	got, err = Rename(map[string]string{"a": "b", "b": "a"}).Transform(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, core.Record{"a": 2, "b": 1, "c": 3}, got)

	got, err = AddField("sum", func(r core.Record) interface{} { return r["a"].(int) + r["b"].(int) }).Transform(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 3, got["sum"])

	got, err = RemoveFields("b", "missing").Transform(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, core.Record{"a": 1, "c": 3}, got)

	assert.Equal(t, core.Record{"a": 1, "b": 2, "c": 3}, in)
}

func TestTextOf(t *testing.T) {
	assert.Equal(t, "x", textOf("x"))
	assert.Equal(t, "", textOf(nil))
	assert.Equal(t, "1.25", textOf(decimal.RequireFromString("1.25")))
	assert.Equal(t, "true", textOf(true))
	assert.Equal(t, "42", textOf(42))
}
