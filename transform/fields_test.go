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
	"testing"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/aaronlmathis/datasteps/expr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameFields(t *testing.T) {
	step, err := NewRenameFields(RenameFieldsParams{Fields: []RenamedField{
		{OldField: "a", NewField: "b"},
		{OldField: "b", NewField: "c"},
	}})
	require.NoError(t, err)

	out, err := runStep(t, step, newResource("res"), core.Record{"a": 1, "b": 2, "z": 3})
	require.NoError(t, err)
	assert.Equal(t, core.Record{"b": 1, "c": 2, "z": 3}, out[0])

	_, err = runStep(t, step, newResource("res"), core.Record{"a": 1})
	assert.ErrorIs(t, err, expr.ErrFieldNotFound)
}

func TestRenameFields_UpdateSchema(t *testing.T) {
	step, err := NewRenameFields(RenameFieldsParams{Fields: []RenamedField{{OldField: "a", NewField: "x"}}})
	require.NoError(t, err)

	pkg := &datapackage.Package{Resources: []*datapackage.Resource{
		newResource("res", datapackage.Field{Name: "a", Type: datapackage.TypeInteger}, stringField("b")),
	}}
	pkg.Resources[0].Schema.PrimaryKey = []string{"a"}
	require.NoError(t, step.UpdateSchema(pkg))

	want := &datapackage.Schema{
		Fields:     []datapackage.Field{{Name: "x", Type: datapackage.TypeInteger}, stringField("b")},
		PrimaryKey: []string{"x"},
	}
	if diff := cmp.Diff(want, pkg.Resources[0].Schema); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}

	missing := &datapackage.Package{Resources: []*datapackage.Resource{newResource("res", stringField("b"))}}
	assert.Error(t, step.UpdateSchema(missing))
}

func TestRenameFields_SwapAndChainSchema(t *testing.T) {
	tests := []struct {
		name    string
		fields  []RenamedField
		row     core.Record
		wantRow core.Record
		want    []string
	}{
		{
			name:    "swap",
			fields:  []RenamedField{{OldField: "a", NewField: "b"}, {OldField: "b", NewField: "a"}},
			row:     core.Record{"a": 1, "b": 2, "z": 3},
			wantRow: core.Record{"a": 2, "b": 1, "z": 3},
			want:    []string{"b", "a", "z"},
		},
		{
			name:    "chain",
			fields:  []RenamedField{{OldField: "a", NewField: "b"}, {OldField: "b", NewField: "c"}},
			row:     core.Record{"a": 1, "b": 2, "z": 3},
			wantRow: core.Record{"b": 1, "c": 2, "z": 3},
			want:    []string{"b", "c", "z"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, err := NewRenameFields(RenameFieldsParams{Fields: tt.fields})
			require.NoError(t, err)

			res := newResource("res", stringField("a"), stringField("b"), stringField("z"))
			pkg := &datapackage.Package{Resources: []*datapackage.Resource{res}}
			require.NoError(t, step.UpdateSchema(pkg))
			assert.Equal(t, tt.want, res.Schema.FieldNames())

			out, err := runStep(t, step, newResource("res"), tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRow, out[0])
		})
	}
}

func TestNewRenameFields_Errors(t *testing.T) {
	_, err := NewRenameFields(RenameFieldsParams{})
	assert.Error(t, err)
	_, err = NewRenameFields(RenameFieldsParams{Fields: []RenamedField{{OldField: "a"}}})
	assert.Error(t, err)
	_, err = NewRenameFields(RenameFieldsParams{Fields: []RenamedField{{OldField: "a", NewField: "x"}, {OldField: "a", NewField: "y"}}})
	assert.ErrorContains(t, err, "renamed twice")
	_, err = NewRenameFields(RenameFieldsParams{Fields: []RenamedField{{OldField: "a", NewField: "x"}, {OldField: "b", NewField: "x"}}})
	assert.ErrorContains(t, err, "two fields")
}

func TestReorderFields(t *testing.T) {
	step, err := NewReorderFields(ReorderFieldsParams{Fields: []string{"c", "a"}})
	require.NoError(t, err)

	tr, err := step.Bind(newResource("res"))
	require.NoError(t, err)
	assert.Nil(t, tr)

	pkg := &datapackage.Package{Resources: []*datapackage.Resource{newResource("res", stringField("a"), stringField("b"), stringField("c"))}}
	require.NoError(t, step.UpdateSchema(pkg))
	assert.Equal(t, []string{"c", "a", "b"}, pkg.Resources[0].Schema.FieldNames())

	bad, err := NewReorderFields(ReorderFieldsParams{Fields: []string{"nope"}})
	require.NoError(t, err)
	assert.Error(t, bad.UpdateSchema(pkg))
}

func TestConcatenate(t *testing.T) {
	dash := "-"
	step, err := NewConcatenate(ConcatenateParams{Fields: []string{"a", "b", "c"}, OutputField: "all", Delimiter: &dash})
	require.NoError(t, err)

	out, err := runStep(t, step, newResource("res"), core.Record{"a": "x", "b": nil, "c": 2})
	require.NoError(t, err)
	assert.Equal(t, "x--2", out[0]["all"])

	def, err := NewConcatenate(ConcatenateParams{Fields: []string{"a", "b"}, OutputField: "all"})
	require.NoError(t, err)
	out, err = runStep(t, def, newResource("res"), core.Record{"a": "x", "b": "y"})
	require.NoError(t, err)
	assert.Equal(t, "x,y", out[0]["all"])

	pkg := &datapackage.Package{Resources: []*datapackage.Resource{newResource("res")}}
	require.NoError(t, def.UpdateSchema(pkg))
	assert.Equal(t, datapackage.TypeString, pkg.Resources[0].Schema.Field("all").Type)

	_, err = NewConcatenate(ConcatenateParams{Fields: []string{"a"}})
	assert.Error(t, err)
}

func TestExtractNonnumeric(t *testing.T) {
	step, err := NewExtractNonnumeric(ExtractNonnumericParams{Fields: []string{"depth"}})
	require.NoError(t, err)

	out, err := runStep(t, step, newResource("res"),
		core.Record{"depth": "12.5"},
		core.Record{"depth": "<5"},
		core.Record{"depth": ""},
	)
	require.NoError(t, err)
	assert.Equal(t, []core.Record{
		{"depth": "12.5", "depth_": nil},
		{"depth": nil, "depth_": "<5"},
		{"depth": "", "depth_": nil},
	}, out)

	pkg := &datapackage.Package{Resources: []*datapackage.Resource{newResource("res", stringField("depth"))}}
	require.NoError(t, step.UpdateSchema(pkg))
	assert.Equal(t, []string{"depth", "depth_"}, pkg.Resources[0].Schema.FieldNames())
}
