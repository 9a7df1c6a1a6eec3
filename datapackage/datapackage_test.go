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

package datapackage

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const descriptorYAML = `
name: cruise
profile: tabular-data-package
resources:
  - name: casts
    path: casts.csv
    schema:
      fields:
        - name: station
          type: string
          bcodmo:
            units: unitless
        - name: depth
          type: number
      missingValues: ["", "nd"]
      primaryKey: [station]
  - name: notes
`

func TestLoad(t *testing.T) {
	pkg, err := Load(strings.NewReader(descriptorYAML))
	require.NoError(t, err)

	assert.Equal(t, "cruise", pkg.Name)
	assert.Equal(t, "tabular-data-package", pkg.Extra["profile"])
	assert.Equal(t, []string{"casts", "notes"}, pkg.ResourceNames())

	casts := pkg.Resource("casts")
	require.NotNil(t, casts)
	assert.Equal(t, []string{"station", "depth"}, casts.Schema.FieldNames())
	assert.Equal(t, map[string]interface{}{"units": "unitless"}, casts.Schema.Field("station").Extra["bcodmo"])

	// Resources without a schema get an empty one.
	require.NotNil(t, pkg.Resource("notes").Schema)
	assert.Nil(t, pkg.Resource("missing"))
}

func TestLoad_JSON(t *testing.T) {
	pkg, err := Load(strings.NewReader(`{"resources": [{"name": "r", "schema": {"fields": [{"name": "a", "type": "integer"}]}}]}`))
	require.NoError(t, err)
	assert.Equal(t, TypeInteger, pkg.Resource("r").Schema.Field("a").Type)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty descriptor")

	_, err = Load(strings.NewReader("resources:\n  - path: x.csv\n"))
	assert.ErrorContains(t, err, "has no name")

	_, err = Load(strings.NewReader("resources: 5\n"))
	assert.ErrorContains(t, err, "decode descriptor")
}

func TestPackage_MarshalRoundTrip(t *testing.T) {
	pkg, err := Load(strings.NewReader(descriptorYAML))
	require.NoError(t, err)

	data, err := pkg.Marshal()
	require.NoError(t, err)
	again, err := Load(strings.NewReader(string(data)))
	require.NoError(t, err)

	// Schemas without fields come back with an empty rather than nil list.
	if diff := cmp.Diff(pkg, again, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("descriptor changed after round trip (-want +got):\n%s", diff)
	}
}

func TestResource_MissingValues(t *testing.T) {
	undeclared := &Resource{Schema: &Schema{}}
	assert.True(t, undeclared.MissingValues().Contains(""))

	empty := &Resource{Schema: &Schema{MissingValues: []string{}}}
	assert.False(t, empty.MissingValues().Contains(""))

	custom := &Resource{Schema: &Schema{MissingValues: []string{"nd", "-999"}}}
	mv := custom.MissingValues()
	assert.True(t, mv.Contains("nd"))
	assert.False(t, mv.Contains(""))
	assert.True(t, mv.IsMissing(nil))
	assert.True(t, mv.IsMissing("-999"))
	assert.False(t, mv.IsMissing(-999))

	assert.True(t, (&Resource{}).MissingValues().Contains(""))
}

func TestResource_Clone(t *testing.T) {
	pkg, err := Load(strings.NewReader(descriptorYAML))
	require.NoError(t, err)
	orig := pkg.Resource("casts")

	clone := orig.Clone()
	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Fatalf("clone differs (-want +got):\n%s", diff)
	}

	clone.Schema.Fields[0].Name = "renamed"
	clone.Schema.Fields[0].Extra["bcodmo"] = "changed"
	clone.Schema.MissingValues[0] = "x"
	clone.Schema.PrimaryKey[0] = "depth"

	assert.Equal(t, "station", orig.Schema.Fields[0].Name)
	assert.NotEqual(t, "changed", orig.Schema.Fields[0].Extra["bcodmo"])
	assert.Equal(t, "", orig.Schema.MissingValues[0])
	assert.Equal(t, "station", orig.Schema.PrimaryKey[0])
}

func TestSchema_Operations(t *testing.T) {
	s := &Schema{Fields: []Field{{Name: "a"}, {Name: "b"}, {Name: "c"}}}

	s.AddField(Field{Name: "d", Type: TypeNumber})
	s.AddField(Field{Name: "a", Type: TypeInteger})
	assert.Equal(t, []string{"a", "b", "c", "d"}, s.FieldNames())
	assert.Equal(t, TypeInteger, s.Field("a").Type)

	s.RemoveField("b")
	s.RemoveField("nope")
	assert.Equal(t, []string{"a", "c", "d"}, s.FieldNames())

	require.NoError(t, s.RenameField("c", "x"))
	assert.Error(t, s.RenameField("nope", "y"))
	assert.Error(t, s.RenameField("a", "d"))
	assert.True(t, s.HasField("x"))

	require.NoError(t, s.Reorder([]string{"d", "x"}))
	assert.Equal(t, []string{"d", "x", "a"}, s.FieldNames())
	assert.Error(t, s.Reorder([]string{"d", "d"}))
	assert.Error(t, s.Reorder([]string{"nope"}))
}

func TestSchema_RenameFields(t *testing.T) {
	s := &Schema{Fields: []Field{{Name: "a", Type: TypeInteger}, {Name: "b"}, {Name: "c"}}, PrimaryKey: []string{"a"}}

	require.NoError(t, s.RenameFields(map[string]string{"a": "b", "b": "a"}))
	assert.Equal(t, []string{"b", "a", "c"}, s.FieldNames())
	assert.Equal(t, TypeInteger, s.Field("b").Type)
	assert.Equal(t, []string{"b"}, s.PrimaryKey)

	require.NoError(t, s.RenameFields(map[string]string{"a": "x", "c": "a"}))
	assert.Equal(t, []string{"b", "x", "a"}, s.FieldNames())

	err := s.RenameFields(map[string]string{"x": "b"})
	assert.ErrorContains(t, err, "already exists")
	assert.Equal(t, []string{"b", "x", "a"}, s.FieldNames())

	assert.ErrorContains(t, s.RenameFields(map[string]string{"nope": "y"}), "not found")
}

func TestMatcher(t *testing.T) {
	all, err := NewMatcher(nil)
	require.NoError(t, err)
	assert.True(t, all.Matches("anything"))

	m, err := NewMatcher([]string{"casts", "/^ctd_\\d+$/"})
	require.NoError(t, err)
	assert.True(t, m.Matches("casts"))
	assert.True(t, m.Matches("ctd_12"))
	assert.False(t, m.Matches("ctd_x"))
	assert.False(t, m.Matches("notes"))

	_, err = NewMatcher([]string{"/(/"})
	assert.Error(t, err)

	var nilMatcher *Matcher
	assert.True(t, nilMatcher.Matches("x"))
}
