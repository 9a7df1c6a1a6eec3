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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	dmsPattern = `(?P<degrees>-?\d+)\s+(?P<minutes>\d+)\s+(?P<seconds>[\d.]+)\s*(?P<directional>[NSEW])?`
	ddmPattern = `(?P<degrees>-?\d+)\s+(?P<minutes>[\d.]+)`
)

func TestDecimalDegrees_Convert(t *testing.T) {
	tests := []struct {
		name  string
		field DegreesField
		in    string
		want  string
	}{
		{"dms north", DegreesField{Format: FormatDMS, Pattern: dmsPattern}, "41 30 36 N", "41.51"},
		{"dms south", DegreesField{Format: FormatDMS, Pattern: dmsPattern}, "41 30 36 S", "-41.51"},
		{"dms negative", DegreesField{Format: FormatDMS, Pattern: dmsPattern}, "-70 15 0", "-70.25"},
		{"ddm", DegreesField{Format: FormatDecimalMinutes, Pattern: ddmPattern}, "12 45.3", "12.755"},
		{"fixed west", DegreesField{Format: FormatDecimalMinutes, Pattern: ddmPattern, Directional: "W"}, "70 30", "-70.5"},
		{"out of bounds allowed", DegreesField{Format: FormatDecimalMinutes, Pattern: ddmPattern, HandleOutOfBounds: true}, "10 90", "11.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.field
			f.InputField, f.OutputField = "pos", "dd"
			step, err := NewDecimalDegrees(DecimalDegreesParams{Fields: []DegreesField{f}})
			require.NoError(t, err)

			out, err := runStep(t, step, newResource("res"), core.Record{"pos": tt.in})
			require.NoError(t, err)
			assertDecimal(t, tt.want, out[0]["dd"])
			assert.Equal(t, tt.in, out[0]["pos"])
		})
	}
}

func TestDecimalDegrees_Errors(t *testing.T) {
	tests := []struct {
		name  string
		field DegreesField
		in    string
		msg   string
	}{
		{"no match", DegreesField{Format: FormatDMS, Pattern: dmsPattern}, "abc", "does not match"},
		{"minutes out of bounds", DegreesField{Format: FormatDecimalMinutes, Pattern: ddmPattern}, "10 60", "out of bounds"},
		{"seconds out of bounds", DegreesField{Format: FormatDMS, Pattern: dmsPattern}, "10 10 61", "out of bounds"},
		{"negative with south", DegreesField{Format: FormatDMS, Pattern: dmsPattern}, "-10 10 10 S", "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.field
			f.InputField, f.OutputField = "pos", "dd"
			step, err := NewDecimalDegrees(DecimalDegreesParams{Fields: []DegreesField{f}})
			require.NoError(t, err)

			_, err = runStep(t, step, newResource("res"), core.Record{"pos": tt.in})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Contains(t, err.Error(), "at row 1")
		})
	}
}

func TestDecimalDegrees_NullInput(t *testing.T) {
	step, err := NewDecimalDegrees(DecimalDegreesParams{Fields: []DegreesField{
		{InputField: "pos", OutputField: "dd", Format: FormatDecimalMinutes, Pattern: ddmPattern},
	}})
	require.NoError(t, err)

	out, err := runStep(t, step, newResource("res"), core.Record{"pos": nil})
	require.NoError(t, err)
	assert.Equal(t, core.Record{"pos": nil, "dd": nil}, out[0])
}

func TestNewDecimalDegrees_Validation(t *testing.T) {
	cases := map[string]DegreesField{
		"no output":       {InputField: "p", Format: FormatDMS, Pattern: dmsPattern},
		"bad format":      {InputField: "p", OutputField: "o", Format: "radians", Pattern: dmsPattern},
		"no pattern":      {InputField: "p", OutputField: "o", Format: FormatDMS},
		"bad pattern":     {InputField: "p", OutputField: "o", Format: FormatDMS, Pattern: "("},
		"missing seconds": {InputField: "p", OutputField: "o", Format: FormatDMS, Pattern: ddmPattern},
		"bad directional": {InputField: "p", OutputField: "o", Format: FormatDecimalMinutes, Pattern: ddmPattern, Directional: "Q"},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewDecimalDegrees(DecimalDegreesParams{Fields: []DegreesField{f}})
			assert.Error(t, err)
		})
	}
}

func TestDecimalDegrees_UpdateSchema(t *testing.T) {
	step, err := NewDecimalDegrees(DecimalDegreesParams{Fields: []DegreesField{
		{InputField: "pos", OutputField: "dd", Format: FormatDecimalMinutes, Pattern: ddmPattern},
	}})
	require.NoError(t, err)

	pkg := &datapackage.Package{Resources: []*datapackage.Resource{newResource("res", stringField("pos"))}}
	require.NoError(t, step.UpdateSchema(pkg))
	assert.Equal(t, datapackage.TypeNumber, pkg.Resource("res").Schema.Field("dd").Type)
}
