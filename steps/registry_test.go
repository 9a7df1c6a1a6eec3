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

package steps

import (
	"context"
	"strings"
	"testing"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/aaronlmathis/datasteps/expr"
	"github.com/aaronlmathis/datasteps/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const pipelineYAML = `
- run: boolean_add_computed_field
  parameters:
    resources: [casts]
    fields:
      - target: new_col1
        functions:
          - boolean: "{col1} == 'heresabc'"
            value: "{col1}"
- run: concatenate
  parameters:
    fields: [a, b]
    output_field: ab
    delimiter: ""
- run: reorder_fields
  parameters:
    fields: [ab]
`

func TestLoad(t *testing.T) {
	steps, err := Load(strings.NewReader(pipelineYAML))
	require.NoError(t, err)
	require.Len(t, steps, 3)

	assert.Equal(t, "boolean_add_computed_field", steps[0].Name())
	assert.Equal(t, "concatenate", steps[1].Name())
	assert.Equal(t, "reorder_fields", steps[2].Name())

	// An explicit empty delimiter overrides the default comma.
	tr, err := steps[1].Bind(&datapackage.Resource{Name: "casts"})
	require.NoError(t, err)
	out, err := tr.Transform(context.Background(), core.Record{"a": "x", "b": "y"})
	require.NoError(t, err)
	assert.Equal(t, "xy", out["ab"])

	tr, err = steps[0].Bind(&datapackage.Resource{Name: "other"})
	require.NoError(t, err)
	assert.Nil(t, tr)
}

func TestLoad_Empty(t *testing.T) {
	steps, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{
			name:  "unknown processor",
			input: "- run: dump_to_s3\n",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnknownProcessor)
				assert.Contains(t, err.Error(), "step 0 (dump_to_s3)")
			},
		},
		{
			name:  "missing run",
			input: "- parameters: {}\n",
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "run is required")
			},
		},
		{
			name:  "unknown parameter",
			input: "- run: round_fields\n  parameters:\n    fields: [{name: a, digits: 1, precision: 2}]\n",
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "invalid parameters")
			},
		},
		{
			name:  "invalid expression",
			input: "- run: boolean_filter_rows\n  parameters:\n    boolean_statement: \"{a} ==\"\n",
			check: func(t *testing.T, err error) {
				var compileErr *expr.CompileError
				assert.ErrorAs(t, err, &compileErr)
			},
		},
		{
			name:  "constructor validation",
			input: "- run: split_column\n  parameters:\n    fields: [{input_field: a, output_fields: [b]}]\n",
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "pattern or delimiter")
			},
		},
		{
			name:  "not a list",
			input: "run: concatenate\n",
			check: func(t *testing.T, err error) {
				var cfgErr *ConfigError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, "decode", cfgErr.Op)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			tt.check(t, err)
		})
	}
}

func TestNames(t *testing.T) {
	names := Names()
	for _, want := range []string{
		"boolean_add_computed_field",
		"boolean_filter_rows",
		"convert_date",
		"convert_to_decimal_degrees",
		"find_replace",
		"split_column",
	} {
		assert.Contains(t, names, want)
	}
	assert.IsIncreasing(t, names)
}

func TestRegister_Custom(t *testing.T) {
	Register("concatenate_alias", Typed(func(p transform.ConcatenateParams) (*transform.Concatenate, error) {
		return transform.NewConcatenate(p)
	}))

	var defs []Definition
	require.NoError(t, yaml.Unmarshal([]byte("- run: concatenate_alias\n  parameters: {fields: [a], output_field: b}\n"), &defs))
	steps, err := Build(defs)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "concatenate", steps[0].Name())
}
