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
	"fmt"
	"strings"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/aaronlmathis/datasteps/expr"
)

// RenameFieldsParams configures rename_fields.
type RenameFieldsParams struct {
	Resources []string       `yaml:"resources"`
	Fields    []RenamedField `yaml:"fields"`
}

// RenamedField maps OldField to NewField.
type RenamedField struct {
	OldField string `yaml:"old_field"`
	NewField string `yaml:"new_field"`
}

// RenameFields is the rename_fields step.
type RenameFields struct {
	params  RenameFieldsParams
	mapping map[string]string
}

// NewRenameFields validates params.
func NewRenameFields(params RenameFieldsParams) (*RenameFields, error) {
	if len(params.Fields) == 0 {
		return nil, fmt.Errorf("rename_fields: no fields configured")
	}
	mapping := make(map[string]string, len(params.Fields))
	targets := make(map[string]bool, len(params.Fields))
	for _, f := range params.Fields {
		if f.OldField == "" || f.NewField == "" {
			return nil, fmt.Errorf("rename_fields: old_field and new_field are required")
		}
		if _, dup := mapping[f.OldField]; dup {
			return nil, fmt.Errorf("rename_fields: field %q renamed twice", f.OldField)
		}
		if targets[f.NewField] {
			return nil, fmt.Errorf("rename_fields: two fields renamed to %q", f.NewField)
		}
		mapping[f.OldField] = f.NewField
		targets[f.NewField] = true
	}
	return &RenameFields{params: params, mapping: mapping}, nil
}

// Name returns the processor name.
func (s *RenameFields) Name() string { return "rename_fields" }

// Bind returns the row transformer for res.
func (s *RenameFields) Bind(res *datapackage.Resource) (core.Transformer, error) {
	b, err := bindResource(s.Name(), s.params.Resources, "", res)
	if err != nil || b == nil {
		return nil, err
	}
	check := b.transformer(func(row int, rec core.Record) error {
		for _, f := range s.params.Fields {
			if _, err := requireField(rec, f.OldField); err != nil {
				return err
			}
		}
		return nil
	})
	return core.Chain(check, Rename(s.mapping)), nil
}

// UpdateSchema renames the fields in every selected resource.
func (s *RenameFields) UpdateSchema(pkg *datapackage.Package) error {
	return forEachResource(pkg, s.params.Resources, func(res *datapackage.Resource) error {
		return res.Schema.RenameFields(s.mapping)
	})
}

// ReorderFieldsParams configures reorder_fields.
type ReorderFieldsParams struct {
	Resources []string `yaml:"resources"`
	Fields    []string `yaml:"fields"`
}

// ReorderFields is the reorder_fields step. Rows are unordered maps, so it only
// changes the descriptor, which sinks follow when writing columns.
type ReorderFields struct {
	params ReorderFieldsParams
}

// NewReorderFields validates params.
func NewReorderFields(params ReorderFieldsParams) (*ReorderFields, error) {
	if len(params.Fields) == 0 {
		return nil, fmt.Errorf("reorder_fields: no fields configured")
	}
	return &ReorderFields{params: params}, nil
}

// Name returns the processor name.
func (s *ReorderFields) Name() string { return "reorder_fields" }

// Bind returns nil: rows are not changed.
func (s *ReorderFields) Bind(*datapackage.Resource) (core.Transformer, error) {
	return nil, nil
}

// UpdateSchema reorders the schema fields.
func (s *ReorderFields) UpdateSchema(pkg *datapackage.Package) error {
	return forEachResource(pkg, s.params.Resources, func(res *datapackage.Resource) error {
		return res.Schema.Reorder(s.params.Fields)
	})
}

// ConcatenateParams configures concatenate.
type ConcatenateParams struct {
	Common      `yaml:",inline"`
	Fields      []string `yaml:"fields"`
	OutputField string   `yaml:"output_field"`
	// Delimiter joins the parts. Defaults to ",".
	Delimiter *string `yaml:"delimiter"`
}

// Concatenate is the concatenate step.
type Concatenate struct {
	params    ConcatenateParams
	delimiter string
}

// NewConcatenate validates params.
func NewConcatenate(params ConcatenateParams) (*Concatenate, error) {
	if len(params.Fields) == 0 || params.OutputField == "" {
		return nil, fmt.Errorf("concatenate: fields and output_field are required")
	}
	s := &Concatenate{params: params, delimiter: ","}
	if params.Delimiter != nil {
		s.delimiter = *params.Delimiter
	}
	return s, nil
}

// Name returns the processor name.
func (s *Concatenate) Name() string { return "concatenate" }

// Bind returns the row transformer for res.
func (s *Concatenate) Bind(res *datapackage.Resource) (core.Transformer, error) {
	b, err := bindResource(s.Name(), s.params.Resources, s.params.BooleanStatement, res)
	if err != nil || b == nil {
		return nil, err
	}
	b.outputs = []string{s.params.OutputField}
	return b.transformer(func(row int, rec core.Record) error {
		parts := make([]string, len(s.params.Fields))
		for i, name := range s.params.Fields {
			v, err := requireField(rec, name)
			if err != nil {
				return err
			}
			if !b.isNull(v) {
				parts[i] = textOf(v)
			}
		}
		rec[s.params.OutputField] = strings.Join(parts, s.delimiter)
		return nil
	}), nil
}

// UpdateSchema adds the output as a string.
func (s *Concatenate) UpdateSchema(pkg *datapackage.Package) error {
	return forEachResource(pkg, s.params.Resources, func(res *datapackage.Resource) error {
		res.Schema.AddField(datapackage.Field{Name: s.params.OutputField, Type: datapackage.TypeString})
		return nil
	})
}

// ExtractNonnumericParams configures extract_nonnumeric.
type ExtractNonnumericParams struct {
	Common `yaml:",inline"`
	Fields []string `yaml:"fields"`
	// Suffix names the companion field that receives non-numeric text. Defaults to "_".
	Suffix string `yaml:"suffix"`
}

// ExtractNonnumeric is the extract_nonnumeric step. Values that are not numbers
// move into a companion field, leaving nil behind.
type ExtractNonnumeric struct {
	params ExtractNonnumericParams
}

// NewExtractNonnumeric validates params.
func NewExtractNonnumeric(params ExtractNonnumericParams) (*ExtractNonnumeric, error) {
	if len(params.Fields) == 0 {
		return nil, fmt.Errorf("extract_nonnumeric: no fields configured")
	}
	if params.Suffix == "" {
		params.Suffix = "_"
	}
	return &ExtractNonnumeric{params: params}, nil
}

// Name returns the processor name.
func (s *ExtractNonnumeric) Name() string { return "extract_nonnumeric" }

// Bind returns the row transformer for res.
func (s *ExtractNonnumeric) Bind(res *datapackage.Resource) (core.Transformer, error) {
	b, err := bindResource(s.Name(), s.params.Resources, s.params.BooleanStatement, res)
	if err != nil || b == nil {
		return nil, err
	}
	for _, name := range s.params.Fields {
		b.outputs = append(b.outputs, name+s.params.Suffix)
	}
	return b.transformer(func(row int, rec core.Record) error {
		for _, name := range s.params.Fields {
			v, err := requireField(rec, name)
			if err != nil {
				return err
			}
			companion := name + s.params.Suffix
			rec[companion] = nil
			if b.isNull(v) {
				continue
			}
			if _, err := expr.ToDecimal(v); err != nil {
				rec[companion] = textOf(v)
				rec[name] = nil
			}
		}
		return nil
	}), nil
}

// UpdateSchema adds each companion field as a string.
func (s *ExtractNonnumeric) UpdateSchema(pkg *datapackage.Package) error {
	return forEachResource(pkg, s.params.Resources, func(res *datapackage.Resource) error {
		for _, name := range s.params.Fields {
			res.Schema.AddField(datapackage.Field{Name: name + s.params.Suffix, Type: datapackage.TypeString})
		}
		return nil
	})
}
