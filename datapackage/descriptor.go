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
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Package datapackage models the descriptor that travels alongside row streams.
//
// A Package lists named resources; each resource carries a table schema with ordered
// fields and the missing-value sentinels used when evaluating row expressions.
// Steps mutate the descriptor before any rows are streamed.

// Field type names understood by readers, writers and steps.
const (
	TypeString   = "string"
	TypeNumber   = "number"
	TypeInteger  = "integer"
	TypeBoolean  = "boolean"
	TypeDate     = "date"
	TypeDateTime = "datetime"
	TypeTime     = "time"
	TypeAny      = "any"
)

// Package is a data package descriptor.
type Package struct {
	Name      string                 `yaml:"name,omitempty"`
	Resources []*Resource            `yaml:"resources"`
	Extra     map[string]interface{} `yaml:",inline"`
}

// Resource describes one named stream of rows.
type Resource struct {
	Name   string                 `yaml:"name"`
	Path   string                 `yaml:"path,omitempty"`
	Format string                 `yaml:"format,omitempty"`
	Schema *Schema                `yaml:"schema,omitempty"`
	Extra  map[string]interface{} `yaml:",inline"`
}

// Schema is a resource's table schema.
type Schema struct {
	Fields        []Field                `yaml:"fields"`
	MissingValues []string               `yaml:"missingValues,omitempty"`
	PrimaryKey    []string               `yaml:"primaryKey,omitempty"`
	Extra         map[string]interface{} `yaml:",inline"`
}

// Field is a single schema column. Extra keeps arbitrary metadata such as "bcodmo:" blocks.
type Field struct {
	Name   string                 `yaml:"name"`
	Type   string                 `yaml:"type,omitempty"`
	Format string                 `yaml:"format,omitempty"`
	Extra  map[string]interface{} `yaml:",inline"`
}

// Load decodes a package descriptor from YAML or JSON.
func Load(r io.Reader) (*Package, error) {
	var pkg Package
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&pkg); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("datapackage: empty descriptor")
		}
		return nil, fmt.Errorf("datapackage: decode descriptor: %w", err)
	}
	for i, res := range pkg.Resources {
		if res == nil || res.Name == "" {
			return nil, fmt.Errorf("datapackage: resource %d has no name", i)
		}
		if res.Schema == nil {
			res.Schema = &Schema{}
		}
	}
	return &pkg, nil
}

// Marshal encodes the descriptor as YAML.
func (p *Package) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("datapackage: encode descriptor: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Resource returns the resource with the given name, or nil.
func (p *Package) Resource(name string) *Resource {
	for _, res := range p.Resources {
		if res.Name == name {
			return res
		}
	}
	return nil
}

// ResourceNames returns resource names in descriptor order.
func (p *Package) ResourceNames() []string {
	names := make([]string, 0, len(p.Resources))
	for _, res := range p.Resources {
		names = append(names, res.Name)
	}
	return names
}

// MissingValues returns the resource's missing-value set.
// An undeclared list yields the default {""}; an explicitly empty list yields no sentinels.
func (r *Resource) MissingValues() MissingValues {
	if r.Schema == nil || r.Schema.MissingValues == nil {
		return NewMissingValues()
	}
	if len(r.Schema.MissingValues) == 0 {
		return MissingValues{}
	}
	return NewMissingValues(r.Schema.MissingValues...)
}

// Clone returns a deep copy of the resource descriptor.
// Steps hold a clone so later descriptor changes do not leak into rows they already bound.
func (r *Resource) Clone() *Resource {
	out := &Resource{
		Name:   r.Name,
		Path:   r.Path,
		Format: r.Format,
		Extra:  cloneMap(r.Extra),
	}
	if r.Schema != nil {
		s := &Schema{
			Fields:     make([]Field, len(r.Schema.Fields)),
			PrimaryKey: append([]string(nil), r.Schema.PrimaryKey...),
			Extra:      cloneMap(r.Schema.Extra),
		}
		if r.Schema.MissingValues != nil {
			s.MissingValues = append(make([]string, 0, len(r.Schema.MissingValues)), r.Schema.MissingValues...)
		}
		for i, f := range r.Schema.Fields {
			f.Extra = cloneMap(f.Extra)
			s.Fields[i] = f
		}
		out.Schema = s
	}
	return out
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
