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
	"fmt"
)

// FieldNames returns the schema's field names in order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Field returns a pointer to the named field, or nil.
func (s *Schema) Field(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// HasField reports whether the schema declares name.
func (s *Schema) HasField(name string) bool {
	return s.Field(name) != nil
}

// AddField appends f, or replaces the existing field of the same name in place.
func (s *Schema) AddField(f Field) {
	if existing := s.Field(f.Name); existing != nil {
		*existing = f
		return
	}
	s.Fields = append(s.Fields, f)
}

// RemoveField drops the named field. Removing an undeclared field is a no-op.
func (s *Schema) RemoveField(name string) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			s.Fields = append(s.Fields[:i], s.Fields[i+1:]...)
			return
		}
	}
}

// RenameField renames a field, keeping its position and metadata.
func (s *Schema) RenameField(oldName, newName string) error {
	return s.RenameFields(map[string]string{oldName: newName})
}

// RenameFields applies every rename in one pass, so swaps and chains
// resolve against the original names. The schema is untouched on error.
func (s *Schema) RenameFields(mapping map[string]string) error {
	for oldName := range mapping {
		if !s.HasField(oldName) {
			return fmt.Errorf("field %q not found in schema", oldName)
		}
	}
	rename := func(name string) string {
		if to, ok := mapping[name]; ok {
			return to
		}
		return name
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		name := rename(f.Name)
		if seen[name] {
			return fmt.Errorf("field %q already exists in schema", name)
		}
		seen[name] = true
	}
	for i := range s.Fields {
		s.Fields[i].Name = rename(s.Fields[i].Name)
	}
	for i, key := range s.PrimaryKey {
		s.PrimaryKey[i] = rename(key)
	}
	return nil
}

// Reorder moves the listed fields to the front in the given order.
// Fields that are not listed keep their relative order after the listed ones.
func (s *Schema) Reorder(names []string) error {
	seen := make(map[string]bool, len(names))
	ordered := make([]Field, 0, len(s.Fields))
	for _, name := range names {
		if seen[name] {
			return fmt.Errorf("field %q listed more than once", name)
		}
		f := s.Field(name)
		if f == nil {
			return fmt.Errorf("field %q not found in schema", name)
		}
		seen[name] = true
		ordered = append(ordered, *f)
	}
	for _, f := range s.Fields {
		if !seen[f.Name] {
			ordered = append(ordered, f)
		}
	}
	s.Fields = ordered
	return nil
}
