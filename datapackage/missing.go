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

// MissingValues is the set of string sentinels that mean "no data" for a resource.
type MissingValues map[string]struct{}

// NewMissingValues builds a set from values. With no values the default set {""} is returned.
func NewMissingValues(values ...string) MissingValues {
	if len(values) == 0 {
		return MissingValues{"": {}}
	}
	mv := make(MissingValues, len(values))
	for _, v := range values {
		mv[v] = struct{}{}
	}
	return mv
}

// Contains reports whether s is a missing-value sentinel.
func (mv MissingValues) Contains(s string) bool {
	_, ok := mv[s]
	return ok
}

// IsMissing reports whether a row value is null: nil, or a string in the set.
func (mv MissingValues) IsMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && mv.Contains(s)
}
