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
	"regexp"
	"strings"
)

// Matcher decides which resources a step applies to.
// An empty matcher applies to every resource. Names wrapped in slashes ("/^ctd_.*/")
// are treated as regular expressions.
type Matcher struct {
	names    map[string]bool
	patterns []*regexp.Regexp
	all      bool
}

// NewMatcher builds a matcher from resource names or /regex/ entries.
func NewMatcher(names []string) (*Matcher, error) {
	m := &Matcher{names: make(map[string]bool, len(names))}
	if len(names) == 0 {
		m.all = true
		return m, nil
	}
	for _, name := range names {
		if len(name) >= 2 && strings.HasPrefix(name, "/") && strings.HasSuffix(name, "/") {
			re, err := regexp.Compile(name[1 : len(name)-1])
			if err != nil {
				return nil, fmt.Errorf("invalid resource pattern %q: %w", name, err)
			}
			m.patterns = append(m.patterns, re)
			continue
		}
		m.names[name] = true
	}
	return m, nil
}

// Matches reports whether the resource named name is selected.
func (m *Matcher) Matches(name string) bool {
	if m == nil || m.all {
		return true
	}
	if m.names[name] {
		return true
	}
	for _, re := range m.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
