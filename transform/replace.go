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
	"regexp"
	"strings"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
)

// FindReplaceParams configures find_replace.
type FindReplaceParams struct {
	Common `yaml:",inline"`
	Fields []ReplaceField `yaml:"fields"`
}

// ReplaceField lists the patterns applied, in order, to one field.
type ReplaceField struct {
	Name     string           `yaml:"name"`
	Patterns []ReplacePattern `yaml:"patterns"`
}

// ReplacePattern is a regular expression and its replacement.
// Replacements may use \1 or \g<name> backreferences.
type ReplacePattern struct {
	Find    string `yaml:"find"`
	Replace string `yaml:"replace"`
}

// FindReplace is the find_replace step.
type FindReplace struct {
	params FindReplaceParams
	fields []replacer
}

type replacer struct {
	name  string
	finds []*regexp.Regexp
	repls []string
}

// NewFindReplace validates params and compiles the patterns.
func NewFindReplace(params FindReplaceParams) (*FindReplace, error) {
	if len(params.Fields) == 0 {
		return nil, fmt.Errorf("find_replace: no fields configured")
	}
	s := &FindReplace{params: params}
	for _, f := range params.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("find_replace: field name is required")
		}
		r := replacer{name: f.Name}
		for _, p := range f.Patterns {
			re, err := regexp.Compile(p.Find)
			if err != nil {
				return nil, fmt.Errorf("find_replace: field %q: invalid pattern %q: %w", f.Name, p.Find, err)
			}
			r.finds = append(r.finds, re)
			r.repls = append(r.repls, translateReplacement(p.Replace))
		}
		s.fields = append(s.fields, r)
	}
	return s, nil
}

// translateReplacement rewrites \N and \g<name> into Go's ${N} and ${name}
// and escapes literal dollar signs.
func translateReplacement(repl string) string {
	var sb strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch {
		case c == '$':
			sb.WriteString("$$")
		case c == '\\' && i+1 < len(repl) && isDigitByte(repl[i+1]):
			j := i + 1
			for j < len(repl) && isDigitByte(repl[j]) {
				j++
			}
			sb.WriteString("${" + repl[i+1:j] + "}")
			i = j - 1
		case c == '\\' && strings.HasPrefix(repl[i+1:], "g<"):
			end := strings.IndexByte(repl[i+3:], '>')
			if end < 0 {
				sb.WriteByte(c)
				continue
			}
			sb.WriteString("${" + repl[i+3:i+3+end] + "}")
			i += 3 + end
		case c == '\\' && i+1 < len(repl) && repl[i+1] == '\\':
			sb.WriteByte('\\')
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isDigitByte(c byte) bool {
	return c >= '0' && c <= '9'
}

// Name returns the processor name.
func (s *FindReplace) Name() string { return "find_replace" }

// Bind returns the row transformer for res.
func (s *FindReplace) Bind(res *datapackage.Resource) (core.Transformer, error) {
	b, err := bindResource(s.Name(), s.params.Resources, s.params.BooleanStatement, res)
	if err != nil || b == nil {
		return nil, err
	}
	return b.transformer(func(row int, rec core.Record) error {
		for _, r := range s.fields {
			v, err := requireField(rec, r.name)
			if err != nil {
				return err
			}
			if b.isNull(v) {
				continue
			}
			text := textOf(v)
			for i, re := range r.finds {
				text = re.ReplaceAllString(text, r.repls[i])
			}
			rec[r.name] = text
		}
		return nil
	}), nil
}

// UpdateSchema marks every replaced field declared in the schema as a string.
func (s *FindReplace) UpdateSchema(pkg *datapackage.Package) error {
	return forEachResource(pkg, s.params.Resources, func(res *datapackage.Resource) error {
		for _, r := range s.fields {
			if field := res.Schema.Field(r.name); field != nil {
				field.Type = datapackage.TypeString
				field.Format = ""
			}
		}
		return nil
	})
}
