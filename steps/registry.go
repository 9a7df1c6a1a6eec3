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
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/filter"
	"github.com/aaronlmathis/datasteps/transform"
	"gopkg.in/yaml.v3"
)

// Package steps builds processor steps from configuration.
//
// A pipeline file is a YAML list of steps, each naming a processor with run and
// configuring it with parameters:
//
//	- run: boolean_filter_rows
//	  parameters:
//	    boolean_statement: "{depth} > 5"

// ConfigError reports an invalid pipeline definition.
type ConfigError struct {
	Op    string
	Index int    // position of the step in the pipeline, or -1
	Run   string // processor name, when known
	Err   error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("config %s: %v", e.Op, e.Err)
	case e.Run == "":
		return fmt.Sprintf("config %s: step %d: %v", e.Op, e.Index, e.Err)
	default:
		return fmt.Sprintf("config %s: step %d (%s): %v", e.Op, e.Index, e.Run, e.Err)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ErrUnknownProcessor is wrapped by ConfigError when run names no registered processor.
var ErrUnknownProcessor = errors.New("unknown processor")

// Factory builds a step from its parameters node. The node is nil when the
// step has no parameters.
type Factory func(params *yaml.Node) (core.Step, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds or replaces the factory for a processor name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Names lists the registered processors in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// Typed adapts a constructor taking a parameter struct into a Factory.
// Unknown parameter keys are rejected.
func Typed[P any, S core.Step](build func(P) (S, error)) Factory {
	return func(node *yaml.Node) (core.Step, error) {
		var params P
		if node != nil {
			if err := decodeStrict(node, &params); err != nil {
				return nil, err
			}
		}
		step, err := build(params)
		if err != nil {
			return nil, err
		}
		return step, nil
	}
}

func decodeStrict(node *yaml.Node, out interface{}) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func init() {
	Register("boolean_add_computed_field", Typed(transform.NewComputedFields))
	Register("boolean_filter_rows", Typed(filter.NewBooleanFilterRows))
	Register("convert_date", Typed(transform.NewConvertDate))
	Register("convert_to_decimal_degrees", Typed(transform.NewDecimalDegrees))
	Register("find_replace", Typed(transform.NewFindReplace))
	Register("split_column", Typed(transform.NewSplitColumn))
	Register("round_fields", Typed(transform.NewRoundFields))
	Register("rename_fields", Typed(transform.NewRenameFields))
	Register("reorder_fields", Typed(transform.NewReorderFields))
	Register("concatenate", Typed(transform.NewConcatenate))
	Register("extract_nonnumeric", Typed(transform.NewExtractNonnumeric))
}

// Definition is one entry of a pipeline file.
type Definition struct {
	Run        string    `yaml:"run"`
	Parameters yaml.Node `yaml:"parameters"`
}

// Load reads a YAML pipeline definition and builds its steps in order.
func Load(r io.Reader) ([]core.Step, error) {
	var defs []Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &ConfigError{Op: "decode", Index: -1, Err: err}
	}
	return Build(defs)
}

// Build creates steps from decoded definitions.
func Build(defs []Definition) ([]core.Step, error) {
	out := make([]core.Step, 0, len(defs))
	for i, def := range defs {
		if def.Run == "" {
			return nil, &ConfigError{Op: "build", Index: i, Err: errors.New("run is required")}
		}
		factory, ok := lookup(def.Run)
		if !ok {
			return nil, &ConfigError{Op: "build", Index: i, Run: def.Run, Err: ErrUnknownProcessor}
		}
		var params *yaml.Node
		if !def.Parameters.IsZero() {
			params = &def.Parameters
		}
		step, err := factory(params)
		if err != nil {
			return nil, &ConfigError{Op: "build", Index: i, Run: def.Run, Err: err}
		}
		out = append(out, step)
	}
	return out, nil
}
