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

package datasteps

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aaronlmathis/datasteps/core"
	"github.com/aaronlmathis/datasteps/datapackage"
	"github.com/aaronlmathis/datasteps/logger"
)

// Package datasteps runs tabular processor steps over the resources of a data
// package.
//
// A Flow first lets every step update the package descriptor, binding each
// step to the resources it applies to, and then streams the rows of each
// resource through the bound transformers into a sink:
//
//	flow, err := datasteps.NewFlow().
//	    Package(pkg).
//	    From("stations", csvReader).
//	    Step(pipelineSteps...).
//	    To(func(res *datapackage.Resource) (datasteps.DataSink, error) {
//	        return writers.NewCSVWriter(out, writers.WithResource(res))
//	    }).
//	    Build()
//	if err != nil { log.Fatal(err) }
//	if err := flow.Execute(context.Background()); err != nil { log.Fatal(err) }
//
// Processing is fail-fast: the first error stops the flow.

// SinkFactory returns the sink receiving a resource's rows. res is the final
// descriptor, after every step updated it.
type SinkFactory func(res *datapackage.Resource) (DataSink, error)

// FlowBuilder provides a fluent API for constructing a Flow.
type FlowBuilder struct {
	flow *Flow
}

// NewFlow creates a new FlowBuilder.
func NewFlow() *FlowBuilder {
	return &FlowBuilder{
		flow: &Flow{
			sources: make(map[string]DataSource),
			log:     logger.Default(),
		},
	}
}

// Package sets the descriptor. Steps update it in place while the flow runs.
func (fb *FlowBuilder) Package(pkg *datapackage.Package) *FlowBuilder {
	fb.flow.pkg = pkg
	return fb
}

// From sets the source of the named resource.
func (fb *FlowBuilder) From(resource string, source DataSource) *FlowBuilder {
	fb.flow.sources[resource] = source
	return fb
}

// Step appends steps in execution order.
func (fb *FlowBuilder) Step(steps ...Step) *FlowBuilder {
	fb.flow.steps = append(fb.flow.steps, steps...)
	return fb
}

// To sets the factory creating one sink per resource.
func (fb *FlowBuilder) To(factory SinkFactory) *FlowBuilder {
	fb.flow.sinks = factory
	return fb
}

// WithErrorHandler sets a handler observing the failing record before the
// flow stops. The error it returns replaces the original when non-nil.
func (fb *FlowBuilder) WithErrorHandler(handler ErrorHandler) *FlowBuilder {
	fb.flow.errorHandler = handler
	return fb
}

// WithLogger replaces the package default logger.
func (fb *FlowBuilder) WithLogger(l logger.Logger) *FlowBuilder {
	if l != nil {
		fb.flow.log = l
	}
	return fb
}

// Build validates and constructs the Flow.
func (fb *FlowBuilder) Build() (*Flow, error) {
	f := fb.flow
	if f.pkg == nil {
		return nil, fmt.Errorf("flow requires a package descriptor")
	}
	if f.sinks == nil {
		return nil, fmt.Errorf("flow requires a sink factory")
	}
	for name := range f.sources {
		if f.pkg.Resource(name) == nil {
			return nil, fmt.Errorf("flow source %q: %w", name, ErrUnknownResource)
		}
	}
	return f, nil
}

// ErrUnknownResource is returned for a source naming no package resource.
var ErrUnknownResource = errors.New("resource not in package")

// Flow feeds the resources of a package through steps into sinks.
type Flow struct {
	pkg          *datapackage.Package
	sources      map[string]DataSource
	steps        []Step
	sinks        SinkFactory
	errorHandler ErrorHandler
	log          logger.Logger
}

// FlowStats reports the rows each resource read and wrote.
type FlowStats struct {
	RowsRead    map[string]int64
	RowsWritten map[string]int64
}

// Descriptor returns the package descriptor; after Execute it reflects every
// step's changes.
func (f *Flow) Descriptor() *datapackage.Package {
	return f.pkg
}

// Execute runs the flow. Sources are closed and sinks flushed and closed
// whether or not processing succeeds.
func (f *Flow) Execute(ctx context.Context) error {
	_, err := f.Run(ctx)
	return err
}

// Run is Execute returning row counts.
func (f *Flow) Run(ctx context.Context) (FlowStats, error) {
	stats := FlowStats{RowsRead: make(map[string]int64), RowsWritten: make(map[string]int64)}
	defer f.closeSources()

	bound, err := f.bind()
	if err != nil {
		return stats, f.handleError(ctx, nil, err)
	}

	for _, res := range f.pkg.Resources {
		source, ok := f.sources[res.Name]
		if !ok {
			f.log.Debug("resource has no source", "resource", res.Name)
			continue
		}
		f.log.Info("processing resource", "resource", res.Name, "transformers", len(bound[res.Name]))
		read, written, err := f.stream(ctx, res, source, core.Chain(bound[res.Name]...))
		stats.RowsRead[res.Name] = read
		stats.RowsWritten[res.Name] = written
		if err != nil {
			f.log.Error("resource failed", "resource", res.Name, "row", read, "error", err)
			return stats, err
		}
		f.log.Info("finished resource", "resource", res.Name, "read", read, "written", written)
	}
	return stats, nil
}

// bind binds every step to every resource as the step receives it, then lets
// the step update the descriptor for the steps that follow.
func (f *Flow) bind() (map[string][]Transformer, error) {
	bound := make(map[string][]Transformer)
	for _, step := range f.steps {
		for _, res := range f.pkg.Resources {
			t, err := step.Bind(res.Clone())
			if err != nil {
				return nil, fmt.Errorf("%s: resource %q: %w", step.Name(), res.Name, err)
			}
			if t == nil {
				continue
			}
			bound[res.Name] = append(bound[res.Name], t)
			f.log.Debug("bound step", "step", step.Name(), "resource", res.Name)
		}
		if err := step.UpdateSchema(f.pkg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return bound, nil
}

func (f *Flow) stream(ctx context.Context, res *datapackage.Resource, source DataSource, chain Transformer) (read, written int64, err error) {
	sink, err := f.sinks(res)
	if err != nil {
		return 0, 0, fmt.Errorf("resource %q: open sink: %w", res.Name, err)
	}
	defer func() {
		if ferr := sink.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("resource %q: flush: %w", res.Name, ferr)
		}
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("resource %q: close: %w", res.Name, cerr)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return read, written, err
		}

		record, err := source.Read(ctx)
		if errors.Is(err, io.EOF) {
			return read, written, nil
		}
		if err != nil {
			return read, written, f.handleError(ctx, record, fmt.Errorf("resource %q: %w", res.Name, err))
		}
		read++

		out, err := chain.Transform(ctx, record)
		if err != nil {
			return read, written, f.handleError(ctx, record, fmt.Errorf("resource %q: %w", res.Name, err))
		}
		if len(out) == 0 {
			continue
		}

		if err := sink.Write(ctx, out); err != nil {
			return read, written, f.handleError(ctx, out, fmt.Errorf("resource %q: write: %w", res.Name, err))
		}
		written++
	}
}

func (f *Flow) handleError(ctx context.Context, record Record, err error) error {
	if f.errorHandler == nil {
		return err
	}
	if herr := f.errorHandler.HandleError(ctx, record, err); herr != nil {
		return herr
	}
	return err
}

func (f *Flow) closeSources() {
	for name, source := range f.sources {
		if err := source.Close(); err != nil {
			f.log.Warn("closing source", "resource", name, "error", err)
		}
	}
}
