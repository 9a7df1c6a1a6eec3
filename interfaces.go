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

import "github.com/aaronlmathis/datasteps/core"

// Core types re-exported for callers that only import the root package.
type (
	Record           = core.Record
	DataSource       = core.DataSource
	DataSink         = core.DataSink
	Transformer      = core.Transformer
	TransformFunc    = core.TransformFunc
	Filter           = core.Filter
	FilterFunc       = core.FilterFunc
	Step             = core.Step
	ErrorHandler     = core.ErrorHandler
	ErrorHandlerFunc = core.ErrorHandlerFunc
	RowError         = core.RowError
)
