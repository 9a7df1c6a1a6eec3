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

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{OFF, "OFF"},
		{Level(999), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, DEBUG, level)

	level, ok = ParseLevel(" Warning ")
	assert.True(t, ok)
	assert.Equal(t, WARN, level)

	level, ok = ParseLevel("loud")
	assert.False(t, ok)
	assert.Equal(t, INFO, level)
}

// TestNew_StructuredOutput verifies messages and key/value pairs are emitted as JSON
func TestNew_StructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(INFO, &buf)

	log.Info("resource finished", "resource", "stations", "rows", 3)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "resource finished", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "stations", line["resource"])
	assert.EqualValues(t, 3, line["rows"])
}

// TestNew_LevelFiltering verifies messages below the level are dropped
func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(WARN, &buf)

	log.Debug("hidden")
	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	log.SetLevel(DEBUG)
	log.Debug("now shown")
	assert.Contains(t, buf.String(), "now shown")

	buf.Reset()
	log.SetLevel(OFF)
	log.Error("silenced")
	assert.Empty(t, buf.String())
}

func TestNew_OddKeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := New(DEBUG, &buf)
	log.Debug("odd", "key")
	assert.Contains(t, buf.String(), "(MISSING)")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsole(INFO, &buf)
	log.Info("compiled", "step", "boolean_filter_rows")
	out := buf.String()
	assert.Contains(t, out, "compiled")
	assert.Contains(t, out, "boolean_filter_rows")
}

// TestDefault verifies the global logger can be swapped and restored
func TestDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(New(DEBUG, &buf))

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)

	SetDefault(nil)
	assert.NotPanics(t, func() { Error("dropped") })
}

func TestNewDiscard(t *testing.T) {
	log := NewDiscard()
	assert.NotPanics(t, func() {
		log.Debug("x")
		log.Info("x")
		log.Warn("x")
		log.Error("x")
		log.SetLevel(DEBUG)
	})
}
