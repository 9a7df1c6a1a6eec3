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
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Package logger provides leveled, structured logging for DataSteps.
// Messages carry key/value pairs rather than format strings.

// Level defines log levels.
type Level int

const (
	// DEBUG shows per-step and per-expression detail.
	DEBUG Level = iota
	// INFO shows resource start and finish.
	INFO
	// WARN shows recoverable oddities in the data.
	WARN
	// ERROR shows failures.
	ERROR
	// OFF disables logging.
	OFF
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case OFF:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name (case-insensitive) to a Level.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO", "":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	case "OFF", "NONE":
		return OFF, true
	}
	return INFO, false
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case INFO:
		return zerolog.InfoLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// Logger is the logging interface used across DataSteps.
// kv is an alternating list of keys and values.
type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
	SetLevel(level Level)
}

type zeroLogger struct {
	mu  sync.RWMutex
	log zerolog.Logger
}

// New creates a logger writing JSON lines to output.
//
// Example:
//
//	log := logger.New(logger.INFO, os.Stderr)
//	log.Info("resource finished", "resource", "stations", "rows", 120)
func New(level Level, output io.Writer) Logger {
	return &zeroLogger{
		log: zerolog.New(output).Level(level.zerolog()).With().Timestamp().Logger(),
	}
}

// NewConsole creates a logger with human-readable output.
func NewConsole(level Level, output io.Writer) Logger {
	w := zerolog.ConsoleWriter{Out: output, TimeFormat: "2006-01-02 15:04:05.000"}
	return &zeroLogger{
		log: zerolog.New(w).Level(level.zerolog()).With().Timestamp().Logger(),
	}
}

func (l *zeroLogger) Debug(msg string, kv ...interface{}) { l.emit(zerolog.DebugLevel, msg, kv) }
func (l *zeroLogger) Info(msg string, kv ...interface{})  { l.emit(zerolog.InfoLevel, msg, kv) }
func (l *zeroLogger) Warn(msg string, kv ...interface{})  { l.emit(zerolog.WarnLevel, msg, kv) }
func (l *zeroLogger) Error(msg string, kv ...interface{}) { l.emit(zerolog.ErrorLevel, msg, kv) }

func (l *zeroLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log = l.log.Level(level.zerolog())
}

func (l *zeroLogger) emit(level zerolog.Level, msg string, kv []interface{}) {
	l.mu.RLock()
	zl := l.log
	l.mu.RUnlock()

	ev := zl.WithLevel(level)
	if ev == nil {
		return
	}
	if len(kv)%2 != 0 {
		kv = append(kv, "(MISSING)")
	}
	ev.Fields(kv).Msg(msg)
}

type discardLogger struct{}

// NewDiscard creates a logger that drops everything.
func NewDiscard() Logger {
	return discardLogger{}
}

func (discardLogger) Debug(string, ...interface{}) {}
func (discardLogger) Info(string, ...interface{})  {}
func (discardLogger) Warn(string, ...interface{})  {}
func (discardLogger) Error(string, ...interface{}) {}
func (discardLogger) SetLevel(Level)               {}

var (
	defaultMu       sync.RWMutex
	defaultInstance = New(levelFromEnv(), os.Stderr)
)

// levelFromEnv reads DATASTEPS_LOG_LEVEL, defaulting to WARN.
func levelFromEnv() Level {
	name, ok := os.LookupEnv("DATASTEPS_LOG_LEVEL")
	if !ok {
		return WARN
	}
	level, _ := ParseLevel(name)
	return level
}

// SetDefault replaces the global logger. A nil logger discards.
func SetDefault(l Logger) {
	if l == nil {
		l = NewDiscard()
	}
	defaultMu.Lock()
	defaultInstance = l
	defaultMu.Unlock()
}

// Default returns the global logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultInstance
}

// Debug logs through the default logger.
func Debug(msg string, kv ...interface{}) { Default().Debug(msg, kv...) }

// Info logs through the default logger.
func Info(msg string, kv ...interface{}) { Default().Info(msg, kv...) }

// Warn logs through the default logger.
func Warn(msg string, kv ...interface{}) { Default().Warn(msg, kv...) }

// Error logs through the default logger.
func Error(msg string, kv ...interface{}) { Default().Error(msg, kv...) }
