// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log is a small leveled-logging facade, the same shape the
// teacher module wires its File and its CLI dumper through: a Logger
// interface, a level-filtering decorator, and a Helper that exposes
// printf-style methods per level.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is a logging severity.
type Level int8

// Logging levels, lowest first.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the level's display name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the logging contract the core accepts. Implementations
// need not be safe for use after Sync/Close, but must be safe for
// concurrent Log calls.
type Logger interface {
	Log(level Level, msg string) error
}

// stdLogger writes level-prefixed, timestamped lines to an io.Writer.
type stdLogger struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStdLogger returns a Logger that writes to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{out: w}
}

func (l *stdLogger) Log(level Level, msg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.out, "%s %-5s %s\n", time.Now().UTC().Format(time.RFC3339), level, msg)
	return err
}

// filter decorates a Logger, dropping entries below a minimum level.
type filter struct {
	logger Logger
	level  Level
}

// FilterOption configures a filter built by NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level a filter lets through.
func FilterLevel(level Level) FilterOption {
	return func(f *filter) { f.level = level }
}

// NewFilter wraps logger with level filtering.
func NewFilter(logger Logger, opts ...FilterOption) Logger {
	f := &filter{logger: logger, level: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, msg string) error {
	if level < f.level {
		return nil
	}
	return f.logger.Log(level, msg)
}

// Helper adds printf-style, per-level convenience methods atop a Logger.
type Helper struct {
	logger Logger
}

// NewHelper returns a Helper backed by logger.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, format string, a ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	_ = h.logger.Log(level, fmt.Sprintf(format, a...))
}

// Debugf logs at LevelDebug.
func (h *Helper) Debugf(format string, a ...interface{}) { h.log(LevelDebug, format, a...) }

// Infof logs at LevelInfo.
func (h *Helper) Infof(format string, a ...interface{}) { h.log(LevelInfo, format, a...) }

// Warnf logs at LevelWarn.
func (h *Helper) Warnf(format string, a ...interface{}) { h.log(LevelWarn, format, a...) }

// Errorf logs at LevelError.
func (h *Helper) Errorf(format string, a ...interface{}) { h.log(LevelError, format, a...) }

// Fatalf logs at LevelFatal then exits the process.
func (h *Helper) Fatalf(format string, a ...interface{}) {
	h.log(LevelFatal, format, a...)
	os.Exit(1)
}
