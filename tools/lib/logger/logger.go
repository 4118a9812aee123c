// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package logger carries a leveled logger through a context.Context.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// LogLevel is a flag.Value selecting the verbosity of a Logger.
type LogLevel int

const (
	NoLogLevel LogLevel = iota
	FatalLevel
	ErrorLevel
	WarningLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

var levelNames = map[LogLevel]string{
	NoLogLevel:   "no",
	FatalLevel:   "fatal",
	ErrorLevel:   "error",
	WarningLevel: "warning",
	InfoLevel:    "info",
	DebugLevel:   "debug",
	TraceLevel:   "trace",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// Set implements flag.Value.
func (l *LogLevel) Set(s string) error {
	s = strings.ToLower(s)
	for level, name := range levelNames {
		if name == s {
			*l = level
			return nil
		}
	}
	return fmt.Errorf("%q is not a valid level", s)
}

func (l LogLevel) hclogLevel() hclog.Level {
	switch l {
	case NoLogLevel:
		return hclog.Off
	case FatalLevel, ErrorLevel:
		return hclog.Error
	case WarningLevel:
		return hclog.Warn
	case InfoLevel:
		return hclog.Info
	case DebugLevel:
		return hclog.Debug
	default:
		return hclog.Trace
	}
}

// Logger writes leveled messages. Errors and warnings go to the error
// stream, everything else to the output stream.
type Logger struct {
	out hclog.Logger
	err hclog.Logger
}

// NewLogger returns a Logger named by prefix.
func NewLogger(level LogLevel, out, errOut io.Writer, prefix string) *Logger {
	opts := func(w io.Writer) *hclog.LoggerOptions {
		return &hclog.LoggerOptions{
			Name:        strings.TrimSpace(prefix),
			Level:       level.hclogLevel(),
			Output:      w,
			Color:       hclog.ColorOff,
			DisableTime: true,
		}
	}
	return &Logger{
		out: hclog.New(opts(out)),
		err: hclog.New(opts(errOut)),
	}
}

type loggerKey struct{}

var defaultLogger = NewLogger(InfoLevel, os.Stdout, os.Stderr, "")

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger carried by ctx, or a default info-level
// logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey{}).(*Logger); ok && l != nil {
		return l
	}
	return defaultLogger
}

func (l *Logger) Tracef(format string, a ...interface{}) { l.out.Trace(fmt.Sprintf(format, a...)) }
func (l *Logger) Debugf(format string, a ...interface{}) { l.out.Debug(fmt.Sprintf(format, a...)) }
func (l *Logger) Infof(format string, a ...interface{})  { l.out.Info(fmt.Sprintf(format, a...)) }
func (l *Logger) Warningf(format string, a ...interface{}) {
	l.err.Warn(fmt.Sprintf(format, a...))
}
func (l *Logger) Errorf(format string, a ...interface{}) { l.err.Error(fmt.Sprintf(format, a...)) }

// Fatalf logs at error level and exits the process.
func (l *Logger) Fatalf(format string, a ...interface{}) {
	l.Errorf(format, a...)
	os.Exit(1)
}

func Tracef(ctx context.Context, format string, a ...interface{}) {
	FromContext(ctx).Tracef(format, a...)
}

func Debugf(ctx context.Context, format string, a ...interface{}) {
	FromContext(ctx).Debugf(format, a...)
}

func Infof(ctx context.Context, format string, a ...interface{}) {
	FromContext(ctx).Infof(format, a...)
}

func Warningf(ctx context.Context, format string, a ...interface{}) {
	FromContext(ctx).Warningf(format, a...)
}

func Errorf(ctx context.Context, format string, a ...interface{}) {
	FromContext(ctx).Errorf(format, a...)
}

func Fatalf(ctx context.Context, format string, a ...interface{}) {
	FromContext(ctx).Fatalf(format, a...)
}
