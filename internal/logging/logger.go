// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package logging wraps the application logger. Callers use the helper
// functions below instead of touching the underlying logger directly.
package logging

import (
	"fmt"
	"os"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Tests may swap it for a buffer-backed one.
var L = clog.New(os.Stderr)

func init() {
	L.SetLevel(clog.WarnLevel)
}

// SetVerbosity maps the CLI verbosity count to a log level. Zero keeps the
// default of warnings only, one adds informational messages, two or more
// enables debug output.
func SetVerbosity(count int) {
	switch {
	case count <= 0:
		L.SetLevel(clog.WarnLevel)
	case count == 1:
		L.SetLevel(clog.InfoLevel)
	default:
		L.SetLevel(clog.DebugLevel)
	}
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...interface{}) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...interface{}) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...interface{}) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...interface{}) {
	L.Error(fmt.Sprintf(format, v...))
}

// Fatalf logs a fatal-level formatted message and exits with status 1.
func Fatalf(format string, v ...interface{}) {
	L.Fatal(fmt.Sprintf(format, v...))
}
