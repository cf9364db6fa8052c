// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package snag

import (
	"log"
	"os"
)

// A Logger receives debug output from the client. Install one on
// Client.Logger to trace pipeline decisions; a nil logger is silent.
type Logger interface {
	Debugf(format string, args ...interface{})
}

// NewSimpleLogger returns a Logger that writes to standard error with
// a "snag" prefix. It is intended for development use.
func NewSimpleLogger() Logger {
	return &simpleLogger{l: log.New(os.Stderr, "snag: ", log.LstdFlags|log.Lmicroseconds)}
}

type simpleLogger struct {
	l *log.Logger
}

func (s *simpleLogger) Debugf(format string, args ...interface{}) {
	s.l.Printf(format, args...)
}
