/**
 * Copyright 2018 PickMe (Digital Mobility Solutions Lanka (PVT) Ltd).
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gayan@pickme.lk)
 */

package logger

import (
	"github.com/pickme-go/log/v2"
)

// DefaultLogger is used by boot time code paths which run before a configured logger is available
var DefaultLogger = log.NewLog(log.WithLevel(log.INFO), log.WithColors(false)).Log(log.Prefixed(`k-join`))

// Level parses a textual log level, falling back to INFO on unknown values
func Level(level string) log.Level {
	switch level {
	case `FATAL`, `fatal`:
		return log.FATAL
	case `ERROR`, `error`:
		return log.ERROR
	case `WARN`, `warn`:
		return log.WARN
	case `DEBUG`, `debug`:
		return log.DEBUG
	case `TRACE`, `trace`:
		return log.TRACE
	default:
		return log.INFO
	}
}

// New creates a root logger with the given level
func New(level string, colors bool) log.Logger {
	return log.NewLog(log.WithLevel(Level(level)), log.WithColors(colors)).Log()
}
