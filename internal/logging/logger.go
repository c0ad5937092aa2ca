// Package logging provides the leveled, printf-style logger shared by the planner,
// the evaluators, the advisor and the turn orchestrator.
package logging

import (
	"fmt"
	"strings"
)

// Level represents logging severity
type Level int

const (
	// LevelDebug for phase transitions and other detail
	LevelDebug Level = iota
	// LevelInfo for session lifecycle messages
	LevelInfo
	// LevelWarn for degraded oracle calls
	LevelWarn
	// LevelError for listen/speak primitive failures
	LevelError
	// LevelNone disables all logging
	LevelNone
)

// Logger is the logging surface used across the module.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// ParseLevel converts a config string into a Level. Empty means info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "none", "off", "disable":
		return LevelNone, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// String returns the string representation of Level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelNone:
		return "none"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

// nopLogger discards everything
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// NewNop returns a logger that discards all messages.
func NewNop() Logger {
	return nopLogger{}
}

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}
