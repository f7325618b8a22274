package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Logger is the diagnostics sink used across the ray caster. Implementations
// must be safe for concurrent use.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes debug and info lines to one writer and warnings and
// errors to another, each tagged with its level and component prefix.
type DefaultLogger struct {
	debug  *atomic.Bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, prefix, debug)
}

func NewWriterLogger(out, errOut io.Writer, prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	l := &DefaultLogger{
		debug:  new(atomic.Bool),
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
	}
	l.debug.Store(debug)
	return l
}

// With returns a logger for a sub-component. It shares writers and the debug
// switch with l.
func (l *DefaultLogger) With(component string) *DefaultLogger {
	child := *l
	if l.prefix != "" {
		child.prefix = l.prefix + "/" + component
	} else {
		child.prefix = component
	}
	return &child
}

func (l *DefaultLogger) DebugEnabled() bool { return l.debug.Load() }

func (l *DefaultLogger) SetDebug(enabled bool) { l.debug.Store(enabled) }

func (l *DefaultLogger) line(level, format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		return level + ": " + msg
	}
	return "[" + l.prefix + "] " + level + ": " + msg
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.DebugEnabled() {
		l.out.Print(l.line("DEBUG", format, args...))
	}
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.line("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print(l.line("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.line("ERROR", format, args...))
}

type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool    { return false }
func (nopLogger) SetDebug(bool)         {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// OrNop returns l, or a no-op logger when l is nil. Never returns nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
