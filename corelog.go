// corelog.go - lightweight trace logging, in a debug-monitor style

package main

import (
	"log"
	"os"
)

// Logger wraps the standard library logger with a leveled Tracef used
// sparingly for instruction and interrupt tracing, mirroring the terse
// prefix-tagged trace lines a debug monitor writes rather than
// adopting a structured logging library the rest of the pack never uses.
type Logger struct {
	std     *log.Logger
	enabled bool
}

// NewLogger returns a Logger writing to stderr with trace output disabled
// by default; callers enable it explicitly (e.g. via a CLI flag).
func NewLogger() *Logger {
	return &Logger{std: log.New(os.Stderr, "gbcore: ", log.LstdFlags)}
}

func (l *Logger) SetTraceEnabled(v bool) { l.enabled = v }

// Tracef logs a formatted trace line only when tracing is enabled. Its
// callers are the system's interrupt-dispatch point and TraceState.
func (l *Logger) Tracef(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.std.Printf(format, args...)
}

// Errorf always logs, regardless of trace level — for conditions a caller
// should notice even with tracing off.
func (l *Logger) Errorf(format string, args ...any) {
	l.std.Printf("error: "+format, args...)
}

// TraceState renders a one-line register snapshot in the usual debug
// monitor's register-dump style.
func (l *Logger) TraceState(r RegisterSnapshot) {
	l.Tracef("PC=%04X SP=%04X A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X IME=%v",
		r.PC, r.SP, r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L, r.IME)
}
