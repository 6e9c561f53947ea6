package core

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

// loggingEnabled gates per-node and per-attribute tracing. Off by default.
var loggingEnabled atomic.Bool

var logger = log.New(os.Stderr, "[sdui] ", log.LstdFlags)

// SetLoggingEnabled enables or disables verbose build tracing for the process.
func SetLoggingEnabled(enabled bool) {
	loggingEnabled.Store(enabled)
}

// LoggingEnabled reports whether verbose build tracing is on.
func LoggingEnabled() bool {
	return loggingEnabled.Load()
}

// SetLogOutput redirects build tracing. Pass nil to restore stderr.
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logger.SetOutput(w)
}

// debugf writes a trace line. Callers formatting expensive arguments should
// check LoggingEnabled first.
func debugf(format string, args ...any) {
	if !loggingEnabled.Load() {
		return
	}
	logger.Printf(format, args...)
}
