package otel

import (
	"os"
	"sync/atomic"
)

// TraceEnv is the environment variable that enables debug-level events.
const TraceEnv = "CLUBNEWS_TRACE"

// traceEnabled is set once at package init. Atomic so tests can flip it.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv(TraceEnv) != "")
}

// TraceEnabled reports whether CLUBNEWS_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// DefaultMinLevel is the level a file-backed logger should start at:
// debug when tracing, info otherwise.
func DefaultMinLevel() Level {
	if TraceEnabled() {
		return LevelDebug
	}
	return LevelInfo
}

// setTraceEnabled overrides the traceEnabled flag for testing.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
