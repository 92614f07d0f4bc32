package otel

import (
	"os"
	"sync/atomic"
)

// TraceEnv enables per-message tracing in the root UI when non-empty.
const TraceEnv = "SHELF_TRACE"

// traceEnabled is read by the UI goroutine and flipped by tests.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(traceFromEnv())
}

func traceFromEnv() bool {
	return os.Getenv(TraceEnv) != ""
}

// TraceEnabled reports whether SHELF_TRACE was set at startup. When true the
// root UI records every message it receives as a trace.msg_received event.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
