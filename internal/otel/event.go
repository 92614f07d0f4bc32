// Package otel provides structured observability for shelf.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer keeps recent events for the debug overlay, and an
// optional Metrics sink turns them into Prometheus series.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Search controller
	KindSearchDebounce EventKind = "search.debounce"
	KindSearchStart    EventKind = "search.start"
	KindSearchComplete EventKind = "search.complete"
	KindSearchStale    EventKind = "search.stale"
	KindSearchError    EventKind = "search.error"
	KindSearchClear    EventKind = "search.clear"
	KindSearchSelect   EventKind = "search.select"

	// Feed controller
	KindFeedReset        EventKind = "feed.reset"
	KindFeedMore         EventKind = "feed.more"
	KindFeedPage         EventKind = "feed.page"
	KindFeedStale        EventKind = "feed.stale"
	KindFeedError        EventKind = "feed.error"
	KindFeedHelpful      EventKind = "feed.helpful"
	KindFeedHelpfulError EventKind = "feed.helpful_error"

	// Aggregation view
	KindStatsFetch    EventKind = "stats.fetch"
	KindStatsComplete EventKind = "stats.complete"
	KindStatsStale    EventKind = "stats.stale"
	KindStatsError    EventKind = "stats.error"

	// Local catalog
	KindStoreSeed  EventKind = "store.seed"
	KindStoreError EventKind = "store.error"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events (SHELF_TRACE)
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "search", "feed", "stats", "main"
	SessionID string         `json:"session_id,omitempty"` // same for entire app run
	Gen       uint64         `json:"gen,omitempty"`        // request generation token
	Dur       time.Duration  `json:"-"`                    // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Page      int            `json:"page,omitempty"`
	Subject   string         `json:"subject,omitempty"`
	Query     string         `json:"query,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`   // free text
	Extra     map[string]any `json:"extra,omitempty"` // escape hatch for unusual fields
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
