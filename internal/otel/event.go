// Package otel provides structured operational events for clubnews.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// them asynchronously through a buffered channel drained by one goroutine.
// An optional RingBuffer keeps the most recent events in memory for the
// debug overlay. Nothing here is ever shown to the end user as an error.
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

// rank orders levels for threshold checks. Unknown levels rank as info.
func (l Level) rank() int {
	switch l {
	case LevelDebug:
		return 0
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 1
	}
}

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Source resolution, one event per tier attempted.
	KindFeedRemote      EventKind = "feed.remote"
	KindFeedRemoteError EventKind = "feed.remote_error"
	KindFeedCache       EventKind = "feed.cache"
	KindFeedCacheError  EventKind = "feed.cache_error"
	KindFeedDefault     EventKind = "feed.default"
	KindCacheWriteError EventKind = "feed.cache_write_error"

	// Normalization
	KindNormalizeDrop   EventKind = "normalize.drop"
	KindNormalizeCoerce EventKind = "normalize.coerce"

	// Webhook notifications
	KindNotifySent      EventKind = "notify.sent"
	KindNotifyError     EventKind = "notify.error"
	KindNotifyThrottled EventKind = "notify.throttled"

	// View state
	KindViewRebuild EventKind = "view.rebuild"

	// Store
	KindStoreError EventKind = "store.error"

	// UI
	KindKeyPress EventKind = "ui.key"
	KindWatch    EventKind = "ui.watch"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is the universal operational record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "fetch", "view", "ui", "main"
	SessionID string         `json:"session_id,omitempty"` // same for the whole run
	Tier      string         `json:"tier,omitempty"`       // "remote", "cache", "default"
	Category  string         `json:"category,omitempty"`
	Query     string         `json:"query,omitempty"`
	Source    string         `json:"source,omitempty"` // URL or path involved
	Count     int            `json:"count,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
