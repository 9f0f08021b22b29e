package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/abelbrown/clubnews/internal/otel"
)

// Webhook event names.
const (
	EventStartup         = "startup"
	EventCategoryChanged = "category_changed"
	EventFilterChanged   = "filter_changed"
	EventReload          = "reload"
)

// Notification is a status message posted to the webhook.
type Notification struct {
	Event          string    `json:"event"`
	CoachName      string    `json:"coach_name"`
	ActiveCategory string    `json:"active_category"`
	FilterText     string    `json:"filter_text"`
	Timestamp      time.Time `json:"-"`
}

type payload struct {
	Notification
	Timestamp string `json:"timestamp"`
}

// Notifier posts notifications to a webhook without blocking the caller.
// Notifications arriving faster than the configured interval are dropped.
// A nil *Notifier, or one with no URL, is disabled.
type Notifier struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	events  *otel.Logger
	wg      sync.WaitGroup
}

// NewNotifier creates a notifier posting to url. Each post is bounded by
// timeout; at most one notification per minInterval is sent.
func NewNotifier(url string, timeout, minInterval time.Duration, events *otel.Logger) *Notifier {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Notifier{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		events:  events,
	}
}

// Enabled reports whether notifications are posted at all.
func (n *Notifier) Enabled() bool {
	return n != nil && n.url != ""
}

// Notify posts note in the background and returns immediately.
func (n *Notifier) Notify(note Notification) {
	if !n.Enabled() {
		return
	}
	if !n.limiter.Allow() {
		n.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindNotifyThrottled, Msg: note.Event})
		return
	}
	if note.Timestamp.IsZero() {
		note.Timestamp = time.Now()
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.post(note)
	}()
}

// Wait blocks until every in-flight post has finished.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func (n *Notifier) post(note Notification) {
	start := time.Now()
	id := uuid.NewString()

	err := n.send(id, note)
	ev := otel.Event{
		Kind:     otel.KindNotifySent,
		Level:    otel.LevelInfo,
		Category: note.ActiveCategory,
		Query:    note.FilterText,
		Msg:      note.Event,
		Dur:      time.Since(start),
		Extra:    map[string]any{"event_id": id},
	}
	if err != nil {
		ev.Kind = otel.KindNotifyError
		ev.Level = otel.LevelWarn
		ev.Err = err.Error()
	}
	n.emit(ev)
}

func (n *Notifier) send(id string, note Notification) error {
	body, err := json.Marshal(payload{
		Notification: note,
		Timestamp:    note.Timestamp.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	// The client timeout bounds the post; nothing upstream can cancel it.
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", id)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func (n *Notifier) emit(ev otel.Event) {
	if n.events == nil {
		return
	}
	ev.Comp = "notify"
	n.events.Emit(ev)
}
