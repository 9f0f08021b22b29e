package fetch

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/clubnews/internal/otel"
)

type webhookRecorder struct {
	mu       sync.Mutex
	bodies   []map[string]any
	eventIDs []string
	status   int
}

func (w *webhookRecorder) handler(rw http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	var m map[string]any
	_ = json.Unmarshal(b, &m)

	w.mu.Lock()
	w.bodies = append(w.bodies, m)
	w.eventIDs = append(w.eventIDs, r.Header.Get("X-Event-ID"))
	status := w.status
	w.mu.Unlock()

	if status != 0 {
		rw.WriteHeader(status)
	}
}

func TestNotifyPostsPayload(t *testing.T) {
	rec := &webhookRecorder{}
	server := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer server.Close()

	events := otel.NewNullLogger()
	ring := otel.NewRingBuffer(16)
	events.SetRingBuffer(ring)

	n := NewNotifier(server.URL, time.Second, 0, events)
	n.Notify(Notification{
		Event:          EventCategoryChanged,
		CoachName:      "Tite",
		ActiveCategory: "Lesões e Suspensões",
		FilterText:     "joelho",
		Timestamp:      time.Date(2026, 1, 14, 15, 4, 5, 0, time.UTC),
	})
	n.Wait()
	events.Close()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.bodies) != 1 {
		t.Fatalf("expected 1 post, got %d", len(rec.bodies))
	}
	body := rec.bodies[0]
	want := map[string]any{
		"event":           "category_changed",
		"coach_name":      "Tite",
		"active_category": "Lesões e Suspensões",
		"filter_text":     "joelho",
		"timestamp":       "2026-01-14T15:04:05Z",
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("payload[%s] = %v, want %v", k, body[k], v)
		}
	}
	if len(body) != len(want) {
		t.Errorf("payload has extra fields: %v", body)
	}
	if _, err := uuid.Parse(rec.eventIDs[0]); err != nil {
		t.Errorf("X-Event-ID %q is not a uuid: %v", rec.eventIDs[0], err)
	}
	if ring.Stats()[otel.KindNotifySent] != 1 {
		t.Errorf("unexpected events %v", ring.Stats())
	}
}

func TestNotifyThrottles(t *testing.T) {
	rec := &webhookRecorder{}
	server := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer server.Close()

	events := otel.NewNullLogger()
	ring := otel.NewRingBuffer(16)
	events.SetRingBuffer(ring)

	n := NewNotifier(server.URL, time.Second, time.Hour, events)
	for i := 0; i < 3; i++ {
		n.Notify(Notification{Event: EventFilterChanged})
	}
	n.Wait()
	events.Close()

	rec.mu.Lock()
	posts := len(rec.bodies)
	rec.mu.Unlock()
	if posts != 1 {
		t.Errorf("expected 1 post, got %d", posts)
	}
	if ring.Stats()[otel.KindNotifyThrottled] != 2 {
		t.Errorf("expected 2 throttled events, got %v", ring.Stats())
	}
}

func TestNotifyFailureIsLogged(t *testing.T) {
	rec := &webhookRecorder{status: http.StatusBadGateway}
	server := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer server.Close()

	events := otel.NewNullLogger()
	ring := otel.NewRingBuffer(16)
	events.SetRingBuffer(ring)

	n := NewNotifier(server.URL, time.Second, 0, events)
	n.Notify(Notification{Event: EventReload})
	n.Wait()
	events.Close()

	evs := ring.Snapshot()
	if len(evs) != 1 || evs[0].Kind != otel.KindNotifyError || evs[0].Err == "" {
		t.Errorf("expected one notify.error event, got %+v", evs)
	}
}

func TestNotifyDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()

	n := NewNotifier(server.URL, 5*time.Second, 0, nil)

	start := time.Now()
	n.Notify(Notification{Event: EventStartup})
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Notify blocked for %v", elapsed)
	}

	close(release)
	n.Wait()
}

func TestNotifyDisabled(t *testing.T) {
	var nilNotifier *Notifier
	if nilNotifier.Enabled() {
		t.Error("nil notifier should be disabled")
	}
	nilNotifier.Notify(Notification{Event: EventStartup})
	nilNotifier.Wait()

	n := NewNotifier("", time.Second, 0, nil)
	if n.Enabled() {
		t.Error("notifier without URL should be disabled")
	}
	n.Notify(Notification{Event: EventStartup})
	n.Wait()
}

func TestNotifyUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	events := otel.NewNullLogger()
	ring := otel.NewRingBuffer(4)
	events.SetRingBuffer(ring)

	n := NewNotifier(url, time.Second, 0, events)
	n.Notify(Notification{Event: EventReload})
	n.Wait()
	events.Close()

	if ring.Stats()[otel.KindNotifyError] != 1 {
		t.Errorf("unexpected events %v", ring.Stats())
	}
}
