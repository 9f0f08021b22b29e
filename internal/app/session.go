// Package app wires one clubnews session: the resolver, notifier, store and
// loggers, plus the view state they act on. A Session is built once at
// startup and passed to whatever drives it (the terminal host or a CLI
// command); nothing here is process-global.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/abelbrown/clubnews/internal/config"
	"github.com/abelbrown/clubnews/internal/fetch"
	"github.com/abelbrown/clubnews/internal/logging"
	"github.com/abelbrown/clubnews/internal/news"
	"github.com/abelbrown/clubnews/internal/otel"
	"github.com/abelbrown/clubnews/internal/store"
	"github.com/abelbrown/clubnews/internal/viewstate"
)

// historyKeep is how many resolve history rows are retained.
const historyKeep = 500

// Deps are the collaborators of a Session. Only Config and Resolver are
// required; the rest default to disabled or discarding implementations.
type Deps struct {
	Config   *config.Config
	Resolver *fetch.Resolver
	Notifier *fetch.Notifier
	Store    *store.Store
	Events   *otel.Logger
	Ring     *otel.RingBuffer
	Log      *log.Logger
}

// Session is the explicit context of one run. Not safe for concurrent use,
// except Resolve, which only touches the resolver.
type Session struct {
	id       string
	cfg      *config.Config
	resolver *fetch.Resolver
	notifier *fetch.Notifier
	store    *store.Store
	events   *otel.Logger
	ring     *otel.RingBuffer
	log      *log.Logger

	state *viewstate.State
	read  map[string]bool
	last  fetch.Result

	closers []io.Closer
}

// New builds a Session from deps. Call Start before using the view state.
func New(deps Deps) *Session {
	s := &Session{
		id:       uuid.NewString(),
		cfg:      deps.Config,
		resolver: deps.Resolver,
		notifier: deps.Notifier,
		store:    deps.Store,
		events:   deps.Events,
		ring:     deps.Ring,
		log:      deps.Log,
		read:     make(map[string]bool),
	}
	if s.events == nil {
		s.events = otel.NewNullLogger()
		s.closers = append(s.closers, closerFunc(s.events.Close))
	}
	if s.ring == nil {
		s.ring = otel.NewRingBuffer(otel.DefaultRingSize)
	}
	s.events.SetRingBuffer(s.ring)
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.resolver.Events == nil {
		s.resolver.Events = s.events
	}
	return s
}

// Open builds a production Session from cfg: it creates the data directory,
// opens the event log, the log file and the database, and constructs the
// fetcher, cache, resolver and notifier. Store failures are logged and the
// session continues without persistence.
func Open(cfg *config.Config) (*Session, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	var closers []io.Closer

	ef, err := os.OpenFile(cfg.EventsPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	events := otel.NewLogger(ef)
	events.SetMinLevel(otel.DefaultMinLevel())
	closers = append(closers, closerFunc(events.Close), ef)

	logger, lf, err := logging.New(cfg.LogDir())
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	closers = append(closers, lf)

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		logger.Warn("Continuing without persistence", "error", err)
		events.Error(otel.KindStoreError, "main", err)
		st = nil
	} else {
		closers = append(closers, st)
	}

	resolver := &fetch.Resolver{
		Source: fetch.NewFetcher(cfg.Feed.Timeout, cfg.Feed.UserAgent, fetch.Format(cfg.Feed.Format)),
		Cache:  fetch.NewCache(cfg.Cache.Path),
		URL:    cfg.Feed.URL,
		Events: events,
	}
	notifier := fetch.NewNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout, cfg.Webhook.MinInterval, events)

	s := New(Deps{
		Config:   cfg,
		Resolver: resolver,
		Notifier: notifier,
		Store:    st,
		Events:   events,
		Log:      logger,
	})
	s.closers = append(s.closers, closers...)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Config returns the session configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// State returns the view state. Nil before Start.
func (s *Session) State() *viewstate.State { return s.state }

// Ring returns the in-memory buffer of recent events.
func (s *Session) Ring() *otel.RingBuffer { return s.ring }

// Events returns the operational event logger.
func (s *Session) Events() *otel.Logger { return s.events }

// Log returns the human-readable logger.
func (s *Session) Log() *log.Logger { return s.log }

// Store returns the database, or nil when running without persistence.
func (s *Session) Store() *store.Store { return s.store }

// LastResult returns the most recently applied resolve result.
func (s *Session) LastResult() fetch.Result { return s.last }

// Start resolves the first document and builds the view state from it.
func (s *Session) Start(ctx context.Context) fetch.Result {
	s.events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindStartup,
		Comp:  "main",
		Msg:   s.id,
		Extra: map[string]any{"feed_url": s.cfg.Feed.URL, "format": s.cfg.Feed.Format},
	})
	s.log.Info("Session started", "id", s.id, "feed", s.cfg.Feed.URL)

	res := s.Resolve(ctx)
	s.state = viewstate.New(res.Document, s.cfg.UI.VisibleRows,
		viewstate.WithCategory(s.cfg.InitialCategory()),
		viewstate.WithEvents(s.events),
	)
	s.record(res)
	s.notify(fetch.EventStartup)
	return res
}

// Resolve runs the resolver without touching the view state. It is safe to
// call from a background command while the state is being rendered.
func (s *Session) Resolve(ctx context.Context) fetch.Result {
	return s.resolver.Resolve(ctx)
}

// Apply installs res as the current document, keeping category, filter and
// the re-clamped selection.
func (s *Session) Apply(res fetch.Result) {
	s.state.SetDocument(res.Document)
	s.record(res)
	s.notify(fetch.EventReload)
}

// Reload resolves and applies a fresh document.
func (s *Session) Reload(ctx context.Context) fetch.Result {
	res := s.Resolve(ctx)
	s.Apply(res)
	return res
}

// SetCategory switches category and notifies the webhook when it changed.
func (s *Session) SetCategory(c news.Category) {
	before := s.state.Category()
	s.state.SetCategory(c)
	if s.state.Category() != before {
		s.notify(fetch.EventCategoryChanged)
	}
}

// CycleCategory moves delta tabs and notifies the webhook.
func (s *Session) CycleCategory(delta int) {
	before := s.state.Category()
	s.state.CycleCategory(delta)
	if s.state.Category() != before {
		s.notify(fetch.EventCategoryChanged)
	}
}

// SetFilterText replaces the filter and notifies the webhook when it changed.
func (s *Session) SetFilterText(text string) {
	if text == s.state.FilterText() {
		return
	}
	s.state.SetFilterText(text)
	s.notify(fetch.EventFilterChanged)
}

// MarkRead records it as read. Placeholders are ignored.
func (s *Session) MarkRead(it news.Item) error {
	if news.IsPlaceholder(it) {
		return nil
	}
	fp := it.Fingerprint()
	s.read[fp] = true
	if s.store == nil {
		return nil
	}
	if err := s.store.MarkRead(fp, it.Title); err != nil {
		s.events.Error(otel.KindStoreError, "app", err)
		return err
	}
	return nil
}

// MarkUnread removes the read mark from it.
func (s *Session) MarkUnread(it news.Item) error {
	fp := it.Fingerprint()
	delete(s.read, fp)
	if s.store == nil {
		return nil
	}
	if err := s.store.MarkUnread(fp); err != nil {
		s.events.Error(otel.KindStoreError, "app", err)
		return err
	}
	return nil
}

// IsRead reports whether it has been marked read.
func (s *Session) IsRead(it news.Item) bool {
	return s.read[it.Fingerprint()]
}

// WatchPath returns the local feed file to watch, if watching is enabled
// and the feed is a file:// URL.
func (s *Session) WatchPath() (string, bool) {
	if !s.cfg.Watch {
		return "", false
	}
	return fetch.LocalPath(s.cfg.Feed.URL)
}

// Close waits for in-flight notifications, records shutdown and releases
// every resource the session opened. Safe to call once.
func (s *Session) Close() error {
	s.notifier.Wait()
	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "main", Msg: s.id})
	s.log.Info("Session closed", "id", s.id)

	return closeAll(s.closers)
}

// record stores res as the last result, appends it to the history and
// refreshes the read set for the new document.
func (s *Session) record(res fetch.Result) {
	s.last = res

	logArgs := []any{"tier", res.Tier, "items", res.Document.Len(), "dropped", res.Report.Dropped, "dur", res.Dur.Round(time.Millisecond)}
	if len(res.Errors) > 0 {
		s.log.Warn("Resolved feed with fallback", append(logArgs, "error", res.Err())...)
	} else {
		s.log.Info("Resolved feed", logArgs...)
	}

	if s.store == nil {
		return
	}

	row := store.Resolve{
		Tier:    string(res.Tier),
		Items:   res.Document.Len(),
		Dropped: res.Report.Dropped,
		Errors:  len(res.Errors),
		Dur:     res.Dur,
	}
	if len(res.Errors) > 0 {
		row.LastError = res.Errors[len(res.Errors)-1].Error()
	}
	if _, err := s.store.RecordResolve(row); err != nil {
		s.events.Error(otel.KindStoreError, "app", err)
	}
	if _, err := s.store.PruneResolves(historyKeep); err != nil {
		s.events.Error(otel.KindStoreError, "app", err)
	}

	fps := make([]string, 0, res.Document.Len())
	for _, it := range res.Document.Items {
		fps = append(fps, it.Fingerprint())
	}
	read, err := s.store.ReadSet(fps)
	if err != nil {
		s.events.Error(otel.KindStoreError, "app", err)
		return
	}
	s.read = read
}

func (s *Session) notify(event string) {
	if s.state == nil {
		return
	}
	s.notifier.Notify(fetch.Notification{
		Event:          event,
		CoachName:      s.state.Document().CoachName,
		ActiveCategory: string(s.state.Category()),
		FilterText:     s.state.FilterText(),
	})
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

func closeAll(closers []io.Closer) error {
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
