// Package watch reports changes to a local feed file so the session can
// reload it without the user pressing a key.
package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file must stay quiet before a change is
// reported.
const DefaultDebounce = 300 * time.Millisecond

// Change is one debounced modification of the watched file.
type Change struct {
	Path string
	Op   fsnotify.Op // union of every op seen during the debounce window
	At   time.Time
}

// FileWatcher watches a single file. The parent directory is watched so
// editors that save by rename are still seen.
type FileWatcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *log.Logger

	mu      sync.Mutex
	pending fsnotify.Op
	lastAt  time.Time

	changes chan Change
}

// New creates a watcher for path. A non-positive debounce uses
// DefaultDebounce; a nil logger discards diagnostics.
func New(path string, debounce time.Duration, logger *log.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &FileWatcher{
		path:     filepath.Clean(abs),
		debounce: debounce,
		watcher:  fsw,
		logger:   logger.WithPrefix("watch"),
		changes:  make(chan Change, 1),
	}, nil
}

// Changes returns the channel of debounced changes. It is closed when the
// watcher stops.
func (w *FileWatcher) Changes() <-chan Change {
	return w.changes
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Start begins watching. The watcher runs until ctx is cancelled or Stop
// is called.
func (w *FileWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Feed watcher started", "path", w.path, "debounce", w.debounce)
	return nil
}

// Stop stops the watcher. Changes is closed by processEvents when it exits.
func (w *FileWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *FileWatcher) processEvents(ctx context.Context) {
	defer close(w.changes)

	tick := w.debounce / 3
	if tick <= 0 {
		tick = w.debounce
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case now := <-ticker.C:
			w.flushPending(now)
		}
	}
}

func (w *FileWatcher) handleFSEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op == fsnotify.Chmod {
		return
	}

	w.mu.Lock()
	w.pending |= event.Op
	w.lastAt = time.Now()
	w.mu.Unlock()

	w.logger.Debug("Feed change detected", "op", event.Op.String())
}

// flushPending reports the accumulated change once the file has been quiet
// for the debounce interval. When the consumer has not taken the previous
// change yet, the new one is merged into the channel slot instead.
func (w *FileWatcher) flushPending(now time.Time) {
	w.mu.Lock()
	if w.pending == 0 || now.Sub(w.lastAt) < w.debounce {
		w.mu.Unlock()
		return
	}
	c := Change{Path: w.path, Op: w.pending, At: w.lastAt}
	w.pending = 0
	w.mu.Unlock()

	select {
	case w.changes <- c:
	default:
		select {
		case old := <-w.changes:
			c.Op |= old.Op
		default:
		}
		select {
		case w.changes <- c:
		default:
		}
	}
}
