// Package store provides SQLite persistence for clubnews: which items the
// user has read, and a history of feed resolves.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// ReadMark records that an item was read. Items are identified by their
// fingerprint, which survives reloads of the same feed.
type ReadMark struct {
	Fingerprint string
	Title       string
	ReadAt      time.Time
}

// Resolve is one row of resolve history.
type Resolve struct {
	ID         int64
	Tier       string // "remote", "cache", "default"
	Items      int
	Dropped    int
	Errors     int
	LastError  string
	Dur        time.Duration
	ResolvedAt time.Time
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for file-based databases.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS read_marks (
		fingerprint TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		read_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resolves (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tier TEXT NOT NULL,
		items INTEGER NOT NULL,
		dropped INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		dur_ms INTEGER NOT NULL DEFAULT 0,
		resolved_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_resolves_at ON resolves(resolved_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// MarkRead records fingerprint as read. Marking twice keeps the first time.
func (s *Store) MarkRead(fingerprint, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO read_marks (fingerprint, title, read_at) VALUES (?, ?, ?)",
		fingerprint, title, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// MarkUnread removes the read mark for fingerprint, if any.
func (s *Store) MarkUnread(fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM read_marks WHERE fingerprint = ?", fingerprint); err != nil {
		return fmt.Errorf("mark unread: %w", err)
	}
	return nil
}

// IsRead reports whether fingerprint has been marked read.
func (s *Store) IsRead(fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM read_marks WHERE fingerprint = ?", fingerprint).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("is read: %w", err)
	}
	return n > 0, nil
}

// ReadSet returns which of the given fingerprints are marked read.
// The result only contains keys for read fingerprints.
func (s *Store) ReadSet(fingerprints []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(fingerprints) == 0 {
		return out, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(fingerprints)), ",")
	args := make([]any, len(fingerprints))
	for i, fp := range fingerprints {
		args[i] = fp
	}

	rows, err := s.db.Query("SELECT fingerprint FROM read_marks WHERE fingerprint IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("read set: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, err
		}
		out[fp] = true
	}
	return out, rows.Err()
}

// ReadMarks returns the most recent read marks, newest first.
func (s *Store) ReadMarks(limit int) ([]ReadMark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT fingerprint, title, read_at FROM read_marks ORDER BY read_at DESC, fingerprint LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("read marks: %w", err)
	}
	defer rows.Close()

	var marks []ReadMark
	for rows.Next() {
		var m ReadMark
		if err := rows.Scan(&m.Fingerprint, &m.Title, &m.ReadAt); err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}

// RecordResolve appends r to the resolve history. ID is assigned by the
// database; a zero ResolvedAt means now.
func (s *Store) RecordResolve(r Resolve) (int64, error) {
	if r.ResolvedAt.IsZero() {
		r.ResolvedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		INSERT INTO resolves (tier, items, dropped, errors, last_error, dur_ms, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.Tier, r.Items, r.Dropped, r.Errors, r.LastError, r.Dur.Milliseconds(), r.ResolvedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("record resolve: %w", err)
	}
	return res.LastInsertId()
}

// RecentResolves returns up to limit history rows, newest first.
func (s *Store) RecentResolves(limit int) ([]Resolve, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, tier, items, dropped, errors, COALESCE(last_error, ''), dur_ms, resolved_at
		FROM resolves
		ORDER BY resolved_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent resolves: %w", err)
	}
	defer rows.Close()

	var out []Resolve
	for rows.Next() {
		var r Resolve
		var durMs int64
		if err := rows.Scan(&r.ID, &r.Tier, &r.Items, &r.Dropped, &r.Errors, &r.LastError, &durMs, &r.ResolvedAt); err != nil {
			return nil, err
		}
		r.Dur = time.Duration(durMs) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// TierCounts returns how many recorded resolves each tier served.
func (s *Store) TierCounts() (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT tier, COUNT(*) FROM resolves GROUP BY tier")
	if err != nil {
		return nil, fmt.Errorf("tier counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var tier string
		var n int
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, err
		}
		counts[tier] = n
	}
	return counts, rows.Err()
}

// PruneResolves keeps the newest keep history rows and deletes the rest.
// Returns the number of rows deleted.
func (s *Store) PruneResolves(keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		DELETE FROM resolves WHERE id NOT IN (
			SELECT id FROM resolves ORDER BY resolved_at DESC, id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune resolves: %w", err)
	}
	return res.RowsAffected()
}
