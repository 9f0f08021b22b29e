// Package logging writes the human-readable clubnews log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// FileName returns the log file name for day t.
func FileName(t time.Time) string {
	return fmt.Sprintf("clubnews-%s.log", t.Format("2006-01-02"))
}

// New opens (or creates) today's log file under dir and returns a logger
// writing to it. Close the returned io.Closer on shutdown.
func New(dir string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, FileName(time.Now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return NewWriter(f), f, nil
}

// NewWriter returns a logger writing to w with the clubnews options.
func NewWriter(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           log.DebugLevel,
	})
}

// Discard returns a logger that writes nowhere.
func Discard() *log.Logger {
	return NewWriter(io.Discard)
}
