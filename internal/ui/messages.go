// Package ui provides the Bubble Tea terminal host for clubnews. It maps
// key and mouse events onto session transitions and prints the view model
// as styled text.
package ui

import (
	"github.com/abelbrown/clubnews/internal/fetch"
	"github.com/abelbrown/clubnews/internal/watch"
)

// ResolveDone is sent when a background resolve finishes. The result is
// applied to the view state in Update, never from the command goroutine.
type ResolveDone struct {
	Result fetch.Result
	Reason string // "key", "watch"
}

// FeedChanged is sent when the watched feed file changes on disk.
type FeedChanged struct {
	Change watch.Change
}

// watchClosed is sent when the watcher stops delivering changes.
type watchClosed struct{}
