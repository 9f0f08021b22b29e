// Package viewstate holds the cursor, scroll and filter state of one news
// session and keeps it consistent as the visible view changes size.
//
// Invariants after every exported method returns:
//
//	0 <= SelectedIndex() < max(1, Len())
//	0 <= ScrollOffset() <= max(0, Len() - PageSize())
//
// An empty view is treated as a view of one synthetic placeholder item.
package viewstate

import (
	"context"
	"time"

	"github.com/abelbrown/clubnews/internal/fetch"
	"github.com/abelbrown/clubnews/internal/filter"
	"github.com/abelbrown/clubnews/internal/news"
	"github.com/abelbrown/clubnews/internal/otel"
)

// Resolver produces a fresh document for Reload. *fetch.Resolver
// satisfies it.
type Resolver interface {
	Resolve(ctx context.Context) fetch.Result
}

// Option configures a State at construction.
type Option func(*State)

// WithCategory sets the initial active category.
func WithCategory(c news.Category) Option {
	return func(s *State) { s.category = tabCategory(c) }
}

// WithFilterText sets the initial filter text.
func WithFilterText(text string) Option {
	return func(s *State) { s.filterText = text }
}

// WithEvents reports every view rebuild to events.
func WithEvents(events *otel.Logger) Option {
	return func(s *State) { s.events = events }
}

// State is the mutable view state owned by a single session. It is not
// safe for concurrent use.
type State struct {
	doc  news.Document
	view []news.Item

	category      news.Category
	filterText    string
	filterFocused bool

	selected int
	scroll   int
	pageSize int

	events *otel.Logger
}

// New creates a State over doc showing pageSize rows at a time.
func New(doc news.Document, pageSize int, opts ...Option) *State {
	s := &State{
		doc:      doc,
		category: news.All,
		pageSize: max(1, pageSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rebuild()
	return s
}

// Document returns the current document.
func (s *State) Document() news.Document { return s.doc }

// Category returns the active category.
func (s *State) Category() news.Category { return s.category }

// FilterText returns the current free-text filter.
func (s *State) FilterText() string { return s.filterText }

// FilterFocused reports whether the filter input has focus.
func (s *State) FilterFocused() bool { return s.filterFocused }

// SelectedIndex returns the selection index into Rows().
func (s *State) SelectedIndex() int { return s.selected }

// ScrollOffset returns the index of the first visible row.
func (s *State) ScrollOffset() int { return s.scroll }

// PageSize returns how many rows are visible at once.
func (s *State) PageSize() int { return s.pageSize }

// Len returns the number of real items in the view.
func (s *State) Len() int { return len(s.view) }

// View returns the built view without placeholder substitution. It may be
// empty. The slice must not be modified.
func (s *State) View() []news.Item { return s.view }

// Rows returns the view as presented: never empty, with a placeholder item
// standing in for an empty view.
func (s *State) Rows() []news.Item {
	if len(s.view) > 0 {
		return s.view
	}
	if s.doc.Len() == 0 {
		return []news.Item{news.EmptyDocumentPlaceholder()}
	}
	return []news.Item{news.EmptyCategoryPlaceholder()}
}

// VisibleRows returns the window of Rows() currently on screen.
func (s *State) VisibleRows() []news.Item {
	rows := s.Rows()
	end := min(s.scroll+s.pageSize, len(rows))
	return rows[s.scroll:end]
}

// Selected returns the selected row, which may be a placeholder.
func (s *State) Selected() news.Item {
	return s.Rows()[s.selected]
}

// SetCategory switches the active category and resets selection and
// scroll. Aliases are resolved; unknown names select All.
func (s *State) SetCategory(c news.Category) {
	s.category = tabCategory(c)
	s.rebuild()
	s.selected, s.scroll = 0, 0
}

// CycleCategory moves the active category delta tabs along news.Tabs(),
// wrapping at both ends.
func (s *State) CycleCategory(delta int) {
	tabs := news.Tabs()
	idx := 0
	for i, c := range tabs {
		if c == s.category {
			idx = i
			break
		}
	}
	n := len(tabs)
	s.SetCategory(tabs[((idx+delta)%n+n)%n])
}

// SetFilterText replaces the filter text and resets selection and scroll.
func (s *State) SetFilterText(text string) {
	s.filterText = text
	s.rebuild()
	s.selected, s.scroll = 0, 0
}

// FocusFilter gives the filter input focus.
func (s *State) FocusFilter() { s.filterFocused = true }

// BlurFilter removes focus from the filter input, keeping its text.
func (s *State) BlurFilter() { s.filterFocused = false }

// Select moves the selection to index, clamped into the view, and scrolls
// it into sight.
func (s *State) Select(index int) {
	s.selected = clamp(index, 0, s.rowCount()-1)
	s.EnsureVisible()
}

// Advance selects the next row, wrapping to the first.
func (s *State) Advance() {
	s.selected = (s.selected + 1) % s.rowCount()
	s.EnsureVisible()
}

// Retreat selects the previous row, wrapping to the last.
func (s *State) Retreat() {
	n := s.rowCount()
	s.selected = (s.selected - 1 + n) % n
	s.EnsureVisible()
}

// ScrollBy moves the window up by delta rows (down for negative delta).
// The selection is left where it is.
func (s *State) ScrollBy(delta int) {
	s.scroll = clamp(s.scroll-delta, 0, s.maxScroll())
}

// EnsureVisible scrolls the minimum amount needed to show the selection.
func (s *State) EnsureVisible() {
	if s.selected < s.scroll {
		s.scroll = s.selected
	}
	if s.selected >= s.scroll+s.pageSize {
		s.scroll = s.selected - s.pageSize + 1
	}
	s.scroll = clamp(s.scroll, 0, s.maxScroll())
}

// SetPageSize changes the number of visible rows, for example after a
// terminal resize.
func (s *State) SetPageSize(n int) {
	s.pageSize = max(1, n)
	s.EnsureVisible()
}

// SetDocument replaces the document and rebuilds the view against the
// current category and filter. Selection is kept and only re-clamped.
func (s *State) SetDocument(doc news.Document) {
	s.doc = doc
	s.rebuild()
	s.selected = clamp(s.selected, 0, s.rowCount()-1)
	s.EnsureVisible()
}

// Reload resolves a fresh document and applies it with SetDocument.
func (s *State) Reload(ctx context.Context, r Resolver) fetch.Result {
	res := r.Resolve(ctx)
	s.SetDocument(res.Document)
	return res
}

func (s *State) rebuild() {
	start := time.Now()
	s.view = filter.Build(s.doc, s.category, s.filterText)
	if s.events != nil {
		s.events.Emit(otel.Event{
			Level:    otel.LevelDebug,
			Kind:     otel.KindViewRebuild,
			Comp:     "view",
			Category: string(s.category),
			Query:    s.filterText,
			Count:    len(s.view),
			Dur:      time.Since(start),
		})
	}
}

// rowCount is the view length with an empty view counted as one row.
func (s *State) rowCount() int {
	return max(1, len(s.view))
}

func (s *State) maxScroll() int {
	return max(0, len(s.view)-s.pageSize)
}

func tabCategory(c news.Category) news.Category {
	if c == news.All {
		return c
	}
	if canon, ok := news.Canonical(string(c)); ok {
		return canon
	}
	return news.All
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
