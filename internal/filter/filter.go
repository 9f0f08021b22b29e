// Package filter builds feed views: pure functions over news items.
// Everything here is []Item in, []Item out. No side effects, inputs are never
// modified.
package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/abelbrown/clubnews/internal/datekey"
	"github.com/abelbrown/clubnews/internal/news"
)

// Build produces the feed view for a document: items of the given category
// (every item for news.All) whose title or description contains query,
// most recent first, undated items last in input order.
func Build(doc news.Document, category news.Category, query string) []news.Item {
	items := ByCategory(doc.Items, category)
	items = ByText(items, query)
	return SortByKey(items)
}

// ByCategory keeps items whose category equals c exactly. news.All keeps
// everything.
func ByCategory(items []news.Item, c news.Category) []news.Item {
	result := make([]news.Item, 0, len(items))
	for _, item := range items {
		if c == news.All || item.Category == c {
			result = append(result, item)
		}
	}
	return result
}

// ByText keeps items whose lower-cased title or description contains the
// lower-cased, trimmed query. A blank query keeps everything.
func ByText(items []news.Item, query string) []news.Item {
	q := strings.TrimSpace(query)
	if q == "" {
		return append(make([]news.Item, 0, len(items)), items...)
	}

	lower := cases.Lower(language.Portuguese)
	q = lower.String(q)

	result := make([]news.Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(lower.String(item.Title), q) ||
			strings.Contains(lower.String(item.Description), q) {
			result = append(result, item)
		}
	}
	return result
}

// SortByKey orders dated items by sort key descending and appends undated
// items after them. Relative input order is kept for equal keys and among
// undated items.
func SortByKey(items []news.Item) []news.Item {
	dated := make([]news.Item, 0, len(items))
	var undated []news.Item
	for _, item := range items {
		if item.HasKey() {
			dated = append(dated, item)
		} else {
			undated = append(undated, item)
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return datekey.Less(*dated[j].SortKey, *dated[i].SortKey)
	})

	return append(dated, undated...)
}

// Counts returns the number of items per category, plus the total under
// news.All. Used for tab badges.
func Counts(items []news.Item) map[news.Category]int {
	counts := make(map[news.Category]int, len(news.Tabs()))
	for _, item := range items {
		counts[item.Category]++
	}
	counts[news.All] = len(items)
	return counts
}
