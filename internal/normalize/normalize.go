// Package normalize coerces arbitrary decoded JSON into a news.Document.
//
// Normalization never fails. Missing or malformed fields get documented
// defaults; the only per-item rejection is an empty title, which drops the
// item silently and is counted in the Report.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/abelbrown/clubnews/internal/datekey"
	"github.com/abelbrown/clubnews/internal/news"
)

// Report summarizes what happened to the candidate items.
type Report struct {
	Kept    int // items in the output document
	Dropped int // candidates rejected (not a record, or empty title)
	Coerced int // items whose category was aliased or defaulted
}

// Normalizer converts raw documents. The zero value is ready to use and
// reads the wall clock for the tokenized date dialect.
type Normalizer struct {
	// Now returns the reference time used to fill in years missing from
	// dates. Nil means time.Now.
	Now func() time.Time
}

// Normalize is shorthand for Normalizer{}.Normalize.
func Normalize(raw any) (news.Document, Report) {
	return Normalizer{}.Normalize(raw)
}

// Normalize builds a Document from raw, which is typically the result of
// json.Unmarshal into an `any`. A news.WireDocument is also accepted.
// Item order is preserved.
func (n Normalizer) Normalize(raw any) (news.Document, Report) {
	now := time.Now()
	if n.Now != nil {
		now = n.Now()
	}

	var root map[string]any
	switch v := raw.(type) {
	case map[string]any:
		root = v
	case news.WireDocument:
		root = v.Map()
	case *news.WireDocument:
		if v != nil {
			root = v.Map()
		}
	}

	doc := news.Document{
		CoachName:   textField(root, "coach_name", news.DefaultCoachName),
		SidebarDate: textField(root, "sidebar_date", news.DefaultSidebarDate),
	}

	var rep Report
	candidates, _ := root["news"].([]any)
	doc.Items = make([]news.Item, 0, len(candidates))

	for _, c := range candidates {
		rec, ok := c.(map[string]any)
		if !ok {
			rep.Dropped++
			continue
		}

		title := strings.TrimSpace(scalar(rec["title"]))
		if title == "" {
			rep.Dropped++
			continue
		}

		date := orPlaceholder(strings.TrimSpace(scalar(rec["date"])))
		desc := orPlaceholder(strings.TrimSpace(scalar(rec["description"])))

		rawCat := strings.TrimSpace(scalar(rec["category"]))
		cat := Category(rawCat)
		if string(cat) != rawCat {
			rep.Coerced++
		}

		doc.Items = append(doc.Items, news.Item{
			Date:        date,
			Title:       title,
			Description: desc,
			Category:    cat,
			SortKey:     datekey.Parse(date, now),
		})
	}

	rep.Kept = len(doc.Items)
	return doc, rep
}

// Category maps a trimmed input category to a canonical one, falling back
// to news.DefaultCategory.
func Category(s string) news.Category {
	if c, ok := news.Canonical(s); ok {
		return c
	}
	return news.DefaultCategory
}

// textField returns root[key] when it is a string that is not blank, and
// fallback otherwise. The value itself is kept untrimmed.
func textField(root map[string]any, key, fallback string) string {
	s, ok := root[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// scalar renders a decoded JSON scalar as text. Null, objects and arrays
// count as absent.
func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return datekey.Placeholder
	}
	return s
}
