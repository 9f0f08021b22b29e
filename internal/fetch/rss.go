package fetch

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// parseRSS parses an RSS or Atom document and maps it onto the same generic
// shape a JSON feed decodes to, so the normalizer handles both alike.
func parseRSS(text string) (any, error) {
	feed, err := gofeed.NewParser().ParseString(text)
	if err != nil {
		return nil, newError(KindParse, "parse", err)
	}

	items := make([]any, 0, len(feed.Items))
	for _, fi := range feed.Items {
		if fi == nil {
			continue
		}
		items = append(items, convertFeedItem(fi))
	}

	doc := map[string]any{"news": items}
	if name := feedAuthor(feed); name != "" {
		doc["coach_name"] = name
	}
	if feed.UpdatedParsed != nil {
		doc["sidebar_date"] = sidebarDate(*feed.UpdatedParsed)
	}
	return doc, nil
}

// convertFeedItem converts a gofeed.Item to a raw news record.
func convertFeedItem(fi *gofeed.Item) map[string]any {
	rec := map[string]any{
		"title":       fi.Title,
		"description": fi.Description,
	}
	if fi.Description == "" && fi.Content != "" {
		rec["description"] = fi.Content
	}

	published := fi.PublishedParsed
	if published == nil {
		published = fi.UpdatedParsed
	}
	if published != nil {
		rec["date"] = ItemDate(*published)
	}

	if len(fi.Categories) > 0 {
		rec["category"] = fi.Categories[0]
	}
	return rec
}

// ItemDate renders t in the numeric "D.M.YY PERIOD" form the date parser
// understands, with the period taken from the hour of day.
func ItemDate(t time.Time) string {
	return fmt.Sprintf("%d.%d.%02d %s", t.Day(), int(t.Month()), t.Year()%100, periodToken(t.Hour()))
}

func periodToken(hour int) string {
	switch {
	case hour < 12:
		return "MAN"
	case hour < 18:
		return "TAR"
	default:
		return "NTE"
	}
}

var weekdays = [...]string{"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"}

func sidebarDate(t time.Time) string {
	return weekdays[t.Weekday()] + "\n" + ItemDate(t)
}

func feedAuthor(feed *gofeed.Feed) string {
	if feed.Author != nil {
		return strings.TrimSpace(feed.Author.Name)
	}
	if len(feed.Authors) > 0 && feed.Authors[0] != nil {
		return strings.TrimSpace(feed.Authors[0].Name)
	}
	return ""
}
