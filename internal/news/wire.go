package news

// WireItem is the on-the-wire shape of a news entry, as served by the remote
// feed and stored in the local cache.
type WireItem struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// WireDocument is the on-the-wire shape of a feed document.
type WireDocument struct {
	CoachName   string     `json:"coach_name"`
	SidebarDate string     `json:"sidebar_date"`
	News        []WireItem `json:"news"`
}

// Wire converts d to its serializable shape. Sort keys are derived data and
// are not persisted.
func (d Document) Wire() WireDocument {
	w := WireDocument{
		CoachName:   d.CoachName,
		SidebarDate: d.SidebarDate,
		News:        make([]WireItem, 0, len(d.Items)),
	}
	for _, it := range d.Items {
		w.News = append(w.News, WireItem{
			Date:        it.Date,
			Category:    string(it.Category),
			Title:       it.Title,
			Description: it.Description,
		})
	}
	return w
}

// Map converts w into the generic decoded-JSON form accepted by the
// normalizer.
func (w WireDocument) Map() map[string]any {
	items := make([]any, 0, len(w.News))
	for _, it := range w.News {
		items = append(items, map[string]any{
			"date":        it.Date,
			"category":    it.Category,
			"title":       it.Title,
			"description": it.Description,
		})
	}
	return map[string]any{
		"coach_name":   w.CoachName,
		"sidebar_date": w.SidebarDate,
		"news":         items,
	}
}
