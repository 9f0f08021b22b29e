package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/clubnews/internal/fetch"
	"github.com/abelbrown/clubnews/internal/news"
)

// dateChipWidth is the fixed display width of a row's date column.
const dateChipWidth = 12

// RenderHeader renders "Notícias para <coach>" with the sidebar date.
// Multi-line sidebar dates are joined with a middle dot.
func RenderHeader(doc news.Document, width int) string {
	title := Header.Render("Notícias para " + doc.CoachName)
	date := strings.Join(strings.Fields(strings.ReplaceAll(doc.SidebarDate, "\n", " · ")), " ")
	line := lipgloss.JoinHorizontal(lipgloss.Top, title, SidebarDate.Render(date))
	if width > 0 {
		return lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}

// RenderTabs renders one row of category tabs, highlighting active.
// Each tab is prefixed with its number key and, when counts is non-nil,
// followed by its item count.
func RenderTabs(tabs []news.Category, active news.Category, counts map[news.Category]int) string {
	all := news.Tabs()
	parts := make([]string, 0, len(tabs))
	for _, c := range tabs {
		label := fmt.Sprintf("%d %s", indexOf(all, c)+1, c)
		if counts != nil {
			label += fmt.Sprintf(" (%d)", counts[c])
		}
		if c == active {
			parts = append(parts, ActiveTab.Render(label))
		} else {
			parts = append(parts, InactiveTab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// RenderRow renders a single list row: date chip plus title, truncated to
// width. Read rows are dimmed unless selected.
func RenderRow(it news.Item, selected, read bool, width int) string {
	date := runewidth.FillRight(runewidth.Truncate(it.Date, dateChipWidth, ""), dateChipWidth)

	// SelectedItem/NormalItem padding is 2, DateChip padding and margin is 3.
	avail := width - dateChipWidth - 5
	if avail < 10 {
		avail = 10
	}
	title := runewidth.Truncate(it.Title, avail, "…")

	var style lipgloss.Style
	switch {
	case selected:
		style = SelectedItem
	case read:
		style = ReadItem
	default:
		style = NormalItem
	}
	return DateChip.Render(date) + style.Render(title)
}

// RenderList renders rows, marking the one at selected (an index into rows).
func RenderList(rows []news.Item, selected int, isRead func(news.Item) bool, width int) string {
	lines := make([]string, len(rows))
	for i, it := range rows {
		read := isRead != nil && isRead(it)
		lines[i] = RenderRow(it, i == selected, read, width)
	}
	return strings.Join(lines, "\n")
}

// RenderReader renders the reader pane for the selected item. Newlines in
// the description separate paragraphs.
func RenderReader(it news.Item, width int) string {
	w := width - 2
	if w < 20 {
		w = 20
	}
	var b strings.Builder
	b.WriteString(ReaderTitle.Width(w).Render(it.Title))
	b.WriteString("\n")
	meta := it.Date
	if it.Category != "" {
		meta += "  ·  " + string(it.Category)
	}
	b.WriteString(ReaderMeta.Render(meta))
	for _, p := range strings.Split(it.Description, "\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(ReaderBody.Width(w).Render(p))
	}
	return b.String()
}

// RenderStatusBar renders position, the serving tier and key hints.
// spin is shown in place of the tier while a reload is running.
func RenderStatusBar(cursor, total int, tier fetch.Tier, loading bool, spin string, width int) string {
	pos := fmt.Sprintf("%d/%d", cursor+1, total)
	if total == 0 {
		pos = "0/0"
	}

	var tierLabel string
	switch {
	case loading:
		tierLabel = spin + " a carregar"
	case tier == fetch.TierRemote:
		tierLabel = StatusBarText.Render("remoto")
	case tier == fetch.TierCache:
		tierLabel = TierWarning.Render("cache")
	case tier == fetch.TierDefault:
		tierLabel = TierWarning.Render("padrão")
	}

	hints := make([]string, 0, 8)
	for _, b := range keys.hints() {
		h := b.Help()
		hints = append(hints, StatusBarKey.Render(h.Key)+StatusBarText.Render(":"+h.Desc))
	}

	content := fmt.Sprintf("  %s  %s  %s", pos, tierLabel, strings.Join(hints, " "))
	return StatusBar.Width(width).MaxHeight(1).Render(content)
}

// RenderFilterBar renders the filter input and the match count.
func RenderFilterBar(input string, matched, total, width int) string {
	count := FilterBarCount.Render(fmt.Sprintf("  %d/%d", matched, total))
	return FilterBar.Width(width).Render(input + count)
}

func indexOf(tabs []news.Category, c news.Category) int {
	for i, t := range tabs {
		if t == c {
			return i
		}
	}
	return -1
}

