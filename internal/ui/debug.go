package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/clubnews/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing resolve stats and recent events.
// Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Feed"))
	lines = append(lines, fmt.Sprintf("  Resolves:   %d remote, %d cache, %d default",
		stats[otel.KindFeedRemote], stats[otel.KindFeedCache], stats[otel.KindFeedDefault]))
	lines = append(lines, fmt.Sprintf("  Failures:   %d remote, %d cache, %d cache write",
		stats[otel.KindFeedRemoteError], stats[otel.KindFeedCacheError], stats[otel.KindCacheWriteError]))
	lines = append(lines, fmt.Sprintf("  Normalize:  %d drop, %d coerce",
		stats[otel.KindNormalizeDrop], stats[otel.KindNormalizeCoerce]))
	lines = append(lines, fmt.Sprintf("  Webhook:    %d sent, %d errors, %d throttled",
		stats[otel.KindNotifySent], stats[otel.KindNotifyError], stats[otel.KindNotifyThrottled]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-24s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Tier != "" {
			line += "  " + e.Tier
		}
		if e.Msg != "" {
			line += "  " + runewidth.Truncate(e.Msg, 40, "…")
		}
		if e.Err != "" {
			line += "  ERR:" + runewidth.Truncate(e.Err, 30, "…")
		}
		lines = append(lines, line)
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 80
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Negative durations from clock skew clamp to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	hint := StatusBarKey.Render("D") + StatusBarText.Render(":fechar")
	return StatusBar.Width(width).Render("  [DEBUG]  " + hint)
}
