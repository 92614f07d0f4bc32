package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/shelf/internal/otel"
	"github.com/abelbrown/shelf/internal/theme"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing controller stats and recent
// events. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, theme.DebugHeader.Render("Controller Stats"))
	lines = append(lines, fmt.Sprintf("  Search:  %d started, %d complete, %d stale, %d errors",
		stats[otel.KindSearchStart], stats[otel.KindSearchComplete], stats[otel.KindSearchStale], stats[otel.KindSearchError]))
	lines = append(lines, fmt.Sprintf("  Feed:    %d pages, %d stale, %d errors, %d helpful",
		stats[otel.KindFeedPage], stats[otel.KindFeedStale], stats[otel.KindFeedError], stats[otel.KindFeedHelpful]))
	lines = append(lines, fmt.Sprintf("  Stats:   %d complete, %d stale, %d errors",
		stats[otel.KindStatsComplete], stats[otel.KindStatsStale], stats[otel.KindStatsError]))
	lines = append(lines, fmt.Sprintf("  Buffer:  %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, theme.DebugHeader.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-20s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Gen != 0 {
			line += fmt.Sprintf("  gen:%d", e.Gen)
		}
		if e.Query != "" {
			line += "  q:" + theme.Truncate(e.Query, 20)
		}
		if e.Subject != "" {
			line += "  " + theme.Truncate(e.Subject, 12)
		}
		if e.Msg != "" {
			line += "  " + theme.Truncate(e.Msg, 30)
		}
		if e.Err != "" {
			line += "  ERR:" + theme.Truncate(e.Err, 30)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := max(height-debugPanelChrome, 1)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := max(min(84, width-4), 20)
	return theme.DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
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
	keys := theme.StatusBarKey.Render("ctrl+d") + theme.StatusBarText.Render(":close")
	return theme.StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
