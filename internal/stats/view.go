package stats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abelbrown/shelf/internal/gateway"
	"github.com/abelbrown/shelf/internal/theme"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

const barWidth = 24

// View renders the distribution table and, when loaded, the comparison
// delta.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.Header.Render(titleOf(m.primary)))
	b.WriteString("\n")

	snap, ok := m.Snapshot()
	switch {
	case !ok && m.primary.loading:
		b.WriteString(theme.HelpStyle.Render("Loading statistics…"))
		return b.String()
	case !ok && m.primary.err != nil:
		b.WriteString(theme.ErrorStyle.Render("Couldn't load statistics."))
		return b.String()
	case !ok:
		b.WriteString(theme.HelpStyle.Render("No statistics."))
		return b.String()
	}

	b.WriteString(summary(snap))
	b.WriteString("\n")
	b.WriteString(distributionTable(snap))
	b.WriteString("\n")

	switch cmp, loaded := m.Comparison(); {
	case loaded:
		b.WriteString(deltaLine(titleOf(m.compare), snap, cmp))
	case m.compare.loading:
		b.WriteString(theme.Dim.Render("  loading comparison…"))
	case m.compare.err != nil:
		b.WriteString(theme.Dim.Render("  comparison unavailable"))
	}
	return b.String()
}

func titleOf(s slot) string {
	if s.title != "" {
		return s.title
	}
	return s.subject
}

func summary(s gateway.StatsSnapshot) string {
	return fmt.Sprintf("  %.2f ★ average · %s reviews · %.0f%% recommend",
		s.Average, humanize.Comma(int64(s.Total)), s.RecommendedPct)
}

func distributionTable(s gateway.StatsSnapshot) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorMuted)).
		Headers("rating", "count", "share", "").
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return st.Bold(true).Foreground(theme.ColorHighlight)
			}
			if col == 1 || col == 2 {
				return st.Align(lipgloss.Right)
			}
			return st
		})

	for _, r := range Export(s) {
		t.Row(
			strconv.Itoa(r.Rating)+"★",
			humanize.Comma(int64(r.Count)),
			fmt.Sprintf("%.1f%%", r.Percent),
			theme.Bar.Render(bar(r.Percent)),
		)
	}
	return t.Render()
}

func bar(pct float64) string {
	n := int(pct / 100 * barWidth)
	return strings.Repeat("█", max(0, min(n, barWidth)))
}

func deltaLine(other string, a, b gateway.StatsSnapshot) string {
	return fmt.Sprintf("  vs %s: average %+.2f · recommend %+.1f%%",
		other, a.Average-b.Average, a.RecommendedPct-b.RecommendedPct)
}
