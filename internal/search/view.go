package search

import (
	"strings"

	"github.com/abelbrown/shelf/internal/theme"
)

// View renders the input and, when open, the suggestion list.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch m.state {
	case Empty, Failed:
		b.WriteString(theme.Dim.Render("  no results"))
		return b.String()
	case Idle:
		if strings.TrimSpace(m.input.Value()) != "" {
			b.WriteString(theme.Dim.Render("  keep typing…"))
		}
		return b.String()
	}

	// While a request is in flight the previous list stays on screen, so
	// the cursor always points into what is displayed.
	if m.open {
		width := m.width
		if width <= 0 {
			width = 60
		}
		for i, it := range m.results {
			b.WriteString(m.renderRow(i, it.DisplayName, strings.Join(it.Categories, ", "), width))
			b.WriteString("\n")
		}
	}
	if m.state == Fetching {
		b.WriteString(theme.Dim.Render("  searching…"))
	}
	return b.String()
}

// RowAt maps a y offset within View's output to a result index, or -1.
// The input occupies the first line and rows follow it in every state that
// shows the list.
func (m Model) RowAt(y int) int {
	if !m.open {
		return -1
	}
	i := y - 1
	if i < 0 || i >= len(m.results) {
		return -1
	}
	return i
}

func (m Model) renderRow(i int, name, cats string, width int) string {
	nameWidth := width * 2 / 3
	line := theme.Truncate(name, nameWidth)
	if cats != "" {
		line += "  " + theme.Dim.Render(theme.Truncate(cats, width-nameWidth-4))
	}
	if i == m.selected {
		return theme.SelectedItem.Render(line)
	}
	return theme.NormalItem.Render(line)
}
