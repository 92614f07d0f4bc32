package feed

import (
	"fmt"
	"strings"

	"github.com/abelbrown/shelf/internal/theme"
	"github.com/dustin/go-humanize"
)

// linesPerItem is the height of one rendered review.
const linesPerItem = 2

// View renders the header, the visible window of reviews and a footer.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	if len(m.items) == 0 {
		switch {
		case m.loading:
			b.WriteString(theme.HelpStyle.Render("Loading reviews…"))
		case m.err != nil:
			b.WriteString(theme.ErrorStyle.Render("Couldn't load reviews."))
		default:
			b.WriteString(theme.HelpStyle.Render("No reviews yet."))
		}
		return b.String()
	}

	start, end := m.window()
	for i := start; i < end; i++ {
		b.WriteString(m.renderItem(i, width))
		b.WriteString("\n")
	}
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) header() string {
	title := m.title
	if title == "" {
		title = m.subject
	}
	line := theme.Header.Render(title) + " " + theme.Badge.Render(m.sort.Label())
	if m.filter.Active() {
		line += theme.Badge.Render(fmt.Sprintf("%d★ only", int(m.filter)))
	}
	return line
}

// window returns the item range that fits the height and keeps the cursor
// visible.
func (m Model) window() (int, int) {
	rows := len(m.items)
	if m.height > 0 {
		rows = max((m.height-2)/linesPerItem, 1)
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	return start, min(start+rows, len(m.items))
}

func (m Model) renderItem(i, width int) string {
	it := m.items[i]
	meta := fmt.Sprintf("%s · %s · %s helpful", it.Author, humanize.Time(it.CreatedAt), humanize.Comma(int64(it.HelpfulCount)))
	top := theme.RatingStars(it.Rating) + " " + theme.Truncate(it.Title, width/2) + "  " + theme.Dim.Render(meta)
	body := "  " + theme.Dim.Render(theme.Truncate(it.Body, width-4))

	style := theme.NormalItem
	if i == m.cursor {
		style = theme.SelectedItem
	}
	return style.Render(top) + "\n" + body
}

func (m Model) footer() string {
	switch {
	case m.loading:
		return theme.Dim.Render(fmt.Sprintf("  loading page %d…", m.page))
	case m.err != nil:
		return theme.ErrorStyle.Render("couldn't load more reviews")
	case m.hasMore:
		return theme.Dim.Render(fmt.Sprintf("  %d reviews · m for more", len(m.items)))
	default:
		return theme.Dim.Render(fmt.Sprintf("  %d reviews · end", len(m.items)))
	}
}
