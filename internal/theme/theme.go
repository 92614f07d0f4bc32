// Package theme holds the lipgloss styles shared by the controllers and the
// root TUI.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Colors used in the application.
var (
	ColorPrimary   = lipgloss.Color("62")  // Purple
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorMuted     = lipgloss.Color("240") // Darker gray
	ColorHighlight = lipgloss.Color("212") // Pink
	ColorSuccess   = lipgloss.Color("78")  // Green
	ColorStar      = lipgloss.Color("220") // Gold
	ColorError     = lipgloss.Color("196")
)

// SelectedItem style for the highlighted row of a list.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(ColorPrimary).
	Padding(0, 1)

// NormalItem style for other rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// Dim style for secondary text such as categories and authors.
var Dim = lipgloss.NewStyle().
	Foreground(ColorSecondary)

// Header style for section titles.
var Header = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorHighlight).
	Padding(0, 1)

// Badge style for sort and filter chips.
var Badge = lipgloss.NewStyle().
	Foreground(ColorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginRight(1)

// Stars style for rating glyphs.
var Stars = lipgloss.NewStyle().
	Foreground(ColorStar)

// Bar style for distribution bars.
var Bar = lipgloss.NewStyle().
	Foreground(ColorSuccess)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(ColorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(ColorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorError).
	Bold(true).
	Padding(0, 1)

// HelpStyle for placeholder and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorMuted).
	Padding(1, 2)

// Tab styles for the root tab bar.
var (
	ActiveTab = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(ColorPrimary).
			Padding(0, 2)

	InactiveTab = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Padding(0, 2)
)

// DebugPanel style for the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorPrimary).
	Padding(1, 2)

// DebugHeader style for debug overlay section titles.
var DebugHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorHighlight)

// Truncate shortens s to at most width terminal cells, appending an
// ellipsis when it had to cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// RatingStars renders a 1..5 rating as filled and hollow stars.
func RatingStars(rating int) string {
	rating = max(0, min(rating, 5))
	return Stars.Render(strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating))
}
