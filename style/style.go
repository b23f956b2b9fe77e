// Package style renders CLI output with lipgloss.
package style

import "github.com/charmbracelet/lipgloss"

// ANSI palette.
var (
	Red    = lipgloss.Color("1")
	Green  = lipgloss.Color("2")
	Yellow = lipgloss.Color("3")
	Blue   = lipgloss.Color("4")
	Purple = lipgloss.Color("5")
	Cyan   = lipgloss.Color("6")

	HiRed    = lipgloss.Color("9")
	HiPurple = lipgloss.Color("13")
)

// New returns an empty style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a renderer applying the foreground color c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Success prefixes a confirmation line.
func Success(s string) string {
	return Fg(Green)("✓") + " " + s
}

// Failure renders an error line the way every command reports fatal errors.
func Failure(s string) string {
	return New().Bold(true).Foreground(HiRed).Render("✗ "+s)
}

// Box frames a multi-line message, used for startup failures that need more than one line.
func Box(title, body string) string {
	frame := New().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(HiRed).
		Padding(1, 2).
		Margin(1, 0)

	return frame.Render(lipgloss.JoinVertical(lipgloss.Left,
		New().Bold(true).Foreground(HiRed).Render(title),
		"",
		body,
	))
}
