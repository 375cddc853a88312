// Package style composes lipgloss styles for CLI output and the TUI.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tilawah-cli/tilawah/color"
)

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a renderer that colors the foreground.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

// Tag renders s as a padded badge.
func Tag(fg, bg lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(fg).Background(bg).Padding(0, 1).Render(s) }
}

var (
	Faint  = func(s string) string { return New().Faint(true).Render(s) }
	Bold   = func(s string) string { return New().Bold(true).Render(s) }
	Italic = func(s string) string { return New().Italic(true).Render(s) }

	Title      = Tag(color.Sand, color.Ink)
	ErrorTitle = Tag(color.Sand, color.Ember)
	Playing    = Fg(color.Gold)
	Failed     = Fg(color.Ember)
	Number     = Fg(color.Teal)
)

// Arabic renders verse text right-aligned within width.
func Arabic(width int) func(string) string {
	return func(s string) string {
		return New().Width(width).Align(lipgloss.Right).Bold(true).Render(s)
	}
}
