// Package color names the terminal colors used by the CLI output.
package color

import "github.com/charmbracelet/lipgloss"

func ansi(code string) lipgloss.Color {
	return lipgloss.Color(code)
}

var (
	Red    = ansi("1")
	Green  = ansi("2")
	Yellow = ansi("3")
	Blue   = ansi("4")
	Purple = ansi("5")
	Cyan   = ansi("6")
	White  = ansi("7")
	Gray   = ansi("8")
)

// Accents used by the reader.
var (
	Gold   = lipgloss.Color("#e9c46a")
	Teal   = lipgloss.Color("#2a9d8f")
	Sand   = lipgloss.Color("#f4e9cd")
	Ink    = lipgloss.Color("#264653")
	Ember  = lipgloss.Color("#e76f51")
	Silver = lipgloss.Color("#8d99ae")
)
