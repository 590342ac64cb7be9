// Package style holds the render helpers the CLI and the TUI share.
package style

import (
	"github.com/vibe-audio/vibe/color"
	"github.com/charmbracelet/lipgloss"
)

// New returns an empty style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg renders with the foreground c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

// Truncate pads or wraps to exactly max cells per line.
func Truncate(max int) func(string) string {
	return func(s string) string { return New().Width(max).MaxHeight(1).Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Title renders a section heading.
func Title(s string) string {
	return New().Foreground(color.New("230")).Background(AccentColor).Padding(0, 1).Render(s)
}

// ErrorTitle renders the heading of the error view.
func ErrorTitle(s string) string {
	return New().Foreground(color.New("230")).Background(ErrorColor).Padding(0, 1).Render(s)
}
