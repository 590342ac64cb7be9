package style

import "github.com/charmbracelet/lipgloss"

// Catppuccin mocha, the shades the player draws with.
var (
	Base     = lipgloss.Color("#1e1e2e")
	Mauve    = lipgloss.Color("#cba6f7")
	Red      = lipgloss.Color("#f38ba8")
	Peach    = lipgloss.Color("#fab387")
	Yellow   = lipgloss.Color("#f9e2af")
	Green    = lipgloss.Color("#a6e3a1")
	Teal     = lipgloss.Color("#94e2d5")
	Sky      = lipgloss.Color("#89dceb")
	Sapphire = lipgloss.Color("#74c7ec")
	Blue     = lipgloss.Color("#89b4fa")
	Lavender = lipgloss.Color("#b4befe")

	AccentColor  = Mauve
	WarningColor = Yellow
	ErrorColor   = Red
)

// Spectrum is the bottom-to-top gradient used by the visualizer bars.
var Spectrum = []lipgloss.Color{Blue, Sapphire, Sky, Teal, Green, Yellow, Peach, Red}
