// Package tui is the interactive player: library, chapters, history, bookmarks and the spectrum.
package tui

import (
	"context"

	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/internal/eventloop"
	"github.com/vibe-audio/vibe/persist"
	"github.com/vibe-audio/vibe/playback"
	"github.com/vibe-audio/vibe/visualizer"
	tea "github.com/charmbracelet/bubbletea"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	// Continue reopens the last played chapter once the library is loaded.
	Continue bool

	Loop       *eventloop.Loop
	Engine     *playback.Engine
	Persist    *persist.Service
	Visualizer *visualizer.Visualizer

	// Library fetches the catalog. It runs off the UI goroutine.
	Library func(ctx context.Context) (*catalog.Library, error)
}

// Run initializes and executes the primary Bubble Tea application loop.
func Run(options *Options) error {
	bubble := newBubble(options)
	defer bubble.shutdown()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen()).Run()
	return err
}
