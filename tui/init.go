package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts the catalog fetch, the event loop bridge and the spectrum frame loop.
func (b *statefulBubble) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		b.startLoading(),
		b.fetchLibrary(),
		b.waitForWake(),
	}

	if v := b.options.Visualizer; v != nil {
		cmds = append(cmds, v.Start())
	}

	return tea.Batch(cmds...)
}
