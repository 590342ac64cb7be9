package tui

import (
	"github.com/vibe-audio/vibe/color"
	"github.com/vibe-audio/vibe/style"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
)

// statefulKeymap defines the keyboard interactions available within various application states.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	confirm, back,
	up, down, top, bottom, pageUp, pageDown,
	showHelp,
	play, togglePlay, next, prev, skipBack, skipForward,
	rate, sleep, seekPercent, visualizer, openURL,
	bookmark, bookmarks, remove,
	switchView, category, search,
	acceptSearchSuggestion key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		pageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		pageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "page down"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		play: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp(style.Fg(color.Orange)("enter"), style.Fg(color.Orange)("play")),
		),
		togglePlay: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next chapter"),
		),
		prev: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous chapter"),
		),
		skipBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "skip back"),
		),
		skipForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "skip forward"),
		),
		rate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rate"),
		),
		sleep: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sleep timer"),
		),
		seekPercent: key.NewBinding(
			key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("0-9", "seek to 0-90%"),
		),
		visualizer: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "visualizer"),
		),
		openURL: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open url"),
		),
		bookmark: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bookmark"),
		),
		bookmarks: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "bookmarks"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		switchView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "library/history"),
		),
		category: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "category"),
		),
		search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		acceptSearchSuggestion: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "accept suggestion"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	player := h(k.togglePlay, k.next, k.prev, k.skipBack, k.skipForward, k.rate, k.sleep, k.seekPercent, k.bookmark, k.bookmarks, k.visualizer)

	switch k.state {
	case loadingState:
		return to2(h(k.forceQuit))
	case libraryState:
		open := withDescription(k.confirm, "open")
		return h(open, k.search, k.category, k.switchView), append(h(open, k.search, k.category, k.switchView), player...)
	case historyState:
		open := withDescription(k.confirm, "resume")
		return h(open, k.remove, k.switchView), append(h(open, k.remove, k.switchView, k.back), player...)
	case chaptersState:
		return h(k.play, k.togglePlay, k.bookmark, k.back), append(h(k.play, k.openURL, k.back), player...)
	case bookmarksState:
		jump := withDescription(k.confirm, "jump")
		return h(jump, k.remove, k.back), append(h(jump, k.remove, k.back), player...)
	case searchState:
		return to2(h(k.confirm, k.acceptSearchSuggestion, k.back))
	case noteState:
		save := withDescription(k.confirm, "save bookmark")
		return to2(h(save, k.back))
	case errorState:
		return to2(h(k.back, k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

// forList keeps the arrow keys free for skipping, so pages move with pgup and pgdown.
func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:      k.up,
		CursorDown:    k.down,
		NextPage:      k.pageDown,
		PrevPage:      k.pageUp,
		GoToStart:     k.top,
		GoToEnd:       k.bottom,
		ShowFullHelp:  k.showHelp,
		CloseFullHelp: k.showHelp,
		Quit:          k.quit,
		ForceQuit:     k.forceQuit,
	}
}

func withDescription(k key.Binding, description string) key.Binding {
	return key.NewBinding(
		key.WithKeys(k.Keys()...),
		key.WithHelp(k.Help().Key, description),
	)
}
