package tui

import (
	"strings"

	"github.com/vibe-audio/vibe/bookmark"
	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/history"
	"github.com/vibe-audio/vibe/internal/ui"
	"github.com/vibe-audio/vibe/key"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/query"
	"github.com/vibe-audio/vibe/visualizer"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := b.update(msg)
	return model, tea.Batch(cmd, b.sync())
}

func (b *statefulBubble) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = uiCmd
	}

	switch msg := msg.(type) {
	case wakeMsg:
		b.options.Loop.Drain()
		return b, tea.Batch(cmd, b.waitForWake())
	case visualizer.FrameMsg:
		if b.options.Visualizer == nil {
			return b, cmd
		}
		return b, tea.Batch(cmd, b.options.Visualizer.Update(msg))
	case ui.NoticeMsg, ui.ClearNoticeMsg:
		return b, cmd
	case libraryMsg:
		return b, tea.Batch(cmd, b.onLibrary(msg.library))
	case error:
		b.stopLoading()
		b.raiseError(msg)
		return b, cmd
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.forceQuit):
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.back):
			return b, tea.Batch(cmd, b.onBack())
		}

		if b.acceptsPlayerKeys() {
			if handled, playerCmd := b.handlePlayerKey(msg); handled {
				return b, tea.Batch(cmd, playerCmd)
			}
		}
	}

	var stateCmd tea.Cmd
	switch b.state {
	case loadingState:
		b.spinnerC, stateCmd = b.spinnerC.Update(msg)
	case libraryState:
		_, stateCmd = b.updateLibrary(msg)
	case historyState:
		_, stateCmd = b.updateHistory(msg)
	case chaptersState:
		_, stateCmd = b.updateChapters(msg)
	case bookmarksState:
		_, stateCmd = b.updateBookmarks(msg)
	case searchState:
		_, stateCmd = b.updateSearch(msg)
	case noteState:
		_, stateCmd = b.updateNote(msg)
	case errorState:
		_, stateCmd = b.updateError(msg)
	}

	return b, tea.Batch(cmd, stateCmd)
}

func (b *statefulBubble) onLibrary(library *catalog.Library) tea.Cmd {
	b.library = library
	b.stopLoading()
	b.setState(libraryState)

	cmds := []tea.Cmd{b.loadLibrary(), b.loadHistory()}

	if b.options.Continue && b.options.Engine.ResumeLast(library) {
		b.newState(chaptersState)
		cmds = append(cmds, b.loadChapters())
	}

	return tea.Batch(cmds...)
}

// onBack leaves input states, then clears library filters, then walks back.
func (b *statefulBubble) onBack() tea.Cmd {
	switch b.state {
	case searchState:
		b.inputC.SetValue("")
		b.inputC.Blur()
	case noteState:
		b.noteC.SetValue("")
		b.noteC.Blur()
	case libraryState:
		if b.searchTerm != "" || b.category != 0 {
			b.searchTerm, b.category = "", 0
			return b.loadLibrary()
		}
	}

	b.previousState()
	return nil
}

func (b *statefulBubble) acceptsPlayerKeys() bool {
	switch b.state {
	case libraryState, historyState, chaptersState, bookmarksState:
		return b.options.Engine.Book() != nil
	default:
		return false
	}
}

// handlePlayerKey runs the playback keys that work from every list view.
func (b *statefulBubble) handlePlayerKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	engine := b.options.Engine

	switch {
	case bubblesKey.Matches(msg, b.keymap.togglePlay):
		engine.TogglePlay()
	case bubblesKey.Matches(msg, b.keymap.next):
		engine.Next()
	case bubblesKey.Matches(msg, b.keymap.prev):
		engine.Previous()
	case bubblesKey.Matches(msg, b.keymap.skipBack):
		engine.SkipBy(-viper.GetFloat64(key.PlayerSkipSeconds))
	case bubblesKey.Matches(msg, b.keymap.skipForward):
		engine.SkipBy(viper.GetFloat64(key.PlayerSkipSeconds))
	case bubblesKey.Matches(msg, b.keymap.rate):
		engine.CycleRate()
	case bubblesKey.Matches(msg, b.keymap.seekPercent):
		digit := float64(msg.String()[0] - '0')
		engine.SeekToPercent(digit * 10)
	case bubblesKey.Matches(msg, b.keymap.sleep):
		return true, b.toggleSleep()
	case bubblesKey.Matches(msg, b.keymap.visualizer):
		return true, b.toggleVisualizer()
	case bubblesKey.Matches(msg, b.keymap.openURL):
		return true, b.openChapterURL()
	case bubblesKey.Matches(msg, b.keymap.bookmark):
		b.noteC.SetValue("")
		b.newState(noteState)
		return true, b.noteC.Focus()
	case bubblesKey.Matches(msg, b.keymap.bookmarks):
		b.newState(bookmarksState)
		return true, b.loadBookmarks()
	default:
		return false, nil
	}

	return true, nil
}

func (b *statefulBubble) updateLibrary(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			item, ok := b.libraryC.SelectedItem().(*listItem)
			if !ok {
				return b, nil
			}
			return b, b.openBook(item.internal.(*catalog.Book))
		case bubblesKey.Matches(msg, b.keymap.search):
			b.inputC.SetValue(b.searchTerm)
			b.searchSuggestion = query.Suggest(b.searchTerm)
			b.newState(searchState)
			return b, b.inputC.Focus()
		case bubblesKey.Matches(msg, b.keymap.category):
			return b, b.cycleCategory()
		case bubblesKey.Matches(msg, b.keymap.switchView):
			b.setState(historyState)
			return b, b.loadHistory()
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.libraryC.Items()); n > 0 && b.libraryC.Index() == 0 {
				b.libraryC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.libraryC.Items()); n > 0 && b.libraryC.Index() == n-1 {
				b.libraryC.Select(0)
				return b, nil
			}
		}
	}

	b.libraryC, cmd = b.libraryC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			item, ok := b.historyC.SelectedItem().(*listItem)
			if !ok {
				return b, nil
			}
			return b, b.openEntry(item.internal.(*history.Entry))
		case bubblesKey.Matches(msg, b.keymap.remove):
			item, ok := b.historyC.SelectedItem().(*listItem)
			if !ok {
				return b, nil
			}
			entry := item.internal.(*history.Entry)
			if err := b.options.Persist.History.Remove(entry.ID); err != nil {
				log.Warnf("remove history entry %s: %s", entry.ID, err)
				return b, ui.Notify("Could not remove the entry", true)
			}
			return b, b.loadHistory()
		case bubblesKey.Matches(msg, b.keymap.switchView):
			b.setState(libraryState)
			return b, nil
		}
	}

	b.historyC, cmd = b.historyC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateChapters(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(msg, b.keymap.play) {
		item, ok := b.chaptersC.SelectedItem().(*listItem)
		if !ok {
			return b, nil
		}
		b.options.Engine.PlayChapter(item.internal.(*chapterEntry).index)
		return b, nil
	}

	b.chaptersC, cmd = b.chaptersC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateBookmarks(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		engine := b.options.Engine
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			return b, b.bookmarkAction(func(index int, seen *bookmark.Bookmark) error {
				return engine.JumpToBookmark(index, seen)
			})
		case bubblesKey.Matches(msg, b.keymap.remove):
			return b, b.bookmarkAction(func(index int, seen *bookmark.Bookmark) error {
				return engine.DeleteBookmark(index, seen)
			})
		}
	}

	b.marksC, cmd = b.marksC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.acceptSearchSuggestion):
			if s, ok := b.searchSuggestion.Get(); ok {
				b.inputC.SetValue(s)
				b.inputC.CursorEnd()
			}
			return b, nil
		case bubblesKey.Matches(msg, b.keymap.confirm):
			term := strings.TrimSpace(b.inputC.Value())
			if term != "" {
				if err := query.Remember(term, 1); err != nil {
					log.Warnf("remember query: %s", err)
				}
			}

			b.searchTerm, b.category = term, 0
			b.inputC.Blur()
			b.previousState()
			return b, b.loadLibrary()
		}
	}

	b.inputC, cmd = b.inputC.Update(msg)
	b.searchSuggestion = query.Suggest(b.inputC.Value())
	return b, cmd
}

func (b *statefulBubble) updateNote(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(msg, b.keymap.confirm) {
		note := b.noteC.Value()
		b.noteC.SetValue("")
		b.noteC.Blur()
		b.previousState()

		added, err := b.options.Engine.AddBookmark(note)
		switch {
		case err != nil:
			log.Warnf("add bookmark: %s", err)
			return b, ui.Notify("Could not save the bookmark", true)
		case !added:
			return b, ui.Notify("A bookmark needs a note", false)
		default:
			return b, ui.Notify("Bookmarked", false)
		}
	}

	b.noteC, cmd = b.noteC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(msg, b.keymap.quit) {
		return b, tea.Quit
	}
	return b, nil
}

var _ list.Item = (*listItem)(nil)
