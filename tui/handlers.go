package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/vibe-audio/vibe/bookmark"
	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/history"
	"github.com/vibe-audio/vibe/internal/ui"
	"github.com/vibe-audio/vibe/key"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/open"
	"github.com/vibe-audio/vibe/playback"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// libraryMsg carries the fetched catalog.
type libraryMsg struct {
	library *catalog.Library
}

// wakeMsg means the event loop has callbacks waiting.
type wakeMsg struct{}

func (b *statefulBubble) fetchLibrary() tea.Cmd {
	return func() tea.Msg {
		library, err := b.options.Library(b.ctx)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		return libraryMsg{library: library}
	}
}

// waitForWake blocks until a backend or timer posts to the loop.
// The callbacks then run inside Update, on the UI goroutine.
func (b *statefulBubble) waitForWake() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.options.Loop.Wake():
			return wakeMsg{}
		case <-b.ctx.Done():
			return nil
		}
	}
}

// sync turns what the engine reported into list refreshes and notices.
func (b *statefulBubble) sync() tea.Cmd {
	changes, notices := b.bridge.changes, b.bridge.notices
	b.bridge.changes, b.bridge.notices = 0, nil

	var cmds []tea.Cmd
	for _, n := range notices {
		cmds = append(cmds, ui.Notify(n.Text, n.Warning))
	}

	if changes.Has(playback.ChangedHistory) {
		cmds = append(cmds, b.loadHistory())
	}
	if changes.Has(playback.ChangedBookmarks) {
		cmds = append(cmds, b.loadBookmarks())
	}
	if changes.Has(playback.ChangedBook) || changes.Has(playback.ChangedChapter) {
		cmds = append(cmds, b.loadChapters())
	}
	if changes&(playback.ChangedBook|playback.ChangedState) != 0 {
		b.relayout()
	}

	return tea.Batch(cmds...)
}

func (b *statefulBubble) loadLibrary() tea.Cmd {
	var books []*catalog.Book

	categories := b.library.Categories()
	category := ""
	if b.category > 0 && b.category <= len(categories) {
		category = categories[b.category-1]
	}

	switch {
	case b.searchTerm != "":
		books = b.library.Search(b.searchTerm)
		b.libraryC.Title = fmt.Sprintf("Library - %q", b.searchTerm)
	case category != "":
		books = b.library.ByCategory(category)
		b.libraryC.Title = "Library - " + category
	default:
		books = b.library.ByCategory("")
		b.libraryC.Title = "Library"
	}

	current := b.options.Engine.Book()
	items := lo.Map(books, func(book *catalog.Book, _ int) list.Item {
		return &listItem{internal: book, marked: current != nil && current.ID == book.ID}
	})

	b.libraryC.ResetSelected()
	return b.libraryC.SetItems(items)
}

func (b *statefulBubble) loadHistory() tea.Cmd {
	entries, err := b.options.Persist.History.Entries()
	if err != nil {
		log.Warnf("read history: %s", err)
		return ui.Notify("History unavailable", true)
	}

	current := b.options.Engine.Book()
	items := make([]list.Item, len(entries))
	for i := range entries {
		items[i] = &listItem{internal: &entries[i], marked: current != nil && current.ID == entries[i].ID}
	}

	return b.historyC.SetItems(items)
}

func (b *statefulBubble) loadChapters() tea.Cmd {
	book := b.options.Engine.Book()
	if book == nil {
		return b.chaptersC.SetItems(nil)
	}

	b.chaptersC.Title = book.Title

	playing := b.options.Engine.ChapterIndex()
	items := make([]list.Item, len(book.Chapters))
	for i, c := range book.Chapters {
		items[i] = &listItem{internal: &chapterEntry{index: i, chapter: c}, marked: i == playing}
	}

	cmd := b.chaptersC.SetItems(items)
	b.chaptersC.Select(playing)
	return cmd
}

// loadBookmarks re-reads the bookmark list. Every index the list hands out
// afterwards refers to this read.
func (b *statefulBubble) loadBookmarks() tea.Cmd {
	book := b.options.Engine.Book()
	marks, err := b.options.Engine.Bookmarks()
	if err != nil {
		log.Warnf("read bookmarks: %s", err)
		return ui.Notify("Bookmarks unavailable", true)
	}

	items := make([]list.Item, len(marks))
	for i, m := range marks {
		name := fmt.Sprintf("Chapter %d", m.Chapter+1)
		if book != nil && m.Chapter >= 0 && m.Chapter < len(book.Chapters) {
			name = book.Chapters[m.Chapter].Name
		}
		items[i] = &listItem{internal: &bookmarkEntry{index: i, mark: m, chapter: name}}
	}

	return b.marksC.SetItems(items)
}

func (b *statefulBubble) openBook(book *catalog.Book) tea.Cmd {
	b.options.Engine.OpenBook(book)
	b.newState(chaptersState)
	return b.loadChapters()
}

func (b *statefulBubble) openEntry(entry *history.Entry) tea.Cmd {
	book, ok := b.library.Find(entry.ID)
	if !ok {
		book = &entry.Book
	}
	return b.openBook(book)
}

func (b *statefulBubble) cycleCategory() tea.Cmd {
	n := len(b.library.Categories())
	b.category = (b.category + 1) % (n + 1)
	b.searchTerm = ""
	return b.loadLibrary()
}

func (b *statefulBubble) selectedBookmark() (*bookmarkEntry, bool) {
	item, ok := b.marksC.SelectedItem().(*listItem)
	if !ok {
		return nil, false
	}
	entry, ok := item.internal.(*bookmarkEntry)
	return entry, ok
}

// bookmarkAction runs a jump or delete and handles a list that went stale in between.
func (b *statefulBubble) bookmarkAction(action func(index int, seen *bookmark.Bookmark) error) tea.Cmd {
	entry, ok := b.selectedBookmark()
	if !ok {
		return nil
	}

	err := action(entry.index, &entry.mark)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bookmark.ErrStaleIndex):
		return tea.Batch(b.loadBookmarks(), ui.Notify("Bookmarks changed, try again", true))
	default:
		log.Warnf("bookmark: %s", err)
		return ui.Notify("Bookmark action failed", true)
	}
}

func (b *statefulBubble) toggleSleep() tea.Cmd {
	engine := b.options.Engine
	if _, active := engine.SleepRemaining(); active {
		engine.CancelSleep()
		return ui.Notify("Sleep timer cancelled", false)
	}

	minutes := viper.GetInt(key.PlayerSleepMins)
	if minutes <= 0 {
		minutes = 30
	}
	engine.Sleep(time.Duration(minutes) * time.Minute)
	return ui.Notify(fmt.Sprintf("Sleeping in %d min", minutes), false)
}

func (b *statefulBubble) toggleVisualizer() tea.Cmd {
	v := b.options.Visualizer
	if v == nil {
		return ui.Notify("Visualization is off in the config", false)
	}

	b.showVisualizer = !b.showVisualizer
	if b.showVisualizer {
		v.Resume()
	} else {
		v.Suspend()
	}

	b.relayout()
	return nil
}

func (b *statefulBubble) openChapterURL() tea.Cmd {
	chapter, ok := b.options.Engine.Chapter()
	if !ok {
		return nil
	}

	if err := open.Start(chapter.URL); err != nil {
		log.Warnf("open %s: %s", chapter.URL, err)
		return ui.Notify("Could not open the link", true)
	}
	return nil
}
