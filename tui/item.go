package tui

import (
	"fmt"
	"strings"

	"github.com/vibe-audio/vibe/bookmark"
	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/history"
	"github.com/vibe-audio/vibe/icon"
	"github.com/vibe-audio/vibe/style"
	"github.com/vibe-audio/vibe/util"
	"github.com/charmbracelet/lipgloss"
)

// chapterEntry is a row of the chapter list.
type chapterEntry struct {
	index   int
	chapter catalog.Chapter
}

// bookmarkEntry is a row of the bookmark list. The bookmark itself travels
// with the row so a jump or delete can detect that the list went stale.
type bookmarkEntry struct {
	index   int
	mark    bookmark.Bookmark
	chapter string
}

// listItem implements the list.Item interface, wrapping various domain models for terminal display.
type listItem struct {
	internal interface{}
	marked   bool
}

func (t *listItem) getMark() string {
	switch t.internal.(type) {
	case *chapterEntry:
		return lipgloss.NewStyle().Bold(true).Foreground(style.AccentColor).Render(icon.Get(icon.Play))
	case *catalog.Book, *history.Entry:
		return icon.Get(icon.Mark)
	default:
		return ""
	}
}

// Title retrieves the primary display text for the list item.
func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case *catalog.Book:
		title = e.Title
	case *history.Entry:
		title = e.Title
	case *chapterEntry:
		title = fmt.Sprintf("%d. %s", e.index+1, e.chapter.Name)
	case *bookmarkEntry:
		title = e.mark.Note
	case string:
		title = e
	default:
		title = t.FilterValue()
	}

	if title != "" && t.marked {
		title = fmt.Sprintf("%s %s", title, t.getMark())
	}

	return
}

// Description retrieves the secondary line for the list item.
func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case *catalog.Book:
		var parts []string
		if e.Author != "" {
			parts = append(parts, e.Author)
		}
		if e.Category != "" {
			parts = append(parts, lipgloss.NewStyle().Foreground(style.Lavender).Render(e.Category))
		}
		parts = append(parts, style.Faint(util.Quantify(len(e.Chapters), "chapter", "chapters")))
		description = strings.Join(parts, " • ")
	case *history.Entry:
		progress := lipgloss.NewStyle().Foreground(style.Yellow).Render(util.FormatTime(e.LastTime))
		description = fmt.Sprintf("Chapter %d / %d at %s", e.LastChapter+1, len(e.Chapters), progress)
	case *chapterEntry:
		description = style.Faint(e.chapter.URL)
	case *bookmarkEntry:
		description = fmt.Sprintf("%s • %s", e.chapter, lipgloss.NewStyle().Foreground(style.Yellow).Render(util.FormatTime(e.mark.Time)))
	}

	return
}

// FilterValue returns the string used for list filtering.
func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case *catalog.Book:
		return e.Title + " " + e.Author
	case *history.Entry:
		return e.Title
	case *chapterEntry:
		return e.chapter.Name
	case *bookmarkEntry:
		return e.mark.Note
	case string:
		return e
	default:
		return ""
	}
}
