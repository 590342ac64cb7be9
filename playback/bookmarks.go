package playback

import (
	"fmt"

	"github.com/vibe-audio/vibe/bookmark"
)

// Bookmarks lists the bookmarks of the current book.
func (e *Engine) Bookmarks() ([]bookmark.Bookmark, error) {
	if e.session.Book == nil {
		return nil, nil
	}
	return e.opts.Persist.Bookmarks.List(e.session.Book.ID)
}

// AddBookmark marks the current position. A blank note stores nothing.
func (e *Engine) AddBookmark(note string) (bool, error) {
	book := e.session.Book
	if book == nil {
		return false, nil
	}

	added, err := e.opts.Persist.Bookmarks.Add(book.ID, e.Position(), note, e.session.ChapterIndex)
	if err != nil || !added {
		return false, err
	}

	e.opts.Metrics.IncBookmark("add")
	e.observer.Changed(ChangedBookmarks)
	return true, nil
}

// JumpToBookmark plays from bookmark index. seen, when given, must match the
// stored bookmark, guarding against an index taken from an outdated list.
func (e *Engine) JumpToBookmark(index int, seen *bookmark.Bookmark) error {
	book := e.session.Book
	if book == nil {
		return nil
	}

	b, err := e.opts.Persist.Bookmarks.Get(book.ID, index)
	if err != nil {
		return err
	}
	if seen != nil && b != *seen {
		return fmt.Errorf("%w: bookmark %d changed", bookmark.ErrStaleIndex, index)
	}

	if b.Chapter < 0 || b.Chapter >= len(book.Chapters) {
		return fmt.Errorf("%w: chapter %d no longer exists", bookmark.ErrStaleIndex, b.Chapter)
	}

	if b.Chapter == e.session.ChapterIndex && e.pending.loaded && e.boundURL != "" {
		e.seek(b.Time)
		if e.state != Playing {
			e.activateVisualizer()
			e.play()
		}
		return nil
	}

	if b.Chapter == e.session.ChapterIndex && (e.state == Loading || e.state == Recovering) {
		e.pending.resumeTime = b.Time
	}

	e.session.ChapterIndex = b.Chapter
	e.observer.Changed(ChangedChapter)
	e.loadSource(b.Chapter, true, b.Time)

	if err := e.opts.Persist.AddToHistory(book, b.Chapter, b.Time); err != nil {
		return err
	}
	e.observer.Changed(ChangedHistory)
	return nil
}

// DeleteBookmark removes bookmark index, checked against seen like JumpToBookmark.
func (e *Engine) DeleteBookmark(index int, seen *bookmark.Bookmark) error {
	book := e.session.Book
	if book == nil {
		return nil
	}

	if err := e.opts.Persist.Bookmarks.Delete(book.ID, index, seen); err != nil {
		return err
	}

	e.opts.Metrics.IncBookmark("delete")
	e.observer.Changed(ChangedBookmarks)
	return nil
}
