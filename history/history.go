// Package history keeps the most recently played books with where playback stopped.
package history

import (
	"errors"

	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/storage"
	"github.com/samber/lo"
)

// Key is the storage key of the history table.
const Key = "vibe_history"

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 10

// Entry is a book snapshot stamped with the chapter and time last played.
// The book fields are stored flat next to lastChapter and lastTime.
type Entry struct {
	catalog.Book
	LastChapter int     `json:"lastChapter"`
	LastTime    float64 `json:"lastTime"`
}

// Table is the history list, most recent first, unique by book id.
type Table struct {
	store storage.Storage
	limit int
}

// NewTable returns a table over store keeping at most limit entries.
func NewTable(store storage.Storage, limit int) *Table {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Table{store: store, limit: limit}
}

// Entries returns the stored history. A corrupt table is logged and read as empty.
func (t *Table) Entries() ([]Entry, error) {
	var entries []Entry
	_, err := storage.Load(t.store, Key, &entries)

	var corrupt storage.CorruptError
	if errors.As(err, &corrupt) {
		log.Warnf("discarding history: %s", err)
		return nil, nil
	}
	return entries, err
}

func (t *Table) save(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	return storage.Save(t.store, Key, entries)
}

// Add moves book to the front, stamped with chapter and time, and truncates the list.
func (t *Table) Add(book *catalog.Book, chapter int, time float64) error {
	entries, err := t.Entries()
	if err != nil {
		return err
	}

	entries = lo.Filter(entries, func(e Entry, _ int) bool {
		return e.ID != book.ID
	})

	entries = append([]Entry{{Book: *book, LastChapter: chapter, LastTime: time}}, entries...)
	if len(entries) > t.limit {
		entries = entries[:t.limit]
	}

	return t.save(entries)
}

// Touch updates the entry for id in place, keeping its position.
// It reports whether an entry existed; nothing is written otherwise.
func (t *Table) Touch(id catalog.BookID, chapter int, time float64) (bool, error) {
	entries, err := t.Entries()
	if err != nil {
		return false, err
	}

	_, index, found := lo.FindIndexOf(entries, func(e Entry) bool {
		return e.ID == id
	})
	if !found {
		return false, nil
	}

	entries[index].LastChapter = chapter
	entries[index].LastTime = time
	return true, t.save(entries)
}

// Find returns the entry for id.
func (t *Table) Find(id catalog.BookID) (Entry, bool, error) {
	entries, err := t.Entries()
	if err != nil {
		return Entry{}, false, err
	}

	entry, found := lo.Find(entries, func(e Entry) bool {
		return e.ID == id
	})
	return entry, found, nil
}

// Remove deletes the entry for id, if any.
func (t *Table) Remove(id catalog.BookID) error {
	entries, err := t.Entries()
	if err != nil {
		return err
	}

	return t.save(lo.Reject(entries, func(e Entry, _ int) bool {
		return e.ID == id
	}))
}

// Clear empties the table.
func (t *Table) Clear() error {
	return t.store.Remove(Key)
}
