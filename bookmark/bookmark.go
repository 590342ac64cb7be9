// Package bookmark stores user bookmarks per book.
package bookmark

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/storage"
)

// Key is the storage key of the bookmark table.
const Key = "vibe_bookmarks"

// ErrStaleIndex is returned when an index no longer refers to the bookmark the caller saw.
var ErrStaleIndex = errors.New("stale bookmark index")

// Bookmark is a noted position in a chapter.
type Bookmark struct {
	Time    float64 `json:"time"`
	Note    string  `json:"note"`
	Chapter int     `json:"chapter"`
}

// Store is the bookmark table: book id to bookmarks in insertion order.
type Store struct {
	store storage.Storage
}

// NewStore returns a bookmark table over store.
func NewStore(store storage.Storage) *Store {
	return &Store{store: store}
}

// All returns every book's bookmarks. A corrupt table is logged and read as empty.
func (s *Store) All() (map[catalog.BookID][]Bookmark, error) {
	all := make(map[catalog.BookID][]Bookmark)
	_, err := storage.Load(s.store, Key, &all)

	var corrupt storage.CorruptError
	if errors.As(err, &corrupt) {
		log.Warnf("discarding bookmarks: %s", err)
		return make(map[catalog.BookID][]Bookmark), nil
	}
	if err != nil {
		return nil, err
	}
	return all, nil
}

// List returns the bookmarks of book in insertion order.
func (s *Store) List(book catalog.BookID) ([]Bookmark, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	return all[book], nil
}

// Add appends a bookmark. An empty note means the prompt was cancelled and
// nothing is stored; added reports which happened.
func (s *Store) Add(book catalog.BookID, time float64, note string, chapter int) (added bool, err error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return false, nil
	}

	all, err := s.All()
	if err != nil {
		return false, err
	}

	all[book] = append(all[book], Bookmark{Time: time, Note: note, Chapter: chapter})
	return true, storage.Save(s.store, Key, all)
}

// Get returns the bookmark at index.
func (s *Store) Get(book catalog.BookID, index int) (Bookmark, error) {
	list, err := s.List(book)
	if err != nil {
		return Bookmark{}, err
	}

	if index < 0 || index >= len(list) {
		return Bookmark{}, fmt.Errorf("%w: %d of %d", ErrStaleIndex, index, len(list))
	}
	return list[index], nil
}

// Delete removes the bookmark at index. When seen is not nil the stored
// bookmark must still equal it, otherwise ErrStaleIndex is returned and nothing changes.
func (s *Store) Delete(book catalog.BookID, index int, seen *Bookmark) error {
	all, err := s.All()
	if err != nil {
		return err
	}

	list := all[book]
	if index < 0 || index >= len(list) {
		return fmt.Errorf("%w: %d of %d", ErrStaleIndex, index, len(list))
	}
	if seen != nil && list[index] != *seen {
		return fmt.Errorf("%w: bookmark %d changed", ErrStaleIndex, index)
	}

	list = append(list[:index:index], list[index+1:]...)
	if len(list) == 0 {
		delete(all, book)
	} else {
		all[book] = list
	}

	return storage.Save(s.store, Key, all)
}
