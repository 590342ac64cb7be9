// Package persist writes playback state: the global resume pointer, per-book
// history and bookmarks, each in its own table of one store.
package persist

import (
	"errors"

	"github.com/vibe-audio/vibe/bookmark"
	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/history"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/metrics"
	"github.com/vibe-audio/vibe/storage"
)

// PointerKey is the storage key of the resume pointer.
const PointerKey = "vibe_last_played"

// Pointer is the single most recent playback position across all books.
type Pointer struct {
	BookID       catalog.BookID `json:"bookId"`
	ChapterIndex int            `json:"chapterIndex"`
	Time         float64        `json:"time"`
}

// Options configure a Service.
type Options struct {
	// Granularity is the checkpoint period in whole seconds.
	Granularity  int
	HistoryLimit int
	Metrics      *metrics.Metrics
}

// Service owns the three tables.
type Service struct {
	store       storage.Storage
	granularity int
	metrics     *metrics.Metrics

	History   *history.Table
	Bookmarks *bookmark.Store
}

// New returns a Service over store.
func New(store storage.Storage, opts Options) *Service {
	if opts.Granularity <= 0 {
		opts.Granularity = 2
	}

	return &Service{
		store:       store,
		granularity: opts.Granularity,
		metrics:     opts.Metrics,
		History:     history.NewTable(store, opts.HistoryLimit),
		Bookmarks:   bookmark.NewStore(store),
	}
}

// Pointer returns the stored resume pointer. A corrupt pointer is logged and reported absent.
func (s *Service) Pointer() (Pointer, bool, error) {
	var p Pointer
	found, err := storage.Load(s.store, PointerKey, &p)

	var corrupt storage.CorruptError
	if errors.As(err, &corrupt) {
		log.Warnf("discarding resume pointer: %s", err)
		return Pointer{}, false, nil
	}
	return p, found && err == nil, err
}

// ClearPointer forgets the resume pointer.
func (s *Service) ClearPointer() error {
	return s.store.Remove(PointerKey)
}

// Due reports whether a position falls on a checkpoint boundary.
func (s *Service) Due(t float64) bool {
	if t < 0 {
		return false
	}
	return int(t)%s.granularity == 0
}

// Checkpoint writes the resume pointer and, when book is in history, stamps its entry in place.
func (s *Service) Checkpoint(book *catalog.Book, chapter int, t float64) error {
	if book == nil {
		return nil
	}

	err := storage.Save(s.store, PointerKey, Pointer{
		BookID:       book.ID,
		ChapterIndex: chapter,
		Time:         t,
	})
	if err != nil {
		return err
	}

	if _, err := s.History.Touch(book.ID, chapter, t); err != nil {
		return err
	}

	s.metrics.IncCheckpoint()
	return nil
}

// AddToHistory moves book to the front of history stamped with chapter and t.
func (s *Service) AddToHistory(book *catalog.Book, chapter int, t float64) error {
	if book == nil {
		return nil
	}
	return s.History.Add(book, chapter, t)
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
