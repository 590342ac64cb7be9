// Package catalog loads the library of books and offers lookups over it.
package catalog

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// BookID identifies a book. Catalogs use both string and numeric ids; both decode into a BookID.
type BookID string

// UnmarshalJSON accepts a JSON string or number.
func (id *BookID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = BookID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = BookID(n.String())
	return nil
}

// Less orders ids numerically when both are numbers, numbers before text, text lexically.
func (id BookID) Less(other BookID) bool {
	a, aErr := strconv.ParseFloat(string(id), 64)
	b, bErr := strconv.ParseFloat(string(other), 64)

	switch {
	case aErr == nil && bErr == nil:
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return id < other
	}
}

// Chapter is one playable unit of a book. URL may be a share link that needs resolving.
type Chapter struct {
	Name string `json:"name" jsonschema:"required"`
	URL  string `json:"url" jsonschema:"required"`
}

// Book is a catalog entry.
type Book struct {
	ID       BookID    `json:"id" jsonschema:"required,oneof_type=string;integer"`
	Title    string    `json:"title" jsonschema:"required"`
	Author   string    `json:"author,omitempty"`
	Cover    string    `json:"cover,omitempty"`
	Category string    `json:"category,omitempty"`
	Chapters []Chapter `json:"chapters" jsonschema:"required"`
}

func (b *Book) String() string {
	if b.Author == "" {
		return b.Title
	}
	return b.Title + " by " + b.Author
}

// Library is the loaded catalog.
type Library struct {
	Books []*Book
	byID  map[BookID]*Book
}

// NewLibrary indexes books. When ids repeat the first book wins lookups.
func NewLibrary(books []*Book) *Library {
	l := &Library{Books: books, byID: make(map[BookID]*Book, len(books))}
	for _, b := range books {
		if _, exists := l.byID[b.ID]; !exists {
			l.byID[b.ID] = b
		}
	}
	return l
}

// Empty reports whether the library has no books.
func (l *Library) Empty() bool {
	return l == nil || len(l.Books) == 0
}

// Find looks a book up by id.
func (l *Library) Find(id BookID) (*Book, bool) {
	if l == nil {
		return nil, false
	}
	b, ok := l.byID[id]
	return b, ok
}

// Categories lists the distinct non-empty categories, sorted.
func (l *Library) Categories() []string {
	if l == nil {
		return nil
	}

	categories := lo.Uniq(lo.FilterMap(l.Books, func(b *Book, _ int) (string, bool) {
		return b.Category, b.Category != ""
	}))
	sort.Strings(categories)
	return categories
}

// ByCategory returns the books of category in catalog order. An empty category returns every book.
func (l *Library) ByCategory(category string) []*Book {
	if l == nil {
		return nil
	}
	if category == "" {
		return l.Books
	}
	return lo.Filter(l.Books, func(b *Book, _ int) bool {
		return b.Category == category
	})
}

// Search ranks books whose title or author fuzzily matches term, case-insensitively.
func (l *Library) Search(term string) []*Book {
	if l == nil {
		return nil
	}
	if term == "" {
		return l.Books
	}

	targets := lo.Map(l.Books, func(b *Book, _ int) string {
		return b.Title + " " + b.Author
	})

	ranks := fuzzy.RankFindNormalizedFold(term, targets)
	sort.Stable(ranks)

	return lo.Map(ranks, func(r fuzzy.Rank, _ int) *Book {
		return l.Books[r.OriginalIndex]
	})
}
