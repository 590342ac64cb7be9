package history

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/storage"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func book(id string) *catalog.Book {
	return &catalog.Book{
		ID:       catalog.BookID(id),
		Title:    "Book " + id,
		Chapters: []catalog.Chapter{{Name: "C0", URL: "u0"}, {Name: "C1", URL: "u1"}},
	}
}

func TestHistory(t *testing.T) {
	Convey("Given an empty history", t, func() {
		store, err := storage.OpenBadgerInMemory()
		So(err, ShouldBeNil)
		Reset(func() { _ = store.Close() })

		table := NewTable(store, 10)

		Convey("Adding a book stores a stamped snapshot", func() {
			So(table.Add(book("B1"), 1, 42.5), ShouldBeNil)

			entry, found, err := table.Find("B1")
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)
			So(entry.Title, ShouldEqual, "Book B1")
			So(entry.LastChapter, ShouldEqual, 1)
			So(entry.LastTime, ShouldEqual, 42.5)
		})

		Convey("Entries are stored flat with camelCase stamps", func() {
			So(table.Add(book("B1"), 0, 3), ShouldBeNil)

			raw, _, _ := store.Get(Key)
			var decoded []map[string]any
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)
			So(decoded[0]["id"], ShouldEqual, "B1")
			So(decoded[0]["lastChapter"], ShouldEqual, 0.0)
			So(decoded[0]["lastTime"], ShouldEqual, 3.0)
		})

		Convey("Re-adding a book moves it to the front without duplicating it", func() {
			So(table.Add(book("B1"), 0, 0), ShouldBeNil)
			So(table.Add(book("B2"), 0, 0), ShouldBeNil)
			So(table.Add(book("B1"), 1, 10), ShouldBeNil)

			entries, err := table.Entries()
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 2)
			So(entries[0].ID, ShouldEqual, catalog.BookID("B1"))
			So(entries[0].LastChapter, ShouldEqual, 1)
			So(entries[1].ID, ShouldEqual, catalog.BookID("B2"))
		})

		Convey("Any sequence of adds keeps at most ten unique entries", func() {
			for i := 0; i < 40; i++ {
				So(table.Add(book(fmt.Sprint(i%13)), 0, float64(i)), ShouldBeNil)

				entries, err := table.Entries()
				So(err, ShouldBeNil)
				So(len(entries), ShouldBeLessThanOrEqualTo, 10)

				ids := lo.Map(entries, func(e Entry, _ int) catalog.BookID { return e.ID })
				So(len(lo.Uniq(ids)), ShouldEqual, len(ids))
				So(ids[0], ShouldEqual, catalog.BookID(fmt.Sprint(i%13)))
			}
		})

		Convey("Touch updates in place and only existing entries", func() {
			So(table.Add(book("B1"), 0, 0), ShouldBeNil)
			So(table.Add(book("B2"), 0, 0), ShouldBeNil)

			touched, err := table.Touch("B1", 0, 125)
			So(err, ShouldBeNil)
			So(touched, ShouldBeTrue)

			entries, _ := table.Entries()
			So(entries[1].ID, ShouldEqual, catalog.BookID("B1"))
			So(entries[1].LastTime, ShouldEqual, 125.0)

			touched, err = table.Touch("B9", 0, 1)
			So(err, ShouldBeNil)
			So(touched, ShouldBeFalse)
		})

		Convey("Remove and Clear", func() {
			So(table.Add(book("B1"), 0, 0), ShouldBeNil)
			So(table.Add(book("B2"), 0, 0), ShouldBeNil)

			So(table.Remove("B1"), ShouldBeNil)
			entries, _ := table.Entries()
			So(len(entries), ShouldEqual, 1)

			So(table.Clear(), ShouldBeNil)
			entries, _ = table.Entries()
			So(entries, ShouldBeEmpty)
		})

		Convey("A corrupt table reads as empty", func() {
			So(store.Set(Key, []byte(`{not json`)), ShouldBeNil)
			entries, err := table.Entries()
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)

			So(table.Add(book("B1"), 0, 0), ShouldBeNil)
			entries, _ = table.Entries()
			So(len(entries), ShouldEqual, 1)
		})
	})
}
