package bookmark

import (
	"errors"
	"testing"

	"github.com/vibe-audio/vibe/storage"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	Convey("Given a bookmark store", t, func() {
		backend, err := storage.OpenBadgerInMemory()
		So(err, ShouldBeNil)
		Reset(func() { _ = backend.Close() })

		store := NewStore(backend)

		Convey("An empty note is a no-op", func() {
			added, err := store.Add("B1", 12, "   ", 0)
			So(err, ShouldBeNil)
			So(added, ShouldBeFalse)

			list, _ := store.List("B1")
			So(list, ShouldBeEmpty)
		})

		Convey("With three bookmarks for B1", func() {
			for i, note := range []string{"first", "second", "third"} {
				added, err := store.Add("B1", float64(i*10), note, i)
				So(err, ShouldBeNil)
				So(added, ShouldBeTrue)
			}
			_, _ = store.Add("B2", 1, "other book", 0)

			Convey("They are listed in insertion order", func() {
				list, err := store.List("B1")
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 3)
				So(list[0].Note, ShouldEqual, "first")
				So(list[2].Chapter, ShouldEqual, 2)
			})

			Convey("Deleting index 1 keeps the others in order", func() {
				So(store.Delete("B1", 1, nil), ShouldBeNil)

				list, _ := store.List("B1")
				So(len(list), ShouldEqual, 2)
				So(list[0].Note, ShouldEqual, "first")
				So(list[1].Note, ShouldEqual, "third")

				other, _ := store.List("B2")
				So(len(other), ShouldEqual, 1)
			})

			Convey("An out of range index is stale", func() {
				err := store.Delete("B1", 3, nil)
				So(errors.Is(err, ErrStaleIndex), ShouldBeTrue)

				_, err = store.Get("B1", -1)
				So(errors.Is(err, ErrStaleIndex), ShouldBeTrue)
			})

			Convey("An index whose bookmark changed since it was seen is stale", func() {
				seen, err := store.Get("B1", 1)
				So(err, ShouldBeNil)

				So(store.Delete("B1", 0, nil), ShouldBeNil)

				err = store.Delete("B1", 1, &seen)
				So(errors.Is(err, ErrStaleIndex), ShouldBeTrue)

				list, _ := store.List("B1")
				So(len(list), ShouldEqual, 2)
			})
		})

		Convey("A corrupt table reads as empty", func() {
			So(backend.Set(Key, []byte(`[1,2`)), ShouldBeNil)
			all, err := store.All()
			So(err, ShouldBeNil)
			So(all, ShouldBeEmpty)
		})
	})
}
