package persist

import (
	"testing"

	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/storage"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestService(t *testing.T) {
	Convey("Given a persistence service", t, func() {
		store, err := storage.OpenBadgerInMemory()
		So(err, ShouldBeNil)
		svc := New(store, Options{Granularity: 2, HistoryLimit: 10})
		Reset(func() { _ = svc.Close() })

		b1 := &catalog.Book{ID: "B1", Title: "B1", Chapters: []catalog.Chapter{{Name: "C0"}, {Name: "C1"}}}

		Convey("Checkpoints fall on even whole seconds", func() {
			So(svc.Due(125.0), ShouldBeFalse)
			So(svc.Due(124.9), ShouldBeTrue)
			So(svc.Due(126.3), ShouldBeTrue)
			So(svc.Due(-1), ShouldBeFalse)
		})

		Convey("A checkpoint writes the pointer", func() {
			So(svc.Checkpoint(b1, 0, 125.0), ShouldBeNil)

			p, found, err := svc.Pointer()
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)
			So(p, ShouldResemble, Pointer{BookID: "B1", ChapterIndex: 0, Time: 125.0})

			Convey("But does not create a history entry", func() {
				_, found, _ := svc.History.Find("B1")
				So(found, ShouldBeFalse)
			})
		})

		Convey("A checkpoint stamps an existing history entry in place", func() {
			other := &catalog.Book{ID: "B2", Title: "B2"}
			So(svc.AddToHistory(b1, 0, 0), ShouldBeNil)
			So(svc.AddToHistory(other, 0, 0), ShouldBeNil)

			So(svc.Checkpoint(b1, 0, 125.0), ShouldBeNil)

			entries, _ := svc.History.Entries()
			So(entries[0].ID, ShouldEqual, catalog.BookID("B2"))
			So(entries[1].LastChapter, ShouldEqual, 0)
			So(entries[1].LastTime, ShouldEqual, 125.0)
		})

		Convey("A corrupt pointer reads as absent", func() {
			So(store.Set(PointerKey, []byte(`{`)), ShouldBeNil)
			_, found, err := svc.Pointer()
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
		})

		Convey("ClearPointer forgets it", func() {
			So(svc.Checkpoint(b1, 1, 8), ShouldBeNil)
			So(svc.ClearPointer(), ShouldBeNil)
			_, found, _ := svc.Pointer()
			So(found, ShouldBeFalse)
		})
	})
}
