package storage

import (
	"testing"

	"github.com/vibe-audio/vibe/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func behaves(s Storage) {
	Convey("A missing key is reported absent", func() {
		_, found, err := s.Get("vibe_missing")
		So(err, ShouldBeNil)
		So(found, ShouldBeFalse)
	})

	Convey("A value can be written and read back", func() {
		So(s.Set("vibe_last_played", []byte(`{"bookId":"B1"}`)), ShouldBeNil)

		got, found, err := s.Get("vibe_last_played")
		So(err, ShouldBeNil)
		So(found, ShouldBeTrue)
		So(string(got), ShouldEqual, `{"bookId":"B1"}`)

		Convey("And overwritten", func() {
			So(s.Set("vibe_last_played", []byte(`{"bookId":"B2"}`)), ShouldBeNil)
			got, _, _ := s.Get("vibe_last_played")
			So(string(got), ShouldEqual, `{"bookId":"B2"}`)
		})

		Convey("And removed", func() {
			So(s.Remove("vibe_last_played"), ShouldBeNil)
			_, found, err := s.Get("vibe_last_played")
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
		})
	})
}

func TestFileStorage(t *testing.T) {
	Convey("Given the file backend", t, func() {
		s := NewFile("/state-" + t.Name())
		behaves(s)

		Convey("Values survive reopening", func() {
			dir := "/state-reopen"
			So(NewFile(dir).Set("vibe_history", []byte(`[]`)), ShouldBeNil)

			got, found, err := NewFile(dir).Get("vibe_history")
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)
			So(string(got), ShouldEqual, `[]`)
		})
	})
}

func TestBadgerStorage(t *testing.T) {
	Convey("Given the badger backend in memory", t, func() {
		s, err := OpenBadgerInMemory()
		So(err, ShouldBeNil)
		Reset(func() { _ = s.Close() })

		behaves(s)
	})
}

func TestOpen(t *testing.T) {
	Convey("Open rejects unknown backends", t, func() {
		_, err := Open("redis", "/state")
		So(err, ShouldNotBeNil)

		s, err := Open(File, "/state")
		So(err, ShouldBeNil)
		So(s, ShouldHaveSameTypeAs, &FileStorage{})
	})
}

func TestJSON(t *testing.T) {
	Convey("Given a store", t, func() {
		s, err := OpenBadgerInMemory()
		So(err, ShouldBeNil)
		Reset(func() { _ = s.Close() })

		Convey("Values round trip through Save and Load", func() {
			type pointer struct {
				BookID string  `json:"bookId"`
				Time   float64 `json:"time"`
			}
			So(Save(s, "p", pointer{BookID: "B1", Time: 125}), ShouldBeNil)

			var got pointer
			found, err := Load(s, "p", &got)
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)
			So(got.Time, ShouldEqual, 125.0)
		})

		Convey("Corrupt JSON is reported as CorruptError", func() {
			So(s.Set("p", []byte(`{"bookId":`)), ShouldBeNil)

			var got map[string]any
			_, err := Load(s, "p", &got)
			So(err, ShouldHaveSameTypeAs, CorruptError{})
		})
	})
}
