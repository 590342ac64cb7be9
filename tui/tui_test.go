package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/internal/eventloop"
	"github.com/vibe-audio/vibe/media/mediatest"
	"github.com/vibe-audio/vibe/persist"
	"github.com/vibe-audio/vibe/playback"
	"github.com/vibe-audio/vibe/storage"
	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	space = tea.KeyMsg{Type: tea.KeySpace}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

type harness struct {
	bubble  *statefulBubble
	loop    *eventloop.Loop
	built   []*mediatest.Element
	svc     *persist.Service
	library *catalog.Library
}

func newHarness(continueLast bool) *harness {
	store, err := storage.OpenBadgerInMemory()
	So(err, ShouldBeNil)

	h := &harness{
		loop: eventloop.New(),
		svc:  persist.New(store, persist.Options{Granularity: 2, HistoryLimit: 10}),
		library: catalog.NewLibrary([]*catalog.Book{
			{
				ID: "B1", Title: "First Book", Category: "Fiction",
				Chapters: []catalog.Chapter{
					{Name: "Opening", URL: "https://cdn.example.com/b1/c0.mp3"},
					{Name: "Middle", URL: "https://cdn.example.com/b1/c1.mp3"},
				},
			},
			{
				ID: "B2", Title: "Second Book", Category: "History",
				Chapters: []catalog.Chapter{
					{Name: "Only", URL: "https://cdn.example.com/b2/c0.mp3"},
				},
			},
		}),
	}

	engine := playback.New(playback.Options{
		Loop:    h.loop,
		Factory: mediatest.Factory(h.loop, &h.built),
		Persist: h.svc,
		Rates:   []float64{1, 1.5},
	})

	h.bubble = newBubble(&Options{
		Continue: continueLast,
		Loop:     h.loop,
		Engine:   engine,
		Persist:  h.svc,
		Library: func(context.Context) (*catalog.Library, error) {
			return h.library, nil
		},
	})

	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})

	Reset(func() {
		h.bubble.shutdown()
		_ = h.svc.Close()
	})
	return h
}

func (h *harness) send(msgs ...tea.Msg) {
	for _, msg := range msgs {
		h.bubble.Update(msg)
	}
}

// settle runs everything the backends posted, the way a wake does.
func (h *harness) settle() {
	h.send(wakeMsg{})
}

func (h *harness) current() *mediatest.Element {
	return h.built[len(h.built)-1]
}

func TestLibrary(t *testing.T) {
	Convey("Given the TUI before the catalog arrived", t, func() {
		h := newHarness(false)
		So(h.bubble.state, ShouldEqual, loadingState)

		Convey("A catalog failure shows the error view", func() {
			h.send(errors.New("catalog unreachable"))
			So(h.bubble.state, ShouldEqual, errorState)
			So(h.bubble.View(), ShouldContainSubstring, "catalog unreachable")
		})

		Convey("The catalog fills the library", func() {
			h.send(libraryMsg{library: h.library})
			So(h.bubble.state, ShouldEqual, libraryState)
			So(len(h.bubble.libraryC.Items()), ShouldEqual, 2)

			Convey("Categories filter it and esc clears the filter", func() {
				h.send(runes("c"))
				So(h.bubble.libraryC.Title, ShouldEqual, "Library - Fiction")
				So(len(h.bubble.libraryC.Items()), ShouldEqual, 1)

				h.send(esc)
				So(len(h.bubble.libraryC.Items()), ShouldEqual, 2)
				So(h.bubble.state, ShouldEqual, libraryState)
			})

			Convey("A search narrows it", func() {
				h.send(runes("/"))
				So(h.bubble.state, ShouldEqual, searchState)

				h.bubble.inputC.SetValue("second")
				h.send(enter)
				So(h.bubble.state, ShouldEqual, libraryState)
				So(len(h.bubble.libraryC.Items()), ShouldEqual, 1)
				So(h.bubble.libraryC.Items()[0].(*listItem).internal.(*catalog.Book).ID, ShouldEqual, catalog.BookID("B2"))
			})

			Convey("Playback keys do nothing without a book", func() {
				h.send(space)
				So(h.built, ShouldBeEmpty)
			})
		})
	})
}

func TestPlayback(t *testing.T) {
	Convey("Given a book opened from the library", t, func() {
		h := newHarness(false)
		h.send(libraryMsg{library: h.library}, enter)

		engine := h.bubble.options.Engine
		So(h.bubble.state, ShouldEqual, chaptersState)
		So(engine.Book().ID, ShouldEqual, catalog.BookID("B1"))
		So(len(h.bubble.chaptersC.Items()), ShouldEqual, 2)
		So(h.bubble.View(), ShouldContainSubstring, "First Book")

		Convey("Enter on a chapter plays it once metadata arrives", func() {
			h.send(enter)
			h.current().Ready(120)
			h.settle()

			So(engine.State(), ShouldEqual, playback.Playing)
			So(len(h.bubble.historyC.Items()), ShouldEqual, 1)

			Convey("Space pauses", func() {
				h.send(space)
				So(engine.State(), ShouldEqual, playback.Paused)
			})

			Convey("Digits seek by tenths", func() {
				h.send(runes("5"))
				So(h.current().Seeks[len(h.current().Seeks)-1].To, ShouldEqual, 60.0)
			})

			Convey("n moves to the next chapter", func() {
				h.send(runes("n"))
				So(engine.ChapterIndex(), ShouldEqual, 1)
				So(h.bubble.chaptersC.Index(), ShouldEqual, 1)
			})

			Convey("r cycles the rate", func() {
				h.send(runes("r"))
				So(engine.Rate(), ShouldEqual, 1.5)
			})

			Convey("s starts and cancels the sleep timer", func() {
				h.send(runes("s"))
				_, active := engine.SleepRemaining()
				So(active, ShouldBeTrue)

				h.send(runes("s"))
				_, active = engine.SleepRemaining()
				So(active, ShouldBeFalse)
			})

			Convey("b prompts for a note and stores a bookmark", func() {
				h.current().Advance(42)
				h.settle()

				h.send(runes("b"))
				So(h.bubble.state, ShouldEqual, noteState)

				h.bubble.noteC.SetValue("the twist")
				h.send(enter)
				So(h.bubble.state, ShouldEqual, chaptersState)

				marks, err := h.svc.Bookmarks.List("B1")
				So(err, ShouldBeNil)
				So(len(marks), ShouldEqual, 1)
				So(marks[0].Note, ShouldEqual, "the twist")
				So(marks[0].Time, ShouldEqual, 42.0)

				Convey("B lists it", func() {
					h.send(runes("B"))
					So(h.bubble.state, ShouldEqual, bookmarksState)
					So(len(h.bubble.marksC.Items()), ShouldEqual, 1)

					Convey("d deletes it and the list is re-read", func() {
						h.send(runes("d"))
						So(h.bubble.marksC.Items(), ShouldBeEmpty)
					})

					Convey("A list that went stale refuses the delete", func() {
						So(h.svc.Bookmarks.Delete("B1", 0, nil), ShouldBeNil)
						_, err := h.svc.Bookmarks.Add("B1", 7, "replacement", 0)
						So(err, ShouldBeNil)

						h.send(runes("d"))

						marks, err := h.svc.Bookmarks.List("B1")
						So(err, ShouldBeNil)
						So(len(marks), ShouldEqual, 1)
						So(marks[0].Note, ShouldEqual, "replacement")

						item := h.bubble.marksC.Items()[0].(*listItem)
						So(item.internal.(*bookmarkEntry).mark.Note, ShouldEqual, "replacement")
					})
				})
			})

			Convey("A blank note stores nothing", func() {
				h.send(runes("b"), enter)
				marks, err := h.svc.Bookmarks.List("B1")
				So(err, ShouldBeNil)
				So(marks, ShouldBeEmpty)
			})

			Convey("tab from the library shows history, which resumes the book", func() {
				h.send(esc)
				So(h.bubble.state, ShouldEqual, libraryState)

				h.send(tea.KeyMsg{Type: tea.KeyTab})
				So(h.bubble.state, ShouldEqual, historyState)

				h.send(enter)
				So(h.bubble.state, ShouldEqual, chaptersState)
			})
		})

		Convey("A load failure without analysis access parks the player", func() {
			h.send(enter)
			h.current().Fail(errors.New("boom"))
			h.settle()

			So(engine.State(), ShouldEqual, playback.Paused)
			So(len(h.built), ShouldEqual, 1)
		})
	})
}

func TestContinue(t *testing.T) {
	Convey("Given a stored resume pointer", t, func() {
		h := newHarness(true)

		book, _ := h.library.Find("B1")
		So(h.svc.Checkpoint(book, 1, 30), ShouldBeNil)

		Convey("The library load reopens that chapter", func() {
			h.send(libraryMsg{library: h.library})
			So(h.bubble.state, ShouldEqual, chaptersState)
			So(h.bubble.options.Engine.ChapterIndex(), ShouldEqual, 1)
			So(h.current().Loads()[0].URL, ShouldEqual, "https://cdn.example.com/b1/c1.mp3")
		})
	})
}
