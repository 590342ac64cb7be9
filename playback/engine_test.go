package playback

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/vibe-audio/vibe/bookmark"
	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/internal/eventloop"
	"github.com/vibe-audio/vibe/media"
	"github.com/vibe-audio/vibe/media/mediatest"
	"github.com/vibe-audio/vibe/persist"
	"github.com/vibe-audio/vibe/storage"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type recorder struct {
	notices []Notice
	changes Change
}

func (r *recorder) Changed(c Change) { r.changes |= c }
func (r *recorder) Notice(n Notice)  { r.notices = append(r.notices, n) }

func (r *recorder) count(text string) int {
	n := 0
	for _, notice := range r.notices {
		if notice.Text == text {
			n++
		}
	}
	return n
}

type fakeVisualizer struct {
	activated []media.Element
	released  int
}

func (v *fakeVisualizer) Activate(el media.Element) error {
	v.activated = append(v.activated, el)
	return nil
}

func (v *fakeVisualizer) Release() { v.released++ }

type fakeTimer struct {
	fire    func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

func sampleBook() *catalog.Book {
	return &catalog.Book{
		ID:     "B1",
		Title:  "The Book",
		Author: "Someone",
		Chapters: []catalog.Chapter{
			{Name: "C0", URL: "https://cdn.example.com/c0.mp3"},
			{Name: "C1", URL: "https://cdn.example.com/c1.mp3"},
		},
	}
}

type fixture struct {
	loop     *eventloop.Loop
	built    []*mediatest.Element
	svc      *persist.Service
	observer *recorder
	vis      *fakeVisualizer
	engine   *Engine
	book     *catalog.Book
}

func newFixture(visualize bool) *fixture {
	store, err := storage.OpenBadgerInMemory()
	So(err, ShouldBeNil)

	f := &fixture{
		loop:     eventloop.New(),
		svc:      persist.New(store, persist.Options{Granularity: 2, HistoryLimit: 10}),
		observer: &recorder{},
		vis:      &fakeVisualizer{},
		book:     sampleBook(),
	}
	f.engine = New(Options{
		Loop:       f.loop,
		Factory:    mediatest.Factory(f.loop, &f.built),
		Persist:    f.svc,
		Observer:   f.observer,
		Visualizer: f.vis,
		Visualize:  visualize,
		Rates:      []float64{1, 1.25, 1.5, 2, 0.75},
	})

	Reset(func() {
		_ = f.engine.Close()
		_ = f.svc.Close()
	})
	return f
}

// current is the element the engine owns right now.
func (f *fixture) current() *mediatest.Element {
	return f.built[len(f.built)-1]
}

func (f *fixture) playing(chapter int) {
	f.engine.Open(f.book, mo.None[Resume]())
	f.engine.PlayChapter(chapter)
	f.loop.Drain()
	f.current().Ready(300)
	f.loop.Drain()
}

func TestCheckpoints(t *testing.T) {
	Convey("Given B1 playing chapter C0", t, func() {
		f := newFixture(true)
		f.playing(0)
		So(f.engine.State(), ShouldEqual, Playing)

		Convey("A time update on an even second writes the pointer and history", func() {
			f.current().Advance(126.0)
			f.loop.Drain()

			p, found, err := f.svc.Pointer()
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)
			So(p, ShouldResemble, persist.Pointer{BookID: "B1", ChapterIndex: 0, Time: 126.0})

			entry, found, _ := f.svc.History.Find("B1")
			So(found, ShouldBeTrue)
			So(entry.LastChapter, ShouldEqual, 0)
			So(entry.LastTime, ShouldEqual, 126.0)

			Convey("An odd second writes nothing", func() {
				f.current().Advance(127.5)
				f.loop.Drain()

				p, _, _ := f.svc.Pointer()
				So(p.Time, ShouldEqual, 126.0)
			})
		})

		Convey("Nothing is written while paused", func() {
			f.engine.TogglePlay()
			So(f.engine.State(), ShouldEqual, Paused)

			f.current().Advance(130.0)
			f.loop.Drain()

			_, found, _ := f.svc.Pointer()
			So(found, ShouldBeFalse)
		})
	})
}

func TestAdvance(t *testing.T) {
	Convey("Given B1 playing chapter C0", t, func() {
		f := newFixture(true)
		f.playing(0)

		Convey("When C0 ends, C1 plays from the start and history moves to it", func() {
			f.current().Finish()
			f.loop.Drain()

			So(f.engine.ChapterIndex(), ShouldEqual, 1)
			So(f.engine.State(), ShouldEqual, Loading)

			loads := f.current().Loads()
			So(loads[len(loads)-1].URL, ShouldEqual, "https://cdn.example.com/c1.mp3")

			entry, found, _ := f.svc.History.Find("B1")
			So(found, ShouldBeTrue)
			So(entry.LastChapter, ShouldEqual, 1)
			So(entry.LastTime, ShouldEqual, 0.0)

			f.current().Ready(200)
			f.loop.Drain()
			So(f.engine.State(), ShouldEqual, Playing)
			So(f.current().Seeks, ShouldBeEmpty)

			Convey("And when the last chapter ends the book is over", func() {
				f.current().Finish()
				f.loop.Drain()

				So(f.engine.ChapterIndex(), ShouldEqual, 1)
				So(f.engine.State(), ShouldEqual, Ended)
				So(f.engine.Playing(), ShouldBeFalse)
			})
		})

		Convey("Next and Previous stop at the ends", func() {
			f.engine.Previous()
			So(f.engine.ChapterIndex(), ShouldEqual, 0)

			f.engine.Next()
			So(f.engine.ChapterIndex(), ShouldEqual, 1)

			f.engine.Next()
			So(f.engine.ChapterIndex(), ShouldEqual, 1)
		})

		Convey("Re-selecting the bound chapter resumes in place", func() {
			f.engine.TogglePlay()
			So(f.engine.State(), ShouldEqual, Paused)

			f.engine.PlayChapter(0)
			So(f.current().Loads(), ShouldHaveLength, 1)
			So(f.engine.State(), ShouldEqual, Playing)
		})
	})
}

func TestRecovery(t *testing.T) {
	Convey("Given an analysable chapter that fails to load", t, func() {
		now = func() time.Time { return time.Unix(0, 42) }
		Reset(func() { now = time.Now })

		f := newFixture(true)
		f.engine.Open(f.book, mo.None[Resume]())
		f.engine.PlayChapter(0)
		f.loop.Drain()

		first := f.current()
		So(first.Source().Analysable, ShouldBeTrue)

		first.Fail(media.LoadError{URL: first.Source().URL, Err: media.ErrCrossOrigin})
		f.loop.Drain()

		Convey("The element is replaced by a cache-busted one without analysis", func() {
			So(f.built, ShouldHaveLength, 2)
			So(first.Closed(), ShouldBeTrue)
			So(first.Events().Len(), ShouldEqual, 0)
			So(f.engine.State(), ShouldEqual, Recovering)
			So(f.engine.Session().Resource, ShouldEqual, f.current())

			src := f.current().Source()
			So(src.Analysable, ShouldBeFalse)
			So(src.URL, ShouldEqual, "https://cdn.example.com/c0.mp3?vibe_cb=42")
		})

		Convey("When the replacement loads, playback starts with a single notice", func() {
			f.current().Ready(300)
			f.loop.Drain()

			So(f.engine.State(), ShouldEqual, Playing)
			So(f.observer.count(NoticeVisualizationDisabled), ShouldEqual, 1)
			So(f.vis.activated, ShouldBeEmpty)

			Convey("The old element can no longer drive the engine", func() {
				first.Finish()
				first.Fail(errors.New("late"))
				f.loop.Drain()

				So(f.engine.ChapterIndex(), ShouldEqual, 0)
				So(f.engine.State(), ShouldEqual, Playing)
				So(f.built, ShouldHaveLength, 2)
			})

			Convey("Ended fires once and advances exactly one chapter", func() {
				f.current().Finish()
				f.loop.Drain()

				So(f.engine.ChapterIndex(), ShouldEqual, 1)
			})

			Convey("Another chapter that needs recovery gets its own notice", func() {
				f.engine.PlayChapter(1)
				f.loop.Drain()
				f.current().Fail(errors.New("denied"))
				f.loop.Drain()
				f.current().Ready(100)
				f.loop.Drain()

				So(f.observer.count(NoticeVisualizationDisabled), ShouldEqual, 2)
				So(f.built, ShouldHaveLength, 3)
			})
		})

		Convey("When the replacement fails too, the link is reported unavailable", func() {
			f.current().Fail(errors.New("gone"))
			f.loop.Drain()

			So(f.built, ShouldHaveLength, 2)
			So(f.engine.State(), ShouldEqual, Paused)
			So(f.observer.count(NoticeLinkUnavailable), ShouldEqual, 1)
			So(f.observer.notices[len(f.observer.notices)-1].Warning, ShouldBeTrue)
		})
	})

	Convey("Given a chapter loaded without analysis", t, func() {
		f := newFixture(false)
		f.engine.Open(f.book, mo.None[Resume]())
		f.engine.PlayChapter(0)
		f.loop.Drain()

		Convey("An error is terminal at once", func() {
			f.current().Fail(errors.New("404"))
			f.loop.Drain()

			So(f.built, ShouldHaveLength, 1)
			So(f.engine.State(), ShouldEqual, Paused)
			So(f.observer.count(NoticeLinkUnavailable), ShouldEqual, 1)
			So(f.observer.count(NoticeVisualizationDisabled), ShouldEqual, 0)
		})
	})
}

func TestResume(t *testing.T) {
	Convey("Given B1 in history at C1, 50s", t, func() {
		f := newFixture(true)
		So(f.svc.AddToHistory(f.book, 1, 50), ShouldBeNil)

		Convey("Opening it seeks only once metadata is available, then plays", func() {
			f.engine.OpenBook(f.book)
			So(f.engine.ChapterIndex(), ShouldEqual, 1)
			So(f.engine.State(), ShouldEqual, Loading)

			el := f.current()
			So(el.Seeks, ShouldBeEmpty)

			el.Ready(300)
			f.loop.Drain()

			So(el.Seeks, ShouldResemble, []mediatest.Seek{{To: 50, Loaded: true}})
			So(f.engine.State(), ShouldEqual, Playing)
			So(f.vis.activated, ShouldHaveLength, 1)
		})
	})

	Convey("Given a saved resume pointer", t, func() {
		f := newFixture(true)
		So(f.svc.Checkpoint(f.book, 1, 30), ShouldBeNil)
		library := catalog.NewLibrary([]*catalog.Book{f.book})

		Convey("Resuming loads the chapter paused at the saved time", func() {
			So(f.engine.ResumeLast(library), ShouldBeTrue)
			f.current().Ready(300)
			f.loop.Drain()

			So(f.engine.ChapterIndex(), ShouldEqual, 1)
			So(f.engine.State(), ShouldEqual, Paused)
			So(f.current().Seeks, ShouldResemble, []mediatest.Seek{{To: 30, Loaded: true}})
		})

		Convey("A pointer to a book no longer in the catalog is ignored", func() {
			So(f.engine.ResumeLast(catalog.NewLibrary(nil)), ShouldBeFalse)
			So(f.built, ShouldBeEmpty)
		})
	})

	Convey("Opening a book without history loads its first chapter paused", t, func() {
		f := newFixture(true)
		f.engine.OpenBook(f.book)
		f.current().Ready(300)
		f.loop.Drain()

		So(f.engine.ChapterIndex(), ShouldEqual, 0)
		So(f.engine.State(), ShouldEqual, Paused)
		So(f.current().Seeks, ShouldBeEmpty)
	})

	Convey("Blocked autoplay leaves the engine paused without a notice", t, func() {
		f := newFixture(true)
		f.engine.Open(f.book, mo.None[Resume]())
		f.engine.PlayChapter(0)
		f.current().BlockAutoplay = true
		f.current().Ready(300)
		f.loop.Drain()

		So(f.engine.State(), ShouldEqual, Paused)
		So(f.observer.notices, ShouldBeEmpty)
	})
}

func TestControls(t *testing.T) {
	Convey("Given B1 playing", t, func() {
		f := newFixture(true)
		f.playing(0)

		Convey("Seeking by percent uses the duration", func() {
			f.engine.SeekToPercent(50)
			So(f.engine.Position(), ShouldEqual, 150.0)

			f.engine.SeekToPercent(150)
			So(f.engine.Position(), ShouldEqual, 300.0)
		})

		Convey("Skipping is clamped to the chapter", func() {
			f.engine.SkipBy(-15)
			So(f.engine.Position(), ShouldEqual, 0.0)

			f.engine.SkipBy(15)
			So(f.engine.Position(), ShouldEqual, 15.0)
		})

		Convey("Rates cycle and wrap", func() {
			So(f.engine.CycleRate(), ShouldEqual, 1.25)
			So(f.current().Rate(), ShouldEqual, 1.25)

			f.engine.CycleRate()
			f.engine.CycleRate()
			So(f.engine.CycleRate(), ShouldEqual, 0.75)
			So(f.engine.CycleRate(), ShouldEqual, 1.0)
		})
	})
}

func TestSleep(t *testing.T) {
	Convey("Given a stubbed clock for sleep timers", t, func() {
		var timers []*fakeTimer
		afterFunc = func(d time.Duration, fn func()) timer {
			t := &fakeTimer{fire: fn}
			timers = append(timers, t)
			return t
		}
		Reset(func() {
			afterFunc = func(d time.Duration, f func()) timer { return time.AfterFunc(d, f) }
		})

		f := newFixture(true)
		f.playing(0)

		Convey("Starting a second timer cancels the first", func() {
			f.engine.Sleep(time.Minute)
			f.engine.Sleep(2 * time.Minute)

			So(timers, ShouldHaveLength, 2)
			So(timers[0].stopped, ShouldBeTrue)

			// the first timer may already have been running when it was stopped
			timers[0].fire()
			timers[1].fire()
			f.loop.Drain()

			So(f.engine.State(), ShouldEqual, Paused)
			So(f.observer.count(NoticeSleep), ShouldEqual, 1)

			_, active := f.engine.SleepRemaining()
			So(active, ShouldBeFalse)
		})

		Convey("A cancelled timer never pauses", func() {
			f.engine.Sleep(time.Minute)
			f.engine.CancelSleep()
			timers[0].fire()
			f.loop.Drain()

			So(f.engine.State(), ShouldEqual, Playing)
		})
	})
}

func TestBookmarks(t *testing.T) {
	Convey("Given B1 playing C0 at 40s", t, func() {
		f := newFixture(true)
		f.playing(0)
		f.current().Advance(40)
		f.loop.Drain()

		Convey("A blank note adds nothing", func() {
			added, err := f.engine.AddBookmark("   ")
			So(err, ShouldBeNil)
			So(added, ShouldBeFalse)
		})

		Convey("A bookmark records time and chapter", func() {
			added, err := f.engine.AddBookmark("great scene")
			So(err, ShouldBeNil)
			So(added, ShouldBeTrue)

			list, _ := f.engine.Bookmarks()
			So(list, ShouldResemble, []bookmark.Bookmark{{Time: 40, Note: "great scene", Chapter: 0}})

			Convey("Jumping to it within the chapter seeks", func() {
				f.current().Advance(100)
				So(f.engine.JumpToBookmark(0, &list[0]), ShouldBeNil)
				So(f.engine.Position(), ShouldEqual, 40.0)
			})

			Convey("A stale entry is refused", func() {
				stale := bookmark.Bookmark{Time: 1, Note: "old", Chapter: 0}
				err := f.engine.DeleteBookmark(0, &stale)
				So(errors.Is(err, bookmark.ErrStaleIndex), ShouldBeTrue)

				err = f.engine.JumpToBookmark(3, nil)
				So(errors.Is(err, bookmark.ErrStaleIndex), ShouldBeTrue)
			})

			Convey("It can be deleted", func() {
				So(f.engine.DeleteBookmark(0, &list[0]), ShouldBeNil)
				list, _ := f.engine.Bookmarks()
				So(list, ShouldBeEmpty)
			})
		})

		Convey("Jumping to a bookmark in another chapter loads it at the mark", func() {
			_, err := f.svc.Bookmarks.Add("B1", 12, "next chapter", 1)
			So(err, ShouldBeNil)

			So(f.engine.JumpToBookmark(0, nil), ShouldBeNil)
			So(f.engine.ChapterIndex(), ShouldEqual, 1)

			f.current().Ready(200)
			f.loop.Drain()
			So(f.current().Seeks[len(f.current().Seeks)-1], ShouldResemble, mediatest.Seek{To: 12, Loaded: true})
		})
	})
}

func TestStateNames(t *testing.T) {
	Convey("States have readable names", t, func() {
		So(Recovering.String(), ShouldEqual, "recovering")
		So(strings.HasPrefix(State(42).String(), "state("), ShouldBeTrue)
	})
}

func TestChapterSwitchDropsQueuedEvents(t *testing.T) {
	Convey("Given a three chapter book playing C0", t, func() {
		f := newFixture(true)
		f.book.Chapters = append(f.book.Chapters, catalog.Chapter{Name: "C2", URL: "https://cdn.example.com/c2.mp3"})
		f.playing(0)
		el := f.current()

		Convey("An end of C0 still queued when C1 is chosen does not advance past C1", func() {
			el.Finish()
			f.engine.PlayChapter(1)
			f.loop.Drain()

			So(f.engine.ChapterIndex(), ShouldEqual, 1)
			So(f.engine.State(), ShouldEqual, Loading)
			So(f.built, ShouldHaveLength, 1)

			loads := el.Loads()
			So(loads, ShouldHaveLength, 2)
			So(loads[1].URL, ShouldEqual, "https://cdn.example.com/c1.mp3")

			el.Ready(200)
			f.loop.Drain()
			So(f.engine.ChapterIndex(), ShouldEqual, 1)
			So(f.engine.State(), ShouldEqual, Playing)
		})

		Convey("An error of C0 still queued when C1 is chosen does not recover C1", func() {
			el.Fail(errors.New("c0 dropped"))
			f.engine.PlayChapter(1)
			f.loop.Drain()

			So(f.built, ShouldHaveLength, 1)
			So(f.engine.State(), ShouldEqual, Loading)
			So(el.Source(), ShouldResemble, media.Source{URL: "https://cdn.example.com/c1.mp3", Analysable: true})
			So(f.observer.count(NoticeLinkUnavailable), ShouldEqual, 0)
		})

		Convey("Events of the new load still reach the engine", func() {
			f.engine.PlayChapter(1)
			f.loop.Drain()

			el.Fail(errors.New("c1 denied"))
			f.loop.Drain()

			So(f.built, ShouldHaveLength, 2)
			So(f.engine.State(), ShouldEqual, Recovering)
		})
	})
}

func TestRecoveryIntent(t *testing.T) {
	Convey("Given an analysable chapter", t, func() {
		f := newFixture(true)

		Convey("Loaded paused, a recovered load stays paused", func() {
			f.engine.Open(f.book, mo.None[Resume]())
			f.loop.Drain()

			f.current().Fail(errors.New("denied"))
			f.loop.Drain()
			So(f.built, ShouldHaveLength, 2)

			f.current().Ready(300)
			f.loop.Drain()

			So(f.engine.State(), ShouldEqual, Paused)
			So(f.current().Paused(), ShouldBeTrue)
			So(f.observer.count(NoticeVisualizationDisabled), ShouldEqual, 1)
		})

		Convey("Failing mid-playback, the replacement continues from the same position", func() {
			f.playing(0)
			f.current().Advance(40)
			f.loop.Drain()

			f.current().Fail(errors.New("stream reset"))
			f.loop.Drain()
			f.current().Ready(300)
			f.loop.Drain()

			So(f.engine.State(), ShouldEqual, Playing)
			So(f.current().Seeks, ShouldResemble, []mediatest.Seek{{To: 40, Loaded: true}})
		})

		Convey("When the replacement loads but cannot play, the link is unavailable", func() {
			f.engine.Open(f.book, mo.None[Resume]())
			f.engine.PlayChapter(0)
			f.loop.Drain()

			f.current().Fail(errors.New("denied"))
			f.loop.Drain()

			f.current().FailPlay = errors.New("decoder stalled")
			f.current().Ready(300)
			f.loop.Drain()

			So(f.engine.State(), ShouldEqual, Paused)
			So(f.observer.count(NoticeLinkUnavailable), ShouldEqual, 1)
			So(f.observer.count(NoticeVisualizationDisabled), ShouldEqual, 0)
		})
	})
}
