package media

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// queue is a minimal Poster that runs callbacks when flushed.
type queue struct {
	fns []func()
}

func (q *queue) Post(fn func()) { q.fns = append(q.fns, fn) }

func (q *queue) flush() {
	for len(q.fns) > 0 {
		fn := q.fns[0]
		q.fns = q.fns[1:]
		fn()
	}
}

func TestEmitter(t *testing.T) {
	Convey("Given an emitter", t, func() {
		q := &queue{}
		e := NewEmitter(q)

		Convey("Events are delivered through the loop, not synchronously", func() {
			var got []Kind
			e.On(Play, func(ev Event) { got = append(got, ev.Kind) })

			e.Emit(Event{Kind: Play})
			So(got, ShouldBeEmpty)

			q.flush()
			So(got, ShouldResemble, []Kind{Play})
		})

		Convey("Only handlers for the emitted kind run", func() {
			var plays, pauses int
			e.On(Play, func(Event) { plays++ })
			e.On(Pause, func(Event) { pauses++ })

			e.Emit(Event{Kind: Pause})
			q.flush()
			So(plays, ShouldEqual, 0)
			So(pauses, ShouldEqual, 1)
		})

		Convey("A one-shot handler runs once even if emitted twice before delivery", func() {
			var n int
			e.Once(LoadedMetadata, func(Event) { n++ })

			e.Emit(Event{Kind: LoadedMetadata})
			e.Emit(Event{Kind: LoadedMetadata})
			q.flush()

			So(n, ShouldEqual, 1)
			So(e.Len(), ShouldEqual, 0)
		})

		Convey("A handler detached before delivery never runs", func() {
			var n int
			id := e.On(Ended, func(Event) { n++ })

			e.Emit(Event{Kind: Ended})
			e.Off(id)
			q.flush()

			So(n, ShouldEqual, 0)
		})

		Convey("OffAll cancels pending deliveries", func() {
			var n int
			e.On(Ended, func(Event) { n++ })
			e.Once(LoadedMetadata, func(Event) { n++ })

			e.Emit(Event{Kind: Ended})
			e.Emit(Event{Kind: LoadedMetadata})
			e.OffAll()
			q.flush()

			So(n, ShouldEqual, 0)
			So(e.Len(), ShouldEqual, 0)
		})

		Convey("Handlers registered after Emit do not see that event", func() {
			var n int
			e.Emit(Event{Kind: Play})
			e.On(Play, func(Event) { n++ })
			q.flush()

			So(n, ShouldEqual, 0)
		})
	})
}

func TestRing(t *testing.T) {
	Convey("Given a ring of four samples", t, func() {
		released := 0
		r := NewRing(4, func() { released++ })

		Convey("Reading before it fills returns what is there", func() {
			r.Write(0.1, 0.2)
			dst := make([]float64, 4)
			So(r.Read(dst), ShouldEqual, 2)
			So(dst[:2], ShouldResemble, []float64{0.1, 0.2})
		})

		Convey("Old samples are overwritten, newest last", func() {
			r.Write(1, 2, 3, 4, 5, 6)
			dst := make([]float64, 3)
			So(r.Read(dst), ShouldEqual, 3)
			So(dst, ShouldResemble, []float64{4, 5, 6})
		})

		Convey("Release runs its callback once", func() {
			r.Release()
			r.Release()
			So(released, ShouldEqual, 1)
		})
	})
}

func TestSource(t *testing.T) {
	Convey("CacheBusted adds a stamp without touching the original", t, func() {
		src := Source{URL: "https://example.com/a.mp3?x=1", Analysable: true}
		busted := src.CacheBusted("vibe_cb", 42)

		So(busted.URL, ShouldEqual, "https://example.com/a.mp3?vibe_cb=42&x=1")
		So(src.URL, ShouldEqual, "https://example.com/a.mp3?x=1")
		So(busted.Analysable, ShouldBeTrue)
	})
}

func TestLoadError(t *testing.T) {
	Convey("LoadError unwraps to its cause", t, func() {
		err := error(LoadError{URL: "u", Err: ErrCrossOrigin})
		So(errors.Is(err, ErrCrossOrigin), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "load u: cross-origin access denied")
	})
}
