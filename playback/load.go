package playback

import (
	"errors"
	"time"

	"github.com/samber/mo"
	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/media"
)

var now = time.Now

// Open makes book current and loads the resume chapter, or the first chapter paused when resume is absent.
func (e *Engine) Open(book *catalog.Book, resume mo.Option[Resume]) {
	if book == nil || len(book.Chapters) == 0 {
		return
	}

	r := resume.OrElse(Resume{})
	if r.Chapter < 0 || r.Chapter >= len(book.Chapters) {
		r.Chapter = 0
	}

	if e.session.Book == nil || e.session.Book.ID != book.ID {
		e.duration = 0
	}
	e.session.Book = book
	e.session.ChapterIndex = r.Chapter
	e.observer.Changed(ChangedBook | ChangedChapter)

	e.loadSource(r.Chapter, r.AutoPlay, r.Time)
}

// OpenBook opens book where its history entry left off and starts playing.
// A book without history is loaded at its first chapter, paused.
func (e *Engine) OpenBook(book *catalog.Book) {
	if book == nil {
		return
	}

	entry, found, err := e.opts.Persist.History.Find(book.ID)
	if err != nil {
		log.Warnf("history lookup for %s: %s", book.ID, err)
	}
	if !found {
		e.Open(book, mo.None[Resume]())
		return
	}

	e.Open(book, mo.Some(Resume{
		Chapter:  entry.LastChapter,
		Time:     entry.LastTime,
		AutoPlay: true,
	}))
}

// ResumeLast reopens the book of the resume pointer, if it is still in library.
func (e *Engine) ResumeLast(library *catalog.Library) bool {
	pointer, found, err := e.opts.Persist.Pointer()
	if err != nil {
		log.Warnf("read resume pointer: %s", err)
		return false
	}
	if !found || library.Empty() {
		return false
	}

	book, ok := library.Find(pointer.BookID)
	if !ok {
		return false
	}

	e.Open(book, mo.Some(Resume{
		Chapter:  pointer.ChapterIndex,
		Time:     pointer.Time,
		AutoPlay: e.opts.AutoplayOnResume,
	}))
	log.Infof("resumed %s at %.0fs", book.ID, pointer.Time)
	return true
}

// loadSource binds chapter index of the current book. A chapter that resolves
// to the URL already bound is resumed in place instead of reloaded.
func (e *Engine) loadSource(index int, autoPlay bool, resumeTime float64) {
	book := e.session.Book
	if book == nil || index < 0 || index >= len(book.Chapters) {
		return
	}

	url := e.resolver.Resolve(book.Chapters[index].URL)

	if e.session.Resource != nil && url == e.boundURL {
		if e.state == Loading || e.state == Recovering {
			// metadata has not arrived yet, let its handler start playback
			e.pending.autoPlay = e.pending.autoPlay || autoPlay
		} else if autoPlay {
			e.play()
		}
	} else {
		e.bind(url, autoPlay, resumeTime)
	}

	e.observer.Changed(ChangedMini)
}

// bind loads url into the session's element, creating one when there is none.
// A reused element is rewired so that events the previous load already
// emitted are dropped on delivery.
func (e *Engine) bind(url string, autoPlay bool, resumeTime float64) {
	el := e.session.Resource
	if el == nil {
		el = e.opts.Factory()
		e.session.Resource = el
	} else {
		el.Events().OffAll()
	}
	e.attach(el)

	if e.opts.Visualizer != nil {
		e.opts.Visualizer.Release()
	}

	e.boundURL = url
	e.recovering = false
	e.duration = 0
	e.setState(Loading)

	e.start(el, media.Source{URL: url, Analysable: e.opts.Visualize}, autoPlay, resumeTime)
}

// start registers the one metadata handler of this load and loads src.
func (e *Engine) start(el media.Element, src media.Source, autoPlay bool, resumeTime float64) {
	e.pending = pendingLoad{autoPlay: autoPlay, resumeTime: resumeTime}
	el.Events().Once(media.LoadedMetadata, func(media.Event) {
		e.onMetadata(el)
	})

	if err := el.SetRate(e.rate); err != nil {
		log.Debugf("set rate: %s", err)
	}

	if err := el.Load(src); err != nil {
		e.onError(el, media.Event{Kind: media.Error, Err: err})
	}
}

func (e *Engine) onMetadata(el media.Element) {
	if el != e.session.Resource {
		return
	}

	e.pending.loaded = true
	e.duration = el.Duration()
	e.observer.Changed(ChangedDuration)

	if e.pending.resumeTime > 0 {
		if err := el.Seek(e.pending.resumeTime); err != nil {
			log.Warnf("seek to %.1f: %s", e.pending.resumeTime, err)
		}
	}

	recovered := e.recovering
	e.recovering = false

	if e.pending.autoPlay {
		e.activateVisualizer()
		if err := e.play(); err != nil && recovered {
			e.opts.Metrics.IncRecovery("failed")
			e.fail()
			return
		}
	} else {
		e.setState(Paused)
	}

	if recovered {
		e.opts.Metrics.IncRecovery("recovered")
		if !e.notified[e.boundURL] {
			e.notified[e.boundURL] = true
			e.notice(NoticeVisualizationDisabled, false)
		}
	}

	e.observer.Changed(ChangedPosition | ChangedMini)
}

// onError runs the recovery protocol: an analysable element that fails is
// replaced once by a non-analysable, cache-busted one. Anything else is terminal.
func (e *Engine) onError(el media.Element, ev media.Event) {
	if el != e.session.Resource {
		return
	}

	log.With(log.Fields{"url": el.Source().URL, "state": e.state.String()}, "media error: "+errString(ev.Err))

	src := el.Source()
	if !src.Analysable || e.recovering {
		if e.recovering {
			e.opts.Metrics.IncRecovery("failed")
		} else {
			e.opts.Metrics.IncRecovery("terminal")
		}
		e.fail()
		return
	}

	resumeTime := e.pending.resumeTime
	if e.pending.loaded {
		resumeTime = el.CurrentTime()
	}
	autoPlay := e.pending.autoPlay || e.state == Playing

	fresh := media.Source{URL: e.boundURL}.CacheBusted(CacheBustParam, now().UnixNano())

	next := e.opts.Factory()
	e.rebind(el, next)

	e.recovering = true
	e.setState(Recovering)
	e.start(next, fresh, autoPlay, resumeTime)
}

// rebind moves the engine's handlers from old to replacement and closes old.
// Handlers run on the loop, so no event of either element can interleave.
func (e *Engine) rebind(old, replacement media.Element) {
	if e.opts.Visualizer != nil {
		e.opts.Visualizer.Release()
	}

	old.Events().OffAll()
	if err := old.Close(); err != nil {
		log.Debugf("close media element: %s", err)
	}

	e.attach(replacement)
	e.session.Resource = replacement
}

// fail surfaces the terminal failure and parks the engine.
// The bound URL is forgotten so that choosing the chapter again reloads it.
func (e *Engine) fail() {
	e.recovering = false
	e.boundURL = ""
	e.notice(NoticeLinkUnavailable, true)

	if e.session.Book != nil {
		e.setState(Paused)
	} else {
		e.setState(Idle)
	}
	e.observer.Changed(ChangedMini)
}

// attach registers the engine's persistent handlers on el.
func (e *Engine) attach(el media.Element) {
	events := el.Events()

	events.On(media.TimeUpdate, func(ev media.Event) {
		e.onTimeUpdate(ev)
	})
	events.On(media.Ended, func(media.Event) {
		e.advanceOnEnd()
	})
	events.On(media.Error, func(ev media.Event) {
		e.onError(el, ev)
	})
	events.On(media.Play, func(media.Event) {
		if e.state == Paused {
			e.setState(Playing)
		}
	})
	events.On(media.Pause, func(media.Event) {
		if e.state == Playing {
			e.setState(Paused)
		}
	})
}

func (e *Engine) onTimeUpdate(ev media.Event) {
	e.observer.Changed(ChangedPosition)

	if e.state != Playing || e.session.Book == nil {
		return
	}

	p := e.opts.Persist
	if !p.Due(ev.Time) {
		return
	}

	if err := p.Checkpoint(e.session.Book, e.session.ChapterIndex, ev.Time); err != nil {
		log.Warnf("checkpoint: %s", err)
	}
}

// play starts the bound element. A platform refusal leaves the engine paused
// without telling the user; any other failure is also returned.
func (e *Engine) play() error {
	el := e.session.Resource
	if el == nil {
		return nil
	}

	err := el.Play()
	switch {
	case err == nil:
		e.setState(Playing)
		return nil
	case errors.Is(err, media.ErrAutoplayBlocked):
		log.Infof("autoplay blocked: %s", err)
		e.setState(Paused)
		return nil
	default:
		log.Warnf("play: %s", err)
		e.setState(Paused)
		return err
	}
}

func (e *Engine) activateVisualizer() {
	if e.opts.Visualizer == nil || !e.Analysable() {
		return
	}

	if err := e.opts.Visualizer.Activate(e.session.Resource); err != nil {
		log.Debugf("visualizer: %s", err)
	}
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
