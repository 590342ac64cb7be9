package playback

import (
	"time"

	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/util"
)

// PlayChapter starts chapter index from the beginning and records the book in history.
func (e *Engine) PlayChapter(index int) {
	book := e.session.Book
	if book == nil || index < 0 || index >= len(book.Chapters) {
		return
	}

	e.session.ChapterIndex = index
	e.observer.Changed(ChangedChapter)

	e.loadSource(index, true, 0)

	if err := e.opts.Persist.AddToHistory(book, index, 0); err != nil {
		log.Warnf("history: %s", err)
		return
	}
	e.observer.Changed(ChangedHistory)
}

// TogglePlay pauses a playing element and resumes a paused one.
// After the last chapter ended, it starts that chapter over.
func (e *Engine) TogglePlay() {
	el := e.session.Resource
	if el == nil || e.session.Book == nil {
		return
	}

	switch e.state {
	case Loading, Recovering:
		e.pending.autoPlay = !e.pending.autoPlay
		return
	case Ended:
		if err := el.Seek(0); err != nil {
			log.Warnf("seek: %s", err)
		}
	}

	if el.Paused() {
		e.activateVisualizer()
		e.play()
		return
	}

	e.pause()
}

// Pause pauses playback, if any.
func (e *Engine) Pause() {
	if e.state == Playing {
		e.pause()
	}
}

func (e *Engine) pause() {
	el := e.session.Resource
	if el == nil {
		return
	}

	if err := el.Pause(); err != nil {
		log.Warnf("pause: %s", err)
	}
	e.setState(Paused)
}

// Next plays the following chapter. It does nothing on the last one.
func (e *Engine) Next() {
	book := e.session.Book
	if book == nil || e.session.ChapterIndex >= len(book.Chapters)-1 {
		return
	}
	e.PlayChapter(e.session.ChapterIndex + 1)
}

// Previous plays the preceding chapter. It does nothing on the first one.
func (e *Engine) Previous() {
	if e.session.Book == nil || e.session.ChapterIndex <= 0 {
		return
	}
	e.PlayChapter(e.session.ChapterIndex - 1)
}

// advanceOnEnd follows natural completion: the next chapter plays, or the book ends.
func (e *Engine) advanceOnEnd() {
	book := e.session.Book
	if book == nil {
		return
	}

	if e.session.ChapterIndex < len(book.Chapters)-1 {
		e.PlayChapter(e.session.ChapterIndex + 1)
		return
	}

	e.setState(Ended)
	e.observer.Changed(ChangedMini)
}

// SeekToPercent moves to p percent of the chapter. It needs a known duration.
func (e *Engine) SeekToPercent(p float64) {
	if e.duration <= 0 {
		return
	}
	e.seek(util.Clamp(p, 0, 100) / 100 * e.duration)
}

// SkipBy moves the position by seconds, clamped to the chapter.
func (e *Engine) SkipBy(seconds float64) {
	if e.duration <= 0 {
		return
	}
	e.seek(util.Clamp(e.Position()+seconds, 0, e.duration))
}

func (e *Engine) seek(t float64) {
	el := e.session.Resource
	if el == nil || !e.pending.loaded {
		return
	}

	if err := el.Seek(t); err != nil {
		log.Warnf("seek to %.1f: %s", t, err)
		return
	}
	e.observer.Changed(ChangedPosition)
}

// CycleRate moves to the next configured playback rate.
func (e *Engine) CycleRate() float64 {
	rates := e.opts.Rates

	next := rates[0]
	for i, r := range rates {
		if r == e.rate {
			next = rates[(i+1)%len(rates)]
			break
		}
	}

	e.rate = next
	if el := e.session.Resource; el != nil {
		if err := el.SetRate(next); err != nil {
			log.Warnf("set rate %v: %s", next, err)
		}
	}

	e.observer.Changed(ChangedRate)
	return next
}

type timer interface {
	Stop() bool
}

var afterFunc = func(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// Sleep pauses playback after d. Only one sleep timer exists; starting one cancels the previous.
func (e *Engine) Sleep(d time.Duration) {
	e.CancelSleep()

	e.sleepGen++
	gen := e.sleepGen
	e.sleepAt = now().Add(d)

	e.sleep = afterFunc(d, func() {
		e.opts.Loop.Post(func() {
			if gen != e.sleepGen {
				return
			}
			e.sleep = nil
			e.sleepAt = time.Time{}
			e.observer.Changed(ChangedSleep)

			if e.state == Playing {
				e.pause()
				e.notice(NoticeSleep, false)
			}
		})
	})
	e.observer.Changed(ChangedSleep)
}

// CancelSleep stops the pending sleep timer, if any.
func (e *Engine) CancelSleep() {
	if e.sleep == nil {
		return
	}

	e.sleep.Stop()
	e.sleep = nil
	e.sleepGen++
	e.sleepAt = time.Time{}
	e.observer.Changed(ChangedSleep)
}

// SleepRemaining returns how long until the sleep timer fires.
func (e *Engine) SleepRemaining() (time.Duration, bool) {
	if e.sleep == nil {
		return 0, false
	}
	return util.Max(e.sleepAt.Sub(now()), 0), true
}
