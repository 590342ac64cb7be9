// Package mediatest provides a scriptable media.Element for tests.
package mediatest

import (
	"sync"

	"github.com/vibe-audio/vibe/media"
)

// Element is an in-memory media.Element. Tests drive its lifecycle with
// Ready, Fail, Advance and Finish; nothing happens on its own.
type Element struct {
	mu sync.Mutex

	events *media.Emitter

	src      media.Source
	loads    []media.Source
	loaded   bool
	paused   bool
	time     float64
	duration float64
	rate     float64
	closed   bool
	tapped   bool

	// Seeks records every Seek along with whether metadata was available.
	Seeks []Seek

	// BlockAutoplay makes Play fail with media.ErrAutoplayBlocked.
	BlockAutoplay bool
	// FailLoad makes Load return this error synchronously.
	FailLoad error
	// FailPlay makes Play return this error.
	FailPlay error
}

// Seek is one recorded Seek call.
type Seek struct {
	To     float64
	Loaded bool
}

// New returns an element delivering events through loop.
func New(loop media.Poster) *Element {
	return &Element{
		events: media.NewEmitter(loop),
		paused: true,
		rate:   1,
	}
}

// Factory returns a media.Factory that records every element it builds.
func Factory(loop media.Poster, built *[]*Element) media.Factory {
	return func() media.Element {
		e := New(loop)
		*built = append(*built, e)
		return e
	}
}

func (e *Element) Load(src media.Source) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return media.ErrClosed
	}
	if e.FailLoad != nil {
		return e.FailLoad
	}

	e.src = src
	e.loads = append(e.loads, src)
	e.loaded = false
	e.paused = true
	e.time = 0
	e.duration = 0
	return nil
}

func (e *Element) Source() media.Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

// Loads returns every source passed to Load.
func (e *Element) Loads() []media.Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]media.Source(nil), e.loads...)
}

func (e *Element) Play() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return media.ErrClosed
	}
	if e.BlockAutoplay {
		e.mu.Unlock()
		return media.ErrAutoplayBlocked
	}
	if e.FailPlay != nil {
		e.mu.Unlock()
		return e.FailPlay
	}
	e.paused = false
	t := e.time
	e.mu.Unlock()

	e.events.Emit(media.Event{Kind: media.Play, Time: t})
	return nil
}

func (e *Element) Pause() error {
	e.mu.Lock()
	if e.paused {
		e.mu.Unlock()
		return nil
	}
	e.paused = true
	t := e.time
	e.mu.Unlock()

	e.events.Emit(media.Event{Kind: media.Pause, Time: t})
	return nil
}

func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.time
}

func (e *Element) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *Element) Seek(seconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Seeks = append(e.Seeks, Seek{To: seconds, Loaded: e.loaded})
	e.time = seconds
	return nil
}

func (e *Element) SetRate(rate float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rate = rate
	return nil
}

// Rate returns the last rate set.
func (e *Element) Rate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate
}

func (e *Element) Events() *media.Emitter {
	return e.events
}

func (e *Element) Tap() (media.Tap, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.src.Analysable {
		return nil, media.ErrNotAnalysable
	}
	if e.tapped {
		return nil, media.ErrTapBound
	}
	e.tapped = true

	ring := media.NewRing(256, func() {
		e.mu.Lock()
		e.tapped = false
		e.mu.Unlock()
	})
	return ring, nil
}

// Tapped reports whether a tap is currently bound.
func (e *Element) Tapped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tapped
}

func (e *Element) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.paused = true
	return nil
}

// Closed reports whether Close was called.
func (e *Element) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Ready marks metadata as available and emits LoadedMetadata.
func (e *Element) Ready(duration float64) {
	e.mu.Lock()
	e.loaded = true
	e.duration = duration
	e.mu.Unlock()

	e.events.Emit(media.Event{Kind: media.LoadedMetadata})
}

// Fail emits an Error event carrying err.
func (e *Element) Fail(err error) {
	e.mu.Lock()
	e.paused = true
	t := e.time
	e.mu.Unlock()

	e.events.Emit(media.Event{Kind: media.Error, Time: t, Err: err})
}

// Advance moves the position to t and emits TimeUpdate.
func (e *Element) Advance(t float64) {
	e.mu.Lock()
	e.time = t
	e.mu.Unlock()

	e.events.Emit(media.Event{Kind: media.TimeUpdate, Time: t})
}

// Finish moves to the end and emits Ended.
func (e *Element) Finish() {
	e.mu.Lock()
	e.time = e.duration
	e.paused = true
	t := e.time
	e.mu.Unlock()

	e.events.Emit(media.Event{Kind: media.Ended, Time: t})
}
