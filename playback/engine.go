// Package playback owns the active media element and drives chapter loading,
// autoplay, resume, position checkpoints and source recovery.
//
// Every Engine method, and every handler it registers, runs on one event loop
// goroutine. Timers and media backends reach the engine only by posting to it.
package playback

import (
	"fmt"
	"time"

	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/media"
	"github.com/vibe-audio/vibe/metrics"
	"github.com/vibe-audio/vibe/persist"
	"github.com/vibe-audio/vibe/resolver"
)

// State of the engine.
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
	Recovering
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Recovering:
		return "recovering"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Change tells observers what to redraw.
type Change uint

const (
	ChangedState Change = 1 << iota
	ChangedBook
	ChangedChapter
	ChangedPosition
	ChangedDuration
	ChangedRate
	ChangedBookmarks
	ChangedHistory
	ChangedSleep
	// ChangedMini asks for the now-playing summary to be refreshed.
	ChangedMini
)

// Has reports whether c includes all of other.
func (c Change) Has(other Change) bool {
	return c&other == other
}

// Notice is a message meant for the user.
type Notice struct {
	Text    string
	Warning bool
}

// Notices raised by the engine.
const (
	NoticeVisualizationDisabled = "Visualization disabled for this chapter"
	NoticeLinkUnavailable       = "Link unavailable"
	NoticeSleep                 = "Sleep timer: paused"
)

// Observer is told about changes after they happen.
type Observer interface {
	Changed(Change)
	Notice(Notice)
}

type nopObserver struct{}

func (nopObserver) Changed(Change) {}
func (nopObserver) Notice(Notice)  {}

// Visualizer is bound to the element that is playing when analysis is allowed.
type Visualizer interface {
	// Activate binds the visualizer to el, releasing any earlier binding.
	Activate(el media.Element) error
	// Release drops the current binding, if any.
	Release()
}

// Resolver maps a chapter link to a playable URL.
type Resolver interface {
	Resolve(raw string) string
}

type resolverFunc func(string) string

func (f resolverFunc) Resolve(raw string) string { return f(raw) }

// Session is the one playback session. The engine is its only writer.
type Session struct {
	Book         *catalog.Book
	ChapterIndex int
	Playing      bool
	Resource     media.Element
}

// Resume is where Open should start.
type Resume struct {
	Chapter  int
	Time     float64
	AutoPlay bool
}

// CacheBustParam is the query parameter appended to a URL retried without analysis.
const CacheBustParam = "vibe_cb"

// Options configure an Engine.
type Options struct {
	Loop     media.Poster
	Factory  media.Factory
	Persist  *persist.Service
	Resolver Resolver

	Observer   Observer
	Visualizer Visualizer

	// Visualize requests analysable loads.
	Visualize bool
	// Rates is the cycle used by CycleRate. The first entry is the initial rate.
	Rates []float64
	// AutoplayOnResume starts playback when resuming the last played chapter.
	AutoplayOnResume bool

	Metrics *metrics.Metrics
}

// pendingLoad describes what the outstanding load should do once metadata arrives.
type pendingLoad struct {
	autoPlay   bool
	resumeTime float64
	loaded     bool
}

// Engine is the playback state machine.
type Engine struct {
	opts     Options
	observer Observer
	resolver Resolver

	session  Session
	state    State
	duration float64
	rate     float64

	boundURL   string
	pending    pendingLoad
	recovering bool
	notified   map[string]bool

	sleep    timer
	sleepGen uint64
	sleepAt  time.Time
}

// New returns an idle engine.
func New(opts Options) *Engine {
	if len(opts.Rates) == 0 {
		opts.Rates = []float64{1}
	}

	e := &Engine{
		opts:     opts,
		observer: opts.Observer,
		resolver: opts.Resolver,
		rate:     opts.Rates[0],
		notified: make(map[string]bool),
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	if e.resolver == nil {
		e.resolver = resolverFunc(resolver.Resolve)
	}
	return e
}

// SetObserver replaces the observer. It is meant to be called once the UI exists.
func (e *Engine) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	e.observer = o
}

// Session returns a copy of the session.
func (e *Engine) Session() Session {
	return e.session
}

func (e *Engine) Book() *catalog.Book {
	return e.session.Book
}

func (e *Engine) ChapterIndex() int {
	return e.session.ChapterIndex
}

// Chapter returns the current chapter, if a book is open.
func (e *Engine) Chapter() (catalog.Chapter, bool) {
	book := e.session.Book
	if book == nil || e.session.ChapterIndex >= len(book.Chapters) {
		return catalog.Chapter{}, false
	}
	return book.Chapters[e.session.ChapterIndex], true
}

func (e *Engine) Playing() bool {
	return e.session.Playing
}

func (e *Engine) State() State {
	return e.state
}

// Position is the playback position of the bound element in seconds.
func (e *Engine) Position() float64 {
	if e.session.Resource == nil {
		return 0
	}
	return e.session.Resource.CurrentTime()
}

// Duration is the length of the current chapter, known once metadata arrived.
func (e *Engine) Duration() float64 {
	return e.duration
}

func (e *Engine) Rate() float64 {
	return e.rate
}

// Analysable reports whether the bound element may feed the visualizer.
func (e *Engine) Analysable() bool {
	return e.session.Resource != nil && e.session.Resource.Source().Analysable
}

// Close cancels the sleep timer and releases the bound element.
func (e *Engine) Close() error {
	e.CancelSleep()
	if e.opts.Visualizer != nil {
		e.opts.Visualizer.Release()
	}

	el := e.session.Resource
	if el == nil {
		return nil
	}
	el.Events().OffAll()
	e.session.Resource = nil
	return el.Close()
}

func (e *Engine) setState(s State) {
	e.state = s
	e.session.Playing = s == Playing
	e.observer.Changed(ChangedState)
}

func (e *Engine) notice(text string, warning bool) {
	if warning {
		log.Warn(text)
	}
	e.observer.Notice(Notice{Text: text, Warning: warning})
}
