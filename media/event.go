package media

import (
	"fmt"
	"sync"
)

// Kind enumerates the events an Element emits.
type Kind int

const (
	LoadedMetadata Kind = iota + 1
	TimeUpdate
	Play
	Pause
	Ended
	Error
)

func (k Kind) String() string {
	switch k {
	case LoadedMetadata:
		return "loadedmetadata"
	case TimeUpdate:
		return "timeupdate"
	case Play:
		return "play"
	case Pause:
		return "pause"
	case Ended:
		return "ended"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is delivered to handlers. Time is the playback position when the event was raised.
type Event struct {
	Kind Kind
	Time float64
	Err  error
}

// Handler receives events on the event loop goroutine.
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription uint64

// Poster schedules a callback on the single event loop.
type Poster interface {
	Post(fn func())
}

type registration struct {
	id   Subscription
	kind Kind
	fn   Handler
	once bool
	live bool
}

// Emitter fans events out to handlers.
//
// Emit may be called from any goroutine; delivery always happens through the
// Poster. Whether a handler is still registered is checked again at delivery,
// so a handler detached between Emit and delivery is never invoked and a
// one-shot handler runs at most once.
type Emitter struct {
	loop Poster

	mu   sync.Mutex
	next Subscription
	regs []*registration
}

// NewEmitter returns an emitter delivering through loop.
func NewEmitter(loop Poster) *Emitter {
	return &Emitter{loop: loop}
}

func (e *Emitter) add(kind Kind, fn Handler, once bool) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.next++
	e.regs = append(e.regs, &registration{
		id:   e.next,
		kind: kind,
		fn:   fn,
		once: once,
		live: true,
	})
	return e.next
}

// On registers fn for every event of kind.
func (e *Emitter) On(kind Kind, fn Handler) Subscription {
	return e.add(kind, fn, false)
}

// Once registers fn for the next event of kind only.
func (e *Emitter) Once(kind Kind, fn Handler) Subscription {
	return e.add(kind, fn, true)
}

// Off removes a single registration. Unknown ids are ignored.
func (e *Emitter) Off(id Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, r := range e.regs {
		if r.id == id {
			r.live = false
			e.regs = append(e.regs[:i], e.regs[i+1:]...)
			return
		}
	}
}

// OffAll removes every registration, including ones with pending deliveries.
func (e *Emitter) OffAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range e.regs {
		r.live = false
	}
	e.regs = nil
}

// Len returns the number of live registrations.
func (e *Emitter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.regs)
}

// Emit schedules delivery of ev to the handlers registered for its kind right now.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	var targets []*registration
	for _, r := range e.regs {
		if r.kind == ev.Kind {
			targets = append(targets, r)
		}
	}
	e.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	e.loop.Post(func() {
		for _, r := range targets {
			if !e.claim(r) {
				continue
			}
			r.fn(ev)
		}
	})
}

// claim reports whether r may run, retiring it when it is one-shot.
func (e *Emitter) claim(r *registration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !r.live {
		return false
	}

	if r.once {
		r.live = false
		for i, other := range e.regs {
			if other == r {
				e.regs = append(e.regs[:i], e.regs[i+1:]...)
				break
			}
		}
	}

	return true
}
