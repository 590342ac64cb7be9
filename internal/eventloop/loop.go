// Package eventloop runs callbacks one at a time on a single owner goroutine.
//
// Backends and timers post work from their own goroutines; the owner (the TUI
// update function or the headless play command) drains the queue, so playback
// state is only ever touched from one goroutine.
package eventloop

import (
	"context"
	"sync"
)

// Loop is an unbounded FIFO of callbacks.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// New returns an empty loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn. It never blocks and is safe from any goroutine.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}

	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Wake is signalled at least once after every Post.
func (l *Loop) Wake() <-chan struct{} {
	return l.wake
}

// Pending reports the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) pop() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, false
	}

	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// Drain runs queued callbacks until the queue is empty, including callbacks
// posted by the ones it runs. It returns how many ran.
// Drain must only be called from the owner goroutine.
func (l *Loop) Drain() int {
	var n int
	for {
		fn, ok := l.pop()
		if !ok {
			return n
		}
		fn()
		n++
	}
}

// Run drains the loop every time it is woken until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
