package media

import "sync"

// Ring is a fixed-size sample buffer written by the audio goroutine and read by the visualizer.
type Ring struct {
	mu      sync.Mutex
	buf     []float64
	pos     int
	filled  bool
	release func()
}

// NewRing returns a ring holding size samples. release runs once when the tap is released.
func NewRing(size int, release func()) *Ring {
	if size <= 0 {
		size = 1
	}
	return &Ring{buf: make([]float64, size), release: release}
}

// Write appends samples, overwriting the oldest.
func (r *Ring) Write(samples ...float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range samples {
		r.buf[r.pos] = s
		r.pos++
		if r.pos == len(r.buf) {
			r.pos = 0
			r.filled = true
		}
	}
}

// Read implements Tap.
func (r *Ring) Read(dst []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	available := r.pos
	if r.filled {
		available = len(r.buf)
	}

	n := len(dst)
	if n > available {
		n = available
	}

	start := r.pos - n
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < n; i++ {
		dst[i] = r.buf[(start+i)%len(r.buf)]
	}
	return n
}

// Release implements Tap.
func (r *Ring) Release() {
	r.mu.Lock()
	release := r.release
	r.release = nil
	r.mu.Unlock()

	if release != nil {
		release()
	}
}
