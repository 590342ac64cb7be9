// Package media defines the audio element abstraction the playback engine drives.
package media

import (
	"net/url"
	"strconv"
)

// Source is what an element loads.
// Analysable requests analysis access to the decoded audio; hosts must grant it for the load to succeed.
type Source struct {
	URL        string
	Analysable bool
}

// CacheBusted returns a copy of s with a query parameter forcing a fresh fetch.
// A URL that cannot be parsed is returned unchanged.
func (s Source) CacheBusted(param string, stamp int64) Source {
	u, err := url.Parse(s.URL)
	if err != nil {
		return s
	}

	q := u.Query()
	q.Set(param, strconv.FormatInt(stamp, 10))
	u.RawQuery = q.Encode()

	s.URL = u.String()
	return s
}

// Element is a single playable audio resource.
//
// Load is asynchronous: it returns once the fetch has started and reports the
// outcome through LoadedMetadata or Error events. Seeking before
// LoadedMetadata has no defined effect.
type Element interface {
	Load(src Source) error
	Source() Source

	Play() error
	Pause() error
	Paused() bool

	CurrentTime() float64
	Duration() float64
	Seek(seconds float64) error
	SetRate(rate float64) error

	Events() *Emitter

	// Tap binds the decoded output to an analysis consumer. It fails with
	// ErrNotAnalysable or ErrTapBound.
	Tap() (Tap, error)

	Close() error
}

// Factory builds a fresh, unloaded element. The engine uses it to replace a failed element.
type Factory func() Element

// Tap exposes the most recent decoded samples of an element.
type Tap interface {
	// Read fills dst with the latest mono samples in [-1, 1], oldest first,
	// and returns how many were available.
	Read(dst []float64) int
	// Release detaches the tap from its element.
	Release()
}
