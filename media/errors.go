package media

import (
	"errors"
	"fmt"
)

var (
	// ErrAutoplayBlocked is returned by Play when the platform refuses to start
	// audio without user action, e.g. no output device could be opened.
	ErrAutoplayBlocked = errors.New("autoplay blocked")

	// ErrNotAnalysable is returned by Tap when the source was loaded without analysis access.
	ErrNotAnalysable = errors.New("media is not analysable")

	// ErrTapBound is returned by Tap when the element already feeds an analysis graph.
	ErrTapBound = errors.New("media is already bound to an analysis graph")

	// ErrCrossOrigin reports that the host did not grant analysis access to our origin.
	ErrCrossOrigin = errors.New("cross-origin access denied")

	// ErrClosed is returned by operations on a closed element.
	ErrClosed = errors.New("media element closed")
)

// LoadError describes a failed load of URL.
type LoadError struct {
	URL string
	Err error
}

func (e LoadError) Error() string {
	return fmt.Errorf("load %s: %w", e.URL, e.Err).Error()
}

func (e LoadError) Unwrap() error {
	return e.Err
}
