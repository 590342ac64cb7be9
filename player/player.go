// Package player implements the media backends the playback engine drives.
// The native backend decodes audio in-process with beep; the mpv backend delegates to an mpv process over JSON-IPC.
package player

import (
	"fmt"
	"net/http"

	"github.com/vibe-audio/vibe/internal/cache"
	"github.com/vibe-audio/vibe/media"
	"github.com/vibe-audio/vibe/metrics"
)

// Backend names accepted by New.
const (
	BackendNative = "native"
	BackendMPV    = "mpv"
)

// Options carries what every element built by a factory shares.
type Options struct {
	// Origin is sent with analysable loads and must be echoed back by the host.
	Origin string
	// Client performs media downloads.
	Client *http.Client
	// Cache indexes downloaded files. Nil disables reuse.
	Cache *cache.Media
	// TapSize is the number of samples a tap retains.
	TapSize int
	Metrics *metrics.Metrics
}

// New returns a factory for the named backend.
func New(backend string, loop media.Poster, opts Options) (media.Factory, error) {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.TapSize <= 0 {
		opts.TapSize = 4096
	}

	switch backend {
	case BackendNative:
		return func() media.Element { return NewNative(loop, opts) }, nil
	case BackendMPV:
		return func() media.Element { return NewMPV(loop, opts) }, nil
	default:
		return nil, fmt.Errorf("unknown player backend %q", backend)
	}
}
