package player

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/media"
)

const timeUpdateInterval = 250 * time.Millisecond

var errNotLoaded = errors.New("nothing loaded")

// track bundles the decoding chain of one loaded source.
type track struct {
	streamer  beep.StreamSeekCloser
	format    beep.Format
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	queued    bool
}

func (t *track) close() {
	speaker.Lock()
	t.ctrl.Streamer = nil
	speaker.Unlock()

	if err := t.streamer.Close(); err != nil {
		log.Debugf("media: close streamer: %s", err)
	}
}

// Native is the in-process beep backend.
type Native struct {
	opts   Options
	events *media.Emitter

	mu     sync.Mutex
	gen    uint64
	src    media.Source
	track  *track
	cancel context.CancelFunc
	rate   float64
	ended  bool
	closed bool
	ticker chan struct{}

	ring atomic.Pointer[media.Ring]
}

// NewNative returns an unloaded beep element.
func NewNative(loop media.Poster, opts Options) *Native {
	return &Native{
		opts:   opts,
		events: media.NewEmitter(loop),
		rate:   1,
	}
}

func (e *Native) Events() *media.Emitter {
	return e.events
}

func (e *Native) Source() media.Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

// Load drops the current track and starts fetching src in the background.
func (e *Native) Load(src media.Source) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return media.ErrClosed
	}

	e.unloadLocked()
	e.gen++
	e.src = src
	e.ended = false

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.opts.Metrics.IncLoad(BackendNative, src.Analysable)
	go e.load(ctx, e.gen, src)
	return nil
}

func (e *Native) load(ctx context.Context, gen uint64, src media.Source) {
	t, err := e.open(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		e.emitIfCurrent(gen, media.Event{Kind: media.Error, Err: media.LoadError{URL: src.URL, Err: err}})
		return
	}

	e.mu.Lock()
	if e.gen != gen || e.closed {
		e.mu.Unlock()
		_ = t.streamer.Close()
		return
	}
	e.track = t
	e.mu.Unlock()

	e.events.Emit(media.Event{Kind: media.LoadedMetadata})
}

func (e *Native) open(ctx context.Context, src media.Source) (*track, error) {
	path, err := fetch(ctx, e.opts, src)
	if err != nil {
		return nil, err
	}

	file, err := filesystem.API().Open(path)
	if err != nil {
		return nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	head, _ := bufio.NewReader(file).Peek(4)
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, err
	}

	if bytes.Equal(head, []byte("RIFF")) {
		streamer, format, err = wav.Decode(file)
	} else {
		streamer, format, err = mp3.Decode(file)
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("decode: %w", err)
	}

	ctrl := &beep.Ctrl{Streamer: &tapStreamer{Streamer: streamer, ring: &e.ring}, Paused: true}
	return &track{
		streamer: streamer,
		format:   format,
		ctrl:     ctrl,
	}, nil
}

// unloadLocked stops whatever is playing. e.mu must be held.
func (e *Native) unloadLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.stopTickerLocked()
	if e.track != nil {
		e.track.close()
		e.track = nil
	}
}

// Play starts or resumes output. A failure to open the output device is reported as media.ErrAutoplayBlocked.
func (e *Native) Play() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return media.ErrClosed
	}
	t := e.track
	if t == nil {
		e.mu.Unlock()
		return errNotLoaded
	}

	deviceRate, err := initSpeaker(t.format.SampleRate)
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", media.ErrAutoplayBlocked, err)
	}

	if !t.queued {
		base := float64(t.format.SampleRate) / float64(deviceRate)
		t.resampler = beep.ResampleRatio(4, base*e.rate, t.ctrl)
		gen := e.gen
		speaker.Play(beep.Seq(t.resampler, beep.Callback(func() {
			// runs on the speaker goroutine with the speaker locked
			go e.finish(gen)
		})))
		t.queued = true
	}

	speaker.Lock()
	t.ctrl.Paused = false
	speaker.Unlock()

	e.ended = false
	e.startTickerLocked(e.gen)
	e.mu.Unlock()

	e.events.Emit(media.Event{Kind: media.Play, Time: e.CurrentTime()})
	return nil
}

func (e *Native) Pause() error {
	e.mu.Lock()
	t := e.track
	if t == nil || e.closed {
		e.mu.Unlock()
		return nil
	}

	speaker.Lock()
	wasPaused := t.ctrl.Paused
	t.ctrl.Paused = true
	speaker.Unlock()

	e.stopTickerLocked()
	e.mu.Unlock()

	if !wasPaused {
		e.events.Emit(media.Event{Kind: media.Pause, Time: e.CurrentTime()})
	}
	return nil
}

func (e *Native) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.track == nil {
		return true
	}

	speaker.Lock()
	defer speaker.Unlock()
	return e.track.ctrl.Paused
}

func (e *Native) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.track == nil {
		return 0
	}

	speaker.Lock()
	pos := e.track.streamer.Position()
	speaker.Unlock()
	return e.track.format.SampleRate.D(pos).Seconds()
}

func (e *Native) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.track == nil {
		return 0
	}
	return e.track.format.SampleRate.D(e.track.streamer.Len()).Seconds()
}

// Seek is a no-op until metadata is available.
func (e *Native) Seek(seconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.track
	if t == nil {
		return nil
	}

	pos, ok := frameAt(t.format.SampleRate, seconds, t.streamer.Len())
	if !ok {
		return nil
	}

	speaker.Lock()
	defer speaker.Unlock()
	return t.streamer.Seek(pos)
}

func (e *Native) SetRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("invalid rate %v", rate)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rate = rate
	if e.track == nil || e.track.resampler == nil {
		return nil
	}

	base := float64(e.track.format.SampleRate) / float64(outputRate())
	speaker.Lock()
	e.track.resampler.SetRatio(base * rate)
	speaker.Unlock()
	return nil
}

// Tap binds a ring buffer to the decoded output. Only analysable sources can be tapped.
func (e *Native) Tap() (media.Tap, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, media.ErrClosed
	}
	if !e.src.Analysable {
		return nil, media.ErrNotAnalysable
	}

	var ring *media.Ring
	ring = media.NewRing(e.opts.TapSize, func() {
		e.ring.CompareAndSwap(ring, nil)
	})
	if !e.ring.CompareAndSwap(nil, ring) {
		return nil, media.ErrTapBound
	}
	return ring, nil
}

func (e *Native) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.gen++
	e.unloadLocked()
	e.ring.Store(nil)
	return nil
}

// finish runs when the decoder drains.
func (e *Native) finish(gen uint64) {
	e.mu.Lock()
	if e.gen != gen || e.closed || e.ended {
		e.mu.Unlock()
		return
	}
	e.ended = true
	e.stopTickerLocked()
	if e.track != nil {
		// a drained Seq cannot be resumed; Play queues the chain again
		e.track.queued = false
		speaker.Lock()
		e.track.ctrl.Paused = true
		speaker.Unlock()
	}
	e.mu.Unlock()

	e.events.Emit(media.Event{Kind: media.Ended, Time: e.Duration()})
}

func (e *Native) emitIfCurrent(gen uint64, ev media.Event) {
	e.mu.Lock()
	current := e.gen == gen && !e.closed
	e.mu.Unlock()

	if current {
		e.events.Emit(ev)
	}
}

func (e *Native) startTickerLocked(gen uint64) {
	if e.ticker != nil {
		return
	}

	stop := make(chan struct{})
	e.ticker = stop

	go func() {
		ticker := time.NewTicker(timeUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.emitIfCurrent(gen, media.Event{Kind: media.TimeUpdate, Time: e.CurrentTime()})
			}
		}
	}()
}

func (e *Native) stopTickerLocked() {
	if e.ticker != nil {
		close(e.ticker)
		e.ticker = nil
	}
}

// tapStreamer copies the mono mix of everything it streams into the bound ring, if any.
type tapStreamer struct {
	beep.Streamer
	ring *atomic.Pointer[media.Ring]
	mono []float64
}

func (t *tapStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Streamer.Stream(samples)

	ring := t.ring.Load()
	if ring == nil || n == 0 {
		return n, ok
	}

	if cap(t.mono) < n {
		t.mono = make([]float64, n)
	}
	mono := t.mono[:n]
	for i := 0; i < n; i++ {
		mono[i] = (samples[i][0] + samples[i][1]) / 2
	}
	ring.Write(mono...)

	return n, ok
}

// frameAt is the frame of a stream n frames long that seconds falls on,
// clamped into the stream. An empty stream has no such frame.
func frameAt(sr beep.SampleRate, seconds float64, n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}

	pos := sr.N(time.Duration(seconds * float64(time.Second)))
	if pos < 0 {
		return 0, true
	}
	if pos > n-1 {
		return n - 1, true
	}
	return pos, true
}
