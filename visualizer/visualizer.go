// Package visualizer draws the frequency spectrum of the playing chapter.
//
// The analysis graph is built at most once. Binding it to another element
// releases the previous tap first, since an element feeds at most one graph.
// The frame loop is a self-rescheduling tea command that checks a liveness
// flag and the engine's playing state on every tick.
package visualizer

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vibe-audio/vibe/media"
	"github.com/vibe-audio/vibe/metrics"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	minDecibels = -100.0
	maxDecibels = -30.0
)

// FrameMsg asks the model to advance the visualizer by one frame.
type FrameMsg struct{}

// Options configure a Visualizer.
type Options struct {
	// FFTSize is the analysis window, a power of two. FFTSize/2 bars are drawn.
	FFTSize int
	// Smoothing in [0, 1) blends each frame with the previous one.
	Smoothing float64
	FPS       int
	// Playing reports whether audio is currently advancing.
	Playing func() bool
	Metrics *metrics.Metrics
}

// graph is the analysis pipeline: window, transform and smoothed levels.
type graph struct {
	fft      *fourier.FFT
	window   []float64
	samples  []float64
	coeffs   []complex128
	smoothed []float64
	levels   []uint8
}

func newGraph(size int) *graph {
	window := make([]float64, size)
	for i := range window {
		// Blackman
		x := 2 * math.Pi * float64(i) / float64(size)
		window[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	}

	return &graph{
		fft:      fourier.NewFFT(size),
		window:   window,
		samples:  make([]float64, size),
		coeffs:   make([]complex128, size/2+1),
		smoothed: make([]float64, size/2),
		levels:   make([]uint8, size/2),
	}
}

// analyse turns the latest samples into byte levels, one per bin.
func (g *graph) analyse(tap media.Tap, smoothing float64) {
	n := tap.Read(g.samples)
	if n < len(g.samples) {
		// right-align what we got, silence before it
		copy(g.samples[len(g.samples)-n:], g.samples[:n])
		for i := 0; i < len(g.samples)-n; i++ {
			g.samples[i] = 0
		}
	}

	for i := range g.samples {
		g.samples[i] *= g.window[i]
	}

	g.coeffs = g.fft.Coefficients(g.coeffs, g.samples)

	size := float64(len(g.samples))
	for k := range g.smoothed {
		magnitude := cmplxAbs(g.coeffs[k]) / size
		g.smoothed[k] = smoothing*g.smoothed[k] + (1-smoothing)*magnitude
		g.levels[k] = toByte(g.smoothed[k])
	}
}

// clear blanks the canvas while nothing is playing.
func (g *graph) clear() {
	for k := range g.smoothed {
		g.smoothed[k] = 0
		g.levels[k] = 0
	}
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func toByte(magnitude float64) uint8 {
	if magnitude <= 0 {
		return 0
	}

	db := 20 * math.Log10(magnitude)
	scaled := 255 * (db - minDecibels) / (maxDecibels - minDecibels)
	switch {
	case scaled <= 0:
		return 0
	case scaled >= 255:
		return 255
	default:
		return uint8(scaled)
	}
}

// Visualizer owns the analysis graph and the bound tap.
type Visualizer struct {
	opts Options

	build sync.Once
	graph *graph

	mu            sync.Mutex
	el            media.Element
	tap           media.Tap
	suspended     bool
	width, height int

	alive atomic.Bool
}

// New returns a visualizer sized to the terminal. The analysis graph is not
// built until the first Activate.
func New(opts Options) *Visualizer {
	if opts.FFTSize < 32 {
		opts.FFTSize = 128
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Smoothing < 0 || opts.Smoothing >= 1 {
		opts.Smoothing = 0.8
	}
	if opts.Playing == nil {
		opts.Playing = func() bool { return false }
	}
	v := &Visualizer{opts: opts}
	v.canvas(0, 0)
	return v
}

func (v *Visualizer) ensureGraph() {
	v.build.Do(func() {
		v.graph = newGraph(v.opts.FFTSize)
	})
}

// Activate binds the graph to el and resumes it if it was suspended.
// An element that is already bound is only resumed. On failure the previous
// binding is still released.
func (v *Visualizer) Activate(el media.Element) error {
	v.ensureGraph()

	v.mu.Lock()
	defer v.mu.Unlock()

	v.suspended = false
	if v.tap != nil && v.el == el {
		return nil
	}
	v.release()

	tap, err := el.Tap()
	if err != nil {
		return err
	}
	v.el, v.tap = el, tap
	return nil
}

// Release drops the bound tap.
func (v *Visualizer) Release() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.release()
}

func (v *Visualizer) release() {
	if v.tap != nil {
		v.tap.Release()
	}
	v.el, v.tap = nil, nil
}

// Suspend stops analysis without releasing the tap.
func (v *Visualizer) Suspend() {
	v.mu.Lock()
	v.suspended = true
	v.mu.Unlock()
}

// Resume undoes Suspend.
func (v *Visualizer) Resume() {
	v.mu.Lock()
	v.suspended = false
	v.mu.Unlock()
}

// Bound reports whether a tap is attached.
func (v *Visualizer) Bound() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tap != nil
}

// Start begins the frame loop. Later calls do nothing and return nil.
func (v *Visualizer) Start() tea.Cmd {
	if !v.alive.CompareAndSwap(false, true) {
		return nil
	}
	return v.schedule()
}

// Stop ends the frame loop after the pending tick.
func (v *Visualizer) Stop() {
	v.alive.Store(false)
}

func (v *Visualizer) schedule() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(v.opts.FPS), func(time.Time) tea.Msg {
		return FrameMsg{}
	})
}

// Update advances one frame and schedules the next while the loop is alive.
func (v *Visualizer) Update(FrameMsg) tea.Cmd {
	if !v.alive.Load() {
		return nil
	}

	v.Frame()
	return v.schedule()
}

// Frame runs one analysis step, or clears the levels when nothing plays.
func (v *Visualizer) Frame() {
	if v.graph == nil {
		return
	}

	v.mu.Lock()
	tap, suspended := v.tap, v.suspended
	v.mu.Unlock()

	if tap == nil || suspended || !v.opts.Playing() {
		v.graph.clear()
		return
	}

	v.graph.analyse(tap, v.opts.Smoothing)
	v.opts.Metrics.IncFrame()
}

// Levels returns the current byte level of every bin, low frequencies first.
func (v *Visualizer) Levels() []uint8 {
	if v.graph == nil {
		return nil
	}
	return v.graph.levels
}
