// Package metrics exposes prometheus counters for playback and persistence.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vibe-audio/vibe/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry         *prometheus.Registry
	LoadsTotal       *prometheus.CounterVec
	RecoveriesTotal  *prometheus.CounterVec
	CheckpointsTotal prometheus.Counter
	BookmarksTotal   *prometheus.CounterVec
	FramesTotal      prometheus.Counter
	DownloadSeconds  prometheus.Histogram
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	loads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_loads_total",
			Help: "Chapter loads by backend and whether analysis access was requested.",
		},
		[]string{"backend", "analysable"},
	)
	recoveries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_recoveries_total",
			Help: "Media failures handled by the recovery protocol, by outcome.",
		},
		[]string{"outcome"},
	)
	checkpoints := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vibe_checkpoints_total",
			Help: "Playback position checkpoints written.",
		},
	)
	bookmarks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_bookmark_writes_total",
			Help: "Bookmark mutations by operation.",
		},
		[]string{"op"},
	)
	frames := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vibe_visualizer_frames_total",
			Help: "Spectrum frames rendered while playing.",
		},
	)
	downloads := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vibe_download_duration_seconds",
			Help:    "Time to fetch a chapter into the media cache.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)

	registry.MustRegister(loads, recoveries, checkpoints, bookmarks, frames, downloads)

	return &Metrics{
		Registry:         registry,
		LoadsTotal:       loads,
		RecoveriesTotal:  recoveries,
		CheckpointsTotal: checkpoints,
		BookmarksTotal:   bookmarks,
		FramesTotal:      frames,
		DownloadSeconds:  downloads,
	}
}

// Default is the process-wide instance used by the application.
var Default = New()

// IncLoad counts a chapter load.
func (m *Metrics) IncLoad(backend string, analysable bool) {
	if m == nil {
		return
	}
	label := "false"
	if analysable {
		label = "true"
	}
	m.LoadsTotal.WithLabelValues(backend, label).Inc()
}

// IncRecovery counts a recovery attempt outcome: "recovered", "failed" or "terminal".
func (m *Metrics) IncRecovery(outcome string) {
	if m == nil {
		return
	}
	m.RecoveriesTotal.WithLabelValues(outcome).Inc()
}

// IncCheckpoint counts a position checkpoint.
func (m *Metrics) IncCheckpoint() {
	if m == nil {
		return
	}
	m.CheckpointsTotal.Inc()
}

// IncBookmark counts a bookmark mutation.
func (m *Metrics) IncBookmark(op string) {
	if m == nil {
		return
	}
	m.BookmarksTotal.WithLabelValues(op).Inc()
}

// IncFrame counts a rendered spectrum frame.
func (m *Metrics) IncFrame() {
	if m == nil {
		return
	}
	m.FramesTotal.Inc()
}

// ObserveDownload records how long a chapter download took.
func (m *Metrics) ObserveDownload(d time.Duration) {
	if m == nil {
		return
	}
	m.DownloadSeconds.Observe(d.Seconds())
}

// Serve exposes the registry on addr until ctx is done. An empty addr does nothing.
func (m *Metrics) Serve(ctx context.Context, addr string) {
	if m == nil || addr == "" {
		return
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server failed: %s", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdown)
	}()

	log.Infof("metrics server enabled on %s", addr)
}
