package cmd

import (
	"context"
	"fmt"

	"github.com/vibe-audio/vibe/auth"
	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/config"
	"github.com/vibe-audio/vibe/internal/cache"
	"github.com/vibe-audio/vibe/internal/eventloop"
	"github.com/vibe-audio/vibe/key"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/metrics"
	"github.com/vibe-audio/vibe/network"
	"github.com/vibe-audio/vibe/persist"
	"github.com/vibe-audio/vibe/playback"
	"github.com/vibe-audio/vibe/player"
	"github.com/vibe-audio/vibe/resolver"
	"github.com/vibe-audio/vibe/storage"
	"github.com/vibe-audio/vibe/visualizer"
	"github.com/vibe-audio/vibe/where"
	"github.com/spf13/viper"
)

// session is everything one playback run needs, wired from the config.
type session struct {
	loop       *eventloop.Loop
	persist    *persist.Service
	resolvers  *resolver.Chain
	engine     *playback.Engine
	visualizer *visualizer.Visualizer
}

func openPersist() (*persist.Service, error) {
	store, err := storage.Open(viper.GetString(key.StorageBackend), where.State())
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}

	return persist.New(store, persist.Options{
		Granularity:  viper.GetInt(key.PersistCheckpointSeconds),
		HistoryLimit: viper.GetInt(key.HistoryLimit),
		Metrics:      metrics.Default,
	}), nil
}

// newSession builds the engine. withVisualizer is false for headless runs.
func newSession(withVisualizer bool) (*session, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rates, err := config.Rates()
	if err != nil {
		return nil, err
	}

	svc, err := openPersist()
	if err != nil {
		return nil, err
	}

	media, err := cache.NewMedia(where.Media(), viper.GetInt(key.CacheMediaEntries))
	if err != nil {
		log.Warnf("media cache disabled: %s", err)
		media = nil
	}

	s := &session{loop: eventloop.New(), persist: svc}

	backend := viper.GetString(key.PlayerBackend)
	factory, err := player.New(backend, s.loop, player.Options{
		Origin:  viper.GetString(key.PlayerOrigin),
		Client:  network.Media,
		Cache:   media,
		Metrics: metrics.Default,
	})
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	s.resolvers, err = resolver.LoadDir(where.Resolvers())
	if err != nil {
		log.Warnf("user resolvers: %s", err)
	}

	opts := playback.Options{
		Loop:             s.loop,
		Factory:          factory,
		Persist:          svc,
		Rates:            rates,
		AutoplayOnResume: viper.GetBool(key.PlayerAutoplayOnResume),
		Metrics:          metrics.Default,
	}
	if s.resolvers != nil {
		opts.Resolver = s.resolvers
	}

	if withVisualizer && viper.GetBool(key.PlayerVisualize) {
		s.visualizer = visualizer.New(visualizer.Options{
			FFTSize:   viper.GetInt(key.VisualizerFFTSize),
			Smoothing: viper.GetFloat64(key.VisualizerSmoothing),
			FPS:       viper.GetInt(key.VisualizerFPS),
			Playing: func() bool {
				return s.engine != nil && s.engine.Playing()
			},
			Metrics: metrics.Default,
		})
		opts.Visualizer = s.visualizer
		opts.Visualize = true
	}

	s.engine = playback.New(opts)
	return s, nil
}

// close releases the engine, the resolver states and the store.
func (s *session) close() {
	if err := s.engine.Close(); err != nil {
		log.Warnf("close engine: %s", err)
	}
	if s.resolvers != nil {
		s.resolvers.Close()
	}
	if err := s.persist.Close(); err != nil {
		log.Warnf("close state: %s", err)
	}
}

func fetchLibrary(ctx context.Context) (*catalog.Library, error) {
	return catalog.Fetch(ctx, network.Client, viper.GetString(key.CatalogURL), auth.Token())
}
