package config

import (
	"fmt"
	"math/bits"
	"strconv"

	"github.com/vibe-audio/vibe/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Backends understood by player.backend and storage.backend.
var (
	PlayerBackends  = []string{"native", "mpv"}
	StorageBackends = []string{"file", "badger"}
)

// Validate checks that the loaded values are usable before anything is built from them.
func Validate() error {
	if b := viper.GetString(key.PlayerBackend); !lo.Contains(PlayerBackends, b) {
		return fmt.Errorf("unknown player backend %q, expected one of %v", b, PlayerBackends)
	}

	if b := viper.GetString(key.StorageBackend); !lo.Contains(StorageBackends, b) {
		return fmt.Errorf("unknown storage backend %q, expected one of %v", b, StorageBackends)
	}

	if n := viper.GetInt(key.VisualizerFFTSize); n < 32 || n > 32768 || bits.OnesCount(uint(n)) != 1 {
		return fmt.Errorf("visualizer fft size must be a power of two between 32 and 32768, got %d", n)
	}

	if s := viper.GetFloat64(key.VisualizerSmoothing); s < 0 || s >= 1 {
		return fmt.Errorf("visualizer smoothing must be in [0, 1), got %v", s)
	}

	if viper.GetInt(key.HistoryLimit) <= 0 {
		return fmt.Errorf("history limit must be positive")
	}

	if viper.GetInt(key.PersistCheckpointSeconds) <= 0 {
		return fmt.Errorf("checkpoint interval must be positive")
	}

	if _, err := Rates(); err != nil {
		return err
	}

	return nil
}

// Rates parses the configured playback rate cycle.
func Rates() ([]float64, error) {
	raw := viper.GetStringSlice(key.PlayerRates)
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one playback rate is required")
	}

	rates := make([]float64, 0, len(raw))
	for _, r := range raw {
		f, err := strconv.ParseFloat(r, 64)
		if err != nil || f <= 0 || f > 4 {
			return nil, fmt.Errorf("invalid playback rate %q", r)
		}
		rates = append(rates, f)
	}

	return rates, nil
}
