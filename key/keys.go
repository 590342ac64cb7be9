// Package key names every configuration key.
package key

const (
	CatalogURL = "catalog.url"
)

// Playback.
const (
	PlayerBackend     = "player.backend"
	PlayerVisualize   = "player.visualize"
	PlayerRates       = "player.rates"
	PlayerSkipSeconds = "player.skip_seconds"
	PlayerOrigin      = "player.origin"
	PlayerSleepMins   = "player.sleep_minutes"

	PlayerAutoplayOnResume = "player.autoplay_on_resume"
)

// Saved state.
const (
	PersistCheckpointSeconds = "persist.checkpoint_seconds"
	HistoryLimit             = "history.limit"
	StorageBackend           = "storage.backend"
)

// Spectrum analysis and frame pacing.
const (
	VisualizerFFTSize   = "visualizer.fft_size"
	VisualizerSmoothing = "visualizer.smoothing"
	VisualizerFPS       = "visualizer.fps"
)

// Networking and caching.
const (
	NetworkFingerprint = "network.fingerprint"
	CacheMediaEntries  = "cache.media_entries"
	MetricsAddress     = "metrics.address"
)

const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

const (
	IconsVariant = "icons.variant"
)

// TUI.
const (
	TUIItemSpacing        = "tui.item_spacing"
	TUISearchPromptString = "tui.search_prompt"
	TUIShowURLs           = "tui.show_urls"
)

const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
