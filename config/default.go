package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/vibe-audio/vibe/color"
	"github.com/vibe-audio/vibe/constant"
	"github.com/vibe-audio/vibe/key"
	"github.com/vibe-audio/vibe/style"
	"github.com/spf13/viper"
)

// Field is one registered setting and its default.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Env is the environment variable that overrides the field, e.g. VIBE_PLAYER_BACKEND.
func (f *Field) Env() string {
	return strings.ToUpper(constant.Vibe + "_" + EnvKeyReplacer.Replace(f.Key))
}

func (f *Field) typeName() string {
	return reflect.TypeOf(f.Value).String()
}

// Pretty renders the description followed by the key, env, current value, default and type.
func (f *Field) Pretty() string {
	label := style.Fg(color.Blue)

	lines := []string{
		style.Faint(f.Description),
		label("Key:     ") + style.Fg(color.Purple)(f.Key),
		label("Env:     ") + f.Env(),
		label("Value:   ") + highlight(viper.Get(f.Key)),
		label("Default: ") + highlight(f.Value),
		label("Type:    ") + f.typeName(),
	}
	return strings.Join(lines, "\n")
}

func highlight(v any) string {
	switch value := v.(type) {
	case bool:
		if value {
			return style.Fg(color.Green)(strconv.FormatBool(value))
		}
		return style.Fg(color.Red)(strconv.FormatBool(value))
	case string:
		return style.Fg(color.Yellow)(value)
	default:
		return fmt.Sprint(value)
	}
}

// MarshalJSON includes the current value next to the default.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"key":         f.Key,
		"value":       viper.Get(f.Key),
		"default":     f.Value,
		"description": f.Description,
		"type":        f.typeName(),
	})
}

// Default maps every key to its field.
var Default = make(map[string]Field)

// EnvExposed lists keys in registration order. All of them are bound to the environment.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("config key registered twice: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.CatalogURL, "https://vibe-audio.github.io/library/books.json", "Where the book catalog is fetched from.\nAccepts an http(s) URL or a local file path")
	register(key.PlayerBackend, "native", "Media backend used for playback.\nAvailable options are: native, mpv")
	register(key.PlayerVisualize, true, "Request analysis access to the media so the spectrum can be drawn.\nHosts that refuse it are retried without visualization")
	register(key.PlayerRates, []string{"1", "1.25", "1.5", "2", "0.75"}, "Playback rates cycled through by the rate key")
	register(key.PlayerSkipSeconds, 15, "Seconds skipped by the left and right keys")
	register(key.PlayerOrigin, constant.Origin, "Origin presented to media hosts when analysis access is requested")
	register(key.PlayerAutoplayOnResume, false, "Start playing immediately when resuming the last played chapter on startup")
	register(key.PlayerSleepMins, 30, "Default sleep timer length in minutes")
	register(key.PersistCheckpointSeconds, 2, "Position checkpoint granularity in seconds.\nThe position is saved whenever the whole second is a multiple of it")
	register(key.HistoryLimit, 10, "Maximum number of books kept in history")
	register(key.StorageBackend, "file", "Where playback state is kept.\nAvailable options are: file, badger")
	register(key.VisualizerFFTSize, 128, "Analysis window size. Must be a power of two.\nHalf of it is the number of bars drawn")
	register(key.VisualizerSmoothing, 0.8, "Time smoothing of the spectrum, from 0 to 1")
	register(key.VisualizerFPS, 30, "Frames per second of the spectrum view")
	register(key.NetworkFingerprint, false, "Use a browser TLS fingerprint for catalog and media requests")
	register(key.CacheMediaEntries, 8, "How many downloaded chapters are kept in the temp directory")
	register(key.MetricsAddress, "", "Serve prometheus metrics on this address (e.g. 127.0.0.1:9464).\nEmpty disables the endpoint")
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.TUIItemSpacing, 1, "Spacing between items in the TUI")
	register(key.TUISearchPromptString, "> ", "Search prompt string to use")
	register(key.TUIShowURLs, false, "Show chapter URLs under list items")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}
