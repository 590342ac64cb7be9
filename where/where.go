// Package where resolves the directories vibe reads from and writes to.
package where

import (
	"os"
	"path/filepath"

	"github.com/vibe-audio/vibe/constant"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "VIBE_CONFIG_PATH"

// EnvStatePath overrides the directory holding playback state.
const EnvStatePath = "VIBE_STATE_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the configuration directory.
// XDG_CONFIG_HOME is honoured on Linux; Darwin and Windows use the profile equivalents.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Vibe))
}

// Cache resolves the persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Vibe))
}

// State resolves the directory where history, bookmarks and the resume pointer live.
func State() string {
	if custom, ok := os.LookupEnv(EnvStatePath); ok {
		return ensureDir(custom)
	}

	return ensureDir(filepath.Join(Config(), "state"))
}

// Logs resolves the directory for log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Resolvers resolves the directory containing user Lua URL resolvers.
func Resolvers() string {
	return ensureDir(filepath.Join(Config(), "resolvers"))
}

// Queries resolves the search suggestion registry.
func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}

// Media resolves the directory used for downloaded chapter audio.
func Media() string {
	return ensureDir(filepath.Join(Temp(), "media"))
}

// Temp resolves a volatile directory for transient artifacts.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Vibe))
}
