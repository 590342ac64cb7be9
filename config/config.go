// Package config registers every setting with viper and loads vibe.toml.
package config

import (
	"errors"
	"strings"

	"github.com/vibe-audio/vibe/constant"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps a key such as player.backend to its environment suffix PLAYER_BACKEND.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup applies defaults and environment bindings, then reads vibe.toml from
// the config directory. A missing file leaves the defaults in place.
func Setup() error {
	viper.SetFs(filesystem.API())
	viper.SetConfigName(constant.Vibe)
	viper.SetConfigType("toml")
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Vibe)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	viper.SetTypeByDefaultValue(true)

	for _, name := range EnvExposed {
		viper.SetDefault(name, Default[name].Value)
		viper.MustBindEnv(name)
	}

	err := viper.ReadInConfig()

	var missing viper.ConfigFileNotFoundError
	if errors.As(err, &missing) {
		return nil
	}
	return err
}
