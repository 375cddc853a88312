// Package config registers every setting with viper and loads tilawah.toml.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/constant"
	"github.com/tilawah-cli/tilawah/filesystem"
	"github.com/tilawah-cli/tilawah/where"
)

// EnvKeyReplacer maps "player.backend" to "PLAYER_BACKEND".
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup applies defaults, binds TILAWAH_* environment variables and reads the config file if present.
func Setup() error {
	viper.SetConfigName(constant.Tilawah)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Tilawah)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return Validate()
}
