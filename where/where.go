// Package where resolves the directories tilawah reads from and writes to.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/tilawah-cli/tilawah/constant"
	"github.com/tilawah-cli/tilawah/filesystem"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "TILAWAH_CONFIG_PATH"

func mkdir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config returns the configuration directory, honouring TILAWAH_CONFIG_PATH.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return mkdir(custom)
	}

	return mkdir(filepath.Join(lo.Must(os.UserConfigDir()), constant.Tilawah))
}

// Cache returns the directory for API responses and downloaded audio.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return mkdir(filepath.Join(base, constant.Tilawah))
}

// Logs returns the directory daily log files are written to.
func Logs() string {
	return mkdir(filepath.Join(Config(), "logs"))
}

// Audio returns the directory the beep backend downloads recitations into.
func Audio() string {
	return mkdir(filepath.Join(Cache(), "audio"))
}

// Surahs returns the cache file for the surah index.
func Surahs() string {
	return filepath.Join(Cache(), "surahs.json")
}

// SurahDetails returns the cache file holding every fetched surah with its verses.
func SurahDetails() string {
	return filepath.Join(Cache(), "surah_details.json")
}

// Temp returns a scratch directory, e.g. for the mpv IPC socket.
func Temp() string {
	return mkdir(filepath.Join(os.TempDir(), constant.Tilawah))
}
