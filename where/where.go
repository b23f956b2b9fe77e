// Package where resolves the filesystem locations syncwatch reads from and writes to.
package where

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/samber/lo"
	"github.com/syncwatch/syncwatch/constant"
	"github.com/syncwatch/syncwatch/filesystem"
)

// EnvConfigPath overrides the directory searched for syncwatch.toml.
const EnvConfigPath = "SYNCWATCH_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the directory holding syncwatch.toml.
// syncwatch shares mpv's configuration directory: ~/.config/mpv on unix-likes and the
// portable_config folder next to the executable on Windows.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	if runtime.GOOS == constant.Windows {
		if exe, err := os.Executable(); err == nil {
			return ensureDir(filepath.Join(filepath.Dir(exe), "portable_config"))
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return ensureDir(filepath.Join(home, ".config", "mpv"))
}

// ConfigFile resolves the absolute path of syncwatch.toml.
func ConfigFile() string {
	return filepath.Join(Config(), constant.Syncwatch+"."+constant.ConfigType)
}

// Cache resolves the application cache directory, falling back to ./cache.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Syncwatch))
}

// Logs resolves the directory daily log files are written to.
func Logs() string {
	return ensureDir(filepath.Join(Cache(), "logs"))
}

// Temp resolves a volatile directory for IPC sockets of mpv instances syncwatch launches.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Syncwatch))
}
