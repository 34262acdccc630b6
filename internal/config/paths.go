package config

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrNoConfig = errors.New("no config file")

const appName = "crunchymanga"

func ConfigRoot() string {
	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, appName)
	}

	// Linux/macOS XDG
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	// Linux/macOS default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

func ConfigPath() string {
	return filepath.Join(ConfigRoot(), "config.yaml")
}

func PreferencesPath() string {
	return filepath.Join(ConfigRoot(), "prefs.yaml")
}

func EnsureRoot() error {
	return os.MkdirAll(ConfigRoot(), 0755)
}

// InitDefaultConfig writes the default config unless one already exists, in
// which case the existing path is returned together with os.ErrExist.
func InitDefaultConfig() (string, error) {
	if err := EnsureRoot(); err != nil {
		return "", err
	}

	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return path, os.ErrExist
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, nil
}

// ExistingConfigPath returns the config path, or ErrNoConfig when none was created yet.
func ExistingConfigPath() (string, error) {
	path := ConfigPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoConfig
		}
		return "", err
	}

	return path, nil
}
