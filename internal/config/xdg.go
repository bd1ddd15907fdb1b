// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "poideck"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the TOML config path, honoring POIDECK_CONFIG.
func DefaultConfigPath() string {
	if v := os.Getenv("POIDECK_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, appName+".db")
}

// DefaultRulesPath returns the default export rule file path.
func DefaultRulesPath() string {
	return filepath.Join(XDGConfigHome(), appName, "rules.toml")
}

// DefaultIconDir returns the default directory holding category glyphs.
func DefaultIconDir() string {
	return filepath.Join(XDGConfigHome(), appName, "icons")
}

// DefaultLogPath returns the log file used while the terminal panel owns the screen.
func DefaultLogPath() string {
	return filepath.Join(XDGDataHome(), appName, appName+".log")
}
