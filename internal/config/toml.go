// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Store  StoreConfig  `toml:"store"`
	Source SourceConfig `toml:"source"`
	Panel  PanelConfig  `toml:"panel"`
	Status StatusConfig `toml:"status"`
	Export ExportConfig `toml:"export"`
}

// StoreConfig maps database settings.
type StoreConfig struct {
	Path *string `toml:"path"`
}

// SourceConfig maps location source settings.
type SourceConfig struct {
	Type     *string `toml:"type"`
	GPSDAddr *string `toml:"gpsd-addr"`
	NMEAPort *string `toml:"nmea-port"`
	NMEABaud *int    `toml:"nmea-baud"`
}

// PanelConfig maps button panel settings.
type PanelConfig struct {
	Type       *string  `toml:"type"`
	VendorID   *int     `toml:"vendor-id"`
	ProductID  *int     `toml:"product-id"`
	Brightness *int     `toml:"brightness"`
	IconDir    *string  `toml:"icon-dir"`
	Categories []string `toml:"categories"`
	PollMs     *int     `toml:"poll-ms"`
	LogFile    *string  `toml:"log-file"`
}

// StatusConfig maps status slot settings.
type StatusConfig struct {
	Interface *string `toml:"interface"`
}

// ExportConfig maps export settings.
type ExportConfig struct {
	Rules *string `toml:"rules"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
