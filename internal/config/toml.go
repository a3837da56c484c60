// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Progress ProgressConfig `toml:"progress"`
	Convert  ConvertConfig  `toml:"convert"`
}

// ProgressConfig maps progress-report settings.
type ProgressConfig struct {
	CharsPerPage *int     `toml:"chars-per-page"`
	TextWeight   *float64 `toml:"text-weight"`
	BarWidth     *int     `toml:"bar-width"`
	ReportFile   *string  `toml:"report-file"`
	Descriptors  []string `toml:"descriptors"`
	Lagging      *int     `toml:"lagging"`
	Record       *bool    `toml:"record"`
}

// ConvertConfig maps article converter settings.
type ConvertConfig struct {
	OutputDir       *string  `toml:"output-dir"`
	Emoji           *string  `toml:"emoji"`
	Type            *string  `toml:"type"`
	Topics          []string `toml:"topics"`
	Published       *bool    `toml:"published"`
	PublicationName *string  `toml:"publication-name"`
	ImageBase       *string  `toml:"image-base"`
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
