// Package config provides environment overrides.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings read from the process environment.
type Env struct {
	ConfigPath string `env:"BOOKKIT_CONFIG"`
	DBPath     string `env:"BOOKKIT_DB"`
	LogLevel   string `env:"BOOKKIT_LOG_LEVEL" envDefault:"warn"`
	NoColor    string `env:"NO_COLOR"`
}

// LoadEnv parses the environment and fills unset paths with XDG defaults.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	if e.ConfigPath == "" {
		e.ConfigPath = DefaultConfigPath()
	}
	if e.DBPath == "" {
		e.DBPath = DefaultDBPath()
	}
	return e, nil
}

// ColorDisabled reports whether NO_COLOR is set to any value.
func (e Env) ColorDisabled() bool {
	return e.NoColor != ""
}
