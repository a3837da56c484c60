// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "bookkit"

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

// DefaultDBPath returns the default path for the history database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, "history.db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// ChaptersDir returns the chapters directory under a project root.
func ChaptersDir(root string) string {
	return filepath.Join(root, "manuscript", "chapters")
}

// CodeExamplesDir returns the code examples directory under a project root.
func CodeExamplesDir(root string) string {
	return filepath.Join(root, "code-examples")
}

// ResolvePath returns path unchanged when absolute, otherwise relative to root.
func ResolvePath(root, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(root, file)
}

// DefaultArticleDir returns the default converter output directory.
func DefaultArticleDir(root string) string {
	return filepath.Join(root, "build", "output", "zenn")
}
