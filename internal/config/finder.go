package config

import (
	"os"
	"path/filepath"
)

// configExtensions are tried in priority order wherever a config file may
// live.
var configExtensions = []string{"yml", "yaml", "json", "toml"}

// FindLocalConfig returns the nearest .pipet config file at or above dir,
// preferring the closest directory and the earliest extension. Empty when
// none exists.
func FindLocalConfig(dir string) string {
	for {
		if path := firstConfig(dir, ".pipet."); path != "" {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}

		dir = parent
	}
}

// firstConfig returns the first existing prefix+extension file in dir
func firstConfig(dir, prefix string) string {
	for _, ext := range configExtensions {
		path := filepath.Join(dir, prefix+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
