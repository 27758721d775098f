package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultToolchainMode = "auto"
	DefaultVerbose       = false
)

// Toolchain selection modes
const (
	ToolchainAuto     = "auto"
	ToolchainEmbedded = "embedded"
	ToolchainSystem   = "system"
)

// Environment variables recognised by pipet
const (
	EnvCacheDir  = "PIPET_CACHE_DIR"
	EnvToolchain = "PIPET_TOOLCHAIN"
)

// Holds the configuration options for pipet
type Config struct {
	// Root directory for cached binaries, sources and the extracted toolchain
	CacheDir string

	// Toolchain selection: auto, embedded or system
	Toolchain string

	// Enable verbose output
	Verbose bool

	// Bypass cache lookup (still stores the result)
	NoCache bool

	// Print timing statistics after execution
	Stats bool
}

func Load() (*Config, error) {
	cfg := &Config{
		CacheDir:  viper.GetString("cache_dir"),
		Toolchain: viper.GetString("toolchain"),
		Verbose:   viper.GetBool("verbose"),
		NoCache:   viper.GetBool("no_cache"),
		Stats:     viper.GetBool("stats"),
	}

	if cfg.CacheDir == "" {
		dir, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}

		cfg.CacheDir = dir
	}

	if cfg.Toolchain == "" {
		cfg.Toolchain = DefaultToolchainMode
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if abs, err := filepath.Abs(c.CacheDir); err == nil {
		c.CacheDir = abs
	}

	switch c.Toolchain {
	case ToolchainAuto, ToolchainEmbedded, ToolchainSystem:
	default:
		return fmt.Errorf("invalid toolchain mode: %s (expected auto, embedded or system)", c.Toolchain)
	}

	return nil
}

// defaultCacheDir returns the platform cache directory for pipet
func defaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}

	return filepath.Join(dir, "pipet"), nil
}
