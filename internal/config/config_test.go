package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.CacheDir)
	assert.Contains(t, cfg.CacheDir, "pipet")
	assert.Equal(t, ToolchainAuto, cfg.Toolchain)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.NoCache)
	assert.False(t, cfg.Stats)
}

func TestLoad_FromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	viper.Set("cache_dir", dir)
	viper.Set("toolchain", ToolchainSystem)
	viper.Set("verbose", true)
	viper.Set("no_cache", true)
	viper.Set("stats", true)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.CacheDir)
	assert.Equal(t, ToolchainSystem, cfg.Toolchain)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.NoCache)
	assert.True(t, cfg.Stats)
}

func TestLoad_InvalidToolchainMode(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("toolchain", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid toolchain mode")
}

func TestValidate_ResolvesRelativeCacheDir(t *testing.T) {
	cfg := &Config{CacheDir: "relative/cache", Toolchain: ToolchainAuto}
	require.NoError(t, cfg.Validate())

	assert.True(t, filepath.IsAbs(cfg.CacheDir))
}

func TestValidate_ToolchainModes(t *testing.T) {
	for _, mode := range []string{ToolchainAuto, ToolchainEmbedded, ToolchainSystem} {
		cfg := &Config{CacheDir: t.TempDir(), Toolchain: mode}
		assert.NoError(t, cfg.Validate(), mode)
	}
}
