package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipet-dev/pipet/internal/cache"
	"github.com/pipet-dev/pipet/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the compilation cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show cache statistics",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := openCache(cmd)
		if err != nil {
			return err
		}

		count, totalSize, err := store.Stats()
		if err != nil {
			return err
		}

		fmt.Println("Cache statistics:")
		fmt.Printf("  Cached binaries: %d\n", count)
		fmt.Printf("  Total size: %s\n", cache.FormatSize(totalSize))
		fmt.Printf("  Cache directory: %s\n", store.Root())

		if cfg.Verbose {
			return printEntries(store)
		}

		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:          "clear",
	Short:        "Clear the compilation cache",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openCache(cmd)
		if err != nil {
			return err
		}

		if err := store.Clear(); err != nil {
			return err
		}

		fmt.Println("Cache cleared successfully")
		return nil
	},
}

func openCache(cmd *cobra.Command) (*cache.Cache, *config.Config, error) {
	cfg, err := config.NewLoader().LoadForRun(cmd)
	if err != nil {
		return nil, nil, err
	}

	store, err := cache.New(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}

	return store, cfg, nil
}

func printEntries(store *cache.Cache) error {
	entries, err := store.Entries()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fmt.Printf("  %s  %-7s  %8s  %s\n",
			entry.Key[:12], entry.Mode, cache.FormatSize(entry.Size), entry.Expression)
	}

	return nil
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
