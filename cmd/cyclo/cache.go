package main

import (
	"fmt"
	"time"

	"github.com/panbanda/cyclo/internal/cache"
	"github.com/panbanda/cyclo/internal/output"
	"github.com/urfave/cli/v2"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the per-file result cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache entry count, size and age",
				Action: runCacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cache entries",
				Action: runCacheClear,
			},
		},
	}
}

// openCache opens the configured cache directory even when caching is
// disabled for analysis.
func openCache(c *cli.Context) (*cache.Cache, *output.Formatter, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	resultCache, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
	if err != nil {
		return nil, nil, err
	}
	formatter := output.NewWriterFormatter(output.ParseFormat(cfg.Output.Format), c.App.Writer, cfg.Output.Color)
	return resultCache, formatter, nil
}

func runCacheStats(c *cli.Context) error {
	resultCache, formatter, err := openCache(c)
	if err != nil {
		return err
	}

	stats, err := resultCache.GetStats()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	return formatter.Output(&output.Section{
		Title: "Cache",
		Fields: []output.Field{
			{Label: "Directory", Value: resultCache.Dir()},
			{Label: "Entries", Value: fmt.Sprintf("%d", stats.Entries)},
			{Label: "Size", Value: fmt.Sprintf("%d bytes", stats.TotalSize)},
			{Label: "Oldest", Value: stats.OldestAge.Round(time.Second).String()},
			{Label: "Newest", Value: stats.NewestAge.Round(time.Second).String()},
		},
		Data: stats,
	})
}

func runCacheClear(c *cli.Context) error {
	resultCache, formatter, err := openCache(c)
	if err != nil {
		return err
	}

	if err := resultCache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	formatter.Success("Cache cleared: %s", resultCache.Dir())
	return nil
}
