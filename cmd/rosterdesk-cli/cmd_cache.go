package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the server-side resolution cache",
	}
	cmd.AddCommand(cacheStatsCmd())
	cmd.AddCommand(cacheClearCmd())
	return cmd
}

func cacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Run: func(cmd *cobra.Command, args []string) {
			stats, err := apiClient.Cache.Stats(context.Background())
			if err != nil {
				fatal("cache stats", err)
			}
			output(stats, fmt.Sprintf("%d", stats.Entries))
		},
	}
}

func cacheClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear [type key]",
		Short: "Clear the whole cache, or one entry by type and raw key",
		Args:  cobra.RangeArgs(0, 2),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			switch len(args) {
			case 0:
				if err := apiClient.Cache.Clear(ctx); err != nil {
					fatal("clear cache", err)
				}
				output(map[string]string{"status": "cleared"}, "cleared")
			case 2:
				if err := apiClient.Cache.ClearEntry(ctx, args[0], args[1]); err != nil {
					fatal("clear cache entry", err)
				}
				output(map[string]string{"status": "cleared", "key": args[1]}, args[1])
			default:
				fatal("clear cache", fmt.Errorf("pass no arguments or both <type> and <key>"))
			}
		},
	}
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog and cache statistics",
		Run: func(cmd *cobra.Command, args []string) {
			stats, err := apiClient.Stats(context.Background())
			if err != nil {
				fatal("stats", err)
			}
			output(stats, fmt.Sprintf("%d", stats.CacheEntries))
		},
	}
}
