package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the offline cache",
}

type cacheStatsOutput struct {
	Listings      map[string]int `json:"listings"`
	Details       int            `json:"details"`
	Favorites     int            `json:"favorites"`
	Compare       int            `json:"compare"`
	HasCachedData bool           `json:"has_cached_data"`
	AgeMinutes    *int           `json:"age_minutes"`
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print what the offline cache holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		stats := app.Cache().Stats(app.Context())
		out := cacheStatsOutput{
			Listings:      make(map[string]int, len(stats.Listings)),
			Details:       stats.Details,
			Favorites:     stats.Favorites,
			Compare:       stats.Compare,
			HasCachedData: stats.HasCachedData,
			AgeMinutes:    stats.AgeMinutes,
		}
		for c, n := range stats.Listings {
			out.Listings[c.String()] = n
		}
		return printJSON(cmd, out)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached purchase/rental listings and details",
	Long:  "Remove cached purchase and rental listings, details and the legacy timestamp.\nHoliday listings and favorites are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		app.Cache().ClearCache(app.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Offline cache cleared.")
		return nil
	},
}
