package main

import (
	"github.com/spf13/cobra"
)

func init() {
	favoritesCmd.AddCommand(favoritesListCmd)
	rootCmd.AddCommand(favoritesCmd)
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Inspect the saved favorites and compare lists",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print favorites and the compare list",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		registry := app.FavoritesRegistry()
		return printJSON(cmd, map[string]any{
			"favorites": registry.Favorites(),
			"compare":   registry.CompareList(),
		})
	},
}
