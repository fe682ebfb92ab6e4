package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		if err := app.Run(); err != nil {
			return fmt.Errorf("application run failed: %w", err)
		}
		return nil
	},
}
