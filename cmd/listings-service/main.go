package main

import (
	"encoding/json"
	"os"

	"github.com/Maureenhddi/sergic-app/internal"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "listings-service",
	Short: "Sergic listings service",
	Long:  "Listings API with an offline cache, favorites and compare lists.\nRuns the HTTP server when no subcommand is given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default: ./.env when present)")
}

// newApp builds the application for one-shot commands; callers must Close it.
func newApp() (*internal.App, error) {
	return internal.NewApp(envFile)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
