package main

import (
	"fmt"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"

	"github.com/spf13/cobra"
)

var listingsFlags struct {
	contractType string
	city         string
	zipCode      string
	offline      bool
}

func init() {
	f := listingsCmd.Flags()
	f.StringVar(&listingsFlags.contractType, "contract-type", "", "achat, location or vacance (empty: purchase and rental)")
	f.StringVar(&listingsFlags.city, "city", "", "city substring")
	f.StringVar(&listingsFlags.zipCode, "zip-code", "", "postal code prefix")
	f.BoolVar(&listingsFlags.offline, "offline", false, "answer from the offline cache only")
	rootCmd.AddCommand(listingsCmd)
}

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Fetch listings the way the app does, cache included",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters := domain.Filters{
			City:    listingsFlags.city,
			ZipCode: listingsFlags.zipCode,
		}
		if listingsFlags.contractType != "" {
			category, err := domain.ParseCategory(listingsFlags.contractType)
			if err != nil {
				return err
			}
			filters.ContractType = category
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if listingsFlags.offline {
			app.Monitor().SetOffline()
		}

		page, err := app.Listings().GetAll(app.Context(), filters)
		if err != nil {
			return fmt.Errorf("failed to get listings: %w", err)
		}
		return printJSON(cmd, page)
	},
}
