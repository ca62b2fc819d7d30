package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wfip/internal/baseline"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the baseline catalog from caniuse and MDN BCD",
	Long: `Refresh downloads current browser support data and rebuilds the local
baseline catalog cache. Scans work offline against this cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openCatalog()
		fetcher := baseline.NewFetcher()

		if err := fetcher.Refresh(cmd.Context(), store); err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Baseline catalog refreshed: %d features\n", len(store.All()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
