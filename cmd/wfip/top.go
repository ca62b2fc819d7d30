package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wfip/internal/model"
	"wfip/internal/ui"
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Live dashboard of per-UI compliance",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()

		catalog := openCatalog()
		aggregator := newAggregator(catalog)

		ui.GetRecentAnalyses = func() ([]model.UIAnalysis, error) {
			uiScans, err := latestScans(store)
			if err != nil {
				return nil, err
			}
			hm := aggregator.Generate(uiScans)
			return hm.UIAnalyses, nil
		}

		return ui.StartHeatmapDashboard()
	},
}

func init() {
	rootCmd.AddCommand(topCmd)
}
