package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	historyUIName string
	historyLimit  int
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scans, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()

		scans, err := store.History(historyUIName, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to load scan history: %w", err)
		}

		if historyJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(scans)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUI\tTYPE\tDATE\tCOMPLIANCE\tFEATURES")
		for _, scan := range scans {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f%%\t%d\n",
				scan.ID, scan.UIName, scan.ScanType,
				scan.ScanDate.Format("2006-01-02 15:04"),
				scan.ComplianceScore, scan.TotalFeatures)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyUIName, "ui-name", "", "Only show scans for this UI")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum scans to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output JSON instead of a table")
}
