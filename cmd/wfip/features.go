package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wfip/internal/model"
)

var (
	featuresJSON   bool
	featuresStatus string
)

var featuresCmd = &cobra.Command{
	Use:   "features [name]",
	Short: "List the baseline catalog or show one feature",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := openCatalog()

		if len(args) == 1 {
			record, ok := catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("feature %q not found in baseline catalog", args[0])
			}
			if featuresJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(record)
			}
			printFeature(cmd, record)
			return nil
		}

		records := catalog.All()
		if featuresStatus != "" {
			filtered := records[:0]
			for _, record := range records {
				if record.BaselineStatus == featuresStatus {
					filtered = append(filtered, record)
				}
			}
			records = filtered
		}

		if featuresJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(records)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATUS\tSUPPORT\tSAFE YEAR")
		for _, record := range records {
			safeYear := "-"
			if record.SafeYear != nil {
				safeYear = fmt.Sprintf("%d", *record.SafeYear)
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f%%\t%s\n", record.Name, record.BaselineStatus, record.GlobalSupport, safeYear)
		}
		return w.Flush()
	},
}

func printFeature(cmd *cobra.Command, record model.FeatureRecord) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", record.Name)
	fmt.Fprintf(out, "  Status:         %s\n", record.BaselineStatus)
	fmt.Fprintf(out, "  Global support: %.2f%%\n", record.GlobalSupport)
	if record.SafeYear != nil {
		fmt.Fprintf(out, "  Safe since:     ~%d\n", *record.SafeYear)
	}
	if len(record.Browsers) > 0 {
		fmt.Fprintln(out, "  Browsers:")
		for browser, version := range record.Browsers {
			fmt.Fprintf(out, "    %s: %s\n", browser, version)
		}
	}
	if len(record.Alternatives) > 0 {
		fmt.Fprintf(out, "  Alternatives:   %v\n", record.Alternatives)
	}
	if record.MDNURL != "" {
		fmt.Fprintf(out, "  MDN:            %s\n", record.MDNURL)
	}
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	featuresCmd.Flags().BoolVar(&featuresJSON, "json", false, "Output JSON instead of a table")
	featuresCmd.Flags().StringVar(&featuresStatus, "status", "", "Filter by baseline status (widely_available, newly_available, limited)")
}
