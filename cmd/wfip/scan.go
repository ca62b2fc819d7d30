package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wfip/internal/db"
	"wfip/internal/heatmap"
	"wfip/internal/metrics"
	"wfip/internal/notify"
)

var (
	scanUIName string
	scanJSON   bool
	scanNoSave bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a source tree for web feature usage",
	Long: `Scan walks a frontend source tree, detects modern web feature usage
by signature matching, and scores the result against the Baseline catalog.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		uiName := scanUIName
		if uiName == "" {
			abs, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			uiName = filepath.Base(abs)
		}

		detector := newDetector()
		usages, err := detector.ScanDir(root, scanExtensions())
		if err != nil {
			return err
		}

		catalog := openCatalog()
		aggregator := newAggregator(catalog)
		analysis := aggregator.AnalyzeUI(uiName, usages)

		compat := newCompatScorer(catalog)
		uiScore := compat.CalculateUIScore(usages)

		if !scanNoSave {
			store, err := openStore()
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer store.Close()
			if _, err := store.SaveScan(analysis, usages, ""); err != nil {
				return fmt.Errorf("failed to save scan: %w", err)
			}
		}

		metrics.ScansCompleted.WithLabelValues(db.ScanTypeDirectory).Inc()
		metrics.UsagesDetected.Add(float64(len(usages)))

		manager := notify.NewManager(nil)
		manager.NotifyScanComplete(cmd.Context(), analysis, heatmap.LowComplianceThreshold)

		if scanJSON {
			out := map[string]any{
				"analysis": analysis,
				"score":    uiScore,
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		fmt.Fprintf(w, "UI:\t%s\n", analysis.UIName)
		fmt.Fprintf(w, "Usages detected:\t%d\n", len(usages))
		fmt.Fprintf(w, "Distinct features:\t%d\n", analysis.TotalFeatures)
		fmt.Fprintf(w, "Baseline compliant:\t%d\n", analysis.BaselineCompliant)
		fmt.Fprintf(w, "Compliance score:\t%.2f%%\n", analysis.ComplianceScore)
		fmt.Fprintf(w, "Weakest-link support:\t%.2f%%\n", uiScore.GlobalSupport)
		fmt.Fprintf(w, "Affected users:\t%.2f%%\n", uiScore.AffectedUsersPct)
		w.Flush()

		if len(analysis.HighRiskFeatures) > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "High risk features:")
			for _, name := range analysis.HighRiskFeatures {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", name)
			}
		}
		if len(analysis.DeprecatedFeatures) > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "Deprecated features:")
			for _, name := range analysis.DeprecatedFeatures {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", name)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanUIName, "ui-name", "", "Name to record the scan under (defaults to the directory name)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output JSON instead of a table")
	scanCmd.Flags().BoolVar(&scanNoSave, "no-save", false, "Do not persist the scan to the database")
}
