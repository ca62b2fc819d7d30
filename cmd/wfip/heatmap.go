package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"wfip/internal/db"
	"wfip/internal/heatmap"
	"wfip/internal/model"
)

var (
	heatmapJSON  bool
	heatmapLimit int
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Show the org-wide compliance heatmap from saved scans",
	Long: `Heatmap rebuilds the organization-wide compliance picture from the
scan history, keeping the most recent scan per UI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()

		uiScans, err := latestScans(store)
		if err != nil {
			return err
		}
		if heatmapLimit > 0 && len(uiScans) > heatmapLimit {
			uiScans = uiScans[:heatmapLimit]
		}

		catalog := openCatalog()
		hm := newAggregator(catalog).Generate(uiScans)

		if heatmapJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(hm)
		}

		printHeatmap(cmd, hm)
		return nil
	},
}

// latestScans loads the most recent scan per UI, preserving recency order.
func latestScans(store db.Store) ([]model.UIScan, error) {
	scans, err := store.History("", 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to load scan history: %w", err)
	}

	seen := map[string]bool{}
	var uiScans []model.UIScan
	for _, scan := range scans {
		if seen[scan.UIName] {
			continue
		}
		seen[scan.UIName] = true
		usages, err := store.Usages(scan.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load usages for scan %d: %w", scan.ID, err)
		}
		uiScans = append(uiScans, model.UIScan{UIName: scan.UIName, Usages: usages})
	}
	return uiScans, nil
}

func printHeatmap(cmd *cobra.Command, hm model.OrgHeatmap) {
	out := cmd.OutOrStdout()
	colored := termenv.EnvNoColor() == false

	fmt.Fprintf(out, "Org compliance heatmap (%d UIs)\n", hm.TotalUIs)
	fmt.Fprintf(out, "Average compliance: %.2f%%\n\n", hm.AverageCompliance)

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "UI\tCOMPLIANCE\tFEATURES\tHIGH RISK\tDEPRECATED")
	for _, analysis := range hm.UIAnalyses {
		scoreCell := fmt.Sprintf("%.2f%%", analysis.ComplianceScore)
		if colored {
			scoreCell = complianceStyle(analysis.ComplianceScore).Render(scoreCell)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
			analysis.UIName, scoreCell, analysis.TotalFeatures,
			len(analysis.HighRiskFeatures), len(analysis.DeprecatedFeatures))
	}
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s\n", hm.Summary.Message)
	if hm.Summary.WorstPerformer != "" {
		fmt.Fprintf(out, "Worst performer: %s\n", hm.Summary.WorstPerformer)
	}
	if hm.DeprecatedFeatureCount > 0 {
		fmt.Fprintf(out, "Deprecated features in use (%d): %v\n", hm.DeprecatedFeatureCount, hm.DeprecatedFeatures)
	}
}

func complianceStyle(score float64) lipgloss.Style {
	switch {
	case score >= 90:
		return safeStyle
	case score >= heatmap.LowComplianceThreshold:
		return cautionStyle
	default:
		return highRiskStyle
	}
}

func init() {
	rootCmd.AddCommand(heatmapCmd)
	heatmapCmd.Flags().BoolVar(&heatmapJSON, "json", false, "Output JSON instead of a table")
	heatmapCmd.Flags().IntVar(&heatmapLimit, "limit", 0, "Only include the N most recently scanned UIs (0 = all)")
}
