package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"wfip/internal/baseline"
	"wfip/internal/model"
)

var riskJSON bool

var (
	safeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true)
	cautionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	highRiskStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

var riskCmd = &cobra.Command{
	Use:   "risk <feature> [feature...]",
	Short: "Rate the adoption risk of one or more web features",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := openCatalog()
		scorer := newRiskScorer(catalog)

		store, storeErr := openStore()
		if storeErr == nil {
			defer store.Close()
		}

		var scores []model.RiskScore
		for _, name := range args {
			score, err := scorer.ScoreFeature(name)
			if err != nil {
				if errors.Is(err, baseline.ErrFeatureNotFound) {
					fmt.Fprintf(cmd.ErrOrStderr(), "Unknown feature: %s\n", name)
					continue
				}
				return err
			}
			scores = append(scores, score)
			if storeErr == nil {
				if err := store.SaveRiskAssessment(score); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to save assessment: %v\n", err)
				}
			}
		}

		if riskJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(scores)
		}

		for i, score := range scores {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			printRiskScore(cmd, score)
		}
		return nil
	},
}

func printRiskScore(cmd *cobra.Command, score model.RiskScore) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s %s\n", tierBadge(score.Tier), score.FeatureName)
	fmt.Fprintf(out, "  Risk level:     %.2f / 10\n", score.RiskLevel)
	fmt.Fprintf(out, "  Global support: %.2f%%\n", score.GlobalSupport)
	if score.SafeYear != nil {
		fmt.Fprintf(out, "  Safe since:     ~%d\n", *score.SafeYear)
	}
	if len(score.AffectedMarkets) > 0 {
		var parts []string
		for _, m := range score.AffectedMarkets {
			parts = append(parts, fmt.Sprintf("%s (%.2f%%)", m.Market, m.AffectedPct))
		}
		fmt.Fprintf(out, "  Affected markets: %s\n", strings.Join(parts, ", "))
	}
	if len(score.Alternatives) > 0 {
		fmt.Fprintf(out, "  Alternatives:   %s\n", strings.Join(score.Alternatives, ", "))
	}
	fmt.Fprintf(out, "  %s\n", score.Recommendation)
}

func tierBadge(tier model.RiskTier) string {
	switch tier {
	case model.TierSafe:
		return safeStyle.Render("✅ SAFE")
	case model.TierCaution:
		return cautionStyle.Render("⚠️ CAUTION")
	case model.TierHighRisk:
		return highRiskStyle.Render("🔥 HIGH RISK")
	default:
		return string(tier)
	}
}

func init() {
	rootCmd.AddCommand(riskCmd)
	riskCmd.Flags().BoolVar(&riskJSON, "json", false, "Output JSON instead of formatted text")
}
