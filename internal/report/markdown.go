package report

import (
	"fmt"
	"strings"

	"wfip/internal/model"
)

// maxDetailedFindings caps the per-feature detail section so PR comments
// stay readable on large scans.
const maxDetailedFindings = 5

// BuildMarkdown renders a compliance report for an analysis, suitable for
// terminal rendering or posting as a PR comment.
func BuildMarkdown(analysis model.UIAnalysis, usages []model.FeatureUsage, catalog Lookup) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Baseline Compliance Report: %s\n\n", analysis.UIName)
	fmt.Fprintf(&b, "**Compliance score:** %.2f%%\n\n", analysis.ComplianceScore)
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Features detected | %d |\n", analysis.TotalFeatures)
	fmt.Fprintf(&b, "| Baseline compliant | %d |\n", analysis.BaselineCompliant)
	fmt.Fprintf(&b, "| High risk | %d |\n", len(analysis.HighRiskFeatures))
	fmt.Fprintf(&b, "| Deprecated | %d |\n\n", len(analysis.DeprecatedFeatures))

	if len(analysis.HighRiskFeatures) > 0 {
		b.WriteString("## High Risk Features\n\n")
		for i, name := range analysis.HighRiskFeatures {
			if i == maxDetailedFindings {
				fmt.Fprintf(&b, "\n…and %d more.\n", len(analysis.HighRiskFeatures)-maxDetailedFindings)
				break
			}
			fmt.Fprintf(&b, "### %s\n\n", name)
			if rec, ok := catalog.Lookup(name); ok {
				fmt.Fprintf(&b, "Global support: %.2f%% (%s)\n\n", rec.GlobalSupport, rec.BaselineStatus)
				if len(rec.Alternatives) > 0 {
					fmt.Fprintf(&b, "Consider alternatives: %s\n\n", strings.Join(rec.Alternatives, ", "))
				}
			}
			locations := locationsFor(name, usages)
			if len(locations) > 0 {
				b.WriteString("Found at:\n\n")
				for _, loc := range locations {
					fmt.Fprintf(&b, "- `%s`\n", loc)
				}
				b.WriteString("\n")
			}
		}
	}

	if len(analysis.DeprecatedFeatures) > 0 {
		b.WriteString("## Deprecated Features\n\n")
		for _, name := range analysis.DeprecatedFeatures {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Lookup abstracts catalog access so the report package does not depend
// on a concrete store.
type Lookup interface {
	Lookup(name string) (model.FeatureRecord, bool)
}

func locationsFor(name string, usages []model.FeatureUsage) []string {
	const maxLocations = 5
	var out []string
	for _, u := range usages {
		if u.FeatureName != name {
			continue
		}
		out = append(out, fmt.Sprintf("%s:%d", u.Location, u.LineNumber))
		if len(out) == maxLocations {
			break
		}
	}
	return out
}
