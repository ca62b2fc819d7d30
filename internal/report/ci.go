package report

import (
	"fmt"
	"strings"

	"wfip/internal/model"
)

// DefaultMinCompliance is the gate threshold when none is configured.
const DefaultMinCompliance = 80.0

// Gate decides whether a scan passes a CI compliance check.
type Gate struct {
	MinCompliance    float64
	FailOnDeprecated bool
}

// Check evaluates the analysis against the gate. It returns whether the
// gate passed and a human-readable verdict.
func (g Gate) Check(analysis model.UIAnalysis) (bool, string) {
	var failures []string

	if analysis.ComplianceScore < g.MinCompliance {
		failures = append(failures, fmt.Sprintf(
			"compliance %.2f%% is below the required %.2f%%",
			analysis.ComplianceScore, g.MinCompliance))
	}

	if g.FailOnDeprecated && len(analysis.DeprecatedFeatures) > 0 {
		failures = append(failures, fmt.Sprintf(
			"%d deprecated feature(s) in use: %s",
			len(analysis.DeprecatedFeatures), strings.Join(analysis.DeprecatedFeatures, ", ")))
	}

	if len(failures) > 0 {
		return false, "FAIL: " + strings.Join(failures, "; ")
	}

	return true, fmt.Sprintf("PASS: compliance %.2f%% meets the required %.2f%%",
		analysis.ComplianceScore, g.MinCompliance)
}
