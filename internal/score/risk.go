package score

import (
	"fmt"
	"strings"

	"wfip/internal/baseline"
	"wfip/internal/market"
	"wfip/internal/model"
)

// Risk tier boundaries: lower bound inclusive, upper bound exclusive.
const (
	cautionTierFloor  = 3.0
	highRiskTierFloor = 6.0
)

// statusMultipliers scale the base risk by baseline maturity. Unrecognized
// statuses fall back to 1.0.
var statusMultipliers = map[string]float64{
	model.StatusWidelyAvailable: 0.5,
	model.StatusNewlyAvailable:  1.0,
	model.StatusLimited:         1.5,
}

// RiskScorer rates one feature's adoption risk independent of any UI.
type RiskScorer struct {
	catalog baseline.Catalog
	market  market.Estimator
}

// NewRiskScorer wires a scorer to its catalog and market estimator.
func NewRiskScorer(catalog baseline.Catalog, estimator market.Estimator) *RiskScorer {
	return &RiskScorer{catalog: catalog, market: estimator}
}

// ScoreFeature computes the risk rating for a named feature. An unknown
// name returns baseline.ErrFeatureNotFound, never a zero-valued score.
func (s *RiskScorer) ScoreFeature(name string) (model.RiskScore, error) {
	record, ok := s.catalog.Lookup(name)
	if !ok {
		return model.RiskScore{}, fmt.Errorf("%q: %w", name, baseline.ErrFeatureNotFound)
	}

	risk := riskLevel(record)
	tier := tierFor(risk)

	return model.RiskScore{
		FeatureName:     record.Name,
		RiskLevel:       risk,
		GlobalSupport:   record.GlobalSupport,
		AffectedMarkets: s.market.AffectedMarkets(record.GlobalSupport, DefaultTopMarkets),
		SafeYear:        record.SafeYear,
		Alternatives:    record.Alternatives,
		Tier:            tier,
		Recommendation:  recommendation(record, tier),
		Browsers:        record.Browsers,
	}, nil
}

func riskLevel(record model.FeatureRecord) float64 {
	baseRisk := (100 - record.GlobalSupport) / 10

	multiplier, ok := statusMultipliers[record.BaselineStatus]
	if !ok {
		multiplier = 1.0
	}

	risk := baseRisk * multiplier
	if risk < 0 {
		risk = 0
	}
	if risk > 10 {
		risk = 10
	}
	return risk
}

func tierFor(risk float64) model.RiskTier {
	switch {
	case risk < cautionTierFloor:
		return model.TierSafe
	case risk < highRiskTierFloor:
		return model.TierCaution
	default:
		return model.TierHighRisk
	}
}

// recommendation renders the plain-text advisory for a tier. Presentation
// layers own severity emoji and localization.
func recommendation(record model.FeatureRecord, tier model.RiskTier) string {
	switch tier {
	case model.TierSafe:
		return fmt.Sprintf("Safe to use. %s has excellent support (%g%%)", record.Name, record.GlobalSupport)
	case model.TierCaution:
		return "Use with caution. Consider progressive enhancement or polyfills"
	default:
		alts := "none identified"
		if len(record.Alternatives) > 0 {
			alts = strings.Join(record.Alternatives, ", ")
		}
		return "High risk. Strongly consider alternatives: " + alts
	}
}
