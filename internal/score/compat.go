// Package score derives compatibility and risk ratings from detected
// feature usage and baseline support data.
package score

import (
	"wfip/internal/baseline"
	"wfip/internal/market"
	"wfip/internal/model"
)

// DefaultTopMarkets is how many affected regions a score reports.
const DefaultTopMarkets = 5

// Support thresholds for the per-feature risk buckets.
const (
	highRiskSupportBelow   = 80.0
	mediumRiskSupportBelow = 95.0
)

// CompatScorer reduces a UI's usages to one aggregate compatibility score.
//
// The aggregate uses a weakest-link policy: the UI's global support equals
// the minimum across its resolved features, not an average. A single
// rarely-used feature therefore dominates the score. Deliberate policy, do
// not average.
type CompatScorer struct {
	catalog baseline.Catalog
	market  market.Estimator
}

// NewCompatScorer wires a scorer to its catalog and market estimator.
func NewCompatScorer(catalog baseline.Catalog, estimator market.Estimator) *CompatScorer {
	return &CompatScorer{catalog: catalog, market: estimator}
}

// CalculateUIScore scores one UI's usage list. Features absent from the
// catalog are excluded from the support computation: they neither help nor
// hurt. An empty usage list is a vacuous pass.
func (s *CompatScorer) CalculateUIScore(usages []model.FeatureUsage) model.UIScore {
	if len(usages) == 0 {
		return model.UIScore{
			GlobalSupport:      100,
			AffectedUsersPct:   0,
			TopMarketsAffected: []model.MarketImpact{},
			FeaturesByRisk:     model.RiskBuckets{High: []string{}, Medium: []string{}, Low: []string{}},
		}
	}

	minSupport := 100.0
	buckets := model.RiskBuckets{High: []string{}, Medium: []string{}, Low: []string{}}

	for _, name := range distinctNames(usages) {
		record, ok := s.catalog.Lookup(name)
		if !ok {
			continue
		}
		if record.GlobalSupport < minSupport {
			minSupport = record.GlobalSupport
		}
		switch {
		case record.GlobalSupport < highRiskSupportBelow:
			buckets.High = append(buckets.High, name)
		case record.GlobalSupport < mediumRiskSupportBelow:
			buckets.Medium = append(buckets.Medium, name)
		default:
			buckets.Low = append(buckets.Low, name)
		}
	}

	return model.UIScore{
		GlobalSupport:      minSupport,
		AffectedUsersPct:   100 - minSupport,
		TopMarketsAffected: s.market.AffectedMarkets(minSupport, DefaultTopMarkets),
		FeaturesByRisk:     buckets,
	}
}

// distinctNames reduces usages to unique feature names in first-seen order.
func distinctNames(usages []model.FeatureUsage) []string {
	seen := make(map[string]bool, len(usages))
	var names []string
	for _, u := range usages {
		if !seen[u.FeatureName] {
			seen[u.FeatureName] = true
			names = append(names, u.FeatureName)
		}
	}
	return names
}
