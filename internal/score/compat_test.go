package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wfip/internal/model"
)

type fakeCatalog map[string]model.FeatureRecord

func (f fakeCatalog) Lookup(name string) (model.FeatureRecord, bool) {
	rec, ok := f[name]
	return rec, ok
}

func (f fakeCatalog) All() []model.FeatureRecord {
	var out []model.FeatureRecord
	for _, rec := range f {
		out = append(out, rec)
	}
	return out
}

type fakeMarket struct{}

func (fakeMarket) AffectedMarkets(globalSupport float64, topN int) []model.MarketImpact {
	return []model.MarketImpact{{Market: "US", AffectedPct: 100 - globalSupport}}
}

func usageFor(names ...string) []model.FeatureUsage {
	var usages []model.FeatureUsage
	for _, name := range names {
		usages = append(usages, model.FeatureUsage{FeatureName: name, Location: "app.css", LineNumber: 1})
	}
	return usages
}

func TestCalculateUIScoreWeakestLink(t *testing.T) {
	catalog := fakeCatalog{
		"gap":             {Name: "gap", GlobalSupport: 99, BaselineStatus: model.StatusWidelyAvailable},
		"backdrop-filter": {Name: "backdrop-filter", GlobalSupport: 60, BaselineStatus: model.StatusLimited},
	}
	scorer := NewCompatScorer(catalog, fakeMarket{})

	uiScore := scorer.CalculateUIScore(usageFor("gap", "backdrop-filter"))

	// Minimum across features, not the average.
	assert.Equal(t, 60.0, uiScore.GlobalSupport)
	assert.Equal(t, 40.0, uiScore.AffectedUsersPct)
}

func TestCalculateUIScoreEmptyIsVacuousPass(t *testing.T) {
	scorer := NewCompatScorer(fakeCatalog{}, fakeMarket{})

	uiScore := scorer.CalculateUIScore(nil)

	assert.Equal(t, 100.0, uiScore.GlobalSupport)
	assert.Equal(t, 0.0, uiScore.AffectedUsersPct)
	assert.Empty(t, uiScore.TopMarketsAffected)
	assert.Empty(t, uiScore.FeaturesByRisk.High)
	assert.Empty(t, uiScore.FeaturesByRisk.Medium)
	assert.Empty(t, uiScore.FeaturesByRisk.Low)
}

func TestCalculateUIScoreUnknownFeaturesExcluded(t *testing.T) {
	catalog := fakeCatalog{
		"gap": {Name: "gap", GlobalSupport: 99, BaselineStatus: model.StatusWidelyAvailable},
	}
	scorer := NewCompatScorer(catalog, fakeMarket{})

	uiScore := scorer.CalculateUIScore(usageFor("gap", "made-up-feature"))

	// The unknown name neither helps nor hurts the support computation.
	assert.Equal(t, 99.0, uiScore.GlobalSupport)
	assert.NotContains(t, uiScore.FeaturesByRisk.High, "made-up-feature")
}

func TestCalculateUIScoreRiskBucketBoundaries(t *testing.T) {
	catalog := fakeCatalog{
		"low":       {Name: "low", GlobalSupport: 95},
		"medium":    {Name: "medium", GlobalSupport: 94.99},
		"high":      {Name: "high", GlobalSupport: 79.99},
		"edge-high": {Name: "edge-high", GlobalSupport: 80},
	}
	scorer := NewCompatScorer(catalog, fakeMarket{})

	uiScore := scorer.CalculateUIScore(usageFor("low", "medium", "high", "edge-high"))

	assert.Equal(t, []string{"low"}, uiScore.FeaturesByRisk.Low)
	assert.ElementsMatch(t, []string{"medium", "edge-high"}, uiScore.FeaturesByRisk.Medium)
	assert.Equal(t, []string{"high"}, uiScore.FeaturesByRisk.High)
}

func TestCalculateUIScoreDuplicateUsagesCountOnce(t *testing.T) {
	catalog := fakeCatalog{
		"gap": {Name: "gap", GlobalSupport: 90},
	}
	scorer := NewCompatScorer(catalog, fakeMarket{})

	uiScore := scorer.CalculateUIScore(usageFor("gap", "gap", "gap"))

	assert.Equal(t, []string{"gap"}, uiScore.FeaturesByRisk.Medium)
}
