package score

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wfip/internal/baseline"
	"wfip/internal/model"
)

func TestScoreFeatureMultipliers(t *testing.T) {
	tests := []struct {
		name     string
		support  float64
		status   string
		wantRisk float64
		wantTier model.RiskTier
	}{
		// (100-90)/10 * 1.0 = 1.0
		{"newly available", 90, model.StatusNewlyAvailable, 1.0, model.TierSafe},
		// (100-96)/10 * 0.5 = 0.2
		{"widely available halves risk", 96, model.StatusWidelyAvailable, 0.2, model.TierSafe},
		// (100-60)/10 * 1.5 = 6.0, exactly the high-risk floor
		{"limited at high-risk floor", 60, model.StatusLimited, 6.0, model.TierHighRisk},
		// (100-70)/10 * 1.0 = 3.0, exactly the caution floor
		{"caution floor is inclusive", 70, model.StatusNewlyAvailable, 3.0, model.TierCaution},
		// (100-0)/10 * 1.5 = 15, clamped to 10
		{"risk clamps at ten", 0, model.StatusLimited, 10.0, model.TierHighRisk},
		// unrecognized status falls back to 1.0
		{"unknown status multiplier", 80, "experimental", 2.0, model.TierSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := fakeCatalog{
				"feat": {Name: "feat", GlobalSupport: tt.support, BaselineStatus: tt.status},
			}
			scorer := NewRiskScorer(catalog, fakeMarket{})

			score, err := scorer.ScoreFeature("feat")
			require.NoError(t, err)
			assert.InDelta(t, tt.wantRisk, score.RiskLevel, 1e-9)
			assert.Equal(t, tt.wantTier, score.Tier)
		})
	}
}

func TestScoreFeatureUnknownName(t *testing.T) {
	scorer := NewRiskScorer(fakeCatalog{}, fakeMarket{})

	_, err := scorer.ScoreFeature("nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, baseline.ErrFeatureNotFound))
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestScoreFeatureRecommendations(t *testing.T) {
	catalog := fakeCatalog{
		"safe-one": {Name: "safe-one", GlobalSupport: 98, BaselineStatus: model.StatusWidelyAvailable},
		"risky-one": {
			Name: "risky-one", GlobalSupport: 40, BaselineStatus: model.StatusLimited,
			Alternatives: []string{"fallback-a", "fallback-b"},
		},
		"risky-no-alts": {Name: "risky-no-alts", GlobalSupport: 40, BaselineStatus: model.StatusLimited},
	}
	scorer := NewRiskScorer(catalog, fakeMarket{})

	safe, err := scorer.ScoreFeature("safe-one")
	require.NoError(t, err)
	assert.Contains(t, safe.Recommendation, "Safe to use")
	assert.Contains(t, safe.Recommendation, "98%")

	risky, err := scorer.ScoreFeature("risky-one")
	require.NoError(t, err)
	assert.Contains(t, risky.Recommendation, "fallback-a, fallback-b")

	noAlts, err := scorer.ScoreFeature("risky-no-alts")
	require.NoError(t, err)
	assert.Contains(t, noAlts.Recommendation, "none identified")
}

func TestScoreFeatureCarriesMarkets(t *testing.T) {
	catalog := fakeCatalog{
		"feat": {Name: "feat", GlobalSupport: 90, BaselineStatus: model.StatusNewlyAvailable},
	}
	scorer := NewRiskScorer(catalog, fakeMarket{})

	score, err := scorer.ScoreFeature("feat")
	require.NoError(t, err)
	require.Len(t, score.AffectedMarkets, 1)
	assert.Equal(t, "US", score.AffectedMarkets[0].Market)
	assert.Equal(t, 10.0, score.AffectedMarkets[0].AffectedPct)
}
