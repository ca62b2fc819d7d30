package heatmap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wfip/internal/model"
)

type fakeCatalog map[string]model.FeatureRecord

func (f fakeCatalog) Lookup(name string) (model.FeatureRecord, bool) {
	rec, ok := f[name]
	return rec, ok
}

func (f fakeCatalog) All() []model.FeatureRecord { return nil }

func intPtr(v int) *int { return &v }

func testCatalog() fakeCatalog {
	return fakeCatalog{
		"gap":             {Name: "gap", BaselineStatus: model.StatusWidelyAvailable, SafeYear: intPtr(2020)},
		"subgrid":         {Name: "subgrid", BaselineStatus: model.StatusLimited, SafeYear: intPtr(2026)},
		"appcache":        {Name: "appcache", BaselineStatus: model.StatusLimited, SafeYear: intPtr(2010)},
		"color-mix":       {Name: "color-mix", BaselineStatus: model.StatusNewlyAvailable, SafeYear: intPtr(2024)},
		"backdrop-filter": {Name: "backdrop-filter", BaselineStatus: model.StatusWidelyAvailable, SafeYear: intPtr(2022)},
	}
}

func usagesFor(names ...string) []model.FeatureUsage {
	var usages []model.FeatureUsage
	for _, name := range names {
		usages = append(usages, model.FeatureUsage{FeatureName: name, Location: "x", LineNumber: 1})
	}
	return usages
}

func TestAnalyzeUICountsDistinctFeatures(t *testing.T) {
	agg := New(testCatalog())

	analysis := agg.AnalyzeUI("checkout", usagesFor("gap", "gap", "subgrid"))

	assert.Equal(t, 2, analysis.TotalFeatures)
	assert.Equal(t, 1, analysis.BaselineCompliant)
	assert.Equal(t, []string{"subgrid"}, analysis.HighRiskFeatures)
	assert.Equal(t, 50.0, analysis.ComplianceScore)
}

func TestAnalyzeUIUnknownFeatureCountsInTotal(t *testing.T) {
	agg := New(testCatalog())

	analysis := agg.AnalyzeUI("checkout", usagesFor("gap", "made-up"))

	// Unknown names dilute the score but are never compliant.
	assert.Equal(t, 2, analysis.TotalFeatures)
	assert.Equal(t, 1, analysis.BaselineCompliant)
	assert.Equal(t, 50.0, analysis.ComplianceScore)
}

func TestAnalyzeUIDeprecatedCutoff(t *testing.T) {
	agg := New(testCatalog())

	analysis := agg.AnalyzeUI("legacy", usagesFor("appcache", "gap"))

	// appcache's safe year predates the cutoff; gap's does not.
	assert.Equal(t, []string{"appcache"}, analysis.DeprecatedFeatures)
}

func TestAnalyzeUIEmptyIsPerfect(t *testing.T) {
	agg := New(testCatalog())

	analysis := agg.AnalyzeUI("static-page", nil)

	assert.Equal(t, 0, analysis.TotalFeatures)
	assert.Equal(t, 100.0, analysis.ComplianceScore)
	assert.Empty(t, analysis.HighRiskFeatures)
}

func TestAnalyzeUIStampsScanDate(t *testing.T) {
	agg := New(testCatalog())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return fixed }

	analysis := agg.AnalyzeUI("checkout", nil)
	assert.Equal(t, fixed, analysis.ScanDate)
}

func TestGenerateAveragesAndWorstPerformer(t *testing.T) {
	agg := New(testCatalog())

	scans := []model.UIScan{
		{UIName: "perfect", Usages: usagesFor("gap")},                       // 100
		{UIName: "half", Usages: usagesFor("gap", "subgrid")},               // 50
		{UIName: "zero", Usages: usagesFor("subgrid", "appcache")},          // 0
	}

	hm := agg.Generate(scans)

	assert.Equal(t, 3, hm.TotalUIs)
	assert.Equal(t, 50.0, hm.AverageCompliance)
	assert.Equal(t, "zero", hm.Summary.WorstPerformer)
	assert.Equal(t, 2, hm.Summary.LowComplianceUIs)
	assert.Equal(t, 2, hm.Summary.HighRiskUIs)

	// Input order is preserved in the output.
	require.Len(t, hm.UIAnalyses, 3)
	assert.Equal(t, "perfect", hm.UIAnalyses[0].UIName)
	assert.Equal(t, "zero", hm.UIAnalyses[2].UIName)
}

func TestGenerateDeduplicatesDeprecated(t *testing.T) {
	agg := New(testCatalog())

	scans := []model.UIScan{
		{UIName: "a", Usages: usagesFor("appcache")},
		{UIName: "b", Usages: usagesFor("appcache")},
	}

	hm := agg.Generate(scans)

	assert.Equal(t, 1, hm.DeprecatedFeatureCount)
	assert.Equal(t, []string{"appcache"}, hm.DeprecatedFeatures)
}

func TestGenerateEmpty(t *testing.T) {
	agg := New(testCatalog())

	hm := agg.Generate(nil)

	assert.Equal(t, 0, hm.TotalUIs)
	assert.Equal(t, 100.0, hm.AverageCompliance)
	assert.Equal(t, "No UIs analyzed", hm.Summary.Message)
	assert.Empty(t, hm.Summary.WorstPerformer)
}

func TestGenerateWorstPerformerTieKeepsFirst(t *testing.T) {
	agg := New(testCatalog())

	scans := []model.UIScan{
		{UIName: "first", Usages: usagesFor("subgrid")},
		{UIName: "second", Usages: usagesFor("subgrid")},
	}

	hm := agg.Generate(scans)
	assert.Equal(t, "first", hm.Summary.WorstPerformer)
}
