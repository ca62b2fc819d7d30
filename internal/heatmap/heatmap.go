// Package heatmap turns independent per-UI scans into an organization-wide
// compliance snapshot.
package heatmap

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"wfip/internal/baseline"
	"wfip/internal/model"
)

// DeprecatedCutoffYear marks features whose safe year predates it as
// deprecated. Policy constant, not user-configurable.
const DeprecatedCutoffYear = 2018

// LowComplianceThreshold flags UIs that need immediate attention.
const LowComplianceThreshold = 70.0

// Aggregator computes per-UI analyses and reduces them to an org heatmap.
type Aggregator struct {
	catalog baseline.Catalog
	now     func() time.Time
}

// New creates an aggregator reading from the given catalog.
func New(catalog baseline.Catalog) *Aggregator {
	return &Aggregator{catalog: catalog, now: time.Now}
}

// AnalyzeUI derives the compliance summary for one UI's usage list.
// Distinct feature names are counted, not raw occurrences; names absent from
// the catalog count toward the total but not toward compliance.
func (a *Aggregator) AnalyzeUI(uiName string, usages []model.FeatureUsage) model.UIAnalysis {
	names := distinctNames(usages)

	compliant := 0
	deprecated := []string{}
	highRisk := []string{}

	for _, name := range names {
		record, ok := a.catalog.Lookup(name)
		if !ok {
			continue
		}
		switch record.BaselineStatus {
		case model.StatusWidelyAvailable:
			compliant++
		case model.StatusLimited:
			highRisk = append(highRisk, name)
		}
		if record.SafeYear != nil && *record.SafeYear < DeprecatedCutoffYear {
			deprecated = append(deprecated, name)
		}
	}

	total := len(names)
	score := 100.0
	if total > 0 {
		score = round2(float64(compliant) / float64(total) * 100)
	}

	return model.UIAnalysis{
		UIName:             uiName,
		TotalFeatures:      total,
		BaselineCompliant:  compliant,
		DeprecatedFeatures: deprecated,
		HighRiskFeatures:   highRisk,
		ComplianceScore:    score,
		ScanDate:           a.now(),
	}
}

// Generate aggregates the given scans into one heatmap. Per-UI analyses are
// independent and run concurrently; the reduction waits for all of them.
// Scan order is preserved, which is also the worst-performer tie-break.
func (a *Aggregator) Generate(scans []model.UIScan) model.OrgHeatmap {
	analyses := make([]model.UIAnalysis, len(scans))

	var wg sync.WaitGroup
	for i, scan := range scans {
		wg.Add(1)
		go func(i int, scan model.UIScan) {
			defer wg.Done()
			analyses[i] = a.AnalyzeUI(scan.UIName, scan.Usages)
		}(i, scan)
	}
	wg.Wait()

	avg := 100.0
	if len(analyses) > 0 {
		sum := 0.0
		for _, analysis := range analyses {
			sum += analysis.ComplianceScore
		}
		avg = round2(sum / float64(len(analyses)))
	}

	// Union across UIs: a feature deprecated in three UIs counts once.
	deprecatedSet := make(map[string]bool)
	for _, analysis := range analyses {
		for _, name := range analysis.DeprecatedFeatures {
			deprecatedSet[name] = true
		}
	}
	deprecated := make([]string, 0, len(deprecatedSet))
	for name := range deprecatedSet {
		deprecated = append(deprecated, name)
	}
	sort.Strings(deprecated)

	return model.OrgHeatmap{
		TotalUIs:               len(analyses),
		AverageCompliance:      avg,
		UIAnalyses:             analyses,
		DeprecatedFeatureCount: len(deprecated),
		DeprecatedFeatures:     deprecated,
		Summary:                summarize(analyses),
		GeneratedAt:            a.now(),
	}
}

func summarize(analyses []model.UIAnalysis) model.HeatmapSummary {
	if len(analyses) == 0 {
		return model.HeatmapSummary{Message: "No UIs analyzed"}
	}

	low := 0
	highRisk := 0
	worst := analyses[0]
	for _, analysis := range analyses {
		if analysis.ComplianceScore < LowComplianceThreshold {
			low++
		}
		if len(analysis.HighRiskFeatures) > 0 {
			highRisk++
		}
		if analysis.ComplianceScore < worst.ComplianceScore {
			worst = analysis
		}
	}

	return model.HeatmapSummary{
		LowComplianceUIs: low,
		HighRiskUIs:      highRisk,
		Message:          fmt.Sprintf("%d UIs need immediate attention", low),
		WorstPerformer:   worst.UIName,
	}
}

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

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
