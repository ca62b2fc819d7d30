package market

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"wfip/internal/model"
)

// affectedWeight scales the global unsupported share into a per-region
// estimate. A stub proportional model, not real per-browser weighting.
const affectedWeight = 0.85

// Estimator ranks the regions most affected by a feature's missing support.
type Estimator interface {
	AffectedMarkets(globalSupport float64, topN int) []model.MarketImpact
}

// RegionShare holds one region's browser share table.
type RegionShare struct {
	Name     string             `json:"name"`
	Browsers map[string]float64 `json:"browsers"`
}

// StaticData is an Estimator backed by fixed regional share tables with an
// optional JSON cache file. Region order is fixed so rankings with tied
// affected percentages stay deterministic.
type StaticData struct {
	mu        sync.RWMutex
	regions   []RegionShare
	cachePath string
}

// NewStaticData creates an estimator seeded with the built-in 2024 share
// tables, overridden by the cache file when one exists.
func NewStaticData(cachePath string) *StaticData {
	d := &StaticData{
		regions:   defaultRegions(),
		cachePath: cachePath,
	}
	if err := d.loadCache(); err != nil {
		slog.Debug("no market cache loaded", "path", cachePath, "error", err)
	}
	return d
}

// AffectedMarkets estimates the topN regions with the most affected users
// for a feature at the given global support level, ranked descending.
// The "global" table is an input for estimation, never a ranked region.
func (d *StaticData) AffectedMarkets(globalSupport float64, topN int) []model.MarketImpact {
	d.mu.RLock()
	defer d.mu.RUnlock()

	unsupported := 100 - globalSupport

	var affected []model.MarketImpact
	for _, region := range d.regions {
		if region.Name == "global" {
			continue
		}
		affected = append(affected, model.MarketImpact{
			Market:      region.Name,
			AffectedPct: unsupported * affectedWeight,
		})
	}

	sort.SliceStable(affected, func(i, j int) bool {
		return affected[i].AffectedPct > affected[j].AffectedPct
	})

	if topN >= 0 && len(affected) > topN {
		affected = affected[:topN]
	}
	return affected
}

// Regions returns the configured share tables in their fixed order.
func (d *StaticData) Regions() []RegionShare {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]RegionShare, len(d.regions))
	copy(out, d.regions)
	return out
}

// SaveCache persists the current tables to the cache file.
func (d *StaticData) SaveCache() error {
	d.mu.RLock()
	data, err := json.MarshalIndent(d.regions, "", "  ")
	d.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal market data: %w", err)
	}
	if err := os.WriteFile(d.cachePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write market cache: %w", err)
	}
	return nil
}

func (d *StaticData) loadCache() error {
	data, err := os.ReadFile(d.cachePath)
	if err != nil {
		return err
	}
	var regions []RegionShare
	if err := json.Unmarshal(data, &regions); err != nil {
		return fmt.Errorf("failed to parse market cache: %w", err)
	}
	if len(regions) > 0 {
		d.mu.Lock()
		d.regions = regions
		d.mu.Unlock()
	}
	return nil
}

// defaultRegions returns realistic 2024 browser share tables.
func defaultRegions() []RegionShare {
	return []RegionShare{
		{Name: "global", Browsers: map[string]float64{
			"chrome": 65.52, "safari": 18.34, "edge": 5.25, "firefox": 3.12,
			"samsung": 2.68, "opera": 2.15, "other": 2.94,
		}},
		{Name: "US", Browsers: map[string]float64{
			"chrome": 49.87, "safari": 35.24, "edge": 7.93, "firefox": 3.58,
			"samsung": 1.25, "other": 2.13,
		}},
		{Name: "India", Browsers: map[string]float64{
			"chrome": 78.54, "safari": 8.12, "edge": 4.23, "firefox": 2.01,
			"samsung": 3.45, "other": 3.65,
		}},
		{Name: "China", Browsers: map[string]float64{
			"chrome": 45.23, "safari": 15.67, "edge": 8.91, "qq": 12.34,
			"sogou": 8.76, "other": 9.09,
		}},
		{Name: "Germany", Browsers: map[string]float64{
			"chrome": 52.34, "safari": 23.12, "edge": 10.45, "firefox": 8.76,
			"opera": 2.34, "other": 2.99,
		}},
		{Name: "Brazil", Browsers: map[string]float64{
			"chrome": 72.45, "safari": 15.34, "edge": 5.23, "firefox": 2.89,
			"samsung": 2.12, "other": 1.97,
		}},
	}
}
