package main

import (
	"log/slog"

	"github.com/spf13/viper"

	"wfip/internal/baseline"
	"wfip/internal/db"
	"wfip/internal/detect"
	"wfip/internal/heatmap"
	"wfip/internal/market"
	"wfip/internal/score"
)

// openStore builds the configured storage backend.
func openStore() (db.Store, error) {
	return db.NewStore(db.StoreConfig{
		Type:             viper.GetString("db.driver"),
		ConnectionString: viper.GetString("db.dsn"),
	})
}

// openCatalog loads the baseline catalog from its local cache.
func openCatalog() *baseline.Store {
	store := baseline.NewStore(viper.GetString("baseline.cache_path"))
	if len(store.All()) == 0 {
		slog.Info("Baseline catalog is empty; run 'wfip refresh' to populate it")
	}
	return store
}

func newDetector() *detect.Detector {
	return detect.New()
}

// scanExtensions returns the configured file extensions, or nil to use
// the detector defaults.
func scanExtensions() []string {
	return viper.GetStringSlice("scan.extensions")
}

func newMarketData() *market.StaticData {
	return market.NewStaticData(viper.GetString("market.cache_path"))
}

func newCompatScorer(catalog baseline.Catalog) *score.CompatScorer {
	return score.NewCompatScorer(catalog, newMarketData())
}

func newRiskScorer(catalog baseline.Catalog) *score.RiskScorer {
	return score.NewRiskScorer(catalog, newMarketData())
}

func newAggregator(catalog baseline.Catalog) *heatmap.Aggregator {
	return heatmap.New(catalog)
}
