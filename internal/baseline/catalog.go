package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"wfip/internal/model"
)

// ErrFeatureNotFound is returned when a feature name has no catalog record.
var ErrFeatureNotFound = errors.New("feature not found in baseline catalog")

// Catalog is the read-only lookup surface the scoring pipeline depends on.
// Name matching is exact and case-sensitive.
type Catalog interface {
	Lookup(name string) (model.FeatureRecord, bool)
	All() []model.FeatureRecord
}

// Store holds baseline support records in memory, backed by a JSON cache
// file. Reads are safe for concurrent use; Replace swaps the whole set so an
// in-flight scan never observes a half-applied refresh.
type Store struct {
	mu         sync.RWMutex
	features   map[string]model.FeatureRecord
	cachePath  string
	lastUpdate time.Time
}

// NewStore creates a store and loads the cache file if one exists.
func NewStore(cachePath string) *Store {
	s := &Store{
		features:  make(map[string]model.FeatureRecord),
		cachePath: cachePath,
	}
	if err := s.loadCache(); err != nil {
		slog.Debug("no baseline cache loaded", "path", cachePath, "error", err)
	}
	return s
}

// Lookup returns the record for an exact feature name.
func (s *Store) Lookup(name string) (model.FeatureRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.features[name]
	return rec, ok
}

// All returns every record, sorted by name.
func (s *Store) All() []model.FeatureRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.FeatureRecord, 0, len(s.features))
	for _, rec := range s.features {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records
}

// Count returns the number of known features.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.features)
}

// LastUpdate reports when the catalog was last refreshed or cached.
func (s *Store) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// Replace swaps in a freshly fetched record set and persists the cache.
func (s *Store) Replace(records []model.FeatureRecord) error {
	features := make(map[string]model.FeatureRecord, len(records))
	for _, rec := range records {
		features[rec.Name] = rec
	}

	s.mu.Lock()
	s.features = features
	s.lastUpdate = time.Now()
	s.mu.Unlock()

	return s.saveCache()
}

type cacheFile struct {
	LastUpdate time.Time                      `json:"last_update"`
	Features   map[string]model.FeatureRecord `json:"features"`
}

func (s *Store) saveCache() error {
	s.mu.RLock()
	payload := cacheFile{LastUpdate: s.lastUpdate, Features: s.features}
	data, err := json.MarshalIndent(payload, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal baseline cache: %w", err)
	}
	if dir := filepath.Dir(s.cachePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	if err := os.WriteFile(s.cachePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write baseline cache: %w", err)
	}
	return nil
}

func (s *Store) loadCache() error {
	data, err := os.ReadFile(s.cachePath)
	if err != nil {
		return err
	}
	var payload cacheFile
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to parse baseline cache: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if payload.Features != nil {
		s.features = payload.Features
	}
	s.lastUpdate = payload.LastUpdate
	return nil
}

// StatusFromSupport classifies a global support percentage.
func StatusFromSupport(support float64) string {
	switch {
	case support >= 95:
		return model.StatusWidelyAvailable
	case support >= 85:
		return model.StatusNewlyAvailable
	default:
		return model.StatusLimited
	}
}

// EstimateSafeYear guesses the year after which use of a feature is safe.
func EstimateSafeYear(support float64, now time.Time) *int {
	year := now.Year()
	switch {
	case support >= 95:
		year -= 2
	case support >= 85:
		// current year
	default:
		year += 2
	}
	return &year
}

// alternativesMap holds curated fallback techniques for well-known features.
var alternativesMap = map[string][]string{
	"backdrop-filter":   {"filter + position:fixed", "semi-transparent overlays"},
	"subgrid":           {"nested grids", "flexbox layouts"},
	"container-queries": {"media queries", "ResizeObserver API"},
	":has()":            {":not() combinations", "JavaScript selectors"},
	"view-transitions":  {"CSS transitions", "FLIP technique"},
	"scroll-snap":       {"smooth-scroll libraries", "custom scroll handlers"},
}

// AlternativesFor returns known fallback techniques for a feature name.
func AlternativesFor(name string) []string {
	return alternativesMap[name]
}
