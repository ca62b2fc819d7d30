package baseline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"wfip/internal/model"
)

const (
	caniuseDataURL = "https://raw.githubusercontent.com/Fyrd/caniuse/main/fulldata-json/data-2.0.json"
	mdnBCDDataURL  = "https://unpkg.com/@mdn/browser-compat-data/data.json"
)

// marketShares is a simplified global browser share table used to estimate
// support when a source only reports per-browser versions.
var marketShares = map[string]float64{
	"chrome":  65.0,
	"safari":  18.0,
	"firefox": 3.0,
	"edge":    5.0,
	"opera":   2.0,
}

// Fetcher pulls baseline support data from caniuse and MDN BCD.
type Fetcher struct {
	HTTPClient *http.Client
	CaniuseURL string
	BCDURL     string
}

// NewFetcher creates a fetcher with the default upstream endpoints.
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		CaniuseURL: caniuseDataURL,
		BCDURL:     mdnBCDDataURL,
	}
}

// Refresh fetches both data sources and replaces the store's record set
// wholesale. caniuse entries win over BCD entries on name collisions.
func (f *Fetcher) Refresh(ctx context.Context, store *Store) error {
	records := make(map[string]model.FeatureRecord)

	caniuse, err := f.fetchCaniuse(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch caniuse data: %w", err)
	}
	for _, rec := range caniuse {
		records[rec.Name] = rec
	}

	bcd, err := f.fetchBCD(ctx)
	if err != nil {
		// BCD supplements caniuse; partial refresh is better than none.
		slog.Warn("failed to fetch MDN BCD data, continuing with caniuse only", "error", err)
	}
	for _, rec := range bcd {
		if _, exists := records[rec.Name]; !exists {
			records[rec.Name] = rec
		}
	}

	all := make([]model.FeatureRecord, 0, len(records))
	for _, rec := range records {
		all = append(all, rec)
	}
	if err := store.Replace(all); err != nil {
		return err
	}
	slog.Info("baseline catalog refreshed", "features", len(all))
	return nil
}

type caniuseData struct {
	Data map[string]caniuseFeature `json:"data"`
}

type caniuseFeature struct {
	UsagePercY float64                      `json:"usage_perc_y"`
	UsagePercA float64                      `json:"usage_perc_a"`
	Stats      map[string]map[string]string `json:"stats"`
	MDNURL     string                       `json:"mdn_url"`
}

func (f *Fetcher) fetchCaniuse(ctx context.Context) ([]model.FeatureRecord, error) {
	var payload caniuseData
	if err := f.getJSON(ctx, f.CaniuseURL, &payload); err != nil {
		return nil, err
	}

	now := time.Now()
	var records []model.FeatureRecord
	for name, feature := range payload.Data {
		support := feature.UsagePercY + feature.UsagePercA
		status := StatusFromSupport(support)

		// Earliest supporting version per browser.
		browsers := make(map[string]string)
		for browser, versions := range feature.Stats {
			ordered := make([]string, 0, len(versions))
			for version := range versions {
				ordered = append(ordered, version)
			}
			sort.Slice(ordered, func(i, j int) bool {
				return versionLess(ordered[i], ordered[j])
			})
			for _, version := range ordered {
				if flag := versions[version]; flag == "y" || flag == "a" {
					browsers[browser] = version
					break
				}
			}
		}

		records = append(records, model.FeatureRecord{
			Name:           name,
			BaselineStatus: status,
			GlobalSupport:  round2(support),
			SafeYear:       EstimateSafeYear(support, now),
			Alternatives:   AlternativesFor(name),
			Browsers:       browsers,
			MDNURL:         feature.MDNURL,
		})
	}
	return records, nil
}

type bcdData struct {
	CSS struct {
		Properties map[string]bcdEntry `json:"properties"`
	} `json:"css"`
	API map[string]bcdEntry `json:"api"`
}

type bcdEntry struct {
	Compat struct {
		Support map[string]json.RawMessage `json:"support"`
	} `json:"__compat"`
}

type bcdSupport struct {
	VersionAdded any `json:"version_added"`
}

func (f *Fetcher) fetchBCD(ctx context.Context) ([]model.FeatureRecord, error) {
	var payload bcdData
	if err := f.getJSON(ctx, f.BCDURL, &payload); err != nil {
		return nil, err
	}

	var records []model.FeatureRecord
	for name, entry := range payload.CSS.Properties {
		records = append(records, recordFromBCD(name, entry))
	}
	for name, entry := range payload.API {
		records = append(records, recordFromBCD(name, entry))
	}
	return records, nil
}

func recordFromBCD(name string, entry bcdEntry) model.FeatureRecord {
	browsers := make(map[string]string)
	for browser, raw := range entry.Compat.Support {
		// Support data is either a single object or a list of them.
		var single bcdSupport
		if err := json.Unmarshal(raw, &single); err == nil {
			if v := versionString(single.VersionAdded); v != "" {
				browsers[browser] = v
			}
			continue
		}
		var many []bcdSupport
		if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
			if v := versionString(many[0].VersionAdded); v != "" {
				browsers[browser] = v
			}
		}
	}

	support := estimateSupport(browsers)
	return model.FeatureRecord{
		Name:           name,
		BaselineStatus: StatusFromSupport(support),
		GlobalSupport:  support,
		SafeYear:       EstimateSafeYear(support, time.Now()),
		Alternatives:   AlternativesFor(name),
		Browsers:       browsers,
	}
}

// versionLess orders caniuse version labels numerically where possible.
// Labels like "4.0-4.4" or "TP" compare by their numeric prefix, with
// non-numeric labels sorting last.
func versionLess(a, b string) bool {
	av, aok := versionPrefix(a)
	bv, bok := versionPrefix(b)
	if aok && bok {
		if av != bv {
			return av < bv
		}
		return a < b
	}
	if aok != bok {
		return aok
	}
	return a < b
}

func versionPrefix(v string) (float64, bool) {
	end := 0
	for end < len(v) && (v[end] == '.' || (v[end] >= '0' && v[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(v[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func versionString(v any) string {
	switch val := v.(type) {
	case string:
		if val == "preview" {
			return ""
		}
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "true"
		}
	}
	return ""
}

// estimateSupport sums global market share across supporting browsers.
// A stub proportional estimate, not a real statistical measurement.
func estimateSupport(browsers map[string]string) float64 {
	total := 0.0
	for browser, share := range marketShares {
		if _, ok := browsers[browser]; ok {
			total += share
		}
	}
	return round2(total)
}

func (f *Fetcher) getJSON(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status: %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", url, err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
