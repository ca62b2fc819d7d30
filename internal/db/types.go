package db

import (
	"time"

	"wfip/internal/model"
)

// Scan types recorded with each saved analysis.
const (
	ScanTypeDirectory = "directory"
	ScanTypeCrawl     = "crawl"
)

// Scan is one persisted scan record.
type Scan struct {
	ID                int64     `json:"id"`
	UIName            string    `json:"ui_name"`
	ScanType          string    `json:"scan_type"`
	ScanDate          time.Time `json:"scan_date"`
	ComplianceScore   float64   `json:"compliance_score"`
	TotalFeatures     int       `json:"total_features"`
	BaselineCompliant int       `json:"baseline_compliant"`
	URL               string    `json:"url,omitempty"`
}

// Store is the persistence surface for scan results. Usage lists must
// round-trip losslessly: feature name, location, line number and snippet
// come back exactly as saved.
type Store interface {
	Close() error

	// SaveScan persists an analysis with its usages and returns the scan ID.
	// A non-empty url marks the scan as a crawl.
	SaveScan(analysis model.UIAnalysis, usages []model.FeatureUsage, url string) (int64, error)
	GetScan(id int64) (Scan, error)

	// History returns recent scans, newest first, optionally filtered by UI name.
	History(uiName string, limit int) ([]Scan, error)
	Usages(scanID int64) ([]model.FeatureUsage, error)

	// SaveRiskAssessment upserts the latest risk rating for a feature.
	SaveRiskAssessment(score model.RiskScore) error
}
