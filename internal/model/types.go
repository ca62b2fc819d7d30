package model

import "time"

// Baseline status classifications derived from global support share.
const (
	StatusWidelyAvailable = "widely_available"
	StatusNewlyAvailable  = "newly_available"
	StatusLimited         = "limited"
)

// FeatureRecord is one entry in the baseline catalog. Records are immutable
// once produced; a catalog refresh replaces the whole set.
type FeatureRecord struct {
	Name           string            `json:"name"`
	BaselineStatus string            `json:"baseline_status"`
	GlobalSupport  float64           `json:"global_support"`
	SafeYear       *int              `json:"safe_year"`
	Alternatives   []string          `json:"alternatives"`
	Browsers       map[string]string `json:"browsers"`
	MDNURL         string            `json:"mdn_url,omitempty"`
}

// FeatureUsage is a single detected occurrence of a feature in source text.
type FeatureUsage struct {
	FeatureName string `json:"feature_name"`
	Location    string `json:"location"`
	LineNumber  int    `json:"line_number"`
	Snippet     string `json:"snippet"`
}

// MarketImpact is one region's estimated share of affected users.
type MarketImpact struct {
	Market      string  `json:"market"`
	AffectedPct float64 `json:"affected_pct"`
}

// RiskTier buckets a numeric risk level for presentation layers. The core
// computes the tier; emoji and locale-specific text belong to callers.
type RiskTier string

const (
	TierSafe     RiskTier = "safe"
	TierCaution  RiskTier = "caution"
	TierHighRisk RiskTier = "high_risk"
)

// RiskScore is a standalone risk rating for one feature, independent of any UI.
type RiskScore struct {
	FeatureName     string            `json:"feature_name"`
	RiskLevel       float64           `json:"risk_level"`
	GlobalSupport   float64           `json:"global_support"`
	AffectedMarkets []MarketImpact    `json:"affected_markets"`
	SafeYear        *int              `json:"safe_year"`
	Alternatives    []string          `json:"alternatives"`
	Tier            RiskTier          `json:"tier"`
	Recommendation  string            `json:"recommendation"`
	Browsers        map[string]string `json:"browsers"`
}

// RiskBuckets groups feature names by support-based risk.
type RiskBuckets struct {
	High   []string `json:"high"`
	Medium []string `json:"medium"`
	Low    []string `json:"low"`
}

// UIScore is the aggregate compatibility assessment for one UI's usages.
type UIScore struct {
	GlobalSupport      float64        `json:"global_support"`
	AffectedUsersPct   float64        `json:"affected_users_pct"`
	TopMarketsAffected []MarketImpact `json:"top_markets_affected"`
	FeaturesByRisk     RiskBuckets    `json:"features_by_risk"`
}

// UIAnalysis is the derived compliance summary for one UI scan.
type UIAnalysis struct {
	UIName             string    `json:"ui_name"`
	TotalFeatures      int       `json:"total_features"`
	BaselineCompliant  int       `json:"baseline_compliant"`
	DeprecatedFeatures []string  `json:"deprecated_features"`
	HighRiskFeatures   []string  `json:"high_risk_features"`
	ComplianceScore    float64   `json:"compliance_score"`
	ScanDate           time.Time `json:"scan_date"`
}

// UIScan pairs a UI name with its detected usages. Aggregation input is a
// slice, not a map, so encounter order (and worst-performer tie-breaking)
// stays deterministic.
type UIScan struct {
	UIName string         `json:"ui_name"`
	Usages []FeatureUsage `json:"usages"`
}

// HeatmapSummary holds the headline statistics of an org heatmap.
type HeatmapSummary struct {
	LowComplianceUIs int    `json:"low_compliance_uis"`
	HighRiskUIs      int    `json:"high_risk_uis"`
	Message          string `json:"message"`
	WorstPerformer   string `json:"worst_performer,omitempty"`
}

// OrgHeatmap aggregates many UI analyses into one organizational snapshot.
type OrgHeatmap struct {
	TotalUIs                int            `json:"total_uis"`
	AverageCompliance       float64        `json:"average_compliance"`
	UIAnalyses              []UIAnalysis   `json:"ui_analyses"`
	DeprecatedFeatureCount  int            `json:"deprecated_features_count"`
	DeprecatedFeatures      []string       `json:"deprecated_features"`
	Summary                 HeatmapSummary `json:"summary"`
	GeneratedAt             time.Time      `json:"generated_at"`
}
