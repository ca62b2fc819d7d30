package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"wfip/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and applies migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ui_name TEXT NOT NULL,
			scan_type TEXT DEFAULT 'directory',
			scan_date DATETIME DEFAULT CURRENT_TIMESTAMP,
			compliance_score REAL,
			total_features INTEGER,
			baseline_compliant INTEGER,
			url TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS feature_usages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id INTEGER,
			feature_name TEXT,
			location TEXT,
			line_number INTEGER,
			snippet TEXT,
			FOREIGN KEY (scan_id) REFERENCES scans(id)
		);`,
		`CREATE TABLE IF NOT EXISTS risk_assessments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			feature_name TEXT UNIQUE,
			risk_level REAL,
			global_support REAL,
			assessment_date DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scans_ui_date ON scans(ui_name, scan_date DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_usages_scan ON feature_usages(scan_id);`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveScan persists an analysis and its usages in one transaction.
func (s *SQLiteStore) SaveScan(analysis model.UIAnalysis, usages []model.FeatureUsage, url string) (int64, error) {
	scanType := ScanTypeDirectory
	if url != "" {
		scanType = ScanTypeCrawl
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO scans (ui_name, scan_type, scan_date, compliance_score, total_features, baseline_compliant, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		analysis.UIName, scanType, analysis.ScanDate, analysis.ComplianceScore,
		analysis.TotalFeatures, analysis.BaselineCompliant, url,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan: %w", err)
	}
	scanID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, usage := range usages {
		if _, err := tx.Exec(
			`INSERT INTO feature_usages (scan_id, feature_name, location, line_number, snippet)
			 VALUES (?, ?, ?, ?, ?)`,
			scanID, usage.FeatureName, usage.Location, usage.LineNumber, usage.Snippet,
		); err != nil {
			return 0, fmt.Errorf("failed to insert usage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan: %w", err)
	}
	return scanID, nil
}

// GetScan retrieves a single scan by ID.
func (s *SQLiteStore) GetScan(id int64) (Scan, error) {
	row := s.db.QueryRow(
		`SELECT id, ui_name, scan_type, scan_date, compliance_score, total_features, baseline_compliant, COALESCE(url, '')
		 FROM scans WHERE id = ?`, id)

	var scan Scan
	if err := row.Scan(&scan.ID, &scan.UIName, &scan.ScanType, &scan.ScanDate,
		&scan.ComplianceScore, &scan.TotalFeatures, &scan.BaselineCompliant, &scan.URL); err != nil {
		return Scan{}, err
	}
	return scan, nil
}

// History retrieves recent scans, newest first.
func (s *SQLiteStore) History(uiName string, limit int) ([]Scan, error) {
	query := `SELECT id, ui_name, scan_type, scan_date, compliance_score, total_features, baseline_compliant, COALESCE(url, '')
		FROM scans`
	args := []any{}
	if uiName != "" {
		query += ` WHERE ui_name = ?`
		args = append(args, uiName)
	}
	query += ` ORDER BY scan_date DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		var scan Scan
		if err := rows.Scan(&scan.ID, &scan.UIName, &scan.ScanType, &scan.ScanDate,
			&scan.ComplianceScore, &scan.TotalFeatures, &scan.BaselineCompliant, &scan.URL); err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// Usages retrieves the usage list saved with a scan.
func (s *SQLiteStore) Usages(scanID int64) ([]model.FeatureUsage, error) {
	rows, err := s.db.Query(
		`SELECT feature_name, location, line_number, snippet FROM feature_usages WHERE scan_id = ? ORDER BY id`,
		scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usages []model.FeatureUsage
	for rows.Next() {
		var usage model.FeatureUsage
		if err := rows.Scan(&usage.FeatureName, &usage.Location, &usage.LineNumber, &usage.Snippet); err != nil {
			return nil, err
		}
		usages = append(usages, usage)
	}
	return usages, rows.Err()
}

// SaveRiskAssessment upserts the latest risk rating for a feature.
func (s *SQLiteStore) SaveRiskAssessment(score model.RiskScore) error {
	_, err := s.db.Exec(
		`INSERT INTO risk_assessments (feature_name, risk_level, global_support, assessment_date)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(feature_name) DO UPDATE SET
			risk_level = excluded.risk_level,
			global_support = excluded.global_support,
			assessment_date = excluded.assessment_date`,
		score.FeatureName, score.RiskLevel, score.GlobalSupport, time.Now(),
	)
	return err
}
