package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"wfip/internal/baseline"
	"wfip/internal/crawl"
	"wfip/internal/db"
	"wfip/internal/heatmap"
	"wfip/internal/metrics"
	"wfip/internal/model"
	"wfip/internal/score"
)

// defaultHistoryLimit bounds history queries without an explicit limit.
const defaultHistoryLimit = 50

// Server exposes the platform over a JSON API.
type Server struct {
	store      db.Store
	catalog    baseline.Catalog
	compat     *score.CompatScorer
	risk       *score.RiskScorer
	aggregator *heatmap.Aggregator
	crawler    *crawl.Crawler
	port       int
}

// NewServer creates a new API server.
func NewServer(store db.Store, catalog baseline.Catalog, compat *score.CompatScorer, risk *score.RiskScorer, aggregator *heatmap.Aggregator, crawler *crawl.Crawler, port int) *Server {
	return &Server{
		store:      store,
		catalog:    catalog,
		compat:     compat,
		risk:       risk,
		aggregator: aggregator,
		crawler:    crawler,
		port:       port,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	fmt.Printf("Starting API server at http://%s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/features", s.handleFeatures)
	mux.HandleFunc("GET /api/features/{name}", s.handleFeature)
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("POST /api/crawl", s.handleCrawl)
	mux.HandleFunc("GET /api/risk/{name}", s.handleRisk)
	mux.HandleFunc("POST /api/risk/batch", s.handleRiskBatch)
	mux.HandleFunc("GET /api/heatmap", s.handleHeatmap)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return metrics.RequestTrackingMiddleware(mux)
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.All())
}

func (s *Server) handleFeature(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	record, ok := s.catalog.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("feature %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type scanRequest struct {
	UIName string               `json:"ui_name"`
	Usages []model.FeatureUsage `json:"usages"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UIName == "" {
		writeError(w, http.StatusBadRequest, "ui_name is required")
		return
	}

	analysis := s.aggregator.AnalyzeUI(req.UIName, req.Usages)
	if s.store != nil {
		if _, err := s.store.SaveScan(analysis, req.Usages, ""); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save scan")
			return
		}
	}
	metrics.ScansCompleted.WithLabelValues(db.ScanTypeDirectory).Inc()
	metrics.UsagesDetected.Add(float64(len(req.Usages)))

	writeJSON(w, http.StatusOK, analysis)
}

type crawlRequest struct {
	UIName string `json:"ui_name"`
	URL    string `json:"url"`
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if req.UIName == "" {
		req.UIName = req.URL
	}

	pages, err := s.crawler.Crawl(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	var usages []model.FeatureUsage
	for _, page := range pages {
		usages = append(usages, page.Usages...)
	}

	analysis := s.aggregator.AnalyzeUI(req.UIName, usages)
	if s.store != nil {
		if _, err := s.store.SaveScan(analysis, usages, req.URL); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save scan")
			return
		}
	}
	metrics.ScansCompleted.WithLabelValues(db.ScanTypeCrawl).Inc()
	metrics.UsagesDetected.Add(float64(len(usages)))

	writeJSON(w, http.StatusOK, map[string]any{
		"analysis":      analysis,
		"pages_crawled": len(pages),
	})
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	riskScore, err := s.risk.ScoreFeature(name)
	if err != nil {
		if errors.Is(err, baseline.ErrFeatureNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.store != nil {
		_ = s.store.SaveRiskAssessment(riskScore)
	}
	writeJSON(w, http.StatusOK, riskScore)
}

type riskBatchRequest struct {
	Features []string `json:"features"`
}

type riskBatchResponse struct {
	Scores   []model.RiskScore `json:"scores"`
	NotFound []string          `json:"not_found,omitempty"`
}

func (s *Server) handleRiskBatch(w http.ResponseWriter, r *http.Request) {
	var req riskBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp := riskBatchResponse{Scores: []model.RiskScore{}}
	for _, name := range req.Features {
		riskScore, err := s.risk.ScoreFeature(name)
		if err != nil {
			resp.NotFound = append(resp.NotFound, name)
			continue
		}
		resp.Scores = append(resp.Scores, riskScore)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHeatmap rebuilds the org heatmap from storage, keeping the most
// recent scan per UI.
func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no storage configured")
		return
	}

	scans, err := s.store.History("", 1000)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load scan history")
		return
	}

	// History is newest first, so the first scan seen per UI wins.
	seen := map[string]bool{}
	var uiScans []model.UIScan
	for _, scan := range scans {
		if seen[scan.UIName] {
			continue
		}
		seen[scan.UIName] = true
		usages, err := s.store.Usages(scan.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load scan usages")
			return
		}
		uiScans = append(uiScans, model.UIScan{UIName: scan.UIName, Usages: usages})
	}

	writeJSON(w, http.StatusOK, s.aggregator.Generate(uiScans))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no storage configured")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &limit); err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
	}

	scans, err := s.store.History(r.URL.Query().Get("ui_name"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load scan history")
		return
	}
	if scans == nil {
		scans = []db.Scan{}
	}
	writeJSON(w, http.StatusOK, scans)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
