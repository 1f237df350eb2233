package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bonzainsights/WorldInsights/internal/cache"
	"github.com/bonzainsights/WorldInsights/internal/config"
	"github.com/bonzainsights/WorldInsights/internal/correlate"
	"github.com/bonzainsights/WorldInsights/internal/storage"
	"github.com/bonzainsights/WorldInsights/internal/transform"
)

// handleHealth provides the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   config.GetVersion(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleIndicators lists indicators from all sources.
func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	key := cache.Key("indicators")
	if cached, ok := s.cache.Get(key); ok {
		s.writeJSON(w, http.StatusOK, cached)
		return
	}

	indicators, err := s.aggregator.ListIndicators(r.Context())
	if err != nil {
		s.log.Error("Failed to list indicators", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.cache.Set(key, indicators)
	s.writeJSON(w, http.StatusOK, indicators)
}

// handleCountries lists countries from all sources, deduplicated.
func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	key := cache.Key("countries")
	if cached, ok := s.cache.Get(key); ok {
		s.writeJSON(w, http.StatusOK, cached)
		return
	}

	countries, err := s.aggregator.ListCountries(r.Context())
	if err != nil {
		s.log.Error("Failed to list countries", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.cache.Set(key, countries)
	s.writeJSON(w, http.StatusOK, countries)
}

// dataQuery holds the parsed parameters shared by the data and
// correlation endpoints.
type dataQuery struct {
	indicators []string
	countries  []string
	startYear  int
	endYear    int
}

func parseDataQuery(r *http.Request) (*dataQuery, error) {
	q := &dataQuery{
		indicators: splitParam(r.URL.Query().Get("indicators")),
		countries:  splitParam(r.URL.Query().Get("countries")),
	}
	if len(q.indicators) == 0 {
		return nil, fmt.Errorf("at least one indicator is required")
	}
	if len(q.countries) == 0 {
		return nil, fmt.Errorf("at least one country is required")
	}

	var err error
	if q.startYear, err = parseYear(r.URL.Query().Get("start_year")); err != nil {
		return nil, err
	}
	if q.endYear, err = parseYear(r.URL.Query().Get("end_year")); err != nil {
		return nil, err
	}
	if q.startYear != 0 && q.endYear != 0 && q.startYear > q.endYear {
		return nil, fmt.Errorf("start_year must not be after end_year")
	}
	return q, nil
}

func splitParam(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseYear(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	return year, nil
}

// handleData fetches records and optionally reshapes them for a chart.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	q, err := parseDataQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chartType := r.URL.Query().Get("chart_type")

	key := cache.Key("data",
		strings.Join(q.indicators, ","), strings.Join(q.countries, ","),
		strconv.Itoa(q.startYear), strconv.Itoa(q.endYear), chartType)
	if cached, ok := s.cache.Get(key); ok {
		s.writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := s.aggregator.FetchData(r.Context(), q.indicators, q.countries, q.startYear, q.endYear)
	if err != nil {
		s.log.Error("Data fetch failed", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	var payload interface{} = records
	if chartType != "" {
		payload, err = transform.Transform(records, transform.ChartType(chartType))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	s.cache.Set(key, payload)
	s.writeJSON(w, http.StatusOK, payload)
}

// handleCorrelations computes the Pearson matrix for the selection.
func (s *Server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	q, err := parseDataQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(q.indicators) < 2 {
		s.writeError(w, http.StatusBadRequest, "at least 2 indicators are required for correlation")
		return
	}

	key := cache.Key("correlations",
		strings.Join(q.indicators, ","), strings.Join(q.countries, ","),
		strconv.Itoa(q.startYear), strconv.Itoa(q.endYear))
	if cached, ok := s.cache.Get(key); ok {
		s.writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := s.aggregator.FetchData(r.Context(), q.indicators, q.countries, q.startYear, q.endYear)
	if err != nil {
		s.log.Error("Data fetch failed", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if len(records) == 0 {
		s.writeError(w, http.StatusNotFound, "no data available for the requested selection")
		return
	}

	matrix, err := correlate.Matrix(records)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.cache.Set(key, matrix)
	s.writeJSON(w, http.StatusOK, matrix)
}

// generateRequest is the POST /generate body.
type generateRequest struct {
	Indicators []string `json:"indicators"`
	Countries  []string `json:"countries"`
	StartYear  int      `json:"start_year"`
	EndYear    int      `json:"end_year"`
}

// handleGenerate runs the snapshot pipeline. Only one generation may
// run at a time.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !s.generateMutex.TryLock() {
		s.log.Warn("Snapshot generation already in progress, rejecting request")
		s.writeError(w, http.StatusConflict, "snapshot generation already in progress")
		return
	}
	defer s.generateMutex.Unlock()

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Indicators) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one indicator is required")
		return
	}
	if len(req.Countries) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one country is required")
		return
	}

	folder, err := s.reports.GenerateSnapshot(r.Context(), req.Indicators, req.Countries, req.StartYear, req.EndYear)
	if err != nil {
		s.log.Error("Snapshot generation failed", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"folder": folder,
		"report": "/files/" + folder + "/report.html",
	})
}

// handleListSnapshots lists recent snapshot folders.
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > 100 {
		limit = 100
	}

	snapshots, err := s.storage.ListSnapshots(r.Context(), limit)
	if err != nil {
		s.log.Error("Failed to list snapshots", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

// handleFileProxy serves snapshot files through the storage client.
func (s *Server) handleFileProxy(w http.ResponseWriter, r *http.Request) {
	filePath := chi.URLParam(r, "*")
	if filePath == "" {
		s.writeError(w, http.StatusBadRequest, "file path required")
		return
	}
	if strings.Contains(filePath, "..") {
		s.writeError(w, http.StatusBadRequest, "invalid file path")
		return
	}

	fileData, err := s.storage.GetFile(r.Context(), filePath)
	if err != nil {
		s.log.Warn("File not found in storage", map[string]interface{}{
			"path":  filePath,
			"error": err.Error(),
		})
		s.writeError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Type", storage.ContentType(filePath))
	w.Write(fileData)
}

// handleRoot redirects to the latest snapshot report, or shows a
// placeholder page when none exist.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.storage.ListSnapshots(r.Context(), 1)
	if err == nil && len(snapshots) > 0 {
		http.Redirect(w, r, "/files/"+snapshots[0]+"/report.html", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<html><body><h1>World Insights</h1>`+
		`<p>No snapshots yet. POST /generate to create one.</p></body></html>`)
}
