package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bonzainsights/WorldInsights/internal/aggregator"
	"github.com/bonzainsights/WorldInsights/internal/clients"
	"github.com/bonzainsights/WorldInsights/internal/config"
	"github.com/bonzainsights/WorldInsights/internal/llm"
	"github.com/bonzainsights/WorldInsights/internal/models"
	"github.com/bonzainsights/WorldInsights/internal/reports"
	"github.com/bonzainsights/WorldInsights/internal/router"
)

// stubClient serves canned records without network access.
type stubClient struct {
	records   []models.Record
	fail      bool
	dataCalls atomic.Int32
}

func (s *stubClient) Name() string { return "stub" }

func (s *stubClient) GetCountries(ctx context.Context) ([]models.Country, error) {
	if s.fail {
		return nil, fmt.Errorf("upstream unavailable")
	}
	return []models.Country{
		{Code: "USA", Name: "United States"},
		{Code: "GBR", Name: "United Kingdom"},
	}, nil
}

func (s *stubClient) GetIndicators(ctx context.Context) ([]models.Indicator, error) {
	if s.fail {
		return nil, fmt.Errorf("upstream unavailable")
	}
	return []models.Indicator{{Code: "SP.POP.TOTL", Name: "Population, total"}}, nil
}

func (s *stubClient) GetData(ctx context.Context, countryCode, indicatorCode string, startYear, endYear int) ([]models.Record, error) {
	s.dataCalls.Add(1)
	if s.fail {
		return nil, fmt.Errorf("upstream unavailable")
	}
	var out []models.Record
	for _, r := range s.records {
		if r.Country == countryCode && r.Indicator == indicatorCode {
			out = append(out, r)
		}
	}
	return out, nil
}

// memoryStorage collects stored files in memory.
type memoryStorage struct {
	files     map[string][]byte
	snapshots []string
}

func (m *memoryStorage) Close() error { return nil }

func (m *memoryStorage) StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error {
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[filename] = fileData
	return nil
}

func (m *memoryStorage) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	data, ok := m.files[filePath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", filePath)
	}
	return data, nil
}

func (m *memoryStorage) ListSnapshots(ctx context.Context, limit int) ([]string, error) {
	if limit > 0 && len(m.snapshots) > limit {
		return m.snapshots[:limit], nil
	}
	return m.snapshots, nil
}

func newTestServer(t *testing.T, stub *stubClient, store *memoryStorage) *Server {
	t.Helper()
	if store == nil {
		store = &memoryStorage{}
	}

	agg := aggregator.New([]aggregator.Source{
		{Tag: clients.SourceWorldBank, Client: stub},
	}, router.New(), 2)

	cfg := &config.Config{Port: "8080", CacheTTL: 0}
	reportSvc := reports.NewService(agg, llm.NewNarrativeClient("", "gpt-4o-mini"), store)
	return New(cfg, agg, reportSvc, store)
}

func popRecords() []models.Record {
	return []models.Record{
		{Country: "USA", Year: 2019, Indicator: "SP.POP.TOTL", Value: models.Float64(328.2), Source: "worldbank"},
		{Country: "USA", Year: 2020, Indicator: "SP.POP.TOTL", Value: models.Float64(331.5), Source: "worldbank"},
		{Country: "GBR", Year: 2019, Indicator: "SP.POP.TOTL", Value: models.Float64(66.8), Source: "worldbank"},
		{Country: "GBR", Year: 2020, Indicator: "SP.POP.TOTL", Value: models.Float64(67.1), Source: "worldbank"},
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubClient{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Data["status"] != "healthy" {
		t.Errorf("unexpected health payload: %v", resp.Data)
	}
}

func TestHandleIndicators(t *testing.T) {
	srv := newTestServer(t, &stubClient{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/indicators", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "SP.POP.TOTL") {
		t.Errorf("expected indicator in response, got %s", rec.Body.String())
	}
}

func TestHandleDataValidation(t *testing.T) {
	srv := newTestServer(t, &stubClient{records: popRecords()}, nil)
	routes := srv.Routes()

	tests := []struct {
		name string
		url  string
		want int
	}{
		{"missing indicators", "/api/v1/data?countries=USA", http.StatusBadRequest},
		{"missing countries", "/api/v1/data?indicators=SP.POP.TOTL", http.StatusBadRequest},
		{"bad year", "/api/v1/data?indicators=SP.POP.TOTL&countries=USA&start_year=abc", http.StatusBadRequest},
		{"inverted range", "/api/v1/data?indicators=SP.POP.TOTL&countries=USA&start_year=2020&end_year=2010", http.StatusBadRequest},
		{"bad chart type", "/api/v1/data?indicators=SP.POP.TOTL&countries=USA&chart_type=pie", http.StatusBadRequest},
		{"valid", "/api/v1/data?indicators=SP.POP.TOTL&countries=USA,GBR", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleDataChartProjection(t *testing.T) {
	srv := newTestServer(t, &stubClient{records: popRecords()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/data?indicators=SP.POP.TOTL&countries=USA,GBR&chart_type=line", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data map[string]map[string]map[string]*float64 `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Data["SP.POP.TOTL"]["USA"]["2020"] == nil {
		t.Errorf("line projection missing USA 2020: %s", rec.Body.String())
	}
}

func TestHandleDataUpstreamFailure(t *testing.T) {
	srv := newTestServer(t, &stubClient{fail: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/data?indicators=SP.POP.TOTL&countries=USA", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("expected error envelope, got %s", rec.Body.String())
	}
}

func TestHandleCorrelations(t *testing.T) {
	records := popRecords()
	records = append(records,
		models.Record{Country: "USA", Year: 2019, Indicator: "NY.GDP.PCAP.CD", Value: models.Float64(62000), Source: "worldbank"},
		models.Record{Country: "USA", Year: 2020, Indicator: "NY.GDP.PCAP.CD", Value: models.Float64(63500), Source: "worldbank"},
		models.Record{Country: "GBR", Year: 2019, Indicator: "NY.GDP.PCAP.CD", Value: models.Float64(39500), Source: "worldbank"},
		models.Record{Country: "GBR", Year: 2020, Indicator: "NY.GDP.PCAP.CD", Value: models.Float64(40300), Source: "worldbank"},
	)
	srv := newTestServer(t, &stubClient{records: records}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/correlations?indicators=SP.POP.TOTL,NY.GDP.PCAP.CD&countries=USA,GBR", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data map[string]map[string]*float64 `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	diag := resp.Data["SP.POP.TOTL"]["SP.POP.TOTL"]
	if diag == nil || *diag != 1.0 {
		t.Errorf("expected diagonal 1.0, got %v", diag)
	}
}

func TestHandleCorrelationsRequiresTwoIndicators(t *testing.T) {
	stub := &stubClient{records: popRecords()}
	srv := newTestServer(t, stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/correlations?indicators=SP.POP.TOTL&countries=USA,GBR", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "at least 2 indicators") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
	// The request must be rejected before any upstream fetch.
	if calls := stub.dataCalls.Load(); calls != 0 {
		t.Errorf("expected no upstream calls, got %d", calls)
	}
}

func TestHandleGenerate(t *testing.T) {
	store := &memoryStorage{}
	srv := newTestServer(t, &stubClient{records: popRecords()}, store)

	body := strings.NewReader(`{"indicators":["SP.POP.TOTL"],"countries":["USA","GBR"],"start_year":2019,"end_year":2020}`)
	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, ok := store.files["report.html"]; !ok {
		t.Error("report.html was not stored")
	}
}

func TestHandleGenerateValidation(t *testing.T) {
	srv := newTestServer(t, &stubClient{records: popRecords()}, nil)

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"countries":["USA"]}`))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleFileProxy(t *testing.T) {
	store := &memoryStorage{
		files: map[string][]byte{
			"snapshots/2024/06/01/InsightsReport-2024-06-01-12-00-00/report.html": []byte("<html></html>"),
		},
	}
	srv := newTestServer(t, &stubClient{}, store)
	routes := srv.Routes()

	req := httptest.NewRequest(http.MethodGet, "/files/snapshots/2024/06/01/InsightsReport-2024-06-01-12-00-00/report.html", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html" {
		t.Errorf("expected text/html, got %s", ct)
	}

	req = httptest.NewRequest(http.MethodGet, "/files/missing.html", nil)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing file, got %d", rec.Code)
	}
}

func TestHandleRootRedirectsToLatest(t *testing.T) {
	store := &memoryStorage{
		snapshots: []string{"snapshots/2024/06/01/InsightsReport-2024-06-01-12-00-00"},
	}
	srv := newTestServer(t, &stubClient{}, store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasSuffix(loc, "/report.html") {
		t.Errorf("unexpected redirect target: %s", loc)
	}
}

func TestCacheServesSecondRequest(t *testing.T) {
	stub := &stubClient{records: popRecords()}
	agg := aggregator.New([]aggregator.Source{
		{Tag: clients.SourceWorldBank, Client: stub},
	}, router.New(), 2)

	store := &memoryStorage{}
	cfg := &config.Config{Port: "8080", CacheTTL: time.Minute}
	srv := New(cfg, agg, reports.NewService(agg, llm.NewNarrativeClient("", "gpt-4o-mini"), store), store)
	routes := srv.Routes()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/data?indicators=SP.POP.TOTL&countries=USA", nil)
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	// Break the upstream; the cached response must still be served.
	stub.fail = true
	req := httptest.NewRequest(http.MethodGet, "/api/v1/data?indicators=SP.POP.TOTL&countries=USA", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected cached 200, got %d", rec.Code)
	}
}
