package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWHOGetData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/WHOSIS_000001" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		filter := r.URL.Query().Get("$filter")
		if !strings.Contains(filter, "SpatialDim eq 'USA'") || !strings.Contains(filter, "IndicatorCode eq 'WHOSIS_000001'") {
			t.Errorf("unexpected filter: %s", filter)
		}
		w.Write([]byte(`{"value":[
			{"IndicatorCode":"WHOSIS_000001","SpatialDim":"USA","TimeDim":2018,"NumericValue":78.5},
			{"IndicatorCode":"WHOSIS_000001","SpatialDim":"USA","TimeDim":2019,"NumericValue":78.8},
			{"IndicatorCode":"WHOSIS_000001","SpatialDim":"USA","TimeDim":2020,"NumericValue":null},
			{"IndicatorCode":"WHOSIS_000001","SpatialDim":"USA","TimeDim":2021,"NumericValue":76.4}
		]}`))
	}))
	defer server.Close()

	client := NewWHOClient(testOptions(server.URL))
	records, err := client.GetData(context.Background(), "USA", "WHOSIS_000001", 2019, 2020)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}

	// Year bounds are applied client-side: 2018 and 2021 are filtered out.
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Year != 2019 || records[0].Value == nil || *records[0].Value != 78.8 {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].Year != 2020 || records[1].Value != nil {
		t.Errorf("expected nil value for 2020, got %+v", records[1])
	}
	if records[0].Source != "WHO" {
		t.Errorf("unexpected source: %s", records[0].Source)
	}
}

func TestWHOGetDataNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value":[]}`))
	}))
	defer server.Close()

	client := NewWHOClient(testOptions(server.URL))
	records, err := client.GetData(context.Background(), "ZZZ", "WHOSIS_000001", 0, 0)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestWHOGetCountries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/DIMENSION/COUNTRY/DimensionValues" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"value":[
			{"Code":"USA","Title":"United States of America","ParentTitle":"Americas"},
			{"Code":"GBR","Title":"United Kingdom","ParentTitle":"Europe"}
		]}`))
	}))
	defer server.Close()

	client := NewWHOClient(testOptions(server.URL))
	countries, err := client.GetCountries(context.Background())
	if err != nil {
		t.Fatalf("GetCountries failed: %v", err)
	}
	if len(countries) != 2 {
		t.Fatalf("expected 2 countries, got %d", len(countries))
	}
	if countries[0].Code != "USA" || countries[0].Region != "Americas" {
		t.Errorf("unexpected country: %+v", countries[0])
	}
}

func TestWHOGetIndicators(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("$top"); got != "100" {
			t.Errorf("expected $top=100, got %q", got)
		}
		w.Write([]byte(`{"value":[{"IndicatorCode":"WHOSIS_000001","IndicatorName":"Life expectancy at birth (years)"}]}`))
	}))
	defer server.Close()

	client := NewWHOClient(testOptions(server.URL))
	indicators, err := client.GetIndicators(context.Background())
	if err != nil {
		t.Fatalf("GetIndicators failed: %v", err)
	}
	if len(indicators) != 1 || indicators[0].Code != "WHOSIS_000001" {
		t.Errorf("unexpected indicators: %+v", indicators)
	}
}

func TestWHOGetDataInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>error</html>`))
	}))
	defer server.Close()

	client := NewWHOClient(testOptions(server.URL))
	if _, err := client.GetData(context.Background(), "USA", "WHOSIS_000001", 0, 0); err == nil {
		t.Error("expected error for malformed payload")
	}
}
