package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenMeteoGetData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/archive" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("daily") != "temperature_2m_mean" || q.Get("timezone") != "UTC" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("start_date") != "2021-01-01" || q.Get("end_date") != "2021-12-31" {
			t.Errorf("unexpected date range: %s - %s", q.Get("start_date"), q.Get("end_date"))
		}
		w.Write([]byte(`{"daily":{
			"time": ["2021-01-01", "2021-01-02", "2021-01-03"],
			"temperature_2m_mean": [2.4, null, 3.1]
		}}`))
	}))
	defer server.Close()

	client := NewOpenMeteoClient(testOptions(server.URL))
	records, err := client.GetData(context.Background(), "GBR", "temperature_2m_mean", 2021, 2021)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Date != "2021-01-01" || records[0].Year != 2021 {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].Value != nil {
		t.Errorf("null observation should have nil value, got %v", *records[1].Value)
	}
	if records[2].Value == nil || *records[2].Value != 3.1 {
		t.Errorf("unexpected value: %v", records[2].Value)
	}
	if records[0].Source != "Open-Meteo" {
		t.Errorf("unexpected source: %s", records[0].Source)
	}
}

func TestOpenMeteoUnsupportedCountry(t *testing.T) {
	client := NewOpenMeteoClient(testOptions("http://localhost:1"))
	if _, err := client.GetData(context.Background(), "ATL", "temperature_2m_mean", 0, 0); err == nil {
		t.Error("expected error for unsupported country")
	}
}

func TestOpenMeteoMissingDailyBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reason":"parameter error"}`))
	}))
	defer server.Close()

	client := NewOpenMeteoClient(testOptions(server.URL))
	if _, err := client.GetData(context.Background(), "USA", "temperature_2m_mean", 0, 0); err == nil {
		t.Error("expected error for missing daily block")
	}
}

func TestOpenMeteoGetIndicators(t *testing.T) {
	client := NewOpenMeteoClient(testOptions("http://localhost:1"))
	indicators, err := client.GetIndicators(context.Background())
	if err != nil {
		t.Fatalf("GetIndicators failed: %v", err)
	}
	if len(indicators) != len(openMeteoIndicators) {
		t.Errorf("expected %d indicators, got %d", len(openMeteoIndicators), len(indicators))
	}
}
