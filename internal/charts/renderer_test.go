package charts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bonzainsights/WorldInsights/internal/models"
)

func testRecords() []models.Record {
	return []models.Record{
		{Country: "USA", Year: 2019, Indicator: "SP.POP.TOTL", Value: models.Float64(328.2), Source: "worldbank"},
		{Country: "USA", Year: 2020, Indicator: "SP.POP.TOTL", Value: models.Float64(331.5), Source: "worldbank"},
		{Country: "USA", Year: 2021, Indicator: "SP.POP.TOTL", Value: models.Float64(332.0), Source: "worldbank"},
		{Country: "GBR", Year: 2019, Indicator: "SP.POP.TOTL", Value: models.Float64(66.8), Source: "worldbank"},
		{Country: "GBR", Year: 2020, Indicator: "SP.POP.TOTL", Value: models.Float64(67.1), Source: "worldbank"},
		{Country: "GBR", Year: 2021, Indicator: "SP.POP.TOTL", Value: models.Float64(67.3), Source: "worldbank"},
		{Country: "USA", Year: 2020, Indicator: "NY.GDP.PCAP.CD", Value: models.Float64(63500), Source: "worldbank"},
		{Country: "GBR", Year: 2020, Indicator: "NY.GDP.PCAP.CD", Value: models.Float64(40300), Source: "worldbank"},
	}
}

func TestRenderAll(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir)

	files, err := r.RenderAll(testRecords())
	if err != nil {
		t.Fatalf("RenderAll failed: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("expected at least one chart file")
	}

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			t.Errorf("chart file missing: %v", err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("chart file %s is empty", file)
		}
		if filepath.Ext(file) != ".png" {
			t.Errorf("expected PNG output, got %s", file)
		}
	}
}

func TestRenderAllEmptyRecords(t *testing.T) {
	r := NewRenderer(t.TempDir())
	if _, err := r.RenderAll(nil); err == nil {
		t.Error("expected error for empty record set")
	}
}

func TestSlug(t *testing.T) {
	if got := slug("SP.POP.TOTL"); got != "sp_pop_totl" {
		t.Errorf("slug = %s", got)
	}
	if got := slug("temperature_2m_mean"); got != "temperature_2m_mean" {
		t.Errorf("slug = %s", got)
	}
}

func TestRenderAllIncludesScatter(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir)

	files, err := r.RenderAll(testRecords())
	if err != nil {
		t.Fatalf("RenderAll failed: %v", err)
	}

	found := false
	for _, file := range files {
		if strings.Contains(filepath.Base(file), "scatter_") {
			found = true
		}
	}
	if !found {
		t.Error("expected a scatter chart with two indicators present")
	}
}
