package transform

import (
	"fmt"

	"github.com/bonzainsights/WorldInsights/internal/models"
)

// ChartType selects one of the supported projections.
type ChartType string

const (
	Line       ChartType = "line"
	Bar        ChartType = "bar"
	Scatter    ChartType = "scatter"
	Choropleth ChartType = "choropleth"
)

// LineSeries is the line projection: indicator → country → year → value.
type LineSeries map[string]map[string]map[int]*float64

// BarSeries is the bar projection: country → indicator → latest observation.
type BarSeries map[string]map[string]models.YearValue

// ScatterSeries is the scatter projection: country → indicator → latest value.
type ScatterSeries map[string]map[string]*float64

// ChoroplethSeries is the choropleth projection: country → latest observation.
type ChoroplethSeries map[string]models.YearValue

// Transform reshapes a flat record set into the projection for the
// given chart type. Callers that know the chart type statically can
// use the For* functions directly.
func Transform(records []models.Record, chartType ChartType) (interface{}, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no data to transform")
	}

	switch chartType {
	case Line:
		return ForLine(records), nil
	case Bar:
		return ForBar(records), nil
	case Scatter:
		return ForScatter(records), nil
	case Choropleth:
		return ForChoropleth(records), nil
	default:
		return nil, fmt.Errorf("invalid chart type %q, must be one of: line, bar, scatter, choropleth", chartType)
	}
}

// ForLine builds the time-series projection. Every record contributes
// one leaf; duplicates of the same (indicator, country, year) triple
// resolve last-write-wins, so input order matters.
func ForLine(records []models.Record) LineSeries {
	result := make(LineSeries)
	for _, r := range records {
		countries, ok := result[r.Indicator]
		if !ok {
			countries = make(map[string]map[int]*float64)
			result[r.Indicator] = countries
		}
		years, ok := countries[r.Country]
		if !ok {
			years = make(map[int]*float64)
			countries[r.Country] = years
		}
		years[r.Year] = r.Value
	}
	return result
}

// ForBar keeps the latest observation per (country, indicator) pair.
// Ties at the same year resolve to the last record seen.
func ForBar(records []models.Record) BarSeries {
	result := make(BarSeries)
	for _, r := range records {
		indicators, ok := result[r.Country]
		if !ok {
			indicators = make(map[string]models.YearValue)
			result[r.Country] = indicators
		}
		if cur, ok := indicators[r.Indicator]; !ok || r.Year >= cur.Year {
			indicators[r.Indicator] = models.YearValue{Year: r.Year, Value: r.Value}
		}
	}
	return result
}

// ForScatter pairs the first two distinct indicators in input order,
// taking each country's latest value per indicator independently.
// Countries missing either indicator are omitted; fewer than two
// indicators yields an empty result, not an error.
func ForScatter(records []models.Record) ScatterSeries {
	var ind1, ind2 string
	for _, r := range records {
		switch {
		case ind1 == "":
			ind1 = r.Indicator
		case ind2 == "" && r.Indicator != ind1:
			ind2 = r.Indicator
		}
		if ind2 != "" {
			break
		}
	}
	if ind2 == "" {
		return ScatterSeries{}
	}

	// Latest observation per country for each of the two indicators.
	latest := make(map[string]map[string]models.YearValue)
	for _, r := range records {
		if r.Indicator != ind1 && r.Indicator != ind2 {
			continue
		}
		byIndicator, ok := latest[r.Country]
		if !ok {
			byIndicator = make(map[string]models.YearValue)
			latest[r.Country] = byIndicator
		}
		if cur, ok := byIndicator[r.Indicator]; !ok || r.Year >= cur.Year {
			byIndicator[r.Indicator] = models.YearValue{Year: r.Year, Value: r.Value}
		}
	}

	result := make(ScatterSeries)
	for country, byIndicator := range latest {
		v1, ok1 := byIndicator[ind1]
		v2, ok2 := byIndicator[ind2]
		if !ok1 || !ok2 {
			continue
		}
		result[country] = map[string]*float64{
			ind1: v1.Value,
			ind2: v2.Value,
		}
	}
	return result
}

// ForChoropleth keeps the latest observation per country. Intended for
// single-indicator record sets; with mixed indicators the latest year
// wins regardless of indicator.
func ForChoropleth(records []models.Record) ChoroplethSeries {
	result := make(ChoroplethSeries)
	for _, r := range records {
		if cur, ok := result[r.Country]; !ok || r.Year >= cur.Year {
			result[r.Country] = models.YearValue{Year: r.Year, Value: r.Value}
		}
	}
	return result
}
