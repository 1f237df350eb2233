package models

import "time"

// Record is the common schema every source client normalizes into.
// A nil Value means the provider reported a missing observation (or a
// sentinel that was masked during normalization); provider sentinels
// such as -999 never survive past a client.
type Record struct {
	Country   string   `json:"country"`
	Year      int      `json:"year"`
	Indicator string   `json:"indicator"`
	Value     *float64 `json:"value"`
	Source    string   `json:"source"`
	Date      string   `json:"date,omitempty"` // full date for sub-annual series
}

// Indicator describes one statistical series offered by a provider.
// Source is the routing tag injected by the aggregator, not the client,
// so the same client implementation can back multiple catalog entries.
type Indicator struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
}

// Country describes a country or region as reported by a provider.
// Only Code and Name are guaranteed; the rest are provider extras
// (World Bank capitals, Open-Meteo/NASA coordinates).
type Country struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Source      string  `json:"source,omitempty"`
	Capital     string  `json:"capital,omitempty"`
	Region      string  `json:"region,omitempty"`
	IncomeLevel string  `json:"income_level,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}

// YearValue pairs an observation with the year it was taken. Used by
// the bar and choropleth projections, which keep one value per key.
type YearValue struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

// Dataset bundles one aggregation run with the request that produced it.
type Dataset struct {
	Indicators []Indicator `json:"indicators"`
	Countries  []Country   `json:"countries"`
	StartYear  int         `json:"start_year,omitempty"`
	EndYear    int         `json:"end_year,omitempty"`
	FetchedAt  time.Time   `json:"fetched_at"`
	Records    []Record    `json:"records"`
}

// Float64 returns a pointer to v. Convenience for building records.
func Float64(v float64) *float64 {
	return &v
}
