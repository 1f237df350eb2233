package clients

import "sort"

// countryCapitals maps ISO3 country codes to capital coordinates for
// the gridded-data providers (Open-Meteo, NASA POWER), which have no
// per-country granularity of their own. A country's series is the
// series at its capital.
var countryCapitals = map[string][2]float64{
	"USA": {38.9072, -77.0369},  // Washington D.C.
	"GBR": {51.5074, -0.1278},   // London
	"CHN": {39.9042, 116.4074},  // Beijing
	"IND": {28.6139, 77.2090},   // New Delhi
	"DEU": {52.5200, 13.4050},   // Berlin
	"FRA": {48.8566, 2.3522},    // Paris
	"JPN": {35.6762, 139.6503},  // Tokyo
	"BRA": {15.8267, -47.9218},  // Brasília
	"CAN": {45.4215, -75.6972},  // Ottawa
	"AUS": {35.2809, -149.1300}, // Canberra
}

// supportedCapitalCodes returns the capital table's country codes in
// sorted order, for stable error messages and catalog listings.
func supportedCapitalCodes() []string {
	codes := make([]string, 0, len(countryCapitals))
	for code := range countryCapitals {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
