package models

// NASAPowerResponse is the POWER temporal/daily point payload. The
// parameter block maps parameter code to {YYYYMMDD: value}; the API
// reports missing observations as -999, which the client masks.
type NASAPowerResponse struct {
	Properties NASAPowerProperties `json:"properties"`
}

// NASAPowerProperties holds the parameter series of a POWER response.
type NASAPowerProperties struct {
	Parameter map[string]map[string]float64 `json:"parameter"`
}
