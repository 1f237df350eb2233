package models

import "encoding/json"

// OpenMeteoArchiveResponse is the historical weather archive payload.
// The daily block maps "time" to a date array and each requested
// variable to a parallel value array, so members stay raw until the
// client knows which variable it asked for.
type OpenMeteoArchiveResponse struct {
	Latitude  float64                    `json:"latitude"`
	Longitude float64                    `json:"longitude"`
	Daily     map[string]json.RawMessage `json:"daily"`
}
