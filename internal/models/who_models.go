package models

// WHO Global Health Observatory responses are OData envelopes with the
// payload under "value".

// WHOCountryResponse wraps the DIMENSION/COUNTRY/DimensionValues payload.
type WHOCountryResponse struct {
	Value []WHODimensionValue `json:"value"`
}

// WHODimensionValue is one member of a WHO dimension (here: a country).
type WHODimensionValue struct {
	Code        string `json:"Code"`
	Title       string `json:"Title"`
	ParentTitle string `json:"ParentTitle"`
}

// WHOIndicatorResponse wraps the Indicator catalog payload.
type WHOIndicatorResponse struct {
	Value []WHOIndicator `json:"value"`
}

// WHOIndicator is one entry of the GHO indicator catalog.
type WHOIndicator struct {
	IndicatorCode string `json:"IndicatorCode"`
	IndicatorName string `json:"IndicatorName"`
}

// WHODataResponse wraps an indicator data payload.
type WHODataResponse struct {
	Value []WHOObservation `json:"value"`
}

// WHOObservation is one data point of a GHO indicator series.
type WHOObservation struct {
	SpatialDim    string   `json:"SpatialDim"`
	TimeDim       int      `json:"TimeDim"`
	IndicatorCode string   `json:"IndicatorCode"`
	NumericValue  *float64 `json:"NumericValue"`
}
