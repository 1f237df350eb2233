package models

import "encoding/json"

// FAODimensionResponse wraps a FAOSTAT dimension listing
// (dimensions/area/<domain>, dimensions/item/<domain>).
type FAODimensionResponse struct {
	Data []FAODimensionMember `json:"data"`
}

// FAODimensionMember is one member of a FAOSTAT dimension. Codes come
// back as numbers for areas and strings for some items, so the raw
// json.Number keeps both.
type FAODimensionMember struct {
	Code  json.Number `json:"code"`
	Label string      `json:"label"`
}
