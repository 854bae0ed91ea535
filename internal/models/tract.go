package models

import "strings"

// GeoUnit is the static boundary of a census tract.
type GeoUnit struct {
	Geometry MultiPolygon
	GEOID    string
	Name     string
	SubGeo   string
}

// JoinedTract is a tract aggregate merged with its geometry, ready for a map.
// Class is the choropleth bin index, or -1 when the value could not be binned,
// in which case Color is nil.
type JoinedTract struct {
	Geometry      MultiPolygon `json:"geometry"`
	Color         *Color       `json:"color,omitempty"`
	GEOID         string       `json:"geoid"`
	Name          string       `json:"name,omitempty"`
	SubGeo        string       `json:"sub_geo"`
	PriceSFLabel  string       `json:"price_sf_formatted"`
	PriceLabel    string       `json:"price_formatted"`
	CountLabel    string       `json:"total_sales"`
	MedianPriceSF float64      `json:"median_price_sf"`
	MedianPrice   float64      `json:"median_price"`
	Elevation     float64      `json:"elevation"`
	Count         int          `json:"count"`
	Class         int          `json:"class"`
}

// NormalizeGEOID strips the ".0" suffix that float-typed exports add to
// numeric tract codes, so the loader and geometry sources agree on keys.
func NormalizeGEOID(s string) string {
	s = strings.TrimSpace(s)
	digits := strings.TrimSuffix(s, ".0")
	if digits == s || digits == "" {
		return s
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return s
		}
	}
	return digits
}
