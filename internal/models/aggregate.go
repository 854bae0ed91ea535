package models

// TractAggregate holds the statistics for one census tract under a selection.
// Tracts with no matching transactions have no aggregate at all.
type TractAggregate struct {
	GEOID         string  `json:"geoid"`
	SubGeo        string  `json:"sub_geo"`
	MedianPriceSF float64 `json:"median_price_sf"`
	MedianPrice   float64 `json:"median_price"`
	Count         int     `json:"count"`
}

// MonthlyAggregate is one point of the price trend series.
type MonthlyAggregate struct {
	Key           string  `json:"key"`
	MedianPriceSF float64 `json:"median_price_sf"`
	Count         int     `json:"count"`
	Year          int     `json:"year"`
	Month         int     `json:"month"`
}
