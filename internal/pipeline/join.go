package pipeline

import "github.com/stwalsh4118/housingdash/api/internal/models"

// JoinOptions controls how joined tracts are classified and extruded.
type JoinOptions struct {
	Palette        []models.Color
	ElevationScale float64
}

// Join merges tract aggregates onto tract geometry by GEOID. Only tracts
// present on both sides are kept, in geometry order. Median price per
// square foot is then binned into len(Palette) classes over the joined
// tracts, darker colors for higher values.
func Join(aggregates []models.TractAggregate, units []models.GeoUnit, opts JoinOptions) []models.JoinedTract {
	byGEOID := make(map[string]*models.TractAggregate, len(aggregates))
	for i := range aggregates {
		byGEOID[aggregates[i].GEOID] = &aggregates[i]
	}

	joined := make([]models.JoinedTract, 0, len(aggregates))
	for i := range units {
		u := &units[i]
		agg, ok := byGEOID[u.GEOID]
		if !ok {
			continue
		}

		subGeo := agg.SubGeo
		if subGeo == "" {
			subGeo = u.SubGeo
		}

		joined = append(joined, models.JoinedTract{
			Geometry:      u.Geometry,
			GEOID:         u.GEOID,
			Name:          u.Name,
			SubGeo:        subGeo,
			MedianPriceSF: agg.MedianPriceSF,
			MedianPrice:   agg.MedianPrice,
			Count:         agg.Count,
			PriceSFLabel:  FormatPriceSF(agg.MedianPriceSF),
			PriceLabel:    FormatPrice(agg.MedianPrice),
			CountLabel:    FormatCount(agg.Count),
			Elevation:     float64(agg.Count) * opts.ElevationScale,
			Class:         Unclassified,
		})
	}

	values := make([]float64, len(joined))
	for i := range joined {
		values[i] = joined[i].MedianPriceSF
	}
	classes := Classify(values, len(opts.Palette))
	for i, class := range classes {
		joined[i].Class = class
		if class != Unclassified {
			color := opts.Palette[class]
			joined[i].Color = &color
		}
	}

	return joined
}
