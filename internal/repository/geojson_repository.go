package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/stwalsh4118/housingdash/api/internal/config"
	"github.com/stwalsh4118/housingdash/api/internal/models"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Properties map[string]interface{} `json:"properties"`
	Geometry   models.MultiPolygon    `json:"geometry"`
}

// geoJSONTractRepository reads tract boundaries from the GeoJSON file named
// by each county's geometry_path.
type geoJSONTractRepository struct{}

// NewGeoJSONTractRepository creates a TractRepository backed by GeoJSON files.
func NewGeoJSONTractRepository() TractRepository {
	return &geoJSONTractRepository{}
}

// FindByCounty reads the county's FeatureCollection. Property names come from
// the county's geometry field map; numeric GEOIDs are accepted and rendered
// without exponent or trailing ".0".
func (r *geoJSONTractRepository) FindByCounty(ctx context.Context, county config.CountyConfig) ([]models.GeoUnit, error) {
	if county.GeometryPath == "" {
		return nil, fmt.Errorf("%w: county %q has no geometry_path", ErrNoTracts, county.Slug)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(county.GeometryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tract geometry %s: %w", county.GeometryPath, err)
	}

	units, err := parseFeatureCollection(data, county.Geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tract geometry %s: %w", county.GeometryPath, err)
	}
	return units, nil
}

func parseFeatureCollection(data []byte, fields config.GeometryFields) ([]models.GeoUnit, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fc featureCollection
	if err := dec.Decode(&fc); err != nil {
		return nil, err
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}

	units := make([]models.GeoUnit, 0, len(fc.Features))
	seen := make(map[string]bool, len(fc.Features))
	for _, f := range fc.Features {
		geoid := models.NormalizeGEOID(propertyString(f.Properties, fields.GEOIDProperty))
		if geoid == "" || seen[geoid] {
			continue
		}
		seen[geoid] = true

		units = append(units, models.GeoUnit{
			Geometry: f.Geometry,
			GEOID:    geoid,
			Name:     propertyString(f.Properties, fields.NameProperty),
			SubGeo:   propertyString(f.Properties, fields.SubGeoProperty),
		})
	}

	if len(units) == 0 {
		return nil, ErrNoTracts
	}
	return units, nil
}

func propertyString(props map[string]interface{}, key string) string {
	switch v := props[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return fmt.Sprintf("%d", i)
		}
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return fmt.Sprintf("%.0f", f)
		}
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
