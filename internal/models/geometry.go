package models

import (
	"encoding/json"
	"fmt"
)

// MultiPolygon is the boundary of a census tract.
// It stores coordinates in GeoJSON format: [polygons][rings][points][lon,lat]
// SRID 4326 (WGS84) is used for lat/lng coordinates.
// Plain Polygon input is promoted to a single-member MultiPolygon so that
// every tract carries the same geometry shape regardless of its source.
type MultiPolygon struct {
	Coordinates [][][][2]float64 // GeoJSON coordinate structure for MultiPolygon
	SRID        int              // Spatial Reference ID (default: 4326)
}

// rawGeometry accepts either Polygon or MultiPolygon coordinates.
type rawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Scan implements sql.Scanner for geometry read with ST_AsGeoJSON.
func (mp *MultiPolygon) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to scan MultiPolygon: expected []byte or string, got %T", value)
	}

	if err := mp.decode(data, true); err != nil {
		return fmt.Errorf("failed to scan tract geometry: %w", err)
	}
	return nil
}

// MarshalJSON renders the geometry as a GeoJSON MultiPolygon.
func (mp MultiPolygon) MarshalJSON() ([]byte, error) {
	coords := mp.Coordinates
	if coords == nil {
		coords = [][][][2]float64{}
	}
	geom := struct {
		Type        string           `json:"type"`
		Coordinates [][][][2]float64 `json:"coordinates"`
	}{
		Type:        "MultiPolygon",
		Coordinates: coords,
	}
	return json.Marshal(geom)
}

// UnmarshalJSON parses a GeoJSON Polygon or MultiPolygon geometry object.
func (mp *MultiPolygon) UnmarshalJSON(data []byte) error {
	return mp.decode(data, false)
}

// IsEmpty reports whether the geometry has no polygons.
func (mp MultiPolygon) IsEmpty() bool {
	return len(mp.Coordinates) == 0
}

func (mp *MultiPolygon) decode(data []byte, requireType bool) error {
	var geom rawGeometry
	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal geometry: %w", err)
	}

	switch geom.Type {
	case "MultiPolygon":
		var coords [][][][2]float64
		if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
			return fmt.Errorf("failed to unmarshal multipolygon coordinates: %w", err)
		}
		mp.Coordinates = coords
	case "Polygon":
		var coords [][][2]float64
		if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
			return fmt.Errorf("failed to unmarshal polygon coordinates: %w", err)
		}
		mp.Coordinates = [][][][2]float64{coords}
	case "":
		if requireType {
			return fmt.Errorf("geometry type is missing")
		}
		mp.Coordinates = nil
	default:
		return fmt.Errorf("expected Polygon or MultiPolygon type, got %s", geom.Type)
	}

	mp.SRID = 4326
	return nil
}
